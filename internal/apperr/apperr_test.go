package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_SurvivesWrapping(t *testing.T) {
	base := Validation("cart.checkout", "cart is empty")
	wrapped := fmt.Errorf("select method: %w", base)

	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.Equal(t, "cart is empty", Message(wrapped))
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

func TestRemote_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Remote("order.create", cause)

	assert.Equal(t, KindRemote, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "order.create: connection refused", err.Error())
}
