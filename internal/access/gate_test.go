package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	admin := &Identity{UserID: "a", Admin: true}
	clerk := &Identity{UserID: "c"}

	cases := []struct {
		name         string
		id           *Identity
		requireAdmin bool
		want         Decision
	}{
		{"anonymous", nil, false, RedirectToLogin},
		{"anonymous on admin view", nil, true, RedirectToLogin},
		{"clerk on open view", clerk, false, Allow},
		{"admin on open view", admin, false, Allow},
		{"clerk on admin view", clerk, true, Deny},
		{"admin on admin view", admin, true, Allow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.id, tc.requireAdmin))
		})
	}
}

func TestIdentityRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, Identity{Admin: true}.Role())
	assert.Equal(t, "user", Identity{}.Role())
}
