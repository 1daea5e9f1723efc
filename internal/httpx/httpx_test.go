package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MikeMC777/caja-pos/internal/access"
	"github.com/MikeMC777/caja-pos/internal/apperr"
	"github.com/MikeMC777/caja-pos/internal/checkout"
)

type stubResolver map[string]access.Identity

func (s stubResolver) Resolve(_ context.Context, token string) (*access.Identity, error) {
	if token == "boom" {
		return nil, apperr.Remote("identity.resolve", errors.New("connection refused"))
	}
	id, ok := s[token]
	if !ok {
		return nil, apperr.Unauthorized("identity.resolve", "unknown session")
	}
	return &id, nil
}

func newRouter(requireAdmin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.NewNop()))
	res := stubResolver{
		"admin": {UserID: "1", Email: "a@x", Admin: true},
		"clerk": {UserID: "2", Email: "c@x"},
	}
	r.GET("/p", Gate(res, requireAdmin), func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "token": CurrentToken(c)})
	})
	return r
}

func do(r http.Handler, token, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGate(t *testing.T) {
	user := newRouter(false)
	admin := newRouter(true)

	assert.Equal(t, http.StatusUnauthorized, do(user, "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(user, "stale", "").Code)

	w := do(user, "", "text/html,application/xhtml+xml")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, LoginPath, w.Header().Get("Location"))

	w = do(user, "clerk", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"2"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusForbidden, do(admin, "clerk", "").Code)
	assert.Equal(t, http.StatusOK, do(admin, "admin", "").Code)
	assert.Equal(t, http.StatusBadGateway, do(user, "boom", "").Code)
}

func TestGate_BearerToken(t *testing.T) {
	r := newRouter(false)
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer clerk")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"clerk"`)
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("op", "bad"), http.StatusBadRequest},
		{&checkout.ShortfallError{Total: decimal.NewFromInt(10), Tendered: decimal.NewFromInt(5)}, http.StatusUnprocessableEntity},
		{apperr.NotFound("op", "nope"), http.StatusNotFound},
		{apperr.Conflict("op", "busy"), http.StatusConflict},
		{apperr.Unauthorized("op", "who"), http.StatusUnauthorized},
		{apperr.Remote("op", errors.New("down")), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusOf(tc.err), tc.err.Error())
	}
}

func TestWriteError_Shortfall(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	WriteError(c, &checkout.ShortfallError{Total: decimal.RequireFromString("155"), Tendered: decimal.RequireFromString("100")})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"insufficient amount: still remaining 55.00","shortfall":"55.00"}`, w.Body.String())
}

func TestWriteError_RemoteHidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	WriteError(c, apperr.Remote("order.create", errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"service unavailable"}`, w.Body.String())
	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors[0].Error(), "connection refused")
}
