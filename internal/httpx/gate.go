package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/caja-pos/internal/access"
	"github.com/MikeMC777/caja-pos/internal/apperr"
)

const (
	SessionCookie = "pos_session"
	LoginPath     = "/login"

	identityKey = "identity"
	tokenKey    = "session_token"
)

// Resolver looks up the identity behind a session token.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*access.Identity, error)
}

// SessionToken reads the token from the session cookie or a bearer header.
func SessionToken(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Gate lets the request through only when access.Decide allows it.
func Gate(r Resolver, requireAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id *access.Identity
		token := SessionToken(c)
		if token != "" {
			got, err := r.Resolve(c.Request.Context(), token)
			switch {
			case err == nil:
				id = got
			case apperr.KindOf(err) != apperr.KindUnauthorized:
				WriteError(c, err)
				c.Abort()
				return
			}
		}

		switch access.Decide(id, requireAdmin) {
		case access.Allow:
			c.Set(identityKey, *id)
			c.Set(tokenKey, token)
			c.Next()
		case access.RedirectToLogin:
			if wantsHTML(c) {
				c.Redirect(http.StatusFound, LoginPath)
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			}
			c.Abort()
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "administrator access required"})
		}
	}
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

// CurrentIdentity returns the identity stored by Gate.
func CurrentIdentity(c *gin.Context) (access.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return access.Identity{}, false
	}
	id, ok := v.(access.Identity)
	return id, ok
}

// CurrentToken returns the session token accepted by Gate.
func CurrentToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
