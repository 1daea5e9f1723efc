package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MikeMC777/caja-pos/internal/apperr"
	"github.com/MikeMC777/caja-pos/internal/httpx"
	"github.com/MikeMC777/caja-pos/internal/product"
	"github.com/MikeMC777/caja-pos/internal/terminal"
)

type loginRequest struct {
	Email    string `json:"email"    example:"admin@varsbill.com"`
	Password string `json:"password" example:"admin123"`
}

type meResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Admin  bool   `json:"admin"`
	Role   string `json:"role"`
}

type loginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      meResponse `json:"user"`
}

// @Summary      Sign in
// @Description  Checks credentials against the identity service and sets the session cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  product.HTTPError
// @Failure      401   {object}  product.HTTPError
// @Failure      502   {object}  product.HTTPError
// @Router       /api/login [post]
func loginHandler(auth authService, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, product.HTTPError{Error: "invalid json"})
			return
		}
		res, err := auth.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		maxAge := int(ttl.Seconds())
		if !res.ExpiresAt.IsZero() {
			maxAge = int(time.Until(res.ExpiresAt).Seconds())
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(httpx.SessionCookie, res.Token, maxAge, "/", "", false, true)
		c.JSON(http.StatusOK, loginResponse{
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt,
			User: meResponse{
				UserID: res.Identity.UserID,
				Email:  res.Identity.Email,
				Admin:  res.Identity.Admin,
				Role:   res.Identity.Role(),
			},
		})
	}
}

// @Summary      Sign out
// @Description  Revokes the session and discards its cart.
// @Tags         auth
// @Success      204
// @Router       /api/logout [post]
func logoutHandler(auth authService, terms *terminal.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := httpx.SessionToken(c); token != "" {
			if err := auth.Revoke(c.Request.Context(), token); err != nil && apperr.KindOf(err) != apperr.KindUnauthorized {
				logger.Warn("revoke failed", zap.Error(err))
			}
			terms.Drop(c.Request.Context(), token)
		}
		c.SetCookie(httpx.SessionCookie, "", -1, "/", "", false, true)
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Current user
// @Tags     auth
// @Produce  json
// @Success  200  {object}  meResponse
// @Failure  401  {object}  product.HTTPError
// @Router   /api/me [get]
func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := httpx.CurrentIdentity(c)
		c.JSON(http.StatusOK, meResponse{UserID: id.UserID, Email: id.Email, Admin: id.Admin, Role: id.Role()})
	}
}
