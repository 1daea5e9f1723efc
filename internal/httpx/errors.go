package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/caja-pos/internal/apperr"
	"github.com/MikeMC777/caja-pos/internal/checkout"
)

// StatusOf maps an error kind to an HTTP status.
func StatusOf(err error) int {
	var short *checkout.ShortfallError
	if errors.As(err, &short) {
		return http.StatusUnprocessableEntity
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindRemote:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as {"error": ...} with the matching status.
func WriteError(c *gin.Context, err error) {
	body := gin.H{"error": apperr.Message(err)}
	var short *checkout.ShortfallError
	if errors.As(err, &short) {
		body["error"] = short.Error()
		body["shortfall"] = short.Shortfall().StringFixed(2)
	}
	status := StatusOf(err)
	if status >= 500 {
		_ = c.Error(err)
		switch status {
		case http.StatusInternalServerError:
			body["error"] = "internal error"
		case http.StatusBadGateway:
			body["error"] = "service unavailable"
		}
	}
	c.JSON(status, body)
}
