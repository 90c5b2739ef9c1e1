package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nemopss/expense-tracker/backend/auth"
	"github.com/nemopss/expense-tracker/backend/logger"
)

// AuthMiddleware resolves the bearer token to a user and stores it in the
// gin context. The request logger is tagged with the user id.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user, err := h.verifier.Authenticate(ctx, c.GetHeader("Authorization"))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrMissingToken),
				errors.Is(err, auth.ErrMalformed),
				errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrUnknownUser):
				logger.Component(logger.FromContext(ctx), logger.ComponentAuth).Debug("Rejected request", logger.FieldError, err)
				fail(c, http.StatusUnauthorized, "unauthorized: "+err.Error())
			default:
				handleError(c, "authenticate", err)
			}
			return
		}

		l := logger.FromContext(ctx).With(logger.FieldUserID, user.ID)
		c.Request = c.Request.WithContext(logger.WithContext(ctx, l))
		c.Set(userKey, user)
		c.Next()
	}
}

// SecurityHeaders sets conservative headers for a JSON API. The swagger UI
// needs inline scripts, so it gets a relaxed policy.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		if strings.HasPrefix(c.Request.URL.Path, "/swagger/") {
			h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		} else {
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		}
		if c.Request.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
