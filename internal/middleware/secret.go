package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireJobSecret guards operational job endpoints with a static
// bearer secret. These endpoints mutate seat state in bulk and must not
// be reachable by ordinary clients.
func RequireJobSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				return unauthorizedJob(c)
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				return unauthorizedJob(c)
			}
			return next(c)
		}
	}
}

func unauthorizedJob(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"error": echo.Map{
			"code":    "UNAUTHORIZED",
			"message": "Missing or invalid job credentials.",
		},
	})
}
