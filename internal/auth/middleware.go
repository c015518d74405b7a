package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/bookstore/internal/identity"
	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

const identityContextKey = "bookstore.identity"

// Middleware authenticates requests via the Authorization bearer header and
// stashes the resolved identity in the echo context. Requests without a
// usable token are rejected as forbidden.
func Middleware(tokens *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return errorbank.Forbidden("a valid bearer token is required")
			}

			id, err := tokens.Verify(raw)
			if err != nil {
				return err
			}

			c.Set(identityContextKey, id)
			return next(c)
		}
	}
}

// RequireAdmin gates a route to administrators. It must run after Middleware.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFromContext(c)
			if !ok {
				return errorbank.Forbidden("a valid bearer token is required")
			}
			if id.Role != identity.RoleAdmin {
				return errorbank.Forbidden("only administrators may perform this action")
			}
			return next(c)
		}
	}
}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(c echo.Context) (identity.Identity, bool) {
	id, ok := c.Get(identityContextKey).(identity.Identity)
	return id, ok
}
