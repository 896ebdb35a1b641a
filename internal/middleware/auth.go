package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/folio/internal/auth"
)

// AdminContextKey is the echo context key holding the *auth.Identity of an
// authorized request.
const AdminContextKey = "admin"

// Authorizer validates bearer tokens.
type Authorizer interface {
	Authorize(token string) (*auth.Identity, error)
}

// BearerAuth protects routes with an "Authorization: Bearer <token>" header.
// Rejections are returned as errors for the central error handler to render.
func BearerAuth(authz Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := authz.Authorize(bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)))
			if err != nil {
				FromContext(c.Request().Context()).Warn("Rejected bearer token",
					"event", "auth_rejected",
					"path", c.Path(),
					"error", err)
				return err
			}

			c.Set(AdminContextKey, identity)

			ctx := c.Request().Context()
			reqLogger := FromContext(ctx).With("admin_id", identity.ID)
			c.SetRequest(c.Request().WithContext(context.WithValue(ctx, loggerKey, reqLogger)))

			return next(c)
		}
	}
}

// AdminFromContext returns the identity set by BearerAuth, or nil.
func AdminFromContext(c echo.Context) *auth.Identity {
	identity, _ := c.Get(AdminContextKey).(*auth.Identity)
	return identity
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
