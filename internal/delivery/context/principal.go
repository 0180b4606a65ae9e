package context

import (
	"jobconnect/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// KeyPrincipal is the key for storing the verified principal in context.
const KeyPrincipal ContextKey = "principal"

// SetPrincipal stores the verified principal in echo.Context.
func SetPrincipal(c echo.Context, principal *entity.Principal) {
	c.Set(string(KeyPrincipal), principal)
}

// GetPrincipal returns the principal attached by the auth middleware.
// Anonymous requests report false.
func GetPrincipal(c echo.Context) (*entity.Principal, bool) {
	principal, ok := c.Get(string(KeyPrincipal)).(*entity.Principal)
	if !ok || principal == nil {
		return nil, false
	}

	return principal, true
}
