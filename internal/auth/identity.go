package auth

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const identityContextKey = "identity"

// Identity is the authenticated caller resolved from a bearer credential.
// It is immutable and is the single source of truth for task ownership:
// every repository and statistics call is scoped by it, never by anything
// the payload claims.
type Identity struct {
	UserID   uuid.UUID
	Username string
}

// IdentityFromContext returns the identity bound to the current request.
func IdentityFromContext(c echo.Context) (Identity, bool) {
	ident, ok := c.Get(identityContextKey).(Identity)
	return ident, ok
}

func bindIdentity(c echo.Context, ident Identity) {
	c.Set(identityContextKey, ident)
}
