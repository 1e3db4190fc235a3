package middleware

// identity.go holds the helpers shared across middleware files and handlers
// for reading the authenticated principal out of the Echo context.  JWTAuth
// stores it under principalKey and mirrors the numeric id under "user_id".

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movies-api/internal/model"
)

const (
    principalKey = "principal"
    userIDKey    = "user_id"
)

// SetPrincipal attaches p to c.
func SetPrincipal(c echo.Context, p model.Principal) {
    c.Set(principalKey, p)
    c.Set(userIDKey, p.ID)
}

// PrincipalFrom returns the principal stored by JWTAuth.  ok is false on
// routes that are not behind the auth middleware.
func PrincipalFrom(c echo.Context) (model.Principal, bool) {
    p, ok := c.Get(principalKey).(model.Principal)
    if !ok || p.ID == 0 {
        return model.Principal{}, false
    }
    return p, true
}
