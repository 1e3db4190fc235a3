package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "strings" // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/movies-api/internal/apperr" // error kinds rendered by the HTTP error handler
    "github.com/iliyamo/movies-api/internal/model"  // Principal attached to the request
    "github.com/iliyamo/movies-api/internal/utils"  // access token verification
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// attaches the authenticated principal to the request context.  The
// provided secret must match the one used when issuing tokens.  This
// middleware wraps every protected route, so it runs before any handler
// logic; handlers read the caller via PrincipalFrom(c).
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // Read the Authorization header.  A valid header should start
            // with "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return apperr.Unauthorized("missing bearer token")
            }
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
            if raw == "" {
                return apperr.Unauthorized("missing bearer token")
            }

            // Signature, algorithm (HS256 only), expiry and subject are all
            // checked by ParseAccessToken.
            uid, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return apperr.Wrap(apperr.KindUnauthorized, err, "invalid token")
            }

            SetPrincipal(c, model.Principal{ID: uid})
            return next(c)
        }
    }
}
