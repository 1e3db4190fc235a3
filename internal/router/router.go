package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/movies-api/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/movies-api/internal/middleware" // import middleware for JWT authentication
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map GET /healthz to the Health handler for load balancers and monitors.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Session-less operations (register, login, refresh)
// live under /auth; operations on the current session require a valid
// access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)

	// Protected session routes.  JWTAuth runs before the handler, so a
	// missing or bad token never reaches it.
	auth := middleware.JWTAuth(jwtSecret)
	g.PATCH("/change-password", a.ChangePassword, auth)
	g.POST("/logout", a.Logout, auth)

	e.GET("/me", a.Me, auth)
}
