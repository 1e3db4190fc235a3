package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movies-api/internal/handler"
	"github.com/iliyamo/movies-api/internal/middleware"
)

// MovieMiddleware carries the optional Redis-backed middleware for the
// movies group.  A nil field is skipped.
type MovieMiddleware struct {
	Cache      echo.MiddlewareFunc // GET routes
	Invalidate echo.MiddlewareFunc // POST and DELETE routes
}

// RegisterMovies registers the /movies resource.  Every route requires a
// valid JWT.  Create and delete bodies pass through RemoveBlanks first.
func RegisterMovies(e *echo.Echo, h *handler.MovieHandler, jwtSecret string, mw MovieMiddleware) {
	g := e.Group("/movies", middleware.JWTAuth(jwtSecret))

	reads := only(mw.Cache)
	writes := append(only(mw.Invalidate), middleware.RemoveBlanks())

	g.GET("", h.List, reads...)
	g.GET("/:id", h.Get, reads...)
	g.POST("", h.Create, writes...)
	g.DELETE("/:id", h.Delete, writes...)
}

func only(m echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if m == nil {
		return nil
	}
	return []echo.MiddlewareFunc{m}
}
