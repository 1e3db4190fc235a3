package middleware

import (
    "log/slog"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/iliyamo/movies-api/internal/logger"
)

// RequestID assigns (or keeps) X-Request-Id and copies it into the request
// context so every slog record of the request carries it.
func RequestID() echo.MiddlewareFunc {
    return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
        RequestIDHandler: func(c echo.Context, id string) {
            req := c.Request()
            c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
        },
    })
}

// RequestLogger writes one structured line per request to log.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogError:     true,
        HandleError:  true, // run the error handler first so the status is final
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            attrs := []any{
                "method", v.Method,
                "uri", v.URI,
                "status", v.Status,
                "latency_ms", v.Latency.Milliseconds(),
                "remote_ip", v.RemoteIP,
            }
            if p, ok := PrincipalFrom(c); ok {
                attrs = append(attrs, "user_id", p.ID)
            }
            ctx := c.Request().Context()
            if v.Error != nil {
                log.WarnContext(ctx, "request", append(attrs, "error", v.Error.Error())...)
                return nil
            }
            log.InfoContext(ctx, "request", attrs...)
            return nil
        },
    })
}
