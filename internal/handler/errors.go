package handler

import (
    "errors"
    "fmt"
    "log/slog"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movies-api/internal/apperr"
)

type errorBody struct {
    Error errorDetail `json:"error"`
}

type errorDetail struct {
    Kind    string `json:"kind"`
    Message string `json:"message"`
}

// HTTPErrorHandler is the single place errors become responses.  Handlers and
// middleware only return errors; the status comes from apperr.Status, except
// for echo's own HTTP errors (unknown route, method not allowed, bind
// failures) which keep their code.
func HTTPErrorHandler(err error, c echo.Context) {
    if c.Response().Committed {
        return
    }

    status, body := translate(err)
    req := c.Request()
    if status >= http.StatusInternalServerError {
        slog.ErrorContext(req.Context(), "request failed",
            "method", req.Method,
            "path", req.URL.Path,
            "status", status,
            "error", err,
        )
    }

    var werr error
    if req.Method == http.MethodHead {
        werr = c.NoContent(status)
    } else {
        werr = c.JSON(status, body)
    }
    if werr != nil {
        slog.ErrorContext(req.Context(), "write error response", "error", werr)
    }
}

func translate(err error) (int, errorBody) {
    var he *echo.HTTPError
    if errors.As(err, &he) && !isAppErr(err) {
        msg := http.StatusText(he.Code)
        if m, ok := he.Message.(string); ok && m != "" {
            msg = m
        } else if he.Message != nil {
            msg = fmt.Sprint(he.Message)
        }
        if he.Code >= http.StatusInternalServerError {
            msg = "internal server error"
        }
        return he.Code, errorBody{Error: errorDetail{Kind: kindForStatus(he.Code), Message: msg}}
    }

    kind := apperr.KindOf(err)
    return apperr.Status(kind), errorBody{Error: errorDetail{Kind: kind.String(), Message: apperr.Message(err)}}
}

func isAppErr(err error) bool {
    var ae *apperr.Error
    return errors.As(err, &ae)
}

// kindForStatus names an echo status: 404 -> "not_found", 405 -> "method_not_allowed".
func kindForStatus(code int) string {
    text := http.StatusText(code)
    if text == "" {
        return "error"
    }
    return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
