package middleware

import (
    "bytes"
    "encoding/json"
    "io"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"
)

// StripBlanks returns v with every empty-string member removed from every
// JSON object, at any depth.  Objects nested in arrays are cleaned too;
// array elements themselves are never dropped.  Non-string values and
// non-empty strings pass through unchanged, so StripBlanks(StripBlanks(v))
// equals StripBlanks(v).
func StripBlanks(v any) any {
    switch t := v.(type) {
    case map[string]any:
        out := make(map[string]any, len(t))
        for k, val := range t {
            if s, ok := val.(string); ok && s == "" {
                continue
            }
            out[k] = StripBlanks(val)
        }
        return out
    case []any:
        out := make([]any, len(t))
        for i, val := range t {
            out[i] = StripBlanks(val)
        }
        return out
    default:
        return v
    }
}

// RemoveBlanks rewrites a JSON request body through StripBlanks before the
// handler binds it.  Bodies that are empty, not JSON, or do not parse are
// left alone; the handler reports those.
func RemoveBlanks() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            if req.Body == nil || req.Body == http.NoBody || !isJSON(req.Header.Get(echo.HeaderContentType)) {
                return next(c)
            }
            raw, err := io.ReadAll(req.Body)
            _ = req.Body.Close()
            if err != nil {
                return err
            }
            req.Body = io.NopCloser(bytes.NewReader(raw))
            if len(bytes.TrimSpace(raw)) == 0 {
                return next(c)
            }

            dec := json.NewDecoder(bytes.NewReader(raw))
            dec.UseNumber() // keep numbers byte-exact
            var doc any
            if err := dec.Decode(&doc); err != nil {
                return next(c)
            }
            cleaned, err := json.Marshal(StripBlanks(doc))
            if err != nil {
                return next(c)
            }
            req.Body = io.NopCloser(bytes.NewReader(cleaned))
            req.ContentLength = int64(len(cleaned))
            req.Header.Set("Content-Length", strconv.Itoa(len(cleaned)))
            return next(c)
        }
    }
}

func isJSON(contentType string) bool {
    return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), echo.MIMEApplicationJSON)
}
