package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "log/slog"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/movies-api/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status    int
    buf       bytes.Buffer
    size      int64
    limit     int64
    truncated bool
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit > 0 && cw.size+int64(len(b)) > cw.limit {
        cw.truncated = true
    } else {
        cw.buf.Write(b)
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// Build a stable cache key honoring prefix/strategy.  gen is the cache
// generation read when the request started.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context, gen string) string {
    r := c.Request()
    method := r.Method
    route := c.Path()
    if route == "" {
        route = r.URL.Path
    }
    // c.Path() is the route pattern (/movies/:id); the concrete id matters.
    path := r.URL.Path
    query := r.URL.RawQuery

    parts := []string{cfg.Prefix, "gen", gen}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = append(parts, "route", route, "path", path)
    case "method_route":
        parts = append(parts, "method", method, "route", route, "path", path)
    case "method_route_query":
        parts = append(parts, "method", method, "route", route, "path", path, "q", query)
    default: // "route_query"
        parts = append(parts, "route", route, "path", path, "q", query)
    }

    tail := strings.Join(parts[1:], ":")
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:%x", parts[0], sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    total := 4 + 4 + len(hdrJSON) + len(body)
    out := make([]byte, total)
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    var hdr http.Header
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
            return 0, nil, nil, false
        }
    } else {
        hdr = make(http.Header)
    }
    body = bs[8+hlen:]
    return status, hdr, body, true
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// generationKey is bumped by every successful write.  It lives outside the
// prefix:* pattern so PurgeCache never resets it.
func generationKey(prefix string) string { return prefix + ".gen" }

// cacheGeneration returns the current generation, "0" before the first write.
func cacheGeneration(ctx context.Context, rdb *redis.Client, prefix string) (string, error) {
    g, err := rdb.Get(ctx, generationKey(prefix)).Result()
    if err == redis.Nil {
        return "0", nil
    }
    return g, err
}

// NewRedisCache stores headers + body of 200 responses so clients see
// identical formatting on a hit.  It must run after JWTAuth so unauthenticated
// requests never reach a cached body.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }

            ctx := c.Request().Context()
            gen, err := cacheGeneration(ctx, rdb, cfg.Prefix)
            if err != nil {
                slog.WarnContext(ctx, "cache: redis get generation failed", "error", err)
                return next(c)
            }
            key := cacheKeyFrom(cfg, c, gen)

            // Try get from Redis
            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        // X-Cache is set below; Content-Length is recomputed;
                        // the request id belongs to this request, not the cached one
                        if strings.EqualFold(k, echo.HeaderContentLength) || strings.EqualFold(k, "X-Cache") ||
                            strings.EqualFold(k, echo.HeaderXRequestID) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    if len(body) > 0 {
                        _, _ = c.Response().Write(body)
                    }
                    return nil
                }
            } else if err != redis.Nil {
                slog.WarnContext(ctx, "cache: redis get failed", "key", key, "error", err)
            }

            // Miss: capture
            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            if cw.status != http.StatusOK || cw.truncated {
                return nil
            }
            // A write that finished while the handler ran has moved the
            // generation on; this body may predate it.
            if now, err := cacheGeneration(ctx, rdb, cfg.Prefix); err != nil || now != gen {
                return nil
            }
            hdr := make(http.Header, len(c.Response().Header()))
            for k, vals := range c.Response().Header() {
                vv := make([]string, len(vals))
                copy(vv, vals)
                hdr[k] = vv
            }
            if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                if err := rdb.SetEx(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
                    slog.WarnContext(ctx, "cache: redis set failed", "key", key, "error", err)
                }
            }
            return nil
        }
    }
}

// NewCacheInvalidator bumps the cache generation and purges every cached
// response under cfg.Prefix after a handler succeeds with a 2xx status.  It is
// mounted on the write routes so list and get-one never serve a record set
// older than storage.  Reads that were in flight during the write keyed their
// fill by the old generation, so a late fill is never read back.
func NewCacheInvalidator(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if err := next(c); err != nil {
                return err
            }
            if s := c.Response().Status; s < 200 || s > 299 {
                return nil
            }
            ctx := context.WithoutCancel(c.Request().Context())
            if err := rdb.Incr(ctx, generationKey(cfg.Prefix)).Err(); err != nil {
                slog.WarnContext(ctx, "cache: generation bump failed", "prefix", cfg.Prefix, "error", err)
            }
            n, err := PurgeCache(ctx, rdb, cfg.Prefix)
            if err != nil {
                slog.WarnContext(ctx, "cache: purge failed", "prefix", cfg.Prefix, "error", err)
                return nil
            }
            slog.DebugContext(ctx, "cache: purged", "prefix", cfg.Prefix, "keys", n)
            return nil
        }
    }
}

// PurgeCache deletes every key under prefix using SCAN, so it never blocks
// Redis the way KEYS would.  It returns the number of keys deleted.
func PurgeCache(ctx context.Context, rdb *redis.Client, prefix string) (int, error) {
    var (
        cursor  uint64
        deleted int
    )
    for {
        keys, next, err := rdb.Scan(ctx, cursor, prefix+":*", 200).Result()
        if err != nil {
            return deleted, err
        }
        if len(keys) > 0 {
            n, err := rdb.Del(ctx, keys...).Result()
            if err != nil {
                return deleted, err
            }
            deleted += int(n)
        }
        cursor = next
        if cursor == 0 {
            return deleted, nil
        }
    }
}
