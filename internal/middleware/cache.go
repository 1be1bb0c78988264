package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/helpdesk-dashboard/internal/config"
)

// PageCache serves rendered dashboard pages from Redis.
//
// Every path has a generation counter. A cached page is keyed by the
// generations of its path and each ancestor path, so Revalidate("/dashboard")
// retires every page under /dashboard and Revalidate("/dashboard/tickets")
// retires the ticket list and the edit forms under it. Old entries are never
// read again and age out with the TTL.
type PageCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
	log *zap.Logger
}

// NewPageCache returns a cache backed by rdb. With a nil client or a disabled
// config the middleware passes through and Revalidate does nothing.
func NewPageCache(cfg config.CacheConfig, rdb *redis.Client, log *zap.Logger) *PageCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &PageCache{cfg: cfg, rdb: rdb, log: log}
}

func (p *PageCache) active() bool { return p.cfg.Enabled && p.rdb != nil }

// Revalidate marks the pages at paths stale.
func (p *PageCache) Revalidate(ctx context.Context, paths ...string) error {
	if !p.active() || len(paths) == 0 {
		return nil
	}
	pipe := p.rdb.Pipeline()
	for _, pth := range paths {
		pipe.Incr(ctx, p.genKey(cleanPath(pth)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revalidate %v: %w", paths, err)
	}
	return nil
}

func (p *PageCache) genKey(pth string) string { return p.cfg.Prefix + ":gen:" + pth }

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 || cw.size <= cw.limit {
		cw.buf.Write(b)
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

func (cw *captureWriter) overflow() bool { return cw.limit > 0 && cw.size > cw.limit }

// Middleware caches successful responses for the configured methods.
func (p *PageCache) Middleware() echo.MiddlewareFunc {
	if !p.active() {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !p.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			ctx := c.Request().Context()
			key, err := p.pageKey(ctx, c.Request())
			if err != nil {
				p.log.Warn("page cache lookup failed", zap.Error(err))
				return next(c)
			}

			if bs, err := p.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) {
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
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(p.cfg.MaxBodyBytes)}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.overflow() || c.Response().Header().Get(echo.HeaderSetCookie) != "" {
				return nil
			}

			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := p.rdb.Set(context.WithoutCancel(ctx), key, payload, p.cfg.TTL).Err(); err != nil {
				p.log.Warn("page cache store failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}

// pageKey reads the generations of the request path and its ancestors and
// folds them with the path and query into one key.
func (p *PageCache) pageKey(ctx context.Context, r *http.Request) (string, error) {
	pth := cleanPath(r.URL.Path)
	lineage := ancestors(pth)
	keys := make([]string, len(lineage))
	for i, a := range lineage {
		keys[i] = p.genKey(a)
	}
	gens, err := p.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(pth)
	b.WriteString("?")
	b.WriteString(r.URL.RawQuery)
	for _, g := range gens {
		b.WriteString("|")
		if s, ok := g.(string); ok {
			b.WriteString(s)
		} else {
			b.WriteString("0")
		}
	}
	sum := sha1.Sum([]byte(b.String()))
	return fmt.Sprintf("%s:page:%x", p.cfg.Prefix, sum[:]), nil
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

// ancestors returns p and every parent path up to, but not including, "/".
func ancestors(p string) []string {
	var out []string
	for p != "/" && p != "." && p != "" {
		out = append(out, p)
		p = path.Dir(p)
	}
	if len(out) == 0 {
		out = append(out, "/")
	}
	return out
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
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
	hdr := make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, hdr, bs[8+hlen:], true
}
