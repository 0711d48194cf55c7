package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"hotel/shared"
	"hotel/shared/constant"
	"hotel/transport/http/response"

	"github.com/rs/zerolog/log"
)

const (
	cacheKeyRateLimit = "limiter"
	unknownUserAgent  = "unknown"
)

// RateLimit counts requests per client in a fixed window. The counter is created by the first
// request of a window, which also starts its ttl. Cache failures never block traffic.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limits := a.config.App.RateLimiter
			if !limits.Enable {
				next.ServeHTTP(w, r)

				return
			}

			ctx := r.Context()
			cacheKey := shared.BuildCacheKey(cacheKeyRateLimit, a.getClientIP(r), a.getUA(r))

			hits, err := a.cache.Incr(ctx, cacheKey)
			if err != nil {
				log.Warn().Err(err).Str("key", cacheKey).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)

				return
			}

			if hits == 1 {
				if err := a.cache.Expire(ctx, cacheKey, limits.WindowSeconds); err != nil {
					log.Warn().Err(err).Str("key", cacheKey).Msg("rate limiter window not set")
				}
			}

			if hits > int64(limits.MaxRequests) {
				response.WithRequestLimitExceeded(w)

				return
			}

			remaining := limits.MaxRequests - int(hits)

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(limits.MaxRequests))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(remaining))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(limits.WindowSeconds))

			next.ServeHTTP(w, r)
		})
	}
}

func (a *appMiddleware) getUA(r *http.Request) string {
	if ua := strings.TrimSpace(r.Header.Get(constant.RequestHeaderUserAgent)); ua != "" {
		return ua
	}

	return unknownUserAgent
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address without its port.
func (a *appMiddleware) getClientIP(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get(constant.RequestHeaderForwardedFor), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}

	if realIP := strings.TrimSpace(r.Header.Get(constant.RequestHeaderRealIP)); realIP != "" {
		return realIP
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
