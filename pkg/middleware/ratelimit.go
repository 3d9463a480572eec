package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, current int64, retryAfter time.Duration, err error)
}

// RateLimit limits per customer, or per client IP for guests. A limiter
// error lets the request through.
func RateLimit(limiter Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, current, retryAfter, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				logger.Warn("Rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				logger.Info("Rate limited",
					zap.String("path", r.URL.Path),
					zap.Int64("current", current),
					zap.Duration("retry_after", retryAfter),
				)
				utils.ResponseTooManyRequests(w, "Too many booking attempts, try again later", retryAfter)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if id, ok := utils.GetCustomerIDFromContext(r.Context()); ok {
		return "customer:" + id.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
