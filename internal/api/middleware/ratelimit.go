package middleware

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/saasportal/admin-api/internal/api/metrics"
	"github.com/saasportal/admin-api/internal/core/domain"
	"github.com/saasportal/admin-api/internal/core/ports"
)

// RateLimit throttles requests per caller within a rolling window. The
// counting key is the authenticated user when present, the client IP
// otherwise, so the limiter protects both credential endpoints and the
// authenticated API. A store error fails open: throttling is a courtesy
// guard, not a correctness dependency.
func RateLimit(store ports.RateLimitStore, scope string, max int64, window time.Duration, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := limitKey(c, scope)

			count, err := store.Incr(c.Request().Context(), key, window)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limit store unavailable")
				return next(c)
			}

			if count > max {
				metrics.RateLimitDecisionsTotal.WithLabelValues("limited").Inc()
				log.Warn().Str("key", key).Int64("count", count).Msg("request rate limited")
				return domain.ErrRateLimited
			}

			metrics.RateLimitDecisionsTotal.WithLabelValues("allowed").Inc()
			return next(c)
		}
	}
}

func limitKey(c echo.Context, scope string) string {
	if user := UserFromContext(c); user != nil {
		return fmt.Sprintf("ratelimit:%s:user:%s", scope, user.ID)
	}
	return fmt.Sprintf("ratelimit:%s:ip:%s", scope, c.RealIP())
}
