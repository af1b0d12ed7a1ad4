package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"dinedash/internal/caching"
	"dinedash/internal/common"
	"dinedash/internal/logger"

	"github.com/labstack/echo/v4"
)

// RateLimit caps each principal at perMinute requests to the wrapped route
// group. When the limiter is unavailable requests are let through.
func RateLimit(limiter caching.RateLimiter, scope string, perMinute int, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := scope + ":" + c.RealIP()
			if principal, ok := common.GetPrincipalFromContext(ctx); ok {
				key = scope + ":" + principal.ID.String()
			}

			limited, err := limiter.IsRateLimited(ctx, key, perMinute, time.Minute)
			if err != nil {
				log.Warn(ctx, "rate_limit_unavailable", "rate limiter unavailable, allowing request",
					slog.String("scope", scope), slog.String("error", err.Error()))
				return next(c)
			}
			if limited {
				return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", "Too many requests", nil))
			}
			return next(c)
		}
	}
}
