package middleware

import (
	"errors"
	"keyhub/config"
	"keyhub/internal/core"
	"keyhub/internal/database/redis/repository"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/pkg/response"
	"keyhub/internal/telemetry"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const rateLimitWindowSeconds int64 = 60

// RateLimit 公開端點的每 IP 固定視窗限流
type RateLimit struct {
	logger                *zap.Logger
	trace                 *telemetry.Trace
	metric                *telemetry.Metric
	config                *config.Configuration
	rateLimiterRepository *repository.RateLimiterRepository
}

func NewRateLimit(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	config *config.Configuration,
	rateLimiterRepository *repository.RateLimiterRepository,
) *RateLimit {
	return &RateLimit{
		logger:                logger,
		trace:                 trace,
		metric:                metric,
		config:                config,
		rateLimiterRepository: rateLimiterRepository,
	}
}

// Guard scope 區分不同端點的配額
func (middleware *RateLimit) Guard(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := middleware.config.RateLimit.PerMinute
		if limit <= 0 {
			c.Next()
			return
		}
		ctx, _, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRateLimitMiddleware))

		remaining, ttlSec, err := middleware.rateLimiterRepository.Consume(ctx, scope, c.ClientIP(), rateLimitWindowSeconds, limit)
		if err != nil && !errors.Is(err, repository.ErrRateLimitExceeded) {
			// 限流器故障不阻斷驗證流程
			middleware.logger.Warn("rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
			end(err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if ttlSec > 0 {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(ttlSec, 10))
		}

		if err != nil {
			if ttlSec > 0 {
				c.Header("Retry-After", strconv.FormatInt(ttlSec, 10))
			}
			if middleware.metric.RateLimitedTotal != nil {
				middleware.metric.RateLimitedTotal.WithLabelValues(c.FullPath()).Inc()
			}
			end(nil)
			response.AbortWithError(c, cErr.RateLimitExceeded("rate limit exceeded"))
			return
		}
		end(nil)
		c.Next()
	}
}
