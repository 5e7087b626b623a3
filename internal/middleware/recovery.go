package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"keyhub/config"
	"keyhub/internal/core"
	"keyhub/internal/database/fluentd/model"
	"keyhub/internal/database/fluentd/repository"
	cErr "keyhub/internal/pkg/error"
	res "keyhub/internal/pkg/response"
	"keyhub/internal/telemetry"
	"net/http"
	"runtime/debug"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Recovery struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	metric            *telemetry.Metric
	config            *config.Configuration
	fluentdRepository *repository.LogRepository
}

func NewRecovery(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	config *config.Configuration,
	fluentdRepository *repository.LogRepository,
) *Recovery {
	return &Recovery{
		logger:            logger,
		trace:             trace,
		metric:            metric,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

func (middleware *Recovery) ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestTime := startedAt(c)
		// ---- panic recover 必須在 c.Next() 之前註冊 ----
		defer func() {
			if rec := recover(); rec != nil {
				duration := time.Since(requestTime)

				ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRecoveryMiddleware))
				requestID := requestIDFor(c, span)

				meta := core.TracePanicMeta{
					Path:       c.Request.URL.Path,
					Method:     c.Request.Method,
					ClientIP:   c.ClientIP(),
					UserAgent:  c.Request.UserAgent(),
					DurationMs: float64(duration.Milliseconds()),
					Message:    toSafeString(fmt.Sprint(rec)),
					Stack:      toSafeStack(debug.Stack()),
					Status:     http.StatusInternalServerError,
				}
				middleware.trace.ApplyTraceAttributes(span, meta)

				middleware.logger.Error("[PANIC] Recovered",
					zap.String("path", meta.Path),
					zap.String("method", meta.Method),
					zap.String("client_ip", meta.ClientIP),
					zap.String("user_agent", meta.UserAgent),
					zap.Duration("duration", duration),
					zap.String("panic", meta.Message),
					zap.String("stacktrace", meta.Stack),
					zap.String("requestId", requestID),
				)

				appErr := cErr.InternalServer("unexpected panic")
				end(appErr)
				// 尚未回寫才輸出
				if !c.Writer.Written() {
					res.FailByErr(c, requestID, appErr)
				}
				middleware.ship(ctx, requestID, cErr.INTERNAL_ERROR, http.StatusInternalServerError, meta.Message)
				middleware.countFail(c, "panic", duration)
				c.Abort()
			}
		}()

		// 執行下游
		c.Next()

		// ---- 統一處理非 panic 的 gin errors（若尚未回寫）----
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		duration := time.Since(requestTime)

		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRecoveryMiddleware))
		requestID := requestIDFor(c, span)

		// 找第一個 *cErr.Error
		for _, e := range c.Errors {
			var appErr *cErr.Error
			if !errors.As(e.Err, &appErr) {
				continue
			}
			middleware.trace.ApplyTraceAttributes(span, core.TraceErrorMeta{
				Code:       appErr.ErrorCode(),
				Message:    appErr.Error(),
				Detail:     appErr.ErrorDesc(),
				DurationMs: float64(duration.Milliseconds()),
				Status:     appErr.HttpCode(),
			})
			middleware.logger.Warn(appErr.Error(),
				zap.Int("code", appErr.ErrorCode()),
				zap.String("data", appErr.ErrorDesc()),
				zap.String("path", c.Request.URL.Path),
				zap.Duration("duration", duration),
				zap.String("requestId", requestID),
			)
			// 4xx 屬預期結果，只有 5xx 標記 span 錯誤
			if appErr.HttpCode() >= http.StatusInternalServerError {
				end(appErr)
			} else {
				end(nil)
			}
			middleware.ship(ctx, requestID, appErr.ErrorCode(), appErr.HttpCode(), appErr.Error())
			middleware.countFail(c, appErr.Error(), duration)
			res.FailByErr(c, requestID, appErr)
			c.Abort()
			return
		}

		// 其餘未知錯誤
		unknown := c.Errors.String()
		middleware.trace.ApplyTraceAttributes(span, core.TraceErrorMeta{
			Code:       cErr.INTERNAL_ERROR,
			Message:    "unknown-error",
			Detail:     toSafeString(unknown),
			DurationMs: float64(duration.Milliseconds()),
			Status:     http.StatusInternalServerError,
		})
		middleware.logger.Warn("[ERROR] unknown",
			zap.String("error", unknown),
			zap.Duration("duration", duration),
			zap.String("requestId", requestID),
		)
		end(c.Errors.Last().Err)
		middleware.ship(ctx, requestID, cErr.INTERNAL_ERROR, http.StatusInternalServerError, toSafeString(unknown))
		middleware.countFail(c, "unknown", duration)
		res.Fail(c, requestID, http.StatusInternalServerError, cErr.INTERNAL_ERROR, "unknown-error", "unexpected error")
		c.Abort()
	}
}

func (middleware *Recovery) ship(ctx context.Context, requestID string, code, status int, message string) {
	responseMeta := model.ResponseLog{
		RequestID:  requestID,
		Service:    middleware.config.App.Name,
		Code:       code,
		StatusCode: status,
		Error:      message,
		ResponseTS: time.Now().UTC().Format("2006-01-02 15:04:05.999999 UTC"),
		Version:    middleware.config.App.Version,
	}
	if err := middleware.fluentdRepository.LogResponse(ctx, responseMeta); err != nil {
		middleware.logger.Debug("fluentd response log failed", zap.Error(err))
	}
}

func (middleware *Recovery) countFail(c *gin.Context, reason string, duration time.Duration) {
	if middleware.metric.ResponseFailTotal == nil || middleware.metric.HttpRequestDuration == nil {
		return
	}
	middleware.metric.ResponseFailTotal.WithLabelValues(reason).Inc()
	middleware.metric.HttpRequestDuration.WithLabelValues(c.FullPath()).Observe(duration.Seconds())
}

// ---- helpers ----

func toSafeString(s string) string {
	const max = 8000
	if utf8.ValidString(s) {
		if len(s) > max {
			return s[:max] + "…"
		}
		return s
	}
	b := []byte(s)
	if len(b) > max {
		b = b[:max]
	}
	return "b64:" + base64.StdEncoding.EncodeToString(b)
}

func toSafeStack(b []byte) string {
	const max = 16000
	if utf8.Valid(b) {
		if len(b) > max {
			return string(b[:max]) + "…"
		}
		return string(b)
	}
	if len(b) > max {
		b = b[:max]
	}
	return "b64:" + base64.StdEncoding.EncodeToString(b)
}
