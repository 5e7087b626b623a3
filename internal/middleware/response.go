package middleware

import (
	"encoding/json"
	"fmt"
	"keyhub/config"
	"keyhub/internal/core"
	"keyhub/internal/database/fluentd/model"
	"keyhub/internal/database/fluentd/repository"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/pkg/response"
	"keyhub/internal/telemetry"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const previewLimit = 2000

// Response 把 handler 以 c.Set("data") 留下的結果包成統一回應格式
type Response struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	metric            *telemetry.Metric
	config            *config.Configuration
	fluentdRepository *repository.LogRepository
}

func NewResponse(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	config *config.Configuration,
	fluentdRepository *repository.LogRepository,
) *Response {
	return &Response{
		logger:            logger,
		trace:             trace,
		metric:            metric,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

func (middleware *Response) FormatHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.FullPath()
		if untracedPath(endpoint) {
			c.Next()
			return
		}
		requestTime := startedAt(c)

		c.Next()

		// 錯誤由 Recovery 輸出
		if len(c.Errors) > 0 || c.Writer.Written() {
			return
		}
		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			response.AbortWithError(c, cErr.MapHttpStatusToError(status, "request error"))
			return
		}

		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanResponseMiddleware))
		defer end(nil)

		data, _ := c.Get("data")
		if data == nil {
			data = map[string]any{}
		}
		message := "Request Success"
		if s, ok := c.Value("message").(string); ok && s != "" {
			message = s
		}
		requestID := requestIDFor(c, span)
		duration := time.Since(requestTime)

		body, err := json.Marshal(response.Response{
			RequestID:   requestID,
			Data:        data,
			Message:     "OK",
			Description: message,
		})
		if err != nil {
			response.AbortWithError(c, cErr.InternalServer("marshal response failed"))
			return
		}

		middleware.trace.ApplyTraceAttributes(span, core.TraceResponseMeta{
			Path:       c.Request.URL.Path,
			Method:     c.Request.Method,
			Status:     status,
			Message:    message,
			DurationMs: float64(duration.Milliseconds()),
			Data:       previewJSON(data, previewLimit),
		})
		middleware.logger.Info("[Response] "+message,
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("requestId", requestID),
		)
		// 回應本體可能含 key token，不送 fluentd
		if err := middleware.fluentdRepository.LogResponse(ctx, model.ResponseLog{
			RequestID:  requestID,
			Service:    middleware.config.App.Name,
			StatusCode: status,
			ResponseTS: time.Now().UTC().Format("2006-01-02 15:04:05.999999 UTC"),
			Version:    middleware.config.App.Version,
		}); err != nil {
			middleware.logger.Debug("fluentd response log failed", zap.Error(err))
		}
		if middleware.metric.ResponseSuccessTotal != nil && middleware.metric.HttpRequestDuration != nil {
			middleware.metric.ResponseSuccessTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
			middleware.metric.HttpRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
		}

		c.Writer.Header().Set("Content-Type", "application/json")
		c.Writer.WriteHeader(status)
		if _, err := c.Writer.Write(body); err != nil {
			middleware.logger.Warn("write response failed", zap.Error(err), zap.String("requestId", requestID))
		}
	}
}

// previewJSON 序列化後截斷，只給 span 屬性用
func previewJSON(data any, max int) string {
	var out string
	if s, ok := data.(string); ok {
		out = s
	} else if b, err := json.Marshal(data); err == nil {
		out = string(b)
	} else {
		out = fmt.Sprintf("[marshal error: %v]", err)
	}
	if len(out) > max {
		return out[:max] + "…"
	}
	return out
}
