package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"keyhub/config"
	"keyhub/internal/core"
	"keyhub/internal/database/fluentd/model"
	"keyhub/internal/database/fluentd/repository"
	"keyhub/internal/telemetry"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const bodyPreviewLimit = 2000

// 不寫進 log / trace 的標頭
var redactedHeaders = map[string]struct{}{
	"authorization": {},
	"x-bot-token":   {},
	"cookie":        {},
}

var binaryPrefixes = []string{"multipart/", "image/", "audio/", "video/"}

// Logger 請求進站紀錄：zap、span 屬性、fluentd
type Logger struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	config            *config.Configuration
	fluentdRepository *repository.LogRepository
}

func NewLogger(
	logger *zap.Logger,
	trace *telemetry.Trace,
	config *config.Configuration,
	fluentdRepository *repository.LogRepository,
) *Logger {
	return &Logger{
		logger:            logger,
		trace:             trace,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

func (m *Logger) LoggerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.FullPath()
		if untracedPath(endpoint) {
			c.Next()
			return
		}
		ctx, span, end := m.trace.WithSpan(c.Request.Context(), string(core.SpanLoggerMiddleware))
		requestID := requestIDFor(c, span)

		meta := core.LoggerRequestMeta{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			FullPath:   endpoint,
			Query:      c.Request.URL.RawQuery,
			Body:       previewBody(c.Request),
			Scheme:     c.Request.URL.Scheme,
			Host:       c.Request.Host,
			UserAgent:  c.Request.UserAgent(),
			ContentLen: c.Request.ContentLength,
			Proto:      c.Request.Proto,
			ClientIP:   c.ClientIP(),
			Headers:    loggableHeaders(c.Request.Header),
			Params:     make(map[string]string, len(c.Params)),
		}
		for _, p := range c.Params {
			meta.Params[p.Key] = p.Value
		}
		m.trace.ApplyTraceAttributes(span, meta)

		fields := []zap.Field{
			zap.String("method", meta.Method),
			zap.String("path", meta.Path),
			zap.Any("headers", meta.Headers),
			zap.String("requestId", requestID),
		}
		if meta.Query != "" {
			fields = append(fields, zap.String("query", meta.Query))
		}
		if len(meta.Params) > 0 {
			fields = append(fields, zap.Any("params", meta.Params))
		}
		if meta.Body != "" {
			fields = append(fields, zap.String("body", meta.Body))
		}
		m.logger.Info("[Request] "+meta.Method+" "+endpoint, fields...)

		if err := m.fluentdRepository.LogRequest(ctx, model.RequestLog{
			RequestID: requestID,
			Method:    meta.Method,
			Path:      meta.Path,
			Service:   m.config.App.Name,
			RequestTS: startedAt(c).UTC().Format("2006-01-02 15:04:05.999999 UTC"),
			Body:      meta.Body,
			IPHash:    hashClientIP(meta.ClientIP),
			UserAgent: meta.UserAgent,
			Version:   m.config.App.Version,
		}); err != nil {
			m.logger.Debug("fluentd request log failed", zap.Error(err))
		}
		end(nil)
		c.Next()
	}
}

// previewBody 讀出文字 body 後回填；二進位或壓縮內容只留標記
func previewBody(r *http.Request) string {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	// 壓縮過的 body 由 Decompress 在路由層解開
	encoded := r.Header.Get("Content-Encoding")
	if isBinaryContent(mediaType) || (encoded != "" && encoded != "identity") {
		if r.ContentLength > 0 {
			return fmt.Sprintf("(binary %s, %d bytes)", mediaType, r.ContentLength)
		}
		return fmt.Sprintf("(binary %s)", mediaType)
	}
	if r.Body == nil || r.ContentLength == 0 {
		return ""
	}
	data, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(data))
	return toSafePreview(data, bodyPreviewLimit)
}

func loggableHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		key := strings.ToLower(k)
		if _, secret := redactedHeaders[key]; secret {
			out[key] = "[redacted]"
			continue
		}
		out[key] = strings.Join(v, ",")
	}
	return out
}

// 非 UTF-8 以 base64 表示
func toSafePreview(b []byte, max int) string {
	if len(b) == 0 {
		return ""
	}
	if len(b) > max {
		if utf8.Valid(b) {
			return string(b[:max]) + "…"
		}
		b = b[:max]
	}
	if utf8.Valid(b) {
		return string(b)
	}
	return "b64:" + base64.StdEncoding.EncodeToString(b)
}

func isBinaryContent(mediaType string) bool {
	if mediaType == "application/octet-stream" {
		return true
	}
	for _, prefix := range binaryPrefixes {
		if strings.HasPrefix(mediaType, prefix) {
			return true
		}
	}
	return false
}

// 只保留 IP 的雜湊，log 不落明文
func hashClientIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
