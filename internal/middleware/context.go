package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	requestStartKey = "requestDuration"
	requestIDKey    = "requestId"
)

// 這些路徑不做 tracing 與回應封裝
var untracedPrefixes = []string{"/swagger", "/metrics", "/version", "/health"}

func untracedPath(endpoint string) bool {
	for _, prefix := range untracedPrefixes {
		if strings.HasPrefix(endpoint, prefix) {
			return true
		}
	}
	return false
}

func startedAt(c *gin.Context) time.Time {
	if t, ok := c.Value(requestStartKey).(time.Time); ok {
		return t
	}
	now := time.Now().UTC()
	c.Set(requestStartKey, now)
	return now
}

// requestIDFor 同一請求只產生一次；有 trace 用 trace id，否則 UUIDv7
func requestIDFor(c *gin.Context, span trace.Span) string {
	if id, ok := c.Value(requestIDKey).(string); ok && id != "" {
		return id
	}
	var id string
	if traceID := span.SpanContext().TraceID(); traceID.IsValid() {
		id = traceID.String()
	} else if v7, err := uuid.NewV7(); err == nil {
		id = v7.String()
	} else {
		id = uuid.NewString()
	}
	c.Set(requestIDKey, id)
	return id
}
