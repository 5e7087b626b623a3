package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"keyhub/config"
	"keyhub/internal/core"
	"keyhub/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceEntry 每個請求的 server span，並記錄 Prometheus 請求數與延遲
type TraceEntry struct {
	trace  *telemetry.Trace
	metric *telemetry.Metric
	conf   *config.Configuration
}

func NewTraceEntry(trace *telemetry.Trace, metric *telemetry.Metric, conf *config.Configuration) *TraceEntry {
	return &TraceEntry{trace: trace, metric: metric, conf: conf}
}

func (m *TraceEntry) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if untracedPath(route) {
			c.Next()
			return
		}
		start := time.Now().UTC()
		c.Set(requestStartKey, start)

		parent := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		// 以路由樣板命名，token 等參數不進 span 名稱
		ctx, span := m.trace.Start(parent, c.Request.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		c.Request = c.Request.WithContext(ctx)
		c.Set(core.ContextTraceKey, ctx)

		meta := m.serverMeta(c, route)
		meta.SpanTraceID = span.SpanContext().TraceID().String()
		m.trace.ApplyTraceAttributes(span, &meta)

		c.Next()

		status := c.Writer.Status()
		meta.HttpStatusCode = status
		m.trace.ApplyTraceAttributes(span, &meta)

		var spanErr error
		if status >= http.StatusInternalServerError && len(c.Errors) > 0 {
			spanErr = c.Errors.Last().Err
		}
		if m.metric.HttpRequestsTotal != nil && m.metric.HttpRequestDuration != nil {
			m.metric.HttpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
			m.metric.HttpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
		m.trace.EndSpan(span, spanErr)
	}
}

func (m *TraceEntry) serverMeta(c *gin.Context, route string) core.TraceHttpServerMeta {
	meta := core.TraceHttpServerMeta{
		ClientAddr:        c.ClientIP(),
		HttpRequestMethod: c.Request.Method,
		HttpRoute:         route,
		UrlPath:           c.Request.URL.Path,
		UrlScheme:         "http",
		UserAgent:         c.Request.UserAgent(),
		ServerAddress:     m.conf.App.Name,
		NetworkProtoVer:   c.Request.Proto,
		SpanKind:          "server",
	}
	if c.Request.TLS != nil {
		meta.UrlScheme = "https"
	}
	host, port, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		meta.NetworkPeerAddr = c.ClientIP()
		return meta
	}
	meta.NetworkPeerAddr = host
	meta.NetworkPeerPort, _ = strconv.Atoi(port)
	return meta
}
