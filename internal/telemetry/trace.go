package telemetry

import (
	"context"
	"fmt"
	"keyhub/config"
	"keyhub/internal/core"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/GoogleCloudPlatform/opentelemetry-operations-go/propagator"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Trace 關閉追蹤時 TracerProvider 為 nil，所有 span 都是 noop
type Trace struct {
	TracerProvider *sdktrace.TracerProvider
	ServiceName    string
}

var noopTracer = noop.NewTracerProvider().Tracer("noop")

func NewTrace(conf *config.Configuration) (*Trace, error) {
	if conf == nil || !conf.Telemetry.Trace.Enabled {
		return &Trace{}, nil
	}
	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithEndpointURL(conf.Telemetry.Trace.EndpointUrl),
		otlptracehttp.WithRetry(otlptracehttp.RetryConfig{
			Enabled:         true,
			InitialInterval: 5 * time.Second,
			MaxInterval:     10 * time.Second,
			MaxElapsedTime:  60 * time.Second,
		}),
		otlptracehttp.WithTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(samplerFor(conf.Telemetry.Trace.SampleRatio)),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(conf.App.Name),
			semconv.ServiceVersion(conf.App.Version),
		)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
			propagator.CloudTraceOneWayPropagator{},
		),
	)
	return &Trace{
		TracerProvider: tp,
		ServiceName:    conf.App.Name,
	}, nil
}

func samplerFor(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// Shutdown 送出尚未匯出的 span
func (t *Trace) Shutdown(ctx context.Context) error {
	if t == nil || t.TracerProvider == nil {
		return nil
	}
	return t.TracerProvider.Shutdown(ctx)
}

func (t *Trace) tracer() trace.Tracer {
	if t == nil || t.TracerProvider == nil {
		return noopTracer
	}
	return t.TracerProvider.Tracer(t.ServiceName)
}

// Start 以指定名稱開 span
func (t *Trace) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer().Start(ctx, name, opts...)
}

// WithSpan handler 傳 *gin.Context，service / repository 傳 context.Context。
// 未指定名稱時 handler 以 handler 名稱、其他以呼叫者方法名命名。
func (t *Trace) WithSpan(parent any, name ...string) (context.Context, trace.Span, func(error)) {
	override := ""
	if len(name) > 0 {
		override = strings.TrimSpace(name[0])
	}

	var (
		ctx  context.Context
		span trace.Span
	)
	switch p := parent.(type) {
	case *gin.Context:
		if override == "" {
			override = spanNameFromGin(p)
		}
		ctx, span = t.Start(t.Context(p), override)
		p.Set(core.ContextTraceKey, ctx)
	case context.Context:
		if override == "" {
			override = prettifyFuncName(callerFuncName(2))
		}
		ctx, span = t.Start(p, override)
	default:
		if override == "" {
			override = "unknown"
		}
		ctx, span = t.Start(context.Background(), override)
	}
	return ctx, span, func(err error) { t.EndSpan(span, err) }
}

// EndSpan err 不為 nil 時標記 span 錯誤
func (t *Trace) EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Context 取得 TraceEntry 放進 gin 的最新 ctx
func (t *Trace) Context(c *gin.Context) context.Context {
	if v, ok := c.Get(core.ContextTraceKey); ok {
		if ctx, ok := v.(context.Context); ok {
			return ctx
		}
	}
	return c.Request.Context()
}

// ApplyTraceAttributes 依 `trace:"..."` tag 把欄位寫成 span 屬性；巢狀 struct 與指標會展開
func (t *Trace) ApplyTraceAttributes(span trace.Span, obj any) {
	if span == nil || obj == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			span.RecordError(fmt.Errorf("ApplyTraceAttributes panic: %v", r))
		}
	}()
	if kvs := traceAttributes(reflect.ValueOf(obj), nil); len(kvs) > 0 {
		span.SetAttributes(kvs...)
	}
}

func traceAttributes(val reflect.Value, kvs []attribute.KeyValue) []attribute.KeyValue {
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return kvs
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return kvs
	}
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("trace")
		field := val.Field(i)
		if tag == "" || !field.CanInterface() {
			continue
		}
		switch field.Kind() {
		case reflect.Struct, reflect.Ptr:
			kvs = traceAttributes(field, kvs)
		case reflect.Slice, reflect.Array:
			if field.Type().Elem().Kind() == reflect.String {
				strs := make([]string, field.Len())
				for j := range strs {
					strs[j] = field.Index(j).String()
				}
				kvs = append(kvs, attribute.StringSlice(tag, strs))
			}
		case reflect.Map:
			if field.Type().Key().Kind() != reflect.String {
				continue
			}
			iter := field.MapRange()
			for iter.Next() {
				if kv, ok := scalarAttribute(tag+"."+iter.Key().String(), iter.Value()); ok {
					kvs = append(kvs, kv)
				}
			}
		default:
			if kv, ok := scalarAttribute(tag, field); ok {
				kvs = append(kvs, kv)
			}
		}
	}
	return kvs
}

func scalarAttribute(key string, v reflect.Value) (attribute.KeyValue, bool) {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.String:
		return attribute.String(key, v.String()), true
	case reflect.Bool:
		return attribute.Bool(key, v.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return attribute.Int64(key, v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return attribute.Int64(key, int64(v.Uint())), true
	case reflect.Float32, reflect.Float64:
		return attribute.Float64(key, v.Float()), true
	}
	return attribute.KeyValue{}, false
}

// ==== 名稱處理 ====

// prettifyFuncName "keyhub/internal/service.(*KeyService).Renew-fm" -> "KeyService.Renew"
func prettifyFuncName(full string) string {
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	full = strings.TrimSuffix(full, "-fm")
	if i := strings.LastIndex(full, ".func"); i >= 0 {
		full = full[:i]
	}
	if i := strings.Index(full, "·"); i >= 0 {
		full = full[:i]
	}
	if i := strings.Index(full, "."); i >= 0 {
		full = full[i+1:]
	}
	full = strings.NewReplacer("(*", "", "(", "", ")", "").Replace(full)
	if i := strings.Index(full, "["); i >= 0 {
		if j := strings.Index(full, "]"); j > i {
			full = full[:i] + full[j+1:]
		}
	}
	if full == "" {
		return "unknown"
	}
	return full
}

func spanNameFromGin(c *gin.Context) string {
	if hn := c.HandlerName(); hn != "" {
		return prettifyFuncName(hn)
	}
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return c.Request.Method + " " + route
}

func callerFuncName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		return fn.Name()
	}
	return ""
}
