package telemetry

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"keyhub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecordingTrace() (*Trace, *tracetest.SpanRecorder) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return &Trace{TracerProvider: tp, ServiceName: "keyhub-test"}, rec
}

func TestPrettifyFuncName(t *testing.T) {
	cases := map[string]string{
		"keyhub/internal/service.(*KeyService).Renew":        "KeyService.Renew",
		"keyhub/internal/handler.(*KeyHandler).Create-fm":    "KeyHandler.Create",
		"keyhub/internal/service.(*KeyService).Create.func1": "KeyService.Create",
		"keyhub/internal/telemetry.TestSomething":            "TestSomething",
		"":                                                   "unknown",
	}
	for in, want := range cases {
		assert.Equal(t, want, prettifyFuncName(in), in)
	}
}

func TestWithSpanNamesFromCaller(t *testing.T) {
	tr, rec := newRecordingTrace()

	_, _, end := tr.WithSpan(context.Background())
	end(errors.New("store down"))

	_, _, end = tr.WithSpan(context.Background(), "custom")
	end(nil)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "TestWithSpanNamesFromCaller", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "custom", spans[1].Name())
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}

func TestApplyTraceAttributes(t *testing.T) {
	type inner struct {
		Tier string `trace:"key.tier"`
	}
	type meta struct {
		Token   string            `trace:"key.token"`
		Count   int               `trace:"key.count"`
		Tags    []string          `trace:"key.tags"`
		Inner   *inner            `trace:"key.inner"`
		Labels  map[string]string `trace:"key.label"`
		Ignored string
	}
	tr, rec := newRecordingTrace()
	_, span, end := tr.WithSpan(context.Background(), "attrs")
	tr.ApplyTraceAttributes(span, meta{
		Token:   "EXHUBPAID-AAAA-BBBB-CCCC",
		Count:   3,
		Tags:    []string{"a", "b"},
		Inner:   &inner{Tier: "paid"},
		Labels:  map[string]string{"plan": "month"},
		Ignored: "x",
	})
	end(nil)

	got := map[attribute.Key]attribute.Value{}
	for _, kv := range rec.Ended()[0].Attributes() {
		got[kv.Key] = kv.Value
	}
	assert.Equal(t, "EXHUBPAID-AAAA-BBBB-CCCC", got["key.token"].AsString())
	assert.Equal(t, int64(3), got["key.count"].AsInt64())
	assert.Equal(t, []string{"a", "b"}, got["key.tags"].AsStringSlice())
	assert.Equal(t, "paid", got["key.tier"].AsString())
	assert.Equal(t, "month", got["key.label.plan"].AsString())
	assert.Len(t, got, 5)
}

func TestNoopTraceIsSafe(t *testing.T) {
	var tr *Trace
	_, span, end := (&Trace{}).WithSpan(context.Background())
	assert.False(t, span.SpanContext().IsValid())
	end(errors.New("ignored"))
	assert.NoError(t, tr.Shutdown(context.Background()))
	assert.Equal(t, "AlwaysOnSampler", samplerFor(0).Description())
}

func TestNewTraceAcceptsCloudTraceHeader(t *testing.T) {
	previous := otel.GetTextMapPropagator()
	t.Cleanup(func() { otel.SetTextMapPropagator(previous) })

	conf := &config.Configuration{}
	conf.App.Name = "keyhub-test"
	conf.Telemetry.Trace.Enabled = true
	conf.Telemetry.Trace.EndpointUrl = "http://127.0.0.1:4318/v1/traces"
	tr, err := NewTrace(conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })
	require.NotNil(t, tr.TracerProvider)

	header := http.Header{}
	header.Set("X-Cloud-Trace-Context", "105445aa7843bc8bf206b12000100000/1;o=1")
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), propagation.HeaderCarrier(header))

	sc := trace.SpanContextFromContext(ctx)
	assert.True(t, sc.IsValid())
	assert.Equal(t, "105445aa7843bc8bf206b12000100000", sc.TraceID().String())
}
