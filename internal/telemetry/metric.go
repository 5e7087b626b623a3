package telemetry

import (
	"keyhub/config"
	"keyhub/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric struct
type Metric struct {
	HttpRequestsTotal    *prometheus.CounterVec
	HttpRequestDuration  *prometheus.HistogramVec
	ResponseSuccessTotal *prometheus.CounterVec
	ResponseFailTotal    *prometheus.CounterVec
	ValidationsTotal     *prometheus.CounterVec
	KeyEventsTotal       *prometheus.CounterVec
	ExecutionsTotal      *prometheus.CounterVec
	StorageErrorsTotal   *prometheus.CounterVec
	RateLimitedTotal     *prometheus.CounterVec
	config               *config.Configuration
}

// NewMetric 建立所有指標
func NewMetric(config *config.Configuration) *Metric {
	if config == nil || !config.Telemetry.Metric.Enabled {
		return &Metric{}
	}
	buckets := prometheus.DefBuckets
	if len(config.Telemetry.Metric.Buckets) > 0 {
		buckets = config.Telemetry.Metric.Buckets
	}
	name := func(m core.MetricName) string {
		return config.App.Name + "_" + string(m)
	}
	return &Metric{
		config: config,
		HttpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricHttpRequestsTotal),
				Help: "Total received API requests",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		HttpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    name(core.MetricHttpRequestDuration),
				Help:    "Request handling duration (seconds)",
				Buckets: buckets,
			},
			labelNames(core.MetricLabelEndpoint),
		),
		ResponseSuccessTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricResponseSuccessTotal),
				Help: "Successful responses",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		ResponseFailTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricResponseFailTotal),
				Help: "Failed responses by error slug",
			},
			labelNames(core.MetricLabelReason),
		),
		ValidationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricValidationsTotal),
				Help: "Key validation outcomes",
			},
			labelNames(core.MetricLabelTier, core.MetricLabelReason),
		),
		KeyEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricKeyEventsTotal),
				Help: "Key lifecycle events",
			},
			labelNames(core.MetricLabelTier, core.MetricLabelEvent),
		),
		ExecutionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricExecutionsTotal),
				Help: "Recorded script executions",
			},
			labelNames(core.MetricLabelKind),
		),
		StorageErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricStorageErrorsTotal),
				Help: "Key-value store failures",
			},
			labelNames(core.MetricLabelOp, core.MetricLabelKind),
		),
		RateLimitedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricRateLimitTotal),
				Help: "Requests rejected by the per-IP limiter",
			},
			labelNames(core.MetricLabelEndpoint),
		),
	}
}

// labelNames helper: LabelName slice 轉成 []string
func labelNames(labels ...core.MetricLabelName) []string {
	strs := make([]string, len(labels))
	for i, l := range labels {
		strs[i] = string(l)
	}
	return strs
}
