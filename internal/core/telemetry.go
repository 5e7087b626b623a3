package core

const ContextTraceKey = "telemetry_trace_ctx"

// ==== 型別安全 span name ====
// 專案全域建議都寫這裡，方便集中管理
type TraceSpanName string

const (
	SpanHttpRequest          TraceSpanName = "http_request"
	SpanLoggerMiddleware     TraceSpanName = "logger_middleware"
	SpanRecoveryMiddleware   TraceSpanName = "recovery_middleware"
	SpanCorsMiddleware       TraceSpanName = "cors_middleware"
	SpanResponseMiddleware   TraceSpanName = "response_middleware"
	SpanAdminAuthMiddleware  TraceSpanName = "admin_auth_middleware"
	SpanBotAuthMiddleware    TraceSpanName = "bot_auth_middleware"
	SpanRateLimitMiddleware  TraceSpanName = "ratelimit_middleware"
	SpanDecompressMiddleware TraceSpanName = "decompress_middleware"
	SpanCronConfigRefresh    TraceSpanName = "cron_config_refresh"
	SpanCronRetention        TraceSpanName = "cron_execution_retention"
)

// 指標名稱常數
type MetricName string

const (
	MetricHttpRequestsTotal    MetricName = "requests_total"
	MetricHttpRequestDuration  MetricName = "request_duration_seconds"
	MetricResponseSuccessTotal MetricName = "response_success_total"
	MetricResponseFailTotal    MetricName = "response_fail_total"
	MetricValidationsTotal     MetricName = "key_validations_total"
	MetricKeyEventsTotal       MetricName = "key_events_total"
	MetricExecutionsTotal      MetricName = "executions_total"
	MetricStorageErrorsTotal   MetricName = "storage_errors_total"
	MetricRateLimitTotal       MetricName = "rate_limited_total"
)

// label name 常數
type MetricLabelName string

const (
	MetricLabelEndpoint MetricLabelName = "endpoint"
	MetricLabelStatus   MetricLabelName = "status"
	MetricLabelReason   MetricLabelName = "reason"
	MetricLabelTier     MetricLabelName = "tier"
	MetricLabelEvent    MetricLabelName = "event"
	MetricLabelOp       MetricLabelName = "op"
	MetricLabelKind     MetricLabelName = "kind"
)

type LoggerRequestMeta struct {
	Method     string            `trace:"request.method"`
	Path       string            `trace:"request.path"`
	FullPath   string            `trace:"request.full_path"`
	Query      string            `trace:"request.query"`
	Body       string            `trace:"request.body"`
	Scheme     string            `trace:"http.scheme"`
	Host       string            `trace:"http.host"`
	UserAgent  string            `trace:"http.user_agent"`
	ContentLen int64             `trace:"http.request_content_length"`
	Proto      string            `trace:"http.flavor"`
	ClientIP   string            `trace:"net.peer.ip"`
	Headers    map[string]string `trace:"http.request.header"`
	Params     map[string]string `trace:"http.request.param"`
}

// 供 KV 存取邊界使用
type TraceKVMeta struct {
	Op       string `trace:"kv.op"` // get / set / del / sadd / smembers / srem
	Key      string `trace:"kv.key"`
	Members  int    `trace:"kv.members"`
	Attempts int    `trace:"kv.attempts"`
	Outcome  string `trace:"kv.outcome"`
}

// 供 Redis 限流使用
type TraceRateLimitMeta struct {
	ClientIP  string `trace:"rl.client_ip"`
	Scope     string `trace:"rl.scope"`
	Limit     int    `trace:"rl.limit_count"`
	WindowSec int64  `trace:"rl.window_sec"`
	Remaining int    `trace:"rl.remaining"`
	TTL       int64  `trace:"rl.ttl_sec"`
	Blocked   bool   `trace:"rl.blocked"`
}

type TraceKeyMeta struct {
	Op      string `trace:"key.op"`
	Token   string `trace:"key.token"`
	Tier    string `trace:"key.tier"`
	Plan    string `trace:"key.plan"`
	OwnerID string `trace:"key.owner_id"`
	Count   int    `trace:"result.count"`
	Outcome string `trace:"key.outcome"`
}

type TraceValidationMeta struct {
	Token        string `trace:"validation.token"`
	Tier         string `trace:"validation.tier"`
	HasIdentity  bool   `trace:"validation.has_identity"`
	Valid        bool   `trace:"validation.valid"`
	Reason       string `trace:"validation.reason"`
	BindingWrite bool   `trace:"validation.binding_write"`
}

type TraceExecutionMeta struct {
	ScriptID string `trace:"exec.script_id"`
	UserID   string `trace:"exec.user_id"`
	DeviceID string `trace:"exec.device_id"`
	Total    int64  `trace:"exec.total"`
	Created  bool   `trace:"exec.created"`
}

type TraceAdminAuthMeta struct {
	Username string `trace:"auth.username"`
	Role     string `trace:"auth.role"`
	ClientIP string `trace:"net.peer.ip"`
	Status   string `trace:"auth.status"`
}

type TracePanicMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	ClientIP   string  `trace:"net.peer.ip"`
	UserAgent  string  `trace:"http.user_agent"`
	DurationMs float64 `trace:"response.latency_ms"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"error.message"`
	Stack      string  `trace:"error.stack"`
}

type TraceErrorMeta struct {
	Code       int     `trace:"error.code"`
	Message    string  `trace:"error.message"`
	Detail     string  `trace:"error.detail"`
	Status     int     `trace:"http.status_code"`
	DurationMs float64 `trace:"response.latency_ms"`
}

type TraceResponseMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"response.message"`
	Code       int     `trace:"response.code"`
	DurationMs float64 `trace:"response.latency_ms"`
	Data       string  `trace:"response.data_preview"`
}
type TraceHttpServerMeta struct {
	// request side
	ClientAddr        string `trace:"client.address"`
	HttpRequestMethod string `trace:"http.request.method"`
	HttpRoute         string `trace:"http.route"`
	UrlPath           string `trace:"http.request.path"`
	UrlScheme         string `trace:"http.request.url.scheme"`
	UserAgent         string `trace:"user_agent.original"`
	ServerAddress     string `trace:"server.address"`
	NetworkPeerAddr   string `trace:"network.peer.address"`
	NetworkPeerPort   int    `trace:"network.peer.port"`
	NetworkProtoVer   string `trace:"network.protocol.version"`
	SpanKind          string `trace:"span.kind"`
	SpanTraceID       string `trace:"span.trace_id"`
	HttpStatusCode    int    `trace:"http.response.status_code"`
}
