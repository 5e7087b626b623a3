package config

// Store 控制 KV 存取邊界（逾時與重試）
type Store struct {
	// key 命名空間前綴，預設 exhub（與既有資料相容）
	KeyPrefix string `mapstructure:"KEY_PREFIX" json:"keyPrefix" yaml:"keyPrefix"`
	// 單次呼叫逾時（毫秒）
	TimeoutMs int64 `mapstructure:"TIMEOUT_MS" json:"timeoutMs" yaml:"timeoutMs"`
	// 失敗後重試前的等待（毫秒），只重試一次
	RetryBackoffMs int64 `mapstructure:"RETRY_BACKOFF_MS" json:"retryBackoffMs" yaml:"retryBackoffMs"`
}
