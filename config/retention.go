package config

type Retention struct {
	// 執行紀錄保留天數，0 = 永久保留
	ExecutionDays int `mapstructure:"EXECUTION_DAYS" json:"executionDays" yaml:"executionDays"`
	// cron 表達式（含秒）
	Schedule string `mapstructure:"SCHEDULE" json:"schedule" yaml:"schedule"`
}

type RateLimit struct {
	// 公開端點每個 IP 每分鐘可用次數，0 = 不限流
	PerMinute int `mapstructure:"PER_MINUTE" json:"perMinute" yaml:"perMinute"`
}
