package config

// KeyPolicy 是 key 期限的預設值；KV 內的設定文件可覆寫，最終一律經過夾限。
type KeyPolicy struct {
	FreeTTLHours     int `mapstructure:"FREE_TTL_HOURS" json:"freeTtlHours" yaml:"freeTtlHours"`
	PaidMonthDays    int `mapstructure:"PAID_MONTH_DAYS" json:"paidMonthDays" yaml:"paidMonthDays"`
	Paid3MonthDays   int `mapstructure:"PAID_3MONTH_DAYS" json:"paid3MonthDays" yaml:"paid3MonthDays"`
	Paid6MonthDays   int `mapstructure:"PAID_6MONTH_DAYS" json:"paid6MonthDays" yaml:"paid6MonthDays"`
	PaidLifetimeDays int `mapstructure:"PAID_LIFETIME_DAYS" json:"paidLifetimeDays" yaml:"paidLifetimeDays"`
	// 設定快取秒數（staleness bound）
	CacheSeconds int `mapstructure:"CACHE_SECONDS" json:"cacheSeconds" yaml:"cacheSeconds"`
}
