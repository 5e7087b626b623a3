package config

type Configuration struct {
	App       App             `mapstructure:"APP" json:"app" yaml:"app"`
	Redis     Redis           `mapstructure:"REDIS" json:"redis" yaml:"redis"`
	Log       Log             `mapstructure:"LOG" json:"log" yaml:"log"`
	MongoDB   MongoDB         `mapstructure:"MONGODB" json:"mongodb" yaml:"mongodb"`
	Telemetry TelemetryConfig `mapstructure:"TELEMETRY" yaml:"telemetry"`
	Fluentd   Fluentd         `mapstructure:"FLUENTD" yaml:"fluentd"`
	Store     Store           `mapstructure:"STORE" json:"store" yaml:"store"`
	KeyPolicy KeyPolicy       `mapstructure:"KEY_POLICY" json:"key_policy" yaml:"key_policy"`
	Retention Retention       `mapstructure:"RETENTION" json:"retention" yaml:"retention"`
	RateLimit RateLimit       `mapstructure:"RATE_LIMIT" json:"rate_limit" yaml:"rate_limit"`
}
