package config

// Fluentd forward 協定的 log shipping；Enabled=false 時改用 NoopClient
type Fluentd struct {
	Enabled   bool   `mapstructure:"ENABLED" json:"enabled" yaml:"enabled"`
	Host      string `mapstructure:"HOST" json:"host" yaml:"host"`
	Port      int    `mapstructure:"PORT" json:"port" yaml:"port"`
	TagPrefix string `mapstructure:"TAG_PREFIX" json:"tagPrefix" yaml:"tagPrefix"`
	// 毫秒
	Timeout int64 `mapstructure:"TIMEOUT" json:"timeout" yaml:"timeout"`
	// 非同步模式的緩衝上限（bytes），0 沿用函式庫預設
	BufferLimit int `mapstructure:"BUFFER_LIMIT" json:"bufferLimit" yaml:"bufferLimit"`
}
