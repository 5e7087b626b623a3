package config

type App struct {
	Env     string `mapstructure:"ENV" json:"env" yaml:"env"`
	Port    uint32 `mapstructure:"PORT" json:"port" yaml:"port"`
	Name    string `mapstructure:"NAME" json:"name" yaml:"name"`
	Version string `mapstructure:"VERSION" json:"version" yaml:"version"`
	// 簽發與驗證管理員 JWT
	SecretKey string `mapstructure:"SECRET_KEY" json:"secret_key" yaml:"secret_key"`
	// Discord bot 等身分層呼叫 /api/bot 用
	BotToken       string `mapstructure:"BOT_TOKEN" json:"bot_token" yaml:"bot_token"`
	SwaggerEnabled bool   `mapstructure:"SWAGGER_ENABLED" json:"swagger_enabled" yaml:"swagger_enabled"`
	// 空值代表允許任何來源（不帶 credentials）
	CorsOrigins []string `mapstructure:"CORS_ORIGINS" json:"cors_origins" yaml:"cors_origins"`
}

func (app App) IsProduction() bool {
	return app.Env == "production" || app.Env == "prod"
}
