package middleware

import (
	"keyhub/config"
	"keyhub/internal/core"
	"keyhub/internal/telemetry"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Cors struct {
	trace *telemetry.Trace
	cfg   cors.Config
}

type corsMeta struct {
	AllowOrigins []string `trace:"http.cors.allow_origins"`
	AllowCreds   bool     `trace:"http.cors.allow_credentials"`
	Preflight    bool     `trace:"http.cors.preflight"`
}

func NewCors(trace *telemetry.Trace, conf *config.Configuration) *Cors {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "Content-Encoding", "Authorization", "X-Bot-Token"},
		ExposeHeaders: []string{
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After",
		},
		MaxAge: 12 * time.Hour,
	}
	// 萬用來源不可搭配 credentials
	if len(conf.App.CorsOrigins) > 0 {
		cfg.AllowOrigins = conf.App.CorsOrigins
		cfg.AllowCredentials = true
	} else {
		cfg.AllowAllOrigins = true
	}
	return &Cors{trace: trace, cfg: cfg}
}

// CorsHandler 不追蹤的路徑仍需套用 CORS，preflight 才不會失敗
func (m *Cors) CorsHandler() gin.HandlerFunc {
	apply := cors.New(m.cfg)
	origins := m.cfg.AllowOrigins
	if m.cfg.AllowAllOrigins {
		origins = []string{"*"}
	}

	return func(c *gin.Context) {
		if untracedPath(c.FullPath()) {
			apply(c)
			return
		}
		_, span, end := m.trace.WithSpan(c.Request.Context(), string(core.SpanCorsMiddleware))
		m.trace.ApplyTraceAttributes(span, corsMeta{
			AllowOrigins: origins,
			AllowCreds:   m.cfg.AllowCredentials,
			Preflight:    c.Request.Method == http.MethodOptions,
		})
		end(nil)
		apply(c)
	}
}
