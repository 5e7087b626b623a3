package middleware

import (
	"crypto/subtle"
	"keyhub/config"
	"keyhub/internal/core"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/pkg/response"
	"keyhub/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const HeaderBotToken = "X-Bot-Token"

// BotAuth 身分層（Discord bot）以共用密鑰呼叫
type BotAuth struct {
	trace  *telemetry.Trace
	config *config.Configuration
}

func NewBotAuth(trace *telemetry.Trace, config *config.Configuration) *BotAuth {
	return &BotAuth{trace: trace, config: config}
}

func (middleware *BotAuth) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanBotAuthMiddleware))
		expected := middleware.config.App.BotToken
		given := c.GetHeader(HeaderBotToken)

		// 未設定 bot token 時一律拒絕
		if expected == "" || subtle.ConstantTimeCompare([]byte(given), []byte(expected)) != 1 {
			span.SetAttributes(attribute.Bool("auth.bot", false))
			end(nil)
			response.AbortWithError(c, cErr.Unauthorized("invalid bot token"))
			return
		}
		span.SetAttributes(attribute.Bool("auth.bot", true))
		end(nil)
		c.Set(ContextActor, "bot")
		c.Next()
	}
}
