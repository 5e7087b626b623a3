package middleware

import (
	"keyhub/config"
	"keyhub/internal/core"
	"keyhub/internal/pkg/auth"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/pkg/response"
	"keyhub/internal/telemetry"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextAdminClaims = "adminClaims"
	ContextActor       = "actor"
)

type AdminAuth struct {
	logger *zap.Logger
	trace  *telemetry.Trace
	config *config.Configuration
}

func NewAdminAuth(logger *zap.Logger, trace *telemetry.Trace, config *config.Configuration) *AdminAuth {
	return &AdminAuth{logger: logger, trace: trace, config: config}
}

// Handler 驗證 Bearer JWT；roles 為空時任何已驗證角色皆可通過
func (middleware *AdminAuth) Handler(roles ...core.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanAdminAuthMiddleware))
		meta := core.TraceAdminAuthMeta{ClientIP: c.ClientIP()}

		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			meta.Status = "missing_token"
			middleware.trace.ApplyTraceAttributes(span, meta)
			end(nil)
			response.AbortWithError(c, cErr.Unauthorized("missing bearer token"))
			return
		}

		claims, err := auth.ParseAdminToken(middleware.config.App.SecretKey, raw)
		if err != nil {
			meta.Status = "invalid_token"
			middleware.trace.ApplyTraceAttributes(span, meta)
			middleware.logger.Warn("admin token rejected", zap.String("client_ip", meta.ClientIP), zap.Error(err))
			end(nil)
			response.AbortWithError(c, cErr.Unauthorized("invalid or expired token"))
			return
		}
		meta.Username, meta.Role = claims.Username, string(claims.Role)

		if len(roles) > 0 && !hasRole(claims.Role, roles) {
			meta.Status = "forbidden_role"
			middleware.trace.ApplyTraceAttributes(span, meta)
			end(nil)
			response.AbortWithError(c, cErr.Forbidden("role not allowed"))
			return
		}

		meta.Status = "ok"
		middleware.trace.ApplyTraceAttributes(span, meta)
		end(nil)
		c.Set(ContextAdminClaims, claims)
		c.Set(ContextActor, "admin:"+claims.Username)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func hasRole(role core.Role, allowed []core.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
