package response

import (
	cErr "keyhub/internal/pkg/error"

	"github.com/gin-gonic/gin"
)

// Response 所有 JSON 回應的外層；成功時 Code 為 0
type Response struct {
	RequestID   string `json:"requestID"`
	Code        int    `json:"code"`
	Data        any    `json:"data"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

// Success 把結果交給 Response middleware 封裝；gin.H 內的 "message" 會成為回應說明
func Success(c *gin.Context, data any) {
	stash(c, data, "Request Success")
}

func Create(c *gin.Context, data any) {
	stash(c, data, "Create Success")
}

func stash(c *gin.Context, data any, message string) {
	if h, ok := data.(gin.H); ok {
		if s, ok := h["message"].(string); ok && s != "" {
			message = s
			delete(h, "message")
		}
	}
	c.Set("data", data)
	c.Set("message", message)
	c.Abort()
}

// AbortWithError 交給 Recovery 統一輸出
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func Fail(c *gin.Context, requestID string, httpCode int, errorCode int, msg string, desc string) {
	c.AbortWithStatusJSON(httpCode, Response{
		RequestID:   requestID,
		Code:        errorCode,
		Message:     msg,
		Description: desc,
	})
}

// FailByErr 非 *cErr.Error 一律視為 500
func FailByErr(c *gin.Context, requestID string, err error) {
	v := cErr.From(err)
	Fail(c, requestID, v.HttpCode(), v.ErrorCode(), v.Error(), v.ErrorDesc())
}
