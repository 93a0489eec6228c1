package web

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-reward/pkg/web/errors"
	"github.com/lk2023060901/xdooria-reward/pkg/web/middleware"
)

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 提示信息
	Data    any    `json:"data"`    // 数据载体
	TraceID string `json:"trace_id,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(errors.CodeToStatus(errors.CodeOK), Response{
		Code:    errors.CodeOK,
		Message: "ok",
		Data:    data,
		TraceID: middleware.GetRequestID(c),
	})
}

// Fail 错误响应, HTTP 状态码由业务错误码决定
func Fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(errors.CodeToStatus(code), Response{
		Code:    code,
		Message: message,
		TraceID: middleware.GetRequestID(c),
	})
}
