package web

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/lk2023060901/xdooria-reward/pkg/web/errors"
)

// BindJSON 绑定 JSON 请求体并校验, 失败时已写入错误响应
func BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			Fail(c, errors.CodeInvalidParams, verrs.Error())
			return false
		}
		Fail(c, errors.CodeInvalidParams, "invalid request parameters: "+err.Error())
		return false
	}
	return true
}
