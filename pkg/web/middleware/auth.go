package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-reward/pkg/security"
	"github.com/lk2023060901/xdooria-reward/pkg/web/errors"
)

// BearerToken 读取 Authorization 头中的原始值
func BearerToken(c *gin.Context) string {
	return c.GetHeader("Authorization")
}

// RequireRole 仅允许 Claims 中角色匹配的请求, 需先由上游写入 Claims
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := security.GetClaimsFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(errors.CodeToStatus(errors.CodeUnAuthorized), gin.H{
				"code":     errors.CodeUnAuthorized,
				"message":  security.ErrTokenMissing.Error(),
				"data":     nil,
				"trace_id": GetRequestID(c),
			})
			return
		}
		if claims.Role != role {
			c.AbortWithStatusJSON(errors.CodeToStatus(errors.CodeForbidden), gin.H{
				"code":     errors.CodeForbidden,
				"message":  "forbidden",
				"data":     nil,
				"trace_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}
