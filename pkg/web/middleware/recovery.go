package middleware

import (
	stderrors "errors"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/web/errors"
)

// PanicReporter 上报 panic (如 Sentry), 可为 nil
type PanicReporter func(c *gin.Context, recovered any)

// Recovery 适配 pkg/logger 的异常恢复中间件
func Recovery(l logger.Logger, report PanicReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			if isBrokenPipe(r) {
				l.WarnContext(c.Request.Context(), "http broken pipe", "error", r, "path", c.Request.URL.Path)
				c.Abort()
				return
			}

			l.ErrorContext(c.Request.Context(), "http recovery from panic",
				"panic", r,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			if report != nil {
				report(c, r)
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":     errors.CodeInternalError,
				"message":  "internal server error",
				"data":     nil,
				"trace_id": GetRequestID(c),
			})
		}()
		c.Next()
	}
}

func isBrokenPipe(r any) bool {
	err, ok := r.(error)
	if !ok {
		return false
	}
	var ne *net.OpError
	if !stderrors.As(err, &ne) {
		return false
	}
	var se *os.SyscallError
	if !stderrors.As(ne.Err, &se) {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
