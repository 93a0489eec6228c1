package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-reward/pkg/prometheus"
)

// Metrics 接口监控中间件, 指标注册到给定的 Prometheus 客户端
func Metrics(client *prometheus.Client) (gin.HandlerFunc, error) {
	requests, err := client.NewCounter("http_requests_total", "Total number of HTTP requests.", []string{"path", "method", "status"})
	if err != nil {
		return nil, err
	}
	duration, err := client.NewHistogram("http_request_duration_seconds", "HTTP request latency in seconds.", []string{"path", "method"}, nil)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// 使用路由定义的路径, 避免标签基数膨胀
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		requests.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		duration.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}, nil
}
