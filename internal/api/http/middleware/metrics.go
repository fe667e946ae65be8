package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polymesh/engine/pkg/interfaces/infrastructure/metrics"
)

// Metrics 请求指标中间件
//
// 以路由模板作为 path 标签，未匹配路由统一记为 "unmatched"。
func Metrics(recorder metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if recorder == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		recorder.ObserveHTTP(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
