package middleware

import (
	"github.com/gin-gonic/gin"

	apitypes "github.com/polymesh/engine/internal/api/types"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
)

// ErrorHandler 把处理器通过 c.Error 上报的错误统一写为 Problem Details
func ErrorHandler(logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		problem := apitypes.FromError(err)
		problem.Instance = c.Request.URL.Path
		if v := GetRequestID(c); v != "" {
			problem.TraceID = v
		}
		if logger != nil {
			if problem.Status >= 500 {
				logger.Errorf("HTTP 错误 code=%s trace=%s path=%s err=%v", problem.Code, problem.TraceID, c.Request.URL.Path, err)
			} else {
				logger.Debugf("HTTP 请求被拒绝 code=%s path=%s err=%v", problem.Code, c.Request.URL.Path, err)
			}
		}
		WriteProblemDetails(c, problem)
	}
}

// WriteProblemDetails 写入 Problem Details 响应
func WriteProblemDetails(c *gin.Context, problem *apitypes.ProblemDetails) {
	c.Header("Content-Type", "application/problem+json")
	c.JSON(problem.Status, problem)
	c.Abort()
}
