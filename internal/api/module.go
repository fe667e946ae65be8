// Package api 对外查询接口
package api

import (
	"go.uber.org/fx"

	"github.com/polymesh/engine/internal/api/http"
)

// Module 返回 API 模块并确保 HTTP 服务被实例化
func Module() fx.Option {
	return fx.Module("api",
		http.Module(),
		fx.Invoke(func(*http.Server) {}),
	)
}
