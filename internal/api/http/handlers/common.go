// Package handlers HTTP 查询处理器
//
// 所有处理器只读：在运行时的只读视图中执行查询，响应附带查询所基于的区块号。
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polymesh/engine/internal/api/http/middleware"
	httptypes "github.com/polymesh/engine/internal/api/http/types"
	apitypes "github.com/polymesh/engine/internal/api/types"
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/types"
)

// StateReader 运行时只读视图
type StateReader interface {
	View(ctx context.Context, fn func(c *runtime.Context) error) error
	Head(ctx context.Context) (types.BlockNumber, types.Moment, error)
}

// view 在只读视图中执行查询，成功时写出 data
func view(g *gin.Context, state StateReader, fn func(c *runtime.Context) (interface{}, error)) {
	var (
		data  interface{}
		block types.BlockNumber
	)
	err := state.View(g.Request.Context(), func(c *runtime.Context) error {
		var err error
		block = c.Block()
		data, err = fn(c)
		return err
	})
	if err != nil {
		_ = g.Error(err)
		return
	}
	resp := httptypes.NewSuccessResponse(data, uint64(block)).WithRequestID(middleware.GetRequestID(g))
	g.JSON(http.StatusOK, resp)
}

func badRequest(g *gin.Context, detail string) {
	_ = g.Error(apitypes.BadRequest(detail))
}

func tickerParam(g *gin.Context) (types.Ticker, bool) {
	t, err := types.NewTicker(g.Param("asset"))
	if err != nil {
		badRequest(g, err.Error())
		return types.Ticker{}, false
	}
	return t, true
}

// identityQuery 读取可选的 DID 查询参数，缺省为 nil
func identityQuery(g *gin.Context, name string) (*types.IdentityId, bool) {
	raw := g.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := types.ParseIdentityId(raw)
	if err != nil {
		badRequest(g, name+": "+err.Error())
		return nil, false
	}
	return &id, true
}
