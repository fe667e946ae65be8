package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polymesh/engine/internal/api/http/handlers"
	"github.com/polymesh/engine/internal/api/http/middleware"
	apiconfig "github.com/polymesh/engine/internal/config/api"
	corelog "github.com/polymesh/engine/internal/core/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/compliance"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
	"github.com/polymesh/engine/pkg/interfaces/infrastructure/metrics"
	"github.com/polymesh/engine/pkg/interfaces/settlement"
	"github.com/polymesh/engine/pkg/interfaces/statistics"
	"github.com/polymesh/engine/pkg/interfaces/sto"
)

// Dependencies 路由所需的服务
type Dependencies struct {
	State      handlers.StateReader
	Compliance compliance.Service
	Statistics statistics.Service
	Settlement settlement.Service
	Sto        sto.Service

	// Recorder 为空时不记录 HTTP 指标
	Recorder metrics.Recorder
	// MetricsHandler 为空时不挂载 /metrics
	MetricsHandler http.Handler
}

func init() {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard
}

// NewRouter 构建只读查询路由
//
// 路由布局：
//   - GET  /health
//   - GET  /metrics
//   - GET  /api/v1/compliance/:asset[/verify|/report]
//   - POST /api/v1/transfer-manager/verify
//   - GET  /api/v1/statistics/:asset/...
//   - GET  /api/v1/settlement/{instructions,venues}/:id
//   - GET  /api/v1/sto/:asset/fundraisers[/:id]
func NewRouter(deps Dependencies, logger log.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.NewLogger(logger).Middleware())
	if deps.Recorder != nil {
		router.Use(middleware.Metrics(deps.Recorder))
	}
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	router.GET("/health", handlers.NewHealthHandler(deps.State).Health)
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	v1 := router.Group("/api/v1")
	v1.POST("/transfer-manager/verify", handlers.VerifyTransferManagers)
	if deps.Compliance != nil {
		handlers.NewComplianceHandlers(deps.State, deps.Compliance).RegisterRoutes(v1)
	}
	if deps.Statistics != nil {
		handlers.NewStatisticsHandlers(deps.State, deps.Statistics).RegisterRoutes(v1)
	}
	if deps.Settlement != nil {
		handlers.NewSettlementHandlers(deps.State, deps.Settlement).RegisterRoutes(v1)
	}
	if deps.Sto != nil {
		handlers.NewStoHandlers(deps.State, deps.Sto).RegisterRoutes(v1)
	}
	return router
}

// Server HTTP 查询服务
type Server struct {
	router     *gin.Engine
	options    *apiconfig.APIOptions
	logger     log.Logger
	httpServer *http.Server
	listener   net.Listener
}

// NewServer 创建 HTTP 服务，Start 之前不监听端口
func NewServer(router *gin.Engine, options *apiconfig.APIOptions, logger log.Logger) *Server {
	if options == nil {
		options = apiconfig.New(nil).GetOptions()
	}
	if logger == nil {
		logger = corelog.NewNop()
	}
	return &Server{router: router, options: options, logger: logger}
}

// Handler 返回路由，供测试直接驱动
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 返回实际监听地址，未启动时为空
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start 监听配置地址并在后台提供服务
func (s *Server) Start() error {
	if !s.options.Enabled {
		s.logger.Info("HTTP 接口未启用")
		return nil
	}
	listener, err := net.Listen("tcp", s.options.ListenAddr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", s.options.ListenAddr, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("HTTP 服务异常退出: %v", err)
		}
	}()
	s.logger.Infof("HTTP 服务已启动: http://%s/api/v1/", listener.Addr())
	return nil
}

// Stop 优雅关闭，最多等待 5 秒
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(stopCtx); err != nil {
		s.logger.Errorf("HTTP 服务关闭出错: %v", err)
		return err
	}
	s.logger.Info("HTTP 服务已关闭")
	return nil
}
