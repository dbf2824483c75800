package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rubik-device/config"
	"rubik-device/internal/logger"
	"rubik-device/internal/progress"
	"rubik-device/internal/realtime"
	"rubik-device/internal/solver"
	"rubik-device/internal/tools"
	"rubik-device/internal/ui"
)

// Server 调试/控制 API 服务器
type Server struct {
	config  *config.Config
	sys     *tools.SystemTools
	net     *tools.NetworkTools
	runner  *solver.Runner
	store   *progress.StateStore
	manager *ui.Manager
	hub     *realtime.Hub

	router *gin.Engine
	http   *http.Server
}

// NewServer 创建 API 服务器
func NewServer(cfg *config.Config, sys *tools.SystemTools, net *tools.NetworkTools,
	runner *solver.Runner, store *progress.StateStore, manager *ui.Manager, hub *realtime.Hub) *Server {
	s := &Server{
		config:  cfg,
		sys:     sys,
		net:     net,
		runner:  runner,
		store:   store,
		manager: manager,
		hub:     hub,
	}
	s.initRouter()
	return s
}

// Router 获取路由（测试用）
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) initRouter() {
	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	// 设备端不开 gin.Logger，省内存
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())

	api := s.router.Group("/api")
	{
		api.GET("/status", s.handleStatus)
		api.GET("/screen.png", s.handleScreenPNG)
		api.POST("/solve", s.handleSolve)
		api.POST("/stop", s.handleStop)
		api.POST("/touch", s.handleTouch)
		api.GET("/events", s.handleWebSocket)
	}
}

// Start 后台启动 HTTP 服务
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Server.Port)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		logger.Info("API 服务启动: %s", addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("API 服务异常退出: %v", err)
		}
	}()
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
