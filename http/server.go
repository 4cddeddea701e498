// Package http 提供HTTP服务器功能
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server HTTP服务器
type Server struct {
	server *http.Server
	config ServerConfig
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
}

// DefaultServerConfig 默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8080,
		Timeout:        30 * time.Second,
		AllowedOrigins: []string{"*"},
		RateLimit:      20,
		RateBurst:      40,
	}
}

// NewServer 创建HTTP服务器
func NewServer(config ServerConfig) *Server {
	mux := http.NewServeMux()

	// 注册所有处理器
	RegisterHandlers(mux)
	RegisterAuthHandlers(mux)
	RegisterPredictionHandlers(mux)
	RegisterDatasetHandlers(mux)
	RegisterMonitoringHandlers(mux)

	// 创建中间件链
	chain := Chain(
		RecoveryMiddleware,
		LoggerMiddleware,
		SecurityHeadersMiddleware,
		CORSMiddleware(config.AllowedOrigins),
		TimeoutMiddleware(config.Timeout),
		RateLimitMiddleware(config.RateLimit, config.RateBurst),
	)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      chain(mux),
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		config: config,
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	zap.L().Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 停止服务器
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zap.L().Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr 返回服务器地址
func (s *Server) Addr() string {
	return s.server.Addr
}
