// Package server provides the HTTP server lifecycle built on gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	httpopts "github.com/kart-io/tutor-x/pkg/options/server/http"
)

// Server wraps a gin engine with an http.Server and graceful shutdown.
type Server struct {
	opts            *httpopts.Options
	engine          *gin.Engine
	server          *http.Server
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithHTTPOptions sets the HTTP listener options.
func WithHTTPOptions(opts *httpopts.Options) Option {
	return func(s *Server) {
		if opts != nil {
			s.opts = opts
		}
	}
}

// WithShutdownTimeout sets the graceful shutdown timeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// New creates a server with the standard middleware chain applied.
func New(opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)

	// 创建 Gin 引擎（不使用默认中间件）
	engine := gin.New()

	s := &Server{
		opts:            httpopts.NewOptions(),
		engine:          engine,
		shutdownTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	// 中间件顺序：恢复 → 请求 ID → 访问日志 → CORS
	engine.Use(Recovery())
	engine.Use(RequestID())
	engine.Use(AccessLog())
	engine.Use(CORS())

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Endpoint not found",
		})
	})

	return s
}

// Engine returns the underlying gin.Engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails. Shutdown drains in-flight requests up to the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.opts.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
		return err
	}

	logger.Info("HTTP server stopped")
	return nil
}
