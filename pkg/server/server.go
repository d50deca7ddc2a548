// Package server 通过 HTTP 暴露上下文组装能力
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cectx "github.com/easyops/contextengine/pkg/context"
	"github.com/easyops/contextengine/pkg/otel"
)

// Assembler 是 HTTP 层依赖的组装能力
type Assembler interface {
	Assemble(ctx context.Context, q cectx.Query) (*cectx.AssembledContext, error)
	PreviewBudget(maxTokens int) (*cectx.TokenBudget, error)
}

// Server HTTP 服务
type Server struct {
	assembler        Assembler
	defaultMaxTokens int
	addr             string
	readTimeout      time.Duration
	writeTimeout     time.Duration
	logger           otel.Logger
	tracer           otel.Tracer
	metrics          otel.Metrics
	engine           *gin.Engine
}

// Option 配置 Server
type Option func(*Server)

// WithAddr 设置监听地址
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithDefaultMaxTokens 设置请求省略 maxTokens 时使用的预算
func WithDefaultMaxTokens(n int) Option {
	return func(s *Server) {
		s.defaultMaxTokens = n
	}
}

// WithTimeouts 设置读写超时
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
	}
}

// WithLogger 设置日志器
func WithLogger(logger otel.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTracer 设置追踪器
func WithTracer(tracer otel.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(metrics otel.Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// New 创建 HTTP 服务并注册路由
func New(assembler Assembler, opts ...Option) *Server {
	s := &Server{
		assembler:        assembler,
		defaultMaxTokens: cectx.DefaultMaxTokens,
		addr:             ":8080",
		logger:           otel.NewNoopLogger(),
		tracer:           otel.NewNoopTracer(),
		metrics:          otel.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.telemetry())
	s.routes(engine)
	s.engine = engine

	return s
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/healthz", s.handleHealth)

	v1 := r.Group("/v1/context")
	v1.POST("/assemble", s.handleAssemble)
	v1.GET("/budget", s.handleBudget)
}

// Handler 返回 http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 启动服务，ctx 取消后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.engine,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
