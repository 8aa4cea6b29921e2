package gin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	ginlib "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shopcart/internal/config"
	"shopcart/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

type Server struct {
	engine *ginlib.Engine
	addr   string
	logger logger.Logger
}

// NewEngine returns an engine with panic recovery, request ids and access logs.
func NewEngine(log logger.Logger) *ginlib.Engine {
	r := ginlib.New()
	r.Use(ginlib.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(log))
	return r
}

// RequestID propagates or assigns X-Request-ID and stores it on the request
// context for logger.WithContext.
func RequestID() ginlib.HandlerFunc {
	return func(c *ginlib.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func AccessLog(log logger.Logger) ginlib.HandlerFunc {
	return func(c *ginlib.Context) {
		start := time.Now()
		c.Next()
		log.WithContext(c.Request.Context()).Debug("HTTP request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.FullPath()),
			logger.Int("status", c.Writer.Status()),
			logger.Int64("latency_ms", time.Since(start).Milliseconds()),
		)
	}
}

func NewServer(cfg config.ServerConfig, engine *ginlib.Engine, log logger.Logger) *Server {
	return &Server{
		engine: engine,
		addr:   cfg.Address(),
		logger: log,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	if s.engine == nil {
		return fmt.Errorf("gin engine is nil")
	}

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", logger.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("HTTP server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
