package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Server is the optional admin HTTP endpoint exposing /health and /metrics.
// It only reads collectors and never touches chat state.
type Server struct {
	metrics *Metrics
	router  *gin.Engine
	started time.Time
}

// NewServer builds the admin router for m.
func NewServer(m *Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		metrics: m,
		router:  r,
		started: time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(s.started).String(),
		})
	})
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on addr and serves until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, listener)
}

// ServeListener serves on an existing listener until ctx is done.
func (s *Server) ServeListener(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logrus.WithFields(logrus.Fields{
		"function": "Server.Serve",
		"address":  listener.Addr().String(),
	}).Info("Admin endpoint listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Server.Serve",
				"error":    err.Error(),
			}).Warn("Admin endpoint shutdown incomplete")
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
