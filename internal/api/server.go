package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SandhanuDulmeth/Health-Triage/internal/capture"
	"github.com/SandhanuDulmeth/Health-Triage/internal/config"
	"github.com/SandhanuDulmeth/Health-Triage/internal/middleware"
	"github.com/SandhanuDulmeth/Health-Triage/internal/service"
)

// Server exposes the triage session API consumed by the single-page
// client.
type Server struct {
	cfg      *config.Config
	sessions *service.SessionService
	httpSrv  *http.Server
	startAt  time.Time
}

func NewServer(cfg *config.Config, sessions *service.SessionService) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		startAt:  time.Now(),
	}
}

// Handler builds the full route tree. Split out from Start so tests can
// drive the API without a listener.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		middleware.Recover(),
		middleware.Logging(),
		middleware.RateLimit(config.RateLimitPerMinute),
	)

	engine.GET("/healthz", s.handleHealth)

	apiGroup := engine.Group("/api")
	apiGroup.POST("/sessions", s.handleCreateSession)
	apiGroup.GET("/sessions/:id", s.handleGetSession)
	apiGroup.POST("/sessions/:id/messages", s.handleSubmit)
	apiGroup.POST("/sessions/:id/reset", s.handleReset)
	apiGroup.POST("/attachments", s.handleSelectFile)

	engine.GET("/ws/capture", func(c *gin.Context) {
		capture.ServeWS(c.Writer, c.Request)
	})

	return engine
}

// Start begins listening and blocks until ctx is cancelled or the listener
// fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpSrv.Shutdown(shutdownCtx)
	}()

	slog.Info("triage server starting", "port", s.cfg.Port)
	if err := s.httpSrv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startAt).String(),
	})
}
