package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	triageroot "github.com/SandhanuDulmeth/Health-Triage"
	"github.com/SandhanuDulmeth/Health-Triage/internal/alert"
	"github.com/SandhanuDulmeth/Health-Triage/internal/api"
	"github.com/SandhanuDulmeth/Health-Triage/internal/config"
	"github.com/SandhanuDulmeth/Health-Triage/internal/repository"
	"github.com/SandhanuDulmeth/Health-Triage/internal/service"
	"github.com/SandhanuDulmeth/Health-Triage/internal/speech"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional transcript archive; sessions stay fully in-memory without it
	var archive service.Archiver
	if cfg.ArchiveEnabled() {
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		migrationsFS, err := fs.Sub(triageroot.MigrationsFS, "migrations")
		if err != nil {
			slog.Error("failed to load embedded migrations", "error", err)
			os.Exit(1)
		}
		if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		archive = repository.NewArchive(pool)
		slog.Info("transcript archive enabled")
	}

	// Optional operational alerting
	var alerts service.FailureAlerter
	if cfg.AlertsEnabled() {
		alerter, err := alert.NewTelegramAlerter(cfg.AlertBotToken, cfg.AlertChatID)
		if err != nil {
			slog.Error("failed to create alerter", "error", err)
			os.Exit(1)
		}
		alerts = alerter
		slog.Info("telegram alerting enabled", "chat_id", cfg.AlertChatID)
	}

	// Grounding citation resolution
	var grounding *service.GroundingResolver
	if cfg.ResolveGrounding {
		grounding = service.NewGroundingResolver()
	}

	// Initialize services
	analyzer := service.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	speaker := speech.NewController(speech.Noop{})
	sessions := service.NewSessionService(analyzer, speaker, grounding, archive, alerts)

	// Start stale session cleanup goroutine
	go func() {
		ticker := time.NewTicker(config.StaleSessionCleanup)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.CleanupStale(config.SessionTTL); n > 0 {
					slog.Info("evicted stale sessions", "count", n)
				}
			}
		}
	}()

	// Start server
	srv := api.NewServer(cfg, sessions)
	if err := srv.Start(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
