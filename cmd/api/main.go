package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"Vitabot/internal/config"
	"Vitabot/internal/database"
	"Vitabot/internal/geminiservice"
	"Vitabot/internal/health"
	"Vitabot/internal/mailer"
	"Vitabot/internal/server"
	"Vitabot/internal/storage/memory"
	"Vitabot/internal/storage/postgres"
	"Vitabot/internal/telegram"
	"Vitabot/internal/todo"
	"Vitabot/internal/utility"
)

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

// stores picks the storage backend. The returned database.Service is nil for memory.
func stores(ctx context.Context, cfg config.Config) (todo.Store, health.Store, database.Service, error) {
	if cfg.Storage == "memory" {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		s := memory.New()
		return s, s, nil, nil
	}
	db, err := database.NewService(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	s := postgres.New(db.Queries())
	return s, s, db, nil
}

func run(cfg config.Config) error {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	todoStore, healthStore, db, err := stores(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	hub := utility.NewHub()
	defer hub.Close()

	ai := geminiservice.NewClient(geminiservice.Config{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		PlanProfile: cfg.Gemini.PlanProfile,
	}, log.Logger)

	todos := todo.NewService(todoStore, cfg.LocalOffset, cfg.CompletedLimit).WithNotifier(hub)
	hs := health.NewService(healthStore, ai, cfg.LocalOffset).WithNotifier(hub)
	if cfg.SMTP.Enabled() {
		hs.WithReporter(mailer.New(cfg.SMTP))
		log.Info().Str("to", cfg.SMTP.To).Msg("Evaluation reports will be emailed")
	}

	tg := telegram.NewClient(cfg.Telegram.Token)
	bot, err := telegram.NewBot(tg, todos, hs, ai, telegram.Options{
		PollTimeout:  cfg.Telegram.PollTimeout,
		AllowedChats: cfg.Telegram.AllowedChats,
		Offset:       cfg.LocalOffset,
	}, log.Logger)
	if err != nil {
		return err
	}

	webhook := cfg.Telegram.Mode == "webhook"
	opts := server.Options{
		Port:      cfg.Port,
		DB:        db,
		JWTSecret: cfg.JWTSecret,
		Todos:     todos,
		Health:    hs,
		Hub:       hub,
	}
	if webhook {
		opts.Bot = bot
		opts.WebhookSecret = cfg.Telegram.WebhookSecret
	}
	srv := server.New(opts)
	httpServer := srv.HTTPServer()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if webhook {
			if err := tg.SetWebhook(gctx, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
				return fmt.Errorf("set webhook: %w", err)
			}
			log.Info().Str("url", cfg.Telegram.WebhookURL).Msg("Telegram webhook registered")
			<-gctx.Done()
			return nil
		}
		if err := tg.DeleteWebhook(gctx); err != nil {
			log.Warn().Err(err).Msg("Could not remove a previous webhook")
		}
		if err := bot.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("telegram bot: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
		stop() // Allow Ctrl+C to force shutdown

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		if err := srv.Wait(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Webhook updates still running at shutdown")
		}
		return nil
	})

	return g.Wait()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupLogger(cfg)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Fatal error")
	}
	log.Info().Msg("Graceful shutdown complete.")
}
