package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/genpass/genpass-go/internal/config"
	"github.com/genpass/genpass-go/internal/crypto"
	"github.com/genpass/genpass-go/internal/handler"
	"github.com/genpass/genpass-go/internal/middleware"
	"github.com/genpass/genpass-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	src, err := crypto.SourceByName(cfg.RandomSource)
	if err != nil {
		slog.Error("invalid random source", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := service.NewSessionService(service.SessionConfig{
		Secret:      cfg.JWTSecret,
		TokenTTL:    cfg.SessionTokenTTL,
		IdleTimeout: cfg.SessionIdleTimeout,
		Expiry:      cfg.CredentialExpiry,
		Source:      src,
	})
	go sessions.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(ctx, cfg, service.NewGeneratorService(src), sessions),
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "random_source", cfg.RandomSource)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func newRouter(ctx context.Context, cfg config.Config, gen *service.GeneratorService, sessions *service.SessionService) http.Handler {
	genHandler := handler.NewGeneratorHandler(gen)
	sessionHandler := handler.NewSessionHandler(sessions)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/api/v1/profiles", genHandler.HandleProfiles)

	limit := middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)

	r.Group(func(r chi.Router) {
		r.Use(limit)
		r.Post("/api/v1/generate", genHandler.HandleGenerate)
		r.Post("/api/v1/sessions", sessionHandler.HandleCreate)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(cfg.JWTSecret))
		r.With(limit).Post("/api/v1/session/generate", sessionHandler.HandleGenerate)
		r.Get("/api/v1/session/current", sessionHandler.HandleCurrent)
		r.Get("/api/v1/session/history", sessionHandler.HandleHistory)
		r.Post("/api/v1/session/clear", sessionHandler.HandleClear)
		r.Post("/api/v1/session/copy", sessionHandler.HandleCopy)
		r.Delete("/api/v1/session", sessionHandler.HandleDelete)
	})

	r.With(middleware.SessionAuthQuery(cfg.JWTSecret)).Get("/api/v1/session/events", sessionHandler.HandleEvents)

	return r
}
