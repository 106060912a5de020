package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/msomdec/predictions/internal/command"
	"github.com/msomdec/predictions/internal/config"
	"github.com/msomdec/predictions/internal/handler"
	"github.com/msomdec/predictions/internal/metrics"
	"github.com/msomdec/predictions/internal/repository/sqlite"
	"github.com/msomdec/predictions/internal/service"
	"github.com/msomdec/predictions/internal/timeparse"
)

func main() {
	// `predictions hash-secret` reads a client secret from stdin and prints
	// the bcrypt hash to put in API_CLIENTS.
	if len(os.Args) > 1 && os.Args[1] == "hash-secret" {
		if err := hashSecret(); err != nil {
			slog.Error("hash secret", "error", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	m := metrics.New()
	predictions := service.NewPredictionLedger(time.Now)
	engine := command.New(command.Deps{
		DB:          db,
		Identity:    service.NewIdentityRegistry(),
		Contracts:   service.NewContractLedger(predictions, time.Now),
		Predictions: predictions,
		Dates:       timeparse.New(cfg.Location()),
		Limiter:     service.NewUserRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
		Metrics:     m,
		Now:         time.Now,
	})
	authService := service.NewAuthService(cfg.APIClients, cfg.JWTSecret)

	if cfg.SlackSigningSecret == "" {
		slog.Warn("SLACK_SIGNING_SECRET not set, slack endpoint disabled")
	}
	if len(cfg.APIClients) == 0 {
		slog.Warn("API_CLIENTS not set, command API will reject every token request")
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, engine, authService, cfg.SlackSigningSecret, m)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.RequestLogger(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "timezone", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func hashSecret() error {
	h, err := config.LoadHashing()
	if err != nil {
		return err
	}
	secret, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && secret == "" {
		return fmt.Errorf("read secret: %w", err)
	}
	hash, err := service.HashSecret(strings.TrimSpace(secret), h.BcryptCost)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
