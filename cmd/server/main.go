package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/onduty/roster/internal/api"
	"github.com/onduty/roster/internal/core/lifecycle"
	"github.com/onduty/roster/internal/core/service"
	"github.com/onduty/roster/internal/infrastructure/config"
	"github.com/onduty/roster/internal/infrastructure/queue"
	"github.com/onduty/roster/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Pretty: true})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "onduty-roster",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	backends, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backends.Close()

	auditService := service.NewAuditService(backends.Audit, logger.Component("audit"))
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditService, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	authService := service.NewAuthService(backends.Users, backends.Denylist, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))
	if err := authService.EnsureAdmin(ctx, service.SeedAdmin{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}); err != nil {
		return err
	}

	requestService := service.NewRequestService(
		backends.Requests,
		backends.Users,
		backends.Audit,
		dispatcher,
		lifecycle.New(),
		logger.Component("requests"),
	)

	router := api.NewRouter(api.Dependencies{
		Auth:     authService,
		Requests: requestService,
		Checks:   backends.Checks,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("store", cfg.StoreBackend).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("server shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("history entries still queued at shutdown")
	}

	log.Info().Msg("shutdown complete")
	return nil
}
