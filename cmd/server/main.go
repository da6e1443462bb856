package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"formhook/internal/api"
	"formhook/internal/api/handlers"
	"formhook/internal/api/middleware"
	"formhook/internal/engine/forwarding"
	"formhook/internal/pkg/logger"
	"formhook/internal/platform/audit"
	"formhook/internal/platform/auth"
	"formhook/internal/platform/config"
	"formhook/internal/platform/database"
	"formhook/internal/platform/repositories"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Refuse to start without the host form system
	if err := database.RequireHost(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("activation check failed")
	}

	// Repositories
	settingsRepo := repositories.NewSettingsRepository(db)
	formRepo := repositories.NewFormRepository(db)
	auditLogger := audit.NewLogger(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	nonceSvc := auth.NewNonceService(cfg.Admin.NonceSecret)
	dispatcher := forwarding.NewDispatcher(forwarding.NewHTTPClient(cfg.Forwarding.Timeout))
	forwarder := forwarding.NewForwarder(settingsRepo, dispatcher)

	deps := &api.Dependencies{
		AuthHandler:       handlers.NewAuthHandler(cfg.Admin, cfg.JWT, tokenSvc),
		SettingsHandler:   handlers.NewSettingsHandler(settingsRepo, formRepo, nonceSvc, auditLogger),
		SubmissionHandler: handlers.NewSubmissionHandler(forwarder),
		AuditHandler:      handlers.NewAuditHandler(auditLogger),
		HealthHandler:     handlers.NewHealthHandler(db),
		AuthMiddleware:    middleware.NewAuthMiddleware(tokenSvc),
		HostToken:         cfg.Host.Token,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	log.Info().Msg("shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	// let in-flight deliveries finish; each is bounded by the client timeout
	dispatcher.Wait()
}
