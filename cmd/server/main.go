package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wadjakorntonsri/favlinks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/favlinks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/favlinks/pkg/adapters/security"
	"github.com/wadjakorntonsri/favlinks/pkg/config"
	"github.com/wadjakorntonsri/favlinks/pkg/core/services"
	"github.com/wadjakorntonsri/favlinks/pkg/logging"
	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

// newApp wires the store and services behind the router. The router's
// background work stops with ctx.
func newApp(ctx context.Context, cfg *config.Config, repo ports.Repository) http.Handler {
	activity := services.NewActivityService(repo)
	auth := services.NewAuthService(repo,
		security.NewBcryptHasher(cfg.BcryptCost),
		security.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL))

	return handler.NewRouter(ctx, cfg,
		auth,
		services.NewLinkService(repo, activity),
		services.NewAdminService(repo, activity),
		activity)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}
	if _, err := logging.Configure(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogFormat == "json"}); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	// Initialize Repository
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newApp(ctx, cfg, repo),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("Shutdown failed")
		}
	}()

	logrus.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.AppEnv}).Info("Server starting")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Fatal("Server failed")
	}
	logrus.Info("Server stopped")
}
