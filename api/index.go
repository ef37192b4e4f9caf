package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/favlinks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/favlinks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/favlinks/pkg/adapters/security"
	"github.com/wadjakorntonsri/favlinks/pkg/config"
	"github.com/wadjakorntonsri/favlinks/pkg/core/services"
	"github.com/wadjakorntonsri/favlinks/pkg/logging"
)

var mux http.Handler

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	// Serverless logs are collected line by line.
	if _, err := logging.Configure(logging.Options{Level: cfg.LogLevel, JSON: true}); err != nil {
		panic(err)
	}

	// Note: On Vercel, the sqlite file is ephemeral unless DATABASE_URL points at Turso
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}

	activity := services.NewActivityService(repo)
	auth := services.NewAuthService(repo,
		security.NewBcryptHasher(cfg.BcryptCost),
		security.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL))
	// The function instance owns the router for its whole lifetime.
	mux = handler.NewRouter(context.Background(), cfg, auth,
		services.NewLinkService(repo, activity),
		services.NewAdminService(repo, activity),
		activity)
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
