package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/favlinks/pkg/config"
	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

// NewRouter creates and configures the main application router. Background
// work it starts, such as the rate limiter sweep, ends when ctx is done.
func NewRouter(
	ctx context.Context,
	cfg *config.Config,
	authService ports.AuthService,
	linkService ports.LinkService,
	adminService ports.AdminService,
	activityService ports.ActivityService,
) http.Handler {
	// Initialize Handlers
	h := NewHTTPHandler(linkService)
	ah := NewAdminHandler(adminService)
	acth := NewActivityHandler(activityService)
	authHandler := NewAuthHandler(cfg, authService)

	mw := NewMiddleware(authService)
	limiter := NewRateLimiter(ctx, cfg.AuthRateLimit, cfg.AuthRateWindow)

	// Setup Router
	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
	})
	mux.HandleFunc("POST /auth/login", limiter.Limit(authHandler.PasswordLogin))
	mux.HandleFunc("POST /auth/register", limiter.Limit(authHandler.Register))
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)
	if cfg.GoogleEnabled() {
		mux.HandleFunc("GET /auth/google/login", authHandler.Login)
		mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	}
	mux.HandleFunc("GET /links/public", h.Public)

	// Protected Routes
	protected := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, mw.AuthMiddleware(fn))
	}
	protected("GET /auth/me", authHandler.Me)

	protected("GET /links", h.List)
	protected("POST /links", h.Create)
	protected("GET /links/{id}", h.Get)
	protected("DELETE /links/{id}", h.Delete)

	protected("GET /admin/users", ah.ListUsers)
	protected("PUT /admin/users/{id}", ah.UpdateUser)
	protected("DELETE /admin/users/{id}", ah.DeleteUser)
	protected("DELETE /admin/users/{id}/links", ah.DeleteUserLinks)

	protected("GET /activities", acth.List)
	protected("GET /activities/count", acth.Count)
	protected("DELETE /activities", acth.Clear)

	return withRequestLog(withRecover(mux))
}
