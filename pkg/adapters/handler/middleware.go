package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/favlinks/pkg/core/services"
	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

const authCookie = "auth_token"

type ctxKey int

const (
	callerKey ctxKey = iota
	requestIDKey
)

type Middleware struct {
	auth ports.AuthService
}

func NewMiddleware(auth ports.AuthService) *Middleware {
	return &Middleware{auth: auth}
}

// bearerToken reads the Authorization header, falling back to the cookie
// set by the Google sign-in flow.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(authCookie); err == nil {
		return c.Value
	}
	return ""
}

// AuthMiddleware resolves the caller from the bearer token and rejects the
// request when there is none.
func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		caller, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthenticated) {
				handleServiceError(w, r, err)
				return
			}
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerFromContext returns the identity stored by AuthMiddleware.
func CallerFromContext(ctx context.Context) (domain.Caller, bool) {
	c, ok := ctx.Value(callerKey).(domain.Caller)
	return c, ok
}

// caller is CallerFromContext for handlers mounted behind AuthMiddleware.
func caller(r *http.Request) domain.Caller {
	c, _ := CallerFromContext(r.Context())
	return c
}
