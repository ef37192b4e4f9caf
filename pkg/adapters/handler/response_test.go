package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/favlinks/pkg/core/authz"
	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/favlinks/pkg/core/services"
)

func TestHandleServiceError(t *testing.T) {
	admin := domain.Caller{ID: 1, IsAdmin: true}

	tests := []struct {
		name    string
		err     error
		status  int
		message string
		reason  authz.Reason
	}{
		{"forbidden", authz.RequireAdmin(domain.Caller{ID: 2}).Err(), http.StatusForbidden, "Forbidden", authz.ReasonForbidden},
		{"self deletion", authz.CanDeleteUser(admin, domain.User{ID: 1, IsAdmin: true}, 3).Err(), http.StatusBadRequest, "Cannot delete your own account", authz.ReasonSelfDeletion},
		{"last admin", authz.CanSetAdminFlag(admin, domain.User{ID: 2, IsAdmin: true}, false, 1).Err(), http.StatusBadRequest, "Cannot demote the last admin", authz.ReasonLastAdmin},
		{"user id required", authz.CanAccessActivityScope(admin, domain.ScopeUser, 0).Err(), http.StatusBadRequest, "userId required", authz.ReasonUserIDRequired},
		{"unauthenticated", services.ErrUnauthenticated, http.StatusUnauthorized, "Unauthorized", ""},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials", ""},
		{"invalid argument", fmt.Errorf("%w: name and url are required", services.ErrInvalidArgument), http.StatusBadRequest, "invalid argument: name and url are required", ""},
		{"user not found", services.ErrUserNotFound, http.StatusNotFound, "User not found", ""},
		{"link not found", services.ErrLinkNotFound, http.StatusNotFound, "Link not found", ""},
		{"taken", services.ErrUsernameTaken, http.StatusConflict, "Username already exists", ""},
		{"unknown", fmt.Errorf("list links: %w", errors.New("disk I/O error")), http.StatusInternalServerError, "Server error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handleServiceError(rr, httptest.NewRequest("GET", "/", nil), tt.err)

			require.Equal(t, tt.status, rr.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Error)
			assert.Equal(t, tt.reason, body.Reason)
		})
	}
}

func TestPathID(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3", "1.5"} {
		req := httptest.NewRequest("GET", "/links/"+raw, nil)
		req.SetPathValue("id", raw)
		rr := httptest.NewRecorder()

		_, ok := pathID(rr, req)
		assert.False(t, ok, raw)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid ID")
	}

	req := httptest.NewRequest("GET", "/links/42", nil)
	req.SetPathValue("id", "42")
	id, ok := pathID(httptest.NewRecorder(), req)
	assert.True(t, ok)
	assert.EqualValues(t, 42, id)
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(context.Background(), 2, time.Minute)
	defer l.Stop()
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		ok, _ := l.Allow("10.0.0.1")
		assert.True(t, ok)
	}
	ok, retry := l.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)

	ok, _ = l.Allow("10.0.0.2")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute + time.Second)
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok, "window resets")

	h := l.Limit(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rr := httptest.NewRecorder()
	h(rr, req) // second request in the new window
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = httptest.NewRecorder()
	h(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
}

func TestRateLimiterDisabled(t *testing.T) {
	l := NewRateLimiter(context.Background(), 0, time.Minute)
	defer l.Stop()
	for i := 0; i < 100; i++ {
		ok, _ := l.Allow("k")
		require.True(t, ok)
	}
	assert.Len(t, l.buckets, 0)
}

func TestRateLimiterSweepEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := NewRateLimiter(ctx, 2, time.Minute)
	cancel()
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("sweep still running after context cancel")
	}

	l = NewRateLimiter(context.Background(), 2, time.Minute)
	l.Stop()
	l.Stop()
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("sweep still running after Stop")
	}
}
