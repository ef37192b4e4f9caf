package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wadjakorntonsri/favlinks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/favlinks/pkg/adapters/security"
	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/favlinks/pkg/core/services"
)

type testEnv struct {
	repo     *sqlite.SQLiteRepository
	activity *services.ActivityService
	admin    *services.AdminService
	links    *services.LinkService
	auth     *services.AuthService
	tokens   *security.JWTIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo, err := sqlite.NewSQLiteRepository("file:" + filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	activity := services.NewActivityService(repo)
	tokens := security.NewJWTIssuer("testsecret", time.Hour)
	return &testEnv{
		repo:     repo,
		activity: activity,
		admin:    services.NewAdminService(repo, activity),
		links:    services.NewLinkService(repo, activity),
		auth:     services.NewAuthService(repo, security.NewBcryptHasher(bcrypt.MinCost), tokens),
		tokens:   tokens,
	}
}

// user stores an account directly and returns the identity a fresh
// request by it would carry.
func (e *testEnv) user(t *testing.T, name string, admin bool) domain.Caller {
	t.Helper()
	u := &domain.User{Username: name, PasswordHash: "x", IsAdmin: admin}
	require.NoError(t, e.repo.CreateUser(context.Background(), u))
	return domain.CallerFrom(u)
}

func (e *testEnv) adminCount(t *testing.T) int64 {
	t.Helper()
	n, err := e.repo.CountAdmins(context.Background())
	require.NoError(t, err)
	return n
}

func (e *testEnv) activityCount(t *testing.T, filter domain.ActivityFilter) int64 {
	t.Helper()
	n, err := e.repo.CountActivities(context.Background(), filter)
	require.NoError(t, err)
	return n
}

func asTarget(c domain.Caller) domain.User {
	return domain.User{ID: c.ID, Username: c.Username, IsAdmin: c.IsAdmin}
}
