package ports

import (
	"context"
	"errors"
	"time"

	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
)

// ErrDuplicate is returned by the store when a unique constraint rejects a write
var ErrDuplicate = errors.New("duplicate entry")

// ErrInvalidToken is returned by a TokenIssuer for any token it cannot accept
var ErrInvalidToken = errors.New("invalid token")

// UserRepository defines storage operations for users
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CountAdmins(ctx context.Context) (int64, error)

	// DeleteUser and SetAdmin refuse, by returning (nil, nil), to leave
	// the store without an admin.
	DeleteUser(ctx context.Context, id int64) (*domain.User, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) (*domain.User, error)
}

// LinkRepository defines storage operations for links
type LinkRepository interface {
	CreateLink(ctx context.Context, link *domain.Link) error
	GetLink(ctx context.Context, id, userID int64) (*domain.Link, error)
	ListLinks(ctx context.Context, userID int64) ([]domain.Link, error)
	ListPublicLinks(ctx context.Context) ([]domain.PublicLink, error)
	DeleteLink(ctx context.Context, id, userID int64) (*domain.Link, error)
	DeleteLinksByUser(ctx context.Context, userID int64) ([]domain.Link, error)
	Dump(ctx context.Context) ([]domain.Link, error) // For migration
}

// ActivityRepository defines storage operations for the activity log
type ActivityRepository interface {
	RecordActivity(ctx context.Context, activity *domain.Activity) error
	ListActivities(ctx context.Context, filter domain.ActivityFilter, limit int) ([]domain.Activity, error)
	CountActivities(ctx context.Context, filter domain.ActivityFilter) (int64, error)
	DeleteActivities(ctx context.Context, filter domain.ActivityFilter) (int64, error)
}

// Repository is the full record store
type Repository interface {
	UserRepository
	LinkRepository
	ActivityRepository

	// WithTx runs fn against a transactional view of the store. fn's
	// error rolls the transaction back and is returned unchanged.
	WithTx(ctx context.Context, fn func(tx Repository) error) error
	Close() error
}

// PasswordHasher hashes and verifies credentials
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// TokenClaims is what a bearer token asserts about its holder
type TokenClaims struct {
	UserID   int64
	Username string
	IsAdmin  bool
}

// TokenIssuer mints and validates bearer tokens
type TokenIssuer interface {
	Issue(claims TokenClaims) (string, time.Time, error)
	Verify(token string) (*TokenClaims, error)
}

// AuthService defines account and session operations
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, string, error)
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	LoginExternal(ctx context.Context, username string) (*domain.User, string, time.Time, error)
	Authenticate(ctx context.Context, token string) (domain.Caller, error)
}

// LinkService defines the business logic operations for bookmarks
type LinkService interface {
	CreateLink(ctx context.Context, caller domain.Caller, name, url string, isPublic bool) (*domain.Link, error)
	GetLink(ctx context.Context, caller domain.Caller, id int64) (*domain.Link, error)
	ListLinks(ctx context.Context, caller domain.Caller) ([]domain.Link, error)
	DeleteLink(ctx context.Context, caller domain.Caller, id int64) (*domain.Link, error)
	ListPublicLinks(ctx context.Context) ([]domain.PublicLink, error)
}

// AdminService defines user moderation operations
type AdminService interface {
	ListUsers(ctx context.Context, caller domain.Caller) ([]domain.User, error)
	DeleteUser(ctx context.Context, caller domain.Caller, targetID int64) (*domain.User, error)
	SetAdminFlag(ctx context.Context, caller domain.Caller, targetID int64, isAdmin bool) (*domain.User, error)
	DeleteUserLinks(ctx context.Context, caller domain.Caller, targetID int64) ([]domain.Link, error)
}

// ActivityService defines the activity ledger
type ActivityService interface {
	Record(ctx context.Context, actorID int64, kind domain.ActionKind, details any)
	List(ctx context.Context, caller domain.Caller) ([]domain.Activity, error)
	Count(ctx context.Context, caller domain.Caller, scope domain.Scope, targetUserID int64) (int64, error)
	Clear(ctx context.Context, caller domain.Caller, scope domain.Scope, targetUserID int64) (int64, error)
}
