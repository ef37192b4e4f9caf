package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

// unusablePassword marks accounts that can only sign in through an
// external identity provider. It is never a valid bcrypt hash.
const unusablePassword = "!"

type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// checkUsername rejects names that could not be matched exactly later.
// Usernames are stored and looked up as given, never rewritten.
func checkUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username required", ErrInvalidArgument)
	}
	if strings.TrimSpace(username) != username {
		return fmt.Errorf("%w: username must not start or end with whitespace", ErrInvalidArgument)
	}
	return nil
}

func (s *AuthService) issue(u *domain.User) (string, time.Time, error) {
	token, exp, err := s.tokens.Issue(ports.TokenClaims{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return token, exp, nil
}

// Register creates a regular (non-admin) account and signs it in.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, string, error) {
	logCtx := logrus.WithField("username", username)

	if err := checkUsername(username); err != nil {
		return nil, "", err
	}
	if password == "" {
		return nil, "", fmt.Errorf("%w: password required", ErrInvalidArgument)
	}

	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, "", ErrInternal
	}

	user := &domain.User{Username: username, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, "", ErrUsernameTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, _, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	logCtx.WithField("user_id", user.ID).Info("User registered")
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	if err := checkUsername(username); err != nil {
		return nil, "", err
	}
	if password == "" {
		return nil, "", fmt.Errorf("%w: password required", ErrInvalidArgument)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if user == nil || !s.hasher.Verify(password, user.PasswordHash) {
		logrus.WithField("username", username).Warn("Login failed")
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// LoginExternal signs in a user vouched for by an identity provider,
// creating a password-less account on first use.
func (s *AuthService) LoginExternal(ctx context.Context, username string) (*domain.User, string, time.Time, error) {
	if err := checkUsername(username); err != nil {
		return nil, "", time.Time{}, err
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		user, err = s.provisionExternal(ctx, username)
		if err != nil {
			return nil, "", time.Time{}, err
		}
	}

	token, exp, err := s.issue(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// provisionExternal creates the password-less account. A concurrent first
// sign-in for the same name may win the insert; its row is used instead.
func (s *AuthService) provisionExternal(ctx context.Context, username string) (*domain.User, error) {
	user := &domain.User{Username: username, PasswordHash: unusablePassword}
	err := s.users.CreateUser(ctx, user)
	if errors.Is(err, ports.ErrDuplicate) {
		existing, err := s.users.GetUserByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("find user: %w", err)
		}
		if existing == nil {
			return nil, fmt.Errorf("find user: %s vanished after duplicate insert", username)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logrus.WithFields(logrus.Fields{"username": username, "user_id": user.ID}).Info("External user provisioned")
	return user, nil
}

// Authenticate resolves a bearer token to the caller's current identity.
// The user row is re-read so that role changes and deletions apply to
// tokens issued before them.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Caller, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Caller{}, ErrUnauthenticated
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return domain.Caller{}, ErrUnauthenticated
	}
	return domain.CallerFrom(user), nil
}

var _ ports.AuthService = (*AuthService)(nil)
