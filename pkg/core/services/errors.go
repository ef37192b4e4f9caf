package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInternal           = errors.New("server error")
)

var (
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	ErrLinkNotFound = fmt.Errorf("link %w", ErrNotFound)
)
