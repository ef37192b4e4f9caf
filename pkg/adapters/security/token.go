package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

type claims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 tokens whose subject is the user id
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (j *JWTIssuer) Issue(c ports.TokenClaims) (string, time.Time, error) {
	expirationTime := j.now().Add(j.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Username: c.Username,
		IsAdmin:  c.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(c.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(j.now()),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	})

	s, err := tok.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, expirationTime, nil
}

func (j *JWTIssuer) Verify(tokenString string) (*ports.TokenClaims, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, errors.Join(ports.ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, ports.ErrInvalidToken
	}
	return &ports.TokenClaims{UserID: id, Username: c.Username, IsAdmin: c.IsAdmin}, nil
}

var _ ports.TokenIssuer = (*JWTIssuer)(nil)
