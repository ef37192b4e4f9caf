package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.True(t, h.Verify("secret", hash))
	assert.False(t, h.Verify("wrong", hash))
	assert.False(t, h.Verify("", hash))
	assert.False(t, h.Verify("secret", "!"))

	_, err = h.Hash("")
	assert.Error(t, err)
}

func TestJWTIssuerRoundTrip(t *testing.T) {
	j := NewJWTIssuer("testsecret", time.Hour)

	tok, exp, err := j.Issue(ports.TokenClaims{UserID: 7, Username: "alice", IsAdmin: true})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	c, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.UserID)
	assert.Equal(t, "alice", c.Username)
	assert.True(t, c.IsAdmin)
}

func TestJWTIssuerRejects(t *testing.T) {
	j := NewJWTIssuer("testsecret", time.Hour)
	other := NewJWTIssuer("othersecret", time.Hour)

	foreign, _, err := other.Issue(ports.TokenClaims{UserID: 1, Username: "mallory"})
	require.NoError(t, err)

	expired := NewJWTIssuer("testsecret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(ports.TokenClaims{UserID: 1, Username: "alice"})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":   "invalid",
		"wrong key": foreign,
		"expired":   old,
		"alg none":  unsigned,
		"empty":     "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := j.Verify(tok)
			assert.True(t, errors.Is(err, ports.ErrInvalidToken))
		})
	}
}
