package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "favlinks.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FAVLINKS_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.GoogleEnabled())
}

func TestLoadFileThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, `
port = "9000"
database_url = "file:from-file.sqlite"
token_ttl = "2h"
allowed_emails = ["a@example.com"]
`)
	t.Setenv("FAVLINKS_CONFIG", path)
	t.Setenv("PORT", "9100")
	t.Setenv("ALLOWED_EMAILS", "b@example.com, c@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "file:from-file.sqlite", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"b@example.com", "c@example.com"}, cfg.AllowedEmails)
}

func TestLoadRejects(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FAVLINKS_CONFIG", "")

	t.Run("production default secret", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("TOKEN_TTL", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("bad int", func(t *testing.T) {
		t.Setenv("BCRYPT_COST", "ten")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("FAVLINKS_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))
		_, err := Load()
		assert.Error(t, err)
	})
}
