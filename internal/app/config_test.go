package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 30*time.Second, cfg.LeaderboardCacheTTL)
	assert.Equal(t, "https://api.clerk.com/v1", cfg.IdentityAPIURL)
	assert.False(t, cfg.SeedEndpointEnabled)
	assert.Equal(t, time.UTC, cfg.StreakLocation())
	assert.False(t, cfg.Otel().Enabled)
}

func TestLoadConfigFromDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	body := "AUTH_JWT_SECRET=from-file\nSTREAK_TIMEZONE=America/New_York\nCORS_ALLOWED_ORIGINS=https://a.example,https://b.example\nPORT=9090\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	for _, k := range []string{"AUTH_JWT_SECRET", "STREAK_TIMEZONE", "CORS_ALLOWED_ORIGINS", "PORT"} {
		k := k
		prev, had := os.LookupEnv(k)
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(k, prev)
			} else {
				_ = os.Unsetenv(k)
			}
		})
		_ = os.Unsetenv(k)
	}

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.SessionSecret)
	assert.Equal(t, "America/New_York", cfg.StreakLocation().String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, ":9090", cfg.Address())
}

func TestLoadConfigRejects(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Run("no session key", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "")
		t.Setenv("CLERK_JWT_KEY", "")
		_, err := LoadConfig(missing)
		assert.Error(t, err)
	})
	t.Run("bad timezone", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "x")
		t.Setenv("STREAK_TIMEZONE", "Mars/Olympus")
		_, err := LoadConfig(missing)
		assert.Error(t, err)
	})
	t.Run("sqlite without path", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "x")
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("SQLITE_PATH", "")
		_, err := LoadConfig(missing)
		assert.Error(t, err)
	})
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "x")
		t.Setenv("DB_DRIVER", "mysql")
		_, err := LoadConfig(missing)
		assert.Error(t, err)
	})
}
