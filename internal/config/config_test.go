// AngelaMos | 2026
// config_test.go

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/admin")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("IDENTITY_PUBLIC_KEY_PATH", "/keys/public.pem")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	c, err := load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "ES256", c.Identity.Algorithm)
	assert.Equal(t, 30*time.Second, c.Authz.CacheTTL)
	assert.Equal(t, 100, c.Listing.DefaultLimit)
	assert.Equal(t, 50, c.Listing.AdminDefaultLimit)
	assert.Equal(t, 1000, c.Listing.MaxLimit)
	assert.Equal(t, time.Minute, c.RateLimit.Window)
	assert.True(t, c.Database.AutoMigrate)
	assert.Equal(t, "0.0.0.0:8080", c.Server.Address())
}

func TestLoadFileThenEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LISTING_DEFAULT_LIMIT", "25")
	t.Setenv("AUTHZ_CACHE_TTL", "0s")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
listing:
  default_limit: 10
identity:
  issuer: https://id.example.com
  audience: admin-dashboard
`), 0o600))

	c, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 25, c.Listing.DefaultLimit)
	assert.Zero(t, c.Authz.CacheTTL)
	assert.Equal(t, "https://id.example.com", c.Identity.Issuer)
}

func TestLoadMissingFile(t *testing.T) {
	setRequiredEnv(t)

	_, err := load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"no identity source", map[string]string{"IDENTITY_PUBLIC_KEY_PATH": ""}},
		{"both identity sources", map[string]string{"IDENTITY_JWKS_URL": "https://id.example.com/jwks"}},
		{"no database", map[string]string{"DATABASE_URL": ""}},
		{"no redis", map[string]string{"REDIS_URL": ""}},
		{"negative ttl", map[string]string{"AUTHZ_CACHE_TTL": "-1s"}},
		{"limit above max", map[string]string{"LISTING_DEFAULT_LIMIT": "5000"}},
		{"zero admin limit", map[string]string{"LISTING_ADMIN_DEFAULT_LIMIT": "0"}},
		{"insecure otel in prod", map[string]string{
			"ENVIRONMENT":   "production",
			"OTEL_ENABLED":  "true",
			"OTEL_INSECURE": "true",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := load("")
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
