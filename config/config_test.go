package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/nexus?sslmode=disable")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "local", cfg.MediaBackend)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5, cfg.LowStockThreshold)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/nexus")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadCloudinaryNeedsURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/nexus")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("MEDIA_BACKEND", "cloudinary")
	t.Setenv("CLOUDINARY_URL", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MEDIA_BACKEND", "s3")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadParsesLists(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/nexus")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example,http://localhost:3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://shop.example", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
}
