package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "accessToken", cfg.Cookie.Name)
	assert.Equal(t, 1, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Environment: "development", Store: StoreConfig{Driver: "sqlite"}}
	assert.Error(t, cfg.Validate())

	cfg = &Config{
		Environment: "production",
		Store:       StoreConfig{Driver: "mongo"},
		JWT:         JWTConfig{SecretKey: defaultJWTSecret, ResetSecretKey: "other"},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "s3cret"
	cfg.JWT.ResetSecretKey = "s3cret"
	assert.Error(t, cfg.Validate())

	cfg.JWT.ResetSecretKey = "another"
	assert.NoError(t, cfg.Validate())

	cfg.Store.Driver = "memory"
	assert.Error(t, cfg.Validate())
}
