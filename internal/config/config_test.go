package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "auth-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, "auth_config.yaml", cfg.Auth.SecretsPath)
	assert.Equal(t, 10*time.Second, cfg.Auth.ReloadDebounce())
	assert.Equal(t, 30*time.Minute, cfg.Auth.PasswordResetTTL())
	assert.False(t, cfg.DefaultUser.Create)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_SECRETS_PATH", "/etc/auth/secrets.yaml")
	t.Setenv("AUTH_RELOAD_DEBOUNCE_SECONDS", "3")
	t.Setenv("DEFAULT_USER_CREATE", "true")
	t.Setenv("DEFAULT_USER_PASSWORD", "bootstrap")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "/etc/auth/secrets.yaml", cfg.Auth.SecretsPath)
	assert.Equal(t, 3*time.Second, cfg.Auth.ReloadDebounce())
	assert.True(t, cfg.DefaultUser.Create)
	assert.Equal(t, "bootstrap", cfg.DefaultUser.Password)
}

func TestInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}
