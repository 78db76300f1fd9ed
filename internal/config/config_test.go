package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PASETO_KEY", testKey)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, 14*24*time.Hour, cfg.Auth.SessionDuration)
	assert.Equal(t, []string{"min_length", "numeric", "similarity", "common"}, cfg.Password.Validators)
	assert.Equal(t, 8, cfg.Password.MinLength)
	assert.Equal(t, "avatars", cfg.Storage.AvatarPrefix)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PASETO_KEY", testKey)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_DURATION", "3600")
	t.Setenv("PASSWORD_VALIDATORS", "min_length, common")
	t.Setenv("PASSWORD_MIN_LENGTH", "12")
	t.Setenv("PASSWORD_MAX_SIMILARITY", "0.5")
	t.Setenv("TRUSTED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DB_CHANNEL_BINDING", "require")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, time.Hour, cfg.Auth.SessionDuration)
	assert.Equal(t, []string{"min_length", "common"}, cfg.Password.Validators)
	assert.Equal(t, 12, cfg.Password.MinLength)
	assert.InDelta(t, 0.5, cfg.Password.MaxSimilarity, 0.0001)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.TrustedOrigins)
	assert.Contains(t, cfg.Database.ConnectionString(), "channel_binding=require")
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PASETO_KEY", testKey)
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_RejectsShortPasetoKey(t *testing.T) {
	t.Setenv("PASETO_KEY", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PASETO_KEY")
}
