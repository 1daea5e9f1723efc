package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "₹", cfg.CurrencySymbol)
	assert.Empty(t, cfg.RedisAddr)
}

func TestFromViper_Overrides(t *testing.T) {
	v := newViper()
	v.Set("SESSION_TTL", "30m")
	v.Set("REDIS_DB", 3)
	v.Set("LOG_LEVEL", "DEBUG")
	v.Set("RECEIPT_TZ", "UTC")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "debug", cfg.LogLevel)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestFromViper_Invalid(t *testing.T) {
	v := newViper()
	v.Set("SESSION_TTL", "soon")
	_, err := FromViper(v)
	assert.Error(t, err)

	v = newViper()
	v.Set("SESSION_TTL", "-1h")
	_, err = FromViper(v)
	assert.Error(t, err)

	v = newViper()
	v.Set("RECEIPT_TZ", "Mars/Olympus")
	_, err = FromViper(v)
	assert.Error(t, err)
}
