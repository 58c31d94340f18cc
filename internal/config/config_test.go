package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, 2025, cfg.ReferenceYear)
	assert.Equal(t, 1995, cfg.WindowStart)
	assert.Equal(t, 2069, cfg.WindowEnd)
	assert.Equal(t, 5, cfg.WindowSize)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.AutoImport)
	assert.True(t, cfg.DefaultSecret())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("RV_DB_PATH", "/tmp/other.db")
	t.Setenv("RV_REFERENCE_YEAR", "2030")
	t.Setenv("RV_AUTO_IMPORT", "false")

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, 2030, cfg.ReferenceYear)
	assert.False(t, cfg.AutoImport)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"zero window size", KeyWindowSize, 0},
		{"reversed windows", KeyWindowEnd, 1990},
		{"no snapshots kept", KeyKeepSnapshots, 0},
		{"empty source", KeySegmentsURL, ""},
		{"negative rate limit", KeyRateLimit, -1},
		{"empty jwt secret", KeyJWTSecret, ""},
		{"blank jwt secret", KeyJWTSecret, "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.val)

			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestTokensEnabled(t *testing.T) {
	tests := []struct {
		name         string
		secret       string
		allowDefault bool
		want         bool
	}{
		{"custom secret", "a-real-secret", false, true},
		{"default secret", defaultJWTSecret, false, false},
		{"default secret allowed", defaultJWTSecret, true, true},
		{"empty secret allowed", "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{JWTSecret: tt.secret, AllowDefault: tt.allowDefault}
			assert.Equal(t, tt.want, cfg.TokensEnabled())
		})
	}
}

func TestLoad_AllowDefaultSecret(t *testing.T) {
	t.Setenv("RV_ALLOW_DEFAULT_SECRET", "true")

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.True(t, cfg.DefaultSecret())
	assert.True(t, cfg.TokensEnabled())
}
