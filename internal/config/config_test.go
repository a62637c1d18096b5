package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "repflow", cfg.MongoDB.Database)
	assert.False(t, cfg.OTEL.Enabled)
	assert.Equal(t, "/otlp", cfg.OTEL.URLPath)
	assert.Equal(t, 1.0, cfg.OTEL.SampleRatio)
	assert.Equal(t, 500*time.Millisecond, cfg.Guided.AutoAdvanceDelay)
	assert.Equal(t, 60, cfg.Guided.DefaultRestSeconds)
	assert.Equal(t, 3*time.Hour, cfg.Guided.SnapshotTTL)
	assert.Equal(t, 10*time.Minute, cfg.Guided.CatalogCacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.Guided.IdleTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Guided.IdempotencyTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("REST_AUTO_ADVANCE_DELAY_MS", "250")
	t.Setenv("SESSION_SNAPSHOT_TTL_MINUTES", "15")
	t.Setenv("LOG_JSON", "yes")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otlp.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Guided.AutoAdvanceDelay)
	assert.Equal(t, 15*time.Minute, cfg.Guided.SnapshotTTL)
	assert.True(t, cfg.Log.JSON)
	assert.True(t, cfg.OTEL.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET"},
		{"otel without endpoint", func(c *Config) { c.OTEL.Enabled = true }, "OTEL_EXPORTER_OTLP_ENDPOINT"},
		{"sample ratio above one", func(c *Config) { c.OTEL.SampleRatio = 1.5 }, "OTEL_SAMPLE_RATIO"},
		{"negative delay", func(c *Config) { c.Guided.AutoAdvanceDelay = -time.Second }, "REST_AUTO_ADVANCE_DELAY_MS"},
		{"zero rest", func(c *Config) { c.Guided.DefaultRestSeconds = 0 }, "DEFAULT_REST_SECONDS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{JWT: JWTConfig{Secret: "s"}, Guided: GuidedConfig{DefaultRestSeconds: 60}}
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestGetEnvAsInt64FallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_NUMBER", "twelve")
	assert.Equal(t, int64(7), getEnvAsInt64("SOME_NUMBER", 7))
}
