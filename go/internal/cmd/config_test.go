package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 30, cfg.Draft.TurnSeconds)
	assert.Equal(t, time.Second, cfg.Draft.TickInterval)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, "roulettedraft", cfg.Database.Database)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
store_driver: memory
draft:
  turn_seconds: 45
  tick_interval: 500ms
catalog:
  seed: players.yaml
  ttl: 1m
redis:
  enabled: true
`), 0o600))

	t.Setenv("TURN_SECONDS", "20")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("NATS_ENABLED", "true")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 20, cfg.Draft.TurnSeconds, "env overrides file")
	assert.Equal(t, 500*time.Millisecond, cfg.Draft.TickInterval)
	assert.Equal(t, time.Minute, cfg.Catalog.TTL)
	assert.True(t, cfg.Redis.Enabled)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}},
		{"memory without seed", map[string]string{"STORE_DRIVER": "memory"}},
		{"zero turn", map[string]string{"TURN_SECONDS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
			assert.Error(t, err)
		})
	}
}
