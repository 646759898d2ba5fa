package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saurrx/priced/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := config.Defaults()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "file", cfg.Snapshot.Source)
	assert.Equal(t, "serve", cfg.Mode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Embedding.Timeout.Duration)
	assert.False(t, cfg.Postgres.Enabled())
	assert.False(t, cfg.Redis.Enabled())

	require.NoError(t, cfg.Validate())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
mode = "serve"
log_level = "debug"

[server]
port = 9090
cors_origins = ["https://app.example.com"]

[match]
threshold = 0.8
max_markets = 3

[embedding]
url = "http://embedder:11434"
timeout = "45s"

[redis]
addr = "redis:6379"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0.8, cfg.Match.Threshold)
	assert.Equal(t, 3, cfg.Match.MaxMarkets)
	assert.Equal(t, 45*time.Second, cfg.Embedding.Timeout.Duration)
	assert.True(t, cfg.Redis.Enabled())

	// Untouched sections keep their defaults.
	assert.Equal(t, "file", cfg.Snapshot.Source)
	assert.Equal(t, 5432, cfg.Postgres.Port)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090
`)

	t.Setenv("PRICED_SERVER_PORT", "7070")
	t.Setenv("PRICED_REDIS_ADDR", "override:6379")
	t.Setenv("PRICED_MATCH_THRESHOLD", "0.9")
	t.Setenv("PRICED_POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("PRICED_EMBEDDING_TIMEOUT", "10s")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port, "environment beats the TOML file")
	assert.Equal(t, "override:6379", cfg.Redis.Addr)
	assert.Equal(t, 0.9, cfg.Match.Threshold)
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, 10*time.Second, cfg.Embedding.Timeout.Duration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"bad mode", func(c *config.Config) { c.Mode = "scrape" }, "unsupported mode"},
		{"file source without path", func(c *config.Config) { c.Snapshot.Path = "" }, "snapshot.path"},
		{"s3 source without bucket", func(c *config.Config) { c.Snapshot.Source = "s3" }, "s3_bucket"},
		{"bad snapshot source", func(c *config.Config) { c.Snapshot.Source = "ftp" }, "snapshot source"},
		{"no embedding url", func(c *config.Config) { c.Embedding.URL = "" }, "embedding.url"},
		{"bad port", func(c *config.Config) { c.Server.Port = -1 }, "port"},
		{"eval without dataset", func(c *config.Config) { c.Mode = "eval" }, "eval.dataset_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMatchConfigParams(t *testing.T) {
	mc := config.MatchConfig{Threshold: 0.8, MaxMarkets: 5}
	p := mc.Params()
	assert.Equal(t, 0.8, p.Threshold)
	assert.Equal(t, 5, p.MaxMarkets)
}

func TestRedactedConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Server.AdminKey = "admin-secret"
	cfg.Postgres.Password = "pg-secret"
	cfg.Redis.Password = "redis-secret"
	cfg.Snapshot.S3SecretKey = "s3-secret"
	cfg.Server.CORSOrigins = []string{"https://app.example.com"}

	red := config.RedactedConfig(&cfg)

	assert.Equal(t, "***", red.Server.AdminKey)
	assert.Equal(t, "***", red.Postgres.Password)
	assert.Equal(t, "***", red.Redis.Password)
	assert.Equal(t, "***", red.Snapshot.S3SecretKey)

	// The original is untouched and the slice copy is independent.
	assert.Equal(t, "admin-secret", cfg.Server.AdminKey)
	red.Server.CORSOrigins[0] = "mutated"
	assert.Equal(t, "https://app.example.com", cfg.Server.CORSOrigins[0])
}
