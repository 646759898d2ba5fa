// Package config defines the top-level configuration for the matching
// service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/saurrx/priced/internal/match"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by PRICED_* environment variables.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Snapshot  SnapshotConfig  `toml:"snapshot"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Rerank    RerankConfig    `toml:"rerank"`
	Match     MatchConfig     `toml:"match"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	Eval      EvalConfig      `toml:"eval"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port           int      `toml:"port"`
	CORSOrigins    []string `toml:"cors_origins"`
	AdminKey       string   `toml:"admin_key"`
	AdminKeyDigest string   `toml:"admin_key_digest"`
	RateLimit      int      `toml:"rate_limit"`
	RateWindow     duration `toml:"rate_window"`
}

// SnapshotConfig selects where catalog bundles come from.
type SnapshotConfig struct {
	// Source is "file" or "s3".
	Source string `toml:"source"`
	Path   string `toml:"path"`

	S3Endpoint       string `toml:"s3_endpoint"`
	S3Region         string `toml:"s3_region"`
	S3Bucket         string `toml:"s3_bucket"`
	S3Key            string `toml:"s3_key"`
	S3AccessKey      string `toml:"s3_access_key"`
	S3SecretKey      string `toml:"s3_secret_key"`
	S3ForcePathStyle bool   `toml:"s3_force_path_style"`
}

// EmbeddingConfig holds embedding provider parameters.
type EmbeddingConfig struct {
	URL     string   `toml:"url"`
	Model   string   `toml:"model"`
	Timeout duration `toml:"timeout"`
}

// RerankConfig holds reranking provider parameters. An empty URL disables
// reranking and the matcher runs on cosine similarity alone.
type RerankConfig struct {
	URL     string   `toml:"url"`
	Model   string   `toml:"model"`
	Timeout duration `toml:"timeout"`
}

// MatchConfig holds the cascade tuning knobs.
type MatchConfig struct {
	Threshold          float64 `toml:"threshold"`
	CosineGate         float64 `toml:"cosine_gate"`
	CosineScan         int     `toml:"cosine_scan"`
	RerankTopN         int     `toml:"rerank_top_n"`
	RerankThreshold    float64 `toml:"rerank_threshold"`
	MinMatchCosine     float64 `toml:"min_match_cosine"`
	MaxMarkets         int     `toml:"max_markets"`
	DirectFallbackScan int     `toml:"direct_fallback_scan"`
}

// Params converts the TOML knobs to matcher parameters; zero fields fall back
// to the built-in defaults.
func (m MatchConfig) Params() match.Params {
	return match.Params{
		Threshold:          m.Threshold,
		CosineGate:         m.CosineGate,
		CosineScan:         m.CosineScan,
		RerankTopN:         m.RerankTopN,
		RerankThreshold:    m.RerankThreshold,
		MinMatchCosine:     m.MinMatchCosine,
		MaxMarkets:         m.MaxMarkets,
		DirectFallbackScan: m.DirectFallbackScan,
	}
}

// PostgresConfig holds access-code database parameters. An empty DSN and
// host disables access-code enforcement entirely.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// Enabled reports whether a database connection is configured.
func (p PostgresConfig) Enabled() bool {
	return strings.TrimSpace(p.DSN) != "" || strings.TrimSpace(p.Host) != ""
}

// RedisConfig holds Redis connection parameters. An empty Addr disables
// Redis-backed features (rate limiting, reload fan-out, the live feed).
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// Enabled reports whether a Redis connection is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

// EvalConfig holds eval-mode parameters.
type EvalConfig struct {
	DatasetPath string `toml:"dataset_path"`
}

// duration wraps time.Duration to support TOML string decoding ("5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:       8080,
			RateLimit:  120,
			RateWindow: duration{time.Minute},
		},
		Snapshot: SnapshotConfig{
			Source:   "file",
			Path:     "data/catalog-snapshot.json",
			S3Region: "us-east-1",
		},
		Embedding: EmbeddingConfig{
			URL:     "http://localhost:11434",
			Model:   "bge-base-en-v1.5",
			Timeout: duration{30 * time.Second},
		},
		Rerank: RerankConfig{
			Model:   "gte-reranker-modernbert-base",
			Timeout: duration{15 * time.Second},
		},
		Postgres: PostgresConfig{
			Port:          5432,
			Database:      "priced",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			PoolSize:   20,
			MaxRetries: 3,
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// Validate checks the configuration for problems that should stop startup.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case "serve", "eval":
	default:
		return fmt.Errorf("config: unsupported mode %q", c.Mode)
	}

	switch c.Snapshot.Source {
	case "file":
		if c.Snapshot.Path == "" {
			return fmt.Errorf("config: snapshot.path is required for the file source")
		}
	case "s3":
		if c.Snapshot.S3Bucket == "" || c.Snapshot.S3Key == "" {
			return fmt.Errorf("config: snapshot.s3_bucket and snapshot.s3_key are required for the s3 source")
		}
	default:
		return fmt.Errorf("config: unsupported snapshot source %q", c.Snapshot.Source)
	}

	if c.Embedding.URL == "" {
		return fmt.Errorf("config: embedding.url is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}

	if strings.ToLower(c.Mode) == "eval" && c.Eval.DatasetPath == "" {
		return fmt.Errorf("config: eval.dataset_path is required in eval mode")
	}

	return nil
}
