package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PRICED_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PRICED_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setInt(&cfg.Server.Port, "PRICED_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "PRICED_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.AdminKey, "PRICED_SERVER_ADMIN_KEY")
	setStr(&cfg.Server.AdminKeyDigest, "PRICED_SERVER_ADMIN_KEY_DIGEST")
	setInt(&cfg.Server.RateLimit, "PRICED_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "PRICED_SERVER_RATE_WINDOW")

	// ── Snapshot ──
	setStr(&cfg.Snapshot.Source, "PRICED_SNAPSHOT_SOURCE")
	setStr(&cfg.Snapshot.Path, "PRICED_SNAPSHOT_PATH")
	setStr(&cfg.Snapshot.S3Endpoint, "PRICED_SNAPSHOT_S3_ENDPOINT")
	setStr(&cfg.Snapshot.S3Region, "PRICED_SNAPSHOT_S3_REGION")
	setStr(&cfg.Snapshot.S3Bucket, "PRICED_SNAPSHOT_S3_BUCKET")
	setStr(&cfg.Snapshot.S3Key, "PRICED_SNAPSHOT_S3_KEY")
	setStr(&cfg.Snapshot.S3AccessKey, "PRICED_SNAPSHOT_S3_ACCESS_KEY")
	setStr(&cfg.Snapshot.S3SecretKey, "PRICED_SNAPSHOT_S3_SECRET_KEY")
	setBool(&cfg.Snapshot.S3ForcePathStyle, "PRICED_SNAPSHOT_S3_FORCE_PATH_STYLE")

	// ── Embedding ──
	setStr(&cfg.Embedding.URL, "PRICED_EMBEDDING_URL")
	setStr(&cfg.Embedding.Model, "PRICED_EMBEDDING_MODEL")
	setDuration(&cfg.Embedding.Timeout, "PRICED_EMBEDDING_TIMEOUT")

	// ── Rerank ──
	setStr(&cfg.Rerank.URL, "PRICED_RERANK_URL")
	setStr(&cfg.Rerank.Model, "PRICED_RERANK_MODEL")
	setDuration(&cfg.Rerank.Timeout, "PRICED_RERANK_TIMEOUT")

	// ── Match ──
	setFloat64(&cfg.Match.Threshold, "PRICED_MATCH_THRESHOLD")
	setFloat64(&cfg.Match.CosineGate, "PRICED_MATCH_COSINE_GATE")
	setInt(&cfg.Match.CosineScan, "PRICED_MATCH_COSINE_SCAN")
	setInt(&cfg.Match.RerankTopN, "PRICED_MATCH_RERANK_TOP_N")
	setFloat64(&cfg.Match.RerankThreshold, "PRICED_MATCH_RERANK_THRESHOLD")
	setFloat64(&cfg.Match.MinMatchCosine, "PRICED_MATCH_MIN_MATCH_COSINE")
	setInt(&cfg.Match.MaxMarkets, "PRICED_MATCH_MAX_MARKETS")
	setInt(&cfg.Match.DirectFallbackScan, "PRICED_MATCH_DIRECT_FALLBACK_SCAN")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "PRICED_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "PRICED_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "PRICED_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "PRICED_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "PRICED_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "PRICED_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "PRICED_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "PRICED_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "PRICED_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "PRICED_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "PRICED_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PRICED_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PRICED_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PRICED_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PRICED_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "PRICED_REDIS_TLS_ENABLED")

	// ── Eval ──
	setStr(&cfg.Eval.DatasetPath, "PRICED_EVAL_DATASET_PATH")

	// ── Top-level ──
	setStr(&cfg.Mode, "PRICED_MODE")
	setStr(&cfg.LogLevel, "PRICED_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
