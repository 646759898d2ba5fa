package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saurrx/priced/internal/cache/redis"
	"github.com/saurrx/priced/internal/catalog"
	"github.com/saurrx/priced/internal/config"
	"github.com/saurrx/priced/internal/domain"
	"github.com/saurrx/priced/internal/match"
	"github.com/saurrx/priced/internal/provider/embed"
	"github.com/saurrx/priced/internal/provider/rerank"
	"github.com/saurrx/priced/internal/service"
	"github.com/saurrx/priced/internal/snapshot"
	"github.com/saurrx/priced/internal/store/postgres"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Matcher *match.Matcher

	MatchService   *service.MatchService
	CatalogService *service.CatalogService

	// AccessCodes is nil when no Postgres connection is configured; match
	// requests then require no code.
	AccessCodes domain.AccessCodeStore

	// RateLimiter and SignalBus are nil when Redis is not configured; rate
	// limiting, reload fan-out, and the live feed are then disabled.
	RateLimiter domain.RateLimiter
	SignalBus   domain.SignalBus
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL (access codes; optional) ---
	if cfg.Postgres.Enabled() {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.AccessCodes = postgres.NewAccessCodeStore(pgClient.Pool())
	} else {
		logger.InfoContext(ctx, "postgres not configured, access codes disabled")
	}

	// --- Redis (rate limiting, reload fan-out, live feed; optional) ---
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		deps.SignalBus = redis.NewSignalBus(redisClient)
	} else {
		logger.InfoContext(ctx, "redis not configured, rate limiting and live feed disabled")
	}

	// --- Snapshot source ---
	var source snapshot.Source
	switch cfg.Snapshot.Source {
	case "s3":
		s3src, err := snapshot.NewS3Source(ctx, snapshot.S3Config{
			Endpoint:       cfg.Snapshot.S3Endpoint,
			Region:         cfg.Snapshot.S3Region,
			Bucket:         cfg.Snapshot.S3Bucket,
			Key:            cfg.Snapshot.S3Key,
			AccessKey:      cfg.Snapshot.S3AccessKey,
			SecretKey:      cfg.Snapshot.S3SecretKey,
			ForcePathStyle: cfg.Snapshot.S3ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3 snapshot source: %w", err)
		}
		source = s3src
	default:
		source = snapshot.NewFileSource(cfg.Snapshot.Path)
	}

	// --- Providers ---
	embedder := embed.New(embed.Config{
		BaseURL: cfg.Embedding.URL,
		Model:   cfg.Embedding.Model,
		Timeout: cfg.Embedding.Timeout.Duration,
	}, logger)

	var reranker domain.Reranker
	if cfg.Rerank.URL != "" {
		rr := rerank.New(rerank.Config{
			BaseURL: cfg.Rerank.URL,
			Model:   cfg.Rerank.Model,
			Timeout: cfg.Rerank.Timeout.Duration,
		}, logger)
		if err := rr.Ping(ctx); err != nil {
			logger.WarnContext(ctx, "reranker unreachable, running similarity-only",
				slog.String("url", cfg.Rerank.URL),
				slog.String("error", err.Error()),
			)
		} else {
			reranker = rr
		}
	} else {
		logger.InfoContext(ctx, "reranker not configured, running similarity-only")
	}

	// --- Initial catalog ---
	snap, err := source.Fetch(ctx)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: fetch snapshot from %s: %w", source.Describe(), err)
	}
	idx, err := catalog.Build(snap)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: build catalog: %w", err)
	}
	logger.InfoContext(ctx, "catalog loaded",
		slog.String("version", idx.Version()),
		slog.Int("events", idx.NumEvents()),
		slog.Int("markets", idx.NumMarkets()),
		slog.Int("orphans", idx.OrphanCount()),
	)

	deps.Matcher = match.New(match.Config{
		Index:    idx,
		Reranker: reranker,
		Params:   cfg.Match.Params(),
		Logger:   logger,
	})

	// --- Services ---
	deps.MatchService = service.NewMatchService(embedder, deps.Matcher, deps.SignalBus, logger)
	deps.CatalogService = service.NewCatalogService(source, deps.Matcher, logger)

	return deps, cleanup, nil
}
