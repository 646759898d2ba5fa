package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/saurrx/priced/internal/catalog"
	"github.com/saurrx/priced/internal/domain"
	"github.com/saurrx/priced/internal/match"
	"github.com/saurrx/priced/internal/snapshot"
)

// ReloadChannel is the signal-bus channel that triggers a catalog reload in
// every serving process.
const ReloadChannel = "snapshot:reload"

// CatalogService owns catalog reloads: fetch a fresh snapshot, build a new
// index, and publish it to the matcher by atomic swap. A failed reload leaves
// the previous index serving.
type CatalogService struct {
	source  snapshot.Source
	matcher *match.Matcher
	logger  *slog.Logger

	mu sync.Mutex // serializes reloads; reads never block
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(source snapshot.Source, matcher *match.Matcher, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		source:  source,
		matcher: matcher,
		logger:  logger.With(slog.String("component", "catalog_service")),
	}
}

// Reload fetches, validates, and swaps in a fresh catalog. In-flight requests
// keep whichever index they captured at entry.
func (s *CatalogService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.source.Fetch(ctx)
	if err != nil {
		return err
	}
	idx, err := catalog.Build(snap)
	if err != nil {
		return err
	}
	if idx.OrphanCount() > 0 {
		s.logger.Warn("snapshot has orphaned markets",
			slog.Int("orphans", idx.OrphanCount()),
			slog.String("version", idx.Version()),
		)
	}
	s.matcher.Reload(idx)
	return nil
}

// WatchReloads subscribes to the reload channel and reloads on every message
// until the context ends. Failed reloads are logged and the old snapshot
// stays active.
func (s *CatalogService) WatchReloads(ctx context.Context, bus domain.SignalBus) error {
	ch, err := bus.Subscribe(ctx, ReloadChannel)
	if err != nil {
		return err
	}
	s.logger.Info("watching for reload signals",
		slog.String("channel", ReloadChannel),
		slog.String("source", s.source.Describe()),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			if err := s.Reload(ctx); err != nil {
				s.logger.Error("catalog reload failed, keeping previous snapshot",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
