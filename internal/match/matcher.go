// Package match implements the retrieval and reranking cascade that pairs a
// short free-text item with at most one catalog event and a price-ranked list
// of that event's tradable markets.
package match

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/saurrx/priced/internal/catalog"
	"github.com/saurrx/priced/internal/domain"
)

// Matcher runs the matching pipeline against the currently published catalog
// index. The index reference is swapped atomically on reload; every request
// captures one reference at entry and sees a single consistent snapshot.
type Matcher struct {
	index    atomic.Pointer[catalog.Index]
	reranker domain.Reranker // nil: similarity-only mode for the lifetime of the matcher
	params   Params
	logger   *slog.Logger
	now      func() time.Time
}

// Config assembles a Matcher.
type Config struct {
	Index    *catalog.Index
	Reranker domain.Reranker
	Params   Params
	Logger   *slog.Logger

	// Now overrides the clock used for market viability, for tests.
	Now func() time.Time
}

// New creates a Matcher serving the given index. A nil Reranker puts the
// matcher permanently in similarity-only mode; that is the supported degraded
// path when the reranking provider is unavailable at startup.
func New(cfg Config) *Matcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	m := &Matcher{
		reranker: cfg.Reranker,
		params:   cfg.Params.normalized(),
		logger:   logger.With(slog.String("component", "matcher")),
		now:      now,
	}
	m.index.Store(cfg.Index)
	return m
}

// Options modify a single Match call.
type Options struct {
	// CandidateIDs restricts retrieval to the given events. Unknown ids are
	// dropped; an empty resolution fails the match immediately.
	CandidateIDs []string

	// Text is the original query text. The rerank cascade only engages when
	// text is present and a reranker is configured.
	Text string

	// Params overrides the matcher-level parameters for this call.
	Params *Params
}

// Reload publishes a new catalog index. In-flight requests keep the reference
// they captured at entry.
func (m *Matcher) Reload(idx *catalog.Index) {
	old := m.index.Swap(idx)
	m.logger.Info("catalog index swapped",
		slog.String("version", idx.Version()),
		slog.Int("events", idx.NumEvents()),
		slog.Int("markets", idx.NumMarkets()),
		slog.String("previous_version", old.Version()),
	)
}

// Index returns the currently published catalog index.
func (m *Matcher) Index() *catalog.Index {
	return m.index.Load()
}

// Reranking reports whether the cross-encoder stage is available.
func (m *Matcher) Reranking() bool { return m.reranker != nil }

// Match runs the full cascade for one query vector. A nil result with a nil
// error is the expected negative outcome: nothing in the catalog was a
// confident enough match. Errors are reserved for malformed input and
// reranking provider failures.
func (m *Matcher) Match(ctx context.Context, vector []float32, opts Options) (*domain.MatchResult, error) {
	idx := m.index.Load()

	if len(vector) != idx.Dimension() {
		return nil, fmt.Errorf("match: query dimension %d, catalog dimension %d: %w",
			len(vector), idx.Dimension(), domain.ErrDimensionMismatch)
	}

	params := m.params
	if opts.Params != nil {
		params = opts.Params.normalized()
	}

	ranked := retrieve(idx, vector, opts.CandidateIDs)
	if len(ranked) == 0 {
		return nil, nil
	}

	now := m.now()
	if m.reranker != nil && opts.Text != "" {
		return m.matchCascade(ctx, idx, ranked, opts.Text, params, now)
	}
	return m.matchDirect(idx, ranked, params, now), nil
}

// matchDirect is the similarity-only acceptance rule: the top candidate must
// clear the plain threshold and yield a non-empty market selection. A bounded
// fallback scan may try further candidates, skipping only those with empty
// selections. Scores are non-increasing, so one sub-threshold candidate ends
// the walk.
func (m *Matcher) matchDirect(idx *catalog.Index, ranked []candidate, params Params, now time.Time) *domain.MatchResult {
	limit := params.DirectFallbackScan
	if limit > len(ranked) {
		limit = len(ranked)
	}

	for i := 0; i < limit; i++ {
		c := ranked[i]
		if c.similarity < params.Threshold {
			m.logger.Debug("match rejected below threshold",
				slog.String("event_id", c.id),
				slog.Float64("similarity", c.similarity),
				slog.Float64("threshold", params.Threshold),
			)
			return nil
		}
		sel := selectMarkets(idx, c.id, params.MaxMarkets, now)
		if len(sel.Items) == 0 {
			continue
		}
		return &domain.MatchResult{
			EventID:     c.id,
			Confidence:  round3(c.similarity),
			Markets:     sel.Items,
			TotalViable: sel.TotalViable,
		}
	}
	return nil
}

// SelectMarkets exposes within-event market selection for direct lookups,
// e.g. when a caller already knows the event. The boolean reports whether the
// event exists in the current catalog.
func (m *Matcher) SelectMarkets(eventID string) (domain.MarketSelection, bool) {
	idx := m.index.Load()
	if _, ok := idx.Event(eventID); !ok {
		return domain.MarketSelection{}, false
	}
	return selectMarkets(idx, eventID, m.params.MaxMarkets, m.now()), true
}

// round3 rounds a score to three decimal places for presentation.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
