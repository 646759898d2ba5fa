package match

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/saurrx/priced/internal/catalog"
	"github.com/saurrx/priced/internal/domain"
)

// matchCascade is the two-stage path: a loose cosine gate, a viability-aware
// scan that collects cross-encoder candidates, one reranking call, and an
// acceptance walk over the reranked order.
//
// The scan collects up to RerankTopN viable events while walking at most
// CosineScan entries of the similarity ranking, whichever limit binds first.
func (m *Matcher) matchCascade(ctx context.Context, idx *catalog.Index, ranked []candidate, text string, params Params, now time.Time) (*domain.MatchResult, error) {
	best := ranked[0].similarity
	if best < params.CosineGate {
		m.logger.Debug("cascade gated on cosine",
			slog.Float64("best_similarity", best),
			slog.Float64("cosine_gate", params.CosineGate),
		)
		return nil, nil
	}

	scan := params.CosineScan
	if scan > len(ranked) {
		scan = len(ranked)
	}
	collected := make([]candidate, 0, params.RerankTopN)
	for i := 0; i < scan && len(collected) < params.RerankTopN; i++ {
		if hasViableMarkets(idx, ranked[i].id, now) {
			collected = append(collected, ranked[i])
		}
	}
	if len(collected) == 0 {
		m.logger.Debug("cascade found no viable candidates",
			slog.Int("scanned", scan),
			slog.Float64("best_similarity", best),
		)
		return nil, nil
	}

	docs := make([]string, len(collected))
	for i, c := range collected {
		ev, _ := idx.Event(c.id)
		docs[i] = ev.Text
		if docs[i] == "" {
			docs[i] = ev.ID
		}
	}

	scores, err := m.reranker.Score(ctx, text, docs)
	if err != nil {
		return nil, fmt.Errorf("match: rerank: %w", err)
	}
	if len(scores) != len(collected) {
		return nil, fmt.Errorf("match: reranker returned %d scores for %d candidates", len(scores), len(collected))
	}
	for i := range collected {
		collected[i].rerank = scores[i]
	}
	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].rerank > collected[j].rerank
	})

	return m.acceptReranked(idx, collected, params, now), nil
}

// acceptReranked walks the reranked candidates in order. A candidate below
// RerankThreshold ends the walk: reranked scores are non-increasing, so no
// later candidate can pass. A candidate whose original similarity misses
// MinMatchCosine is skipped, not terminal, and the next candidate is tried.
func (m *Matcher) acceptReranked(idx *catalog.Index, collected []candidate, params Params, now time.Time) *domain.MatchResult {
	for _, c := range collected {
		if c.rerank < params.RerankThreshold {
			m.logger.Debug("cascade rejected below rerank threshold",
				slog.String("event_id", c.id),
				slog.Float64("rerank_score", c.rerank),
				slog.Float64("rerank_threshold", params.RerankThreshold),
			)
			return nil
		}
		if c.similarity < params.MinMatchCosine {
			m.logger.Debug("cascade skipped on min cosine",
				slog.String("event_id", c.id),
				slog.Float64("similarity", c.similarity),
				slog.Float64("min_match_cosine", params.MinMatchCosine),
			)
			continue
		}
		sel := selectMarkets(idx, c.id, params.MaxMarkets, now)
		if len(sel.Items) == 0 {
			continue
		}
		return &domain.MatchResult{
			EventID:     c.id,
			Confidence:  round3(c.rerank),
			Markets:     sel.Items,
			TotalViable: sel.TotalViable,
		}
	}
	return nil
}
