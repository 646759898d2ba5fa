package match_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saurrx/priced/internal/catalog"
	"github.com/saurrx/priced/internal/domain"
	"github.com/saurrx/priced/internal/match"
)

// stubReranker scores documents by exact text lookup and records what it was
// asked to score.
type stubReranker struct {
	scores map[string]float64
	err    error

	calls    int
	gotQuery string
	gotDocs  []string
}

func (s *stubReranker) ModelName() string { return "stub-reranker" }

func (s *stubReranker) Score(_ context.Context, query string, docs []string) ([]float64, error) {
	s.calls++
	s.gotQuery = query
	s.gotDocs = docs
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float64, len(docs))
	for i, d := range docs {
		out[i] = s.scores[d]
	}
	return out, nil
}

func TestCascadeAcceptsRerankedWinner(t *testing.T) {
	rr := &stubReranker{scores: map[string]float64{
		"Will BTC close above 100k in March?": 0.70,
		"Will the Fed cut rates in March?":    0.91,
	}}
	m := newMatcher(t, testIndex(t), rr)

	// ev-a leads on cosine, but the cross-encoder prefers ev-b.
	res, err := m.Match(context.Background(), []float32{0.80, 0.78, 0.1}, match.Options{
		Text: "fed rate cut odds",
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "ev-b", res.EventID)
	assert.InDelta(t, 0.91, res.Confidence, 1e-9)
	assert.Equal(t, 1, rr.calls, "one reranking call per match")
	assert.Equal(t, "fed rate cut odds", rr.gotQuery)
	// ev-c has no tradable markets, so only two candidates reach the reranker.
	assert.Len(t, rr.gotDocs, 2)
}

func TestCascadeGatedOnCosine(t *testing.T) {
	rr := &stubReranker{scores: map[string]float64{}}
	m := newMatcher(t, testIndex(t), rr)

	res, err := m.Match(context.Background(), []float32{0.60, 0.40, 0.1}, match.Options{
		Text: "something vague",
	})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Zero(t, rr.calls, "the gate must fire before the cross-encoder is paid for")
}

func TestCascadeRejectsBelowRerankThreshold(t *testing.T) {
	rr := &stubReranker{scores: map[string]float64{
		"Will BTC close above 100k in March?": 0.82,
		"Will the Fed cut rates in March?":    0.50,
	}}
	m := newMatcher(t, testIndex(t), rr)

	res, err := m.Match(context.Background(), []float32{0.80, 0.78, 0.1}, match.Options{
		Text: "bitcoin price",
	})
	require.NoError(t, err)
	assert.Nil(t, res, "0.82 misses the 0.83 bar and the walk is terminal")
}

func TestCascadeSkipsOnMinCosineAndTriesNext(t *testing.T) {
	// ev-b wins the rerank but its original similarity (0.70) misses the 0.72
	// floor; the walk skips it and accepts ev-a.
	rr := &stubReranker{scores: map[string]float64{
		"Will BTC close above 100k in March?": 0.88,
		"Will the Fed cut rates in March?":    0.95,
	}}
	m := newMatcher(t, testIndex(t), rr)

	res, err := m.Match(context.Background(), []float32{0.80, 0.70, 0.1}, match.Options{
		Text: "rates and bitcoin",
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "ev-a", res.EventID)
	assert.InDelta(t, 0.88, res.Confidence, 1e-9)
}

func TestCascadeSkipsEventsWithoutViableMarkets(t *testing.T) {
	rr := &stubReranker{scores: map[string]float64{
		"Will BTC close above 100k in March?": 0.90,
	}}
	m := newMatcher(t, testIndex(t), rr)

	// ev-c dominates the similarity ranking but has no tradable markets, so it
	// must never be offered to the reranker.
	res, err := m.Match(context.Background(), []float32{0.80, 0.1, 0.99}, match.Options{
		Text: "btc",
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "ev-a", res.EventID)
	for _, d := range rr.gotDocs {
		assert.NotEqual(t, "Will it snow in Miami?", d)
	}
}

func TestCascadeReturnsNoneWhenEveryMarketNearResolved(t *testing.T) {
	// The only event clears the cosine gate, but its single market has all but
	// resolved yes, so the scan collects nothing and the cross-encoder is never
	// consulted.
	idx, err := catalog.Build(domain.Snapshot{
		Events: []domain.Event{
			{ID: "ev-res", Text: "Will the incumbent win?", Embedding: []float32{1}},
		},
		Markets: []domain.Market{
			{ID: "mk-res", EventID: "ev-res", BuyYes: price(990_000)},
		},
	})
	require.NoError(t, err)

	rr := &stubReranker{scores: map[string]float64{"Will the incumbent win?": 0.99}}
	m := newMatcher(t, idx, rr)

	res, err := m.Match(context.Background(), []float32{0.9}, match.Options{
		Text: "incumbent odds",
	})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Zero(t, rr.calls)
}

func TestCascadeRerankErrorPropagates(t *testing.T) {
	rr := &stubReranker{err: errors.New("service unavailable")}
	m := newMatcher(t, testIndex(t), rr)

	_, err := m.Match(context.Background(), []float32{0.80, 0.78, 0.1}, match.Options{
		Text: "anything",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rerank")
}

func TestCascadeRespectsRerankTopN(t *testing.T) {
	events := make([]domain.Event, 10)
	markets := make([]domain.Market, 10)
	scores := make(map[string]float64, 10)
	for i := range events {
		emb := make([]float32, 1)
		emb[0] = float32(1.0 - float64(i)*0.01)
		id := string(rune('a' + i))
		events[i] = domain.Event{ID: "ev-" + id, Text: "event " + id, Embedding: emb}
		markets[i] = domain.Market{ID: "mk-" + id, EventID: "ev-" + id, BuyYes: price(500_000)}
		scores["event "+id] = 0.5
	}
	idx, err := catalog.Build(domain.Snapshot{Events: events, Markets: markets})
	require.NoError(t, err)

	rr := &stubReranker{scores: scores}
	m := newMatcher(t, idx, rr)

	params := match.Defaults()
	params.RerankTopN = 3
	_, err = m.Match(context.Background(), []float32{0.9}, match.Options{
		Text:   "query",
		Params: &params,
	})
	require.NoError(t, err)
	assert.Len(t, rr.gotDocs, 3)
}

func TestCascadeWithoutTextFallsBackToDirect(t *testing.T) {
	rr := &stubReranker{scores: map[string]float64{}}
	m := newMatcher(t, testIndex(t), rr)

	res, err := m.Match(context.Background(), []float32{0.9, 0.3, 0.1}, match.Options{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "ev-a", res.EventID)
	assert.Zero(t, rr.calls)
}
