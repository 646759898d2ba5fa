// Package service contains the request-facing orchestration on top of the
// matching core: batch tweet matching, catalog reloads, and offline
// evaluation.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/saurrx/priced/internal/domain"
	"github.com/saurrx/priced/internal/match"
)

// MatchFeedChannel is the signal-bus channel accepted matches are published
// to for the WebSocket feed.
const MatchFeedChannel = "matches"

// TweetInput is one text item to match.
type TweetInput struct {
	ID   string
	Text string
}

// TweetMatch pairs an input id with its accepted match. Inputs that produced
// no match are simply absent from the output.
type TweetMatch struct {
	TweetID string
	Result  domain.MatchResult
}

// MatchService embeds incoming texts once per batch, runs the matching
// cascade per text, and feeds accepted matches to the live feed.
type MatchService struct {
	embedder domain.Embedder
	matcher  *match.Matcher
	bus      domain.SignalBus // nil disables the live feed
	logger   *slog.Logger
}

// NewMatchService creates a MatchService.
func NewMatchService(embedder domain.Embedder, matcher *match.Matcher, bus domain.SignalBus, logger *slog.Logger) *MatchService {
	return &MatchService{
		embedder: embedder,
		matcher:  matcher,
		bus:      bus,
		logger:   logger.With(slog.String("component", "match_service")),
	}
}

// MatchTweets embeds all texts in one provider call and matches each against
// the catalog. candidates optionally restricts retrieval per tweet id.
func (s *MatchService) MatchTweets(ctx context.Context, tweets []TweetInput, candidates map[string][]string) ([]TweetMatch, error) {
	if len(tweets) == 0 {
		return nil, nil
	}

	texts := make([]string, len(tweets))
	for i, t := range tweets {
		texts[i] = t.Text
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("service: embed batch: %w", err)
	}

	var matches []TweetMatch
	for i, t := range tweets {
		result, err := s.matcher.Match(ctx, vectors[i], match.Options{
			CandidateIDs: candidates[t.ID],
			Text:         t.Text,
		})
		if err != nil {
			return nil, fmt.Errorf("service: match tweet %s: %w", t.ID, err)
		}
		if result == nil {
			continue
		}
		matches = append(matches, TweetMatch{TweetID: t.ID, Result: *result})
		s.broadcast(ctx, t.ID, *result)
	}
	return matches, nil
}

// MarketByID looks up a single market in the current catalog.
func (s *MatchService) MarketByID(id string) (domain.Market, error) {
	m, ok := s.matcher.Index().Market(id)
	if !ok {
		return domain.Market{}, fmt.Errorf("service: market %s: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

// SelectMarkets exposes within-event market selection.
func (s *MatchService) SelectMarkets(eventID string) (domain.MarketSelection, error) {
	sel, ok := s.matcher.SelectMarkets(eventID)
	if !ok {
		return domain.MarketSelection{}, fmt.Errorf("service: event %s: %w", eventID, domain.ErrNotFound)
	}
	return sel, nil
}

// Status summarizes the serving state for the health endpoint.
type Status struct {
	Events          int    `json:"events"`
	Markets         int    `json:"markets"`
	SnapshotVersion string `json:"snapshotVersion,omitempty"`
	EmbedModel      string `json:"model"`
	Reranking       bool   `json:"reranking"`
}

// Status reports the current catalog and provider state.
func (s *MatchService) Status() Status {
	idx := s.matcher.Index()
	return Status{
		Events:          idx.NumEvents(),
		Markets:         idx.NumMarkets(),
		SnapshotVersion: idx.Version(),
		EmbedModel:      s.embedder.ModelName(),
		Reranking:       s.matcher.Reranking(),
	}
}

// feedEvent is the JSON shape published to the match feed.
type feedEvent struct {
	TweetID     string  `json:"tweetId"`
	EventID     string  `json:"eventId"`
	Confidence  float64 `json:"confidence"`
	TotalViable int     `json:"totalViable"`
}

func (s *MatchService) broadcast(ctx context.Context, tweetID string, result domain.MatchResult) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(feedEvent{
		TweetID:     tweetID,
		EventID:     result.EventID,
		Confidence:  result.Confidence,
		TotalViable: result.TotalViable,
	})
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, MatchFeedChannel, payload); err != nil {
		s.logger.Warn("match feed publish failed",
			slog.String("tweet_id", tweetID),
			slog.String("error", err.Error()),
		)
	}
}
