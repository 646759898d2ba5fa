package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/saurrx/priced/internal/domain"
	"github.com/saurrx/priced/internal/service"
)

// MatchService is what the match handler needs from the service layer,
// declared locally so the handler does not depend on the concrete
// implementation.
type MatchService interface {
	MatchTweets(ctx context.Context, tweets []service.TweetInput, candidates map[string][]string) ([]service.TweetMatch, error)
	MarketByID(id string) (domain.Market, error)
	SelectMarkets(eventID string) (domain.MarketSelection, error)
}

// MatchHandler serves the tweet matching endpoints.
type MatchHandler struct {
	svc    MatchService
	logger *slog.Logger
}

// NewMatchHandler creates a MatchHandler.
func NewMatchHandler(svc MatchService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{svc: svc, logger: logger}
}

type tweetPayload struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type matchRequest struct {
	Tweets     []tweetPayload      `json:"tweets"`
	Candidates map[string][]string `json:"candidates,omitempty"`
}

type tweetMatchPayload struct {
	ID          string          `json:"id"`
	EventID     string          `json:"eventId"`
	Confidence  float64         `json:"confidence"`
	Markets     []marketPayload `json:"markets"`
	TotalViable int             `json:"totalViable"`
}

type matchResponse struct {
	Matches   []tweetMatchPayload `json:"matches"`
	LatencyMs float64             `json:"latencyMs"`
}

// Match matches a batch of tweets against the catalog.
// POST /api/match
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Tweets) == 0 {
		writeError(w, http.StatusBadRequest, "no tweets supplied")
		return
	}

	tweets := make([]service.TweetInput, len(req.Tweets))
	for i, t := range req.Tweets {
		if t.ID == "" || t.Text == "" {
			writeError(w, http.StatusBadRequest, "tweet id and text are required")
			return
		}
		tweets[i] = service.TweetInput{ID: t.ID, Text: t.Text}
	}

	results, err := h.svc.MatchTweets(r.Context(), tweets, req.Candidates)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: match failed",
			slog.Int("tweets", len(tweets)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "matching failed")
		return
	}

	matches := make([]tweetMatchPayload, 0, len(results))
	for _, m := range results {
		matches = append(matches, tweetMatchPayload{
			ID:          m.TweetID,
			EventID:     m.Result.EventID,
			Confidence:  m.Result.Confidence,
			Markets:     toMarketPayloads(m.Result.Markets),
			TotalViable: m.Result.TotalViable,
		})
	}

	writeJSON(w, http.StatusOK, matchResponse{
		Matches:   matches,
		LatencyMs: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// GetMarket returns a single market by id.
// GET /api/markets/{id}
func (h *MatchHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	m, err := h.svc.MarketByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "market not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get market")
		return
	}
	writeJSON(w, http.StatusOK, toMarketPayload(m))
}

type eventMarketsResponse struct {
	EventID     string          `json:"eventId"`
	Markets     []marketPayload `json:"markets"`
	TotalViable int             `json:"totalViable"`
}

// GetEventMarkets returns the price-ranked market selection for an event.
// GET /api/events/{id}/markets
func (h *MatchHandler) GetEventMarkets(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing event id")
		return
	}

	sel, err := h.svc.SelectMarkets(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to select markets")
		return
	}
	writeJSON(w, http.StatusOK, eventMarketsResponse{
		EventID:     id,
		Markets:     toMarketPayloads(sel.Items),
		TotalViable: sel.TotalViable,
	})
}
