package handler

import (
	"encoding/json"
	"net/http"

	"github.com/saurrx/priced/internal/domain"
)

// writeJSON marshals v as JSON and writes it with the given status code. If
// marshaling fails, it falls back to a plain 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// marketPayload is the wire shape of a market across all endpoints. Prices
// stay in micro-USD.
type marketPayload struct {
	MarketID      string `json:"marketId"`
	EventID       string `json:"eventId"`
	Title         string `json:"title"`
	EventTitle    string `json:"eventTitle,omitempty"`
	EventSubtitle string `json:"eventSubtitle,omitempty"`
	Category      string `json:"category,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty"`
	Rules         string `json:"rulesPrimary,omitempty"`
	BuyYes        *int64 `json:"buyYesPriceUsd"`
	SellYes       *int64 `json:"sellYesPriceUsd,omitempty"`
	BuyNo         *int64 `json:"buyNoPriceUsd,omitempty"`
	SellNo        *int64 `json:"sellNoPriceUsd,omitempty"`
	Volume        int64  `json:"volume,omitempty"`
	CloseTime     *int64 `json:"closeTime,omitempty"`
}

func toMarketPayload(m domain.Market) marketPayload {
	return marketPayload{
		MarketID:      m.ID,
		EventID:       m.EventID,
		Title:         m.Title,
		EventTitle:    m.EventTitle,
		EventSubtitle: m.EventSubtitle,
		Category:      m.Category,
		ImageURL:      m.ImageURL,
		Rules:         m.Rules,
		BuyYes:        m.BuyYes,
		SellYes:       m.SellYes,
		BuyNo:         m.BuyNo,
		SellNo:        m.SellNo,
		Volume:        m.Volume,
		CloseTime:     m.CloseTime,
	}
}

func toMarketPayloads(markets []domain.Market) []marketPayload {
	out := make([]marketPayload, len(markets))
	for i, m := range markets {
		out[i] = toMarketPayload(m)
	}
	return out
}
