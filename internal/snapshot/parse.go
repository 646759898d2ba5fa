// Package snapshot loads catalog bundles from local files or S3-compatible
// object storage and converts them into the canonical domain shape.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/saurrx/priced/internal/domain"
)

// Price scales a bundle may declare. Older bundles quote prices as percent of
// a dollar (3 means $0.03); current ones use micro-USD. Conversion happens
// here, once, so the rest of the system only ever sees micro-USD.
const (
	ScaleMicroUSD = "usd_micro"
	ScalePercent  = "percent"

	percentToMicro = 10_000
)

type bundle struct {
	Version    string         `json:"version"`
	PriceScale string         `json:"priceScale"`
	Dimension  int            `json:"dimension"`
	Events     []bundleEvent  `json:"events"`
	Markets    []bundleMarket `json:"markets"`
}

type bundleEvent struct {
	EventID   string    `json:"eventId"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

type bundleMarket struct {
	MarketID      string   `json:"marketId"`
	EventID       string   `json:"eventId"`
	Title         string   `json:"title"`
	EventTitle    string   `json:"eventTitle"`
	EventSubtitle string   `json:"eventSubtitle"`
	Category      string   `json:"category"`
	ImageURL      string   `json:"imageUrl"`
	RulesPrimary  string   `json:"rulesPrimary"`
	BuyYesPrice   *float64 `json:"buyYesPriceUsd"`
	SellYesPrice  *float64 `json:"sellYesPriceUsd"`
	BuyNoPrice    *float64 `json:"buyNoPriceUsd"`
	SellNoPrice   *float64 `json:"sellNoPriceUsd"`
	Volume        int64    `json:"volume"`
	CloseTime     *int64   `json:"closeTime"`
}

// Parse decodes a catalog bundle and normalizes prices to micro-USD.
// Structural problems are reported wrapping domain.ErrSnapshotInvalid so the
// caller can keep serving the previous snapshot.
func Parse(r io.Reader) (domain.Snapshot, error) {
	var b bundle
	dec := json.NewDecoder(r)
	if err := dec.Decode(&b); err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshot: decode: %v: %w", err, domain.ErrSnapshotInvalid)
	}

	scale := b.PriceScale
	if scale == "" {
		scale = ScaleMicroUSD
	}
	if scale != ScaleMicroUSD && scale != ScalePercent {
		return domain.Snapshot{}, fmt.Errorf("snapshot: unknown price scale %q: %w", scale, domain.ErrSnapshotInvalid)
	}

	snap := domain.Snapshot{
		Version:   b.Version,
		Dimension: b.Dimension,
		Events:    make([]domain.Event, len(b.Events)),
		Markets:   make([]domain.Market, len(b.Markets)),
	}

	for i, ev := range b.Events {
		snap.Events[i] = domain.Event{
			ID:        ev.EventID,
			Text:      ev.Text,
			Embedding: ev.Embedding,
		}
	}

	for i, m := range b.Markets {
		snap.Markets[i] = domain.Market{
			ID:            m.MarketID,
			EventID:       m.EventID,
			Title:         m.Title,
			EventTitle:    m.EventTitle,
			EventSubtitle: m.EventSubtitle,
			Category:      m.Category,
			ImageURL:      m.ImageURL,
			Rules:         m.RulesPrimary,
			BuyYes:        toMicro(m.BuyYesPrice, scale),
			SellYes:       toMicro(m.SellYesPrice, scale),
			BuyNo:         toMicro(m.BuyNoPrice, scale),
			SellNo:        toMicro(m.SellNoPrice, scale),
			Volume:        m.Volume,
			CloseTime:     m.CloseTime,
		}
	}

	return snap, nil
}

// toMicro converts a bundle price to micro-USD under the declared scale.
func toMicro(p *float64, scale string) *int64 {
	if p == nil {
		return nil
	}
	var v int64
	switch scale {
	case ScalePercent:
		v = int64(*p * percentToMicro)
	default:
		v = int64(*p)
	}
	return &v
}
