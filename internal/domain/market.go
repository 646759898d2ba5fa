package domain

import "time"

// Prices are stored canonically in micro-USD: 1_000_000 = $1.00. Snapshots
// that use the older percent-of-dollar scale are converted at parse time, so
// nothing past the snapshot loader ever branches on magnitude.
const (
	PriceFull int64 = 1_000_000
	PriceMid  int64 = 500_000

	// Markets priced outside this open interval are treated as effectively
	// resolved: a $0.01 or $0.99 contract carries no information worth
	// surfacing and usually indicates a settled or expiring market.
	priceViableFloor int64 = 30_000
	priceViableCeil  int64 = 970_000
)

// Market is a single yes/no contract belonging to one event.
type Market struct {
	ID      string
	EventID string

	Title         string
	EventTitle    string
	EventSubtitle string
	Category      string
	ImageURL      string
	Rules         string

	// Pricing in micro-USD. Nil means the venue reported no quote.
	BuyYes  *int64
	SellYes *int64
	BuyNo   *int64
	SellNo  *int64

	Volume int64

	// CloseTime is epoch seconds; nil means the market never closes.
	CloseTime *int64
}

// HasPrice reports whether the market carries a buy-yes quote at all.
func (m Market) HasPrice() bool {
	return m.BuyYes != nil
}

// PriceViable reports whether the buy-yes price sits strictly inside the
// viable band, i.e. the market is not already effectively resolved.
func (m Market) PriceViable() bool {
	return m.BuyYes != nil && *m.BuyYes > priceViableFloor && *m.BuyYes < priceViableCeil
}

// TimeViable reports whether the market can still be traded at the given
// instant: either it has no close time, or the close time is strictly in the
// future.
func (m Market) TimeViable(now time.Time) bool {
	return m.CloseTime == nil || *m.CloseTime > now.Unix()
}

// Tradable is the strict viability rule: price-viable and time-viable.
func (m Market) Tradable(now time.Time) bool {
	return m.PriceViable() && m.TimeViable(now)
}

// Uncertainty is the absolute distance of the buy-yes price from the $0.50
// midpoint. Markets with lower values are closer to maximum uncertainty and
// are the most interesting ones to surface. A missing quote counts as the
// midpoint itself.
func (m Market) Uncertainty() int64 {
	if m.BuyYes == nil {
		return 0
	}
	d := PriceMid - *m.BuyYes
	if d < 0 {
		d = -d
	}
	return d
}
