package match

import (
	"sort"
	"time"

	"github.com/saurrx/priced/internal/catalog"
	"github.com/saurrx/priced/internal/domain"
)

// selectMarkets filters and orders an event's markets for display. The strict
// tradable rule applies first; when it leaves nothing, the relaxed rule (has
// a quote and is time-viable) applies instead, so an event whose markets are
// all near-resolved can still surface something. Markets are ordered by
// closeness of the buy-yes price to the $0.50 midpoint and truncated to cap;
// TotalViable reports the untruncated count.
func selectMarkets(idx *catalog.Index, eventID string, cap int, now time.Time) domain.MarketSelection {
	markets := idx.MarketsOf(eventID)
	if len(markets) == 0 {
		return domain.MarketSelection{}
	}

	viable := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if m.Tradable(now) {
			viable = append(viable, m)
		}
	}
	if len(viable) == 0 {
		for _, m := range markets {
			if m.HasPrice() && m.TimeViable(now) {
				viable = append(viable, m)
			}
		}
	}
	if len(viable) == 0 {
		return domain.MarketSelection{}
	}

	sort.SliceStable(viable, func(i, j int) bool {
		return viable[i].Uncertainty() < viable[j].Uncertainty()
	})

	total := len(viable)
	if cap > 0 && len(viable) > cap {
		viable = viable[:cap]
	}
	return domain.MarketSelection{Items: viable, TotalViable: total}
}

// hasViableMarkets reports whether at least one of the event's markets passes
// the strict tradable rule. The cascade scan uses this to skip events that
// would have nothing actionable to show.
func hasViableMarkets(idx *catalog.Index, eventID string, now time.Time) bool {
	for _, m := range idx.MarketsOf(eventID) {
		if m.Tradable(now) {
			return true
		}
	}
	return false
}
