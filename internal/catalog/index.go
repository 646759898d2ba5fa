// Package catalog builds the immutable per-snapshot view of events and
// markets that the matching pipeline reads. An Index is constructed once from
// a snapshot and never mutated; a reload builds a brand-new Index and the
// matcher swaps a reference to it.
package catalog

import (
	"fmt"

	"github.com/saurrx/priced/internal/domain"
)

// Index is the read-only catalog view for one snapshot. All lookups are safe
// for concurrent use without locking.
type Index struct {
	version   string
	dimension int

	events   []domain.Event
	eventIdx map[string]int

	markets    []domain.Market
	marketIdx  map[string]int
	eventOwned map[string][]int // event id -> market positions, insertion order

	orphans int
}

// Build validates the snapshot and constructs an Index from it. Structural
// problems (missing identifiers, inconsistent embedding dimensions) are
// reported as errors wrapping domain.ErrSnapshotInvalid; they are fatal for
// the load, not per-request. A market whose event id does not resolve to a
// known event is kept for id lookups but excluded from event-keyed grouping.
func Build(snap domain.Snapshot) (*Index, error) {
	if len(snap.Events) == 0 {
		return nil, fmt.Errorf("catalog: no events: %w", domain.ErrSnapshotInvalid)
	}

	dim := snap.Dimension
	if dim == 0 {
		dim = len(snap.Events[0].Embedding)
	}
	if dim == 0 {
		return nil, fmt.Errorf("catalog: zero embedding dimension: %w", domain.ErrSnapshotInvalid)
	}

	idx := &Index{
		version:    snap.Version,
		dimension:  dim,
		events:     snap.Events,
		eventIdx:   make(map[string]int, len(snap.Events)),
		markets:    snap.Markets,
		marketIdx:  make(map[string]int, len(snap.Markets)),
		eventOwned: make(map[string][]int),
	}

	for i, ev := range snap.Events {
		if ev.ID == "" {
			return nil, fmt.Errorf("catalog: event %d has no id: %w", i, domain.ErrSnapshotInvalid)
		}
		if len(ev.Embedding) != dim {
			return nil, fmt.Errorf("catalog: event %s embedding dimension %d, want %d: %w",
				ev.ID, len(ev.Embedding), dim, domain.ErrSnapshotInvalid)
		}
		if _, dup := idx.eventIdx[ev.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate event id %s: %w", ev.ID, domain.ErrSnapshotInvalid)
		}
		idx.eventIdx[ev.ID] = i
	}

	for i, m := range snap.Markets {
		if m.ID == "" {
			return nil, fmt.Errorf("catalog: market %d has no id: %w", i, domain.ErrSnapshotInvalid)
		}
		if m.EventID == "" {
			return nil, fmt.Errorf("catalog: market %s has no event id: %w", m.ID, domain.ErrSnapshotInvalid)
		}
		idx.marketIdx[m.ID] = i

		if _, known := idx.eventIdx[m.EventID]; !known {
			idx.orphans++
			continue
		}
		idx.eventOwned[m.EventID] = append(idx.eventOwned[m.EventID], i)
	}

	return idx, nil
}

// Version returns the snapshot version string, which may be empty.
func (x *Index) Version() string { return x.version }

// Dimension returns the embedding dimension shared by all events.
func (x *Index) Dimension() int { return x.dimension }

// NumEvents returns the event count.
func (x *Index) NumEvents() int { return len(x.events) }

// NumMarkets returns the market count, orphans included.
func (x *Index) NumMarkets() int { return len(x.markets) }

// OrphanCount returns how many markets referenced an unknown event and were
// excluded from event-keyed lookups.
func (x *Index) OrphanCount() int { return x.orphans }

// Event returns the event with the given id.
func (x *Index) Event(id string) (domain.Event, bool) {
	i, ok := x.eventIdx[id]
	if !ok {
		return domain.Event{}, false
	}
	return x.events[i], true
}

// EventAt returns the event at catalog position i.
func (x *Index) EventAt(i int) domain.Event { return x.events[i] }

// EventIndex returns the catalog position of the given event id.
func (x *Index) EventIndex(id string) (int, bool) {
	i, ok := x.eventIdx[id]
	return i, ok
}

// Market returns the market with the given id. Orphaned markets are still
// resolvable by id.
func (x *Index) Market(id string) (domain.Market, bool) {
	i, ok := x.marketIdx[id]
	if !ok {
		return domain.Market{}, false
	}
	return x.markets[i], true
}

// MarketsOf returns the event's markets in snapshot insertion order. The
// returned slice is freshly allocated; callers may reorder it.
func (x *Index) MarketsOf(eventID string) []domain.Market {
	positions := x.eventOwned[eventID]
	if len(positions) == 0 {
		return nil
	}
	out := make([]domain.Market, len(positions))
	for i, p := range positions {
		out[i] = x.markets[p]
	}
	return out
}
