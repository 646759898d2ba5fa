package domain

// Snapshot is one externally produced catalog bundle: every event with its
// vector and optional text, plus every market with pricing and close times.
// Prices have already been converted to micro-USD by the snapshot loader.
type Snapshot struct {
	// Version identifies the snapshot for health reporting and reload logs.
	Version string

	// Dimension is the embedding dimension shared by all events.
	Dimension int

	// Events in catalog order. Order is significant: retrieval ties break in
	// this order.
	Events []Event

	// Markets in snapshot insertion order. Markets group many-to-one under
	// events via Market.EventID.
	Markets []Market
}
