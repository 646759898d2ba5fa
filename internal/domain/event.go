package domain

// Event is a topical catalog entry that groups zero or more tradable markets.
// Events are loaded once per snapshot and never mutated afterwards.
type Event struct {
	ID string

	// Text is the raw descriptive text the embedding was generated from. It
	// is only consulted by the reranking stage; retrieval works purely on the
	// stored vector.
	Text string

	// Embedding is the unit-norm vector for this event. All events in one
	// snapshot share the same dimension.
	Embedding []float32
}
