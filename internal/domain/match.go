package domain

// MatchResult is the outcome of matching one text against the catalog. It is
// produced fresh per request and never persisted. Absence of a result is a
// first-class negative outcome, not an error.
type MatchResult struct {
	EventID string

	// Confidence is the accepted candidate's score in [0,1], rounded to three
	// decimal places: the reranker score in cascade mode, the raw cosine
	// similarity otherwise.
	Confidence float64

	// Markets is the price-ranked selection for the event, truncated to the
	// display cap.
	Markets []Market

	// TotalViable is the untruncated count of viable markets for the event,
	// for "+N more" style UIs.
	TotalViable int
}

// MarketSelection is the output of selecting markets for a single event.
type MarketSelection struct {
	Items       []Market
	TotalViable int
}
