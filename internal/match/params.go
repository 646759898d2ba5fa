package match

// Params are the named tuning knobs for the matching cascade. Zero fields are
// filled from Defaults, so a caller overriding a single knob does not have to
// restate the rest.
type Params struct {
	// Threshold is the plain cosine-similarity acceptance threshold used
	// when the rerank cascade is not engaged.
	Threshold float64

	// CosineGate is the minimum best similarity required to attempt
	// reranking at all. Short or generic inputs that cannot clear a loose
	// bar are rejected before paying the cross-encoder cost.
	CosineGate float64

	// CosineScan is how many top-retrieved events to walk, in similarity
	// order, while collecting viable candidates for reranking. A meaningful
	// share of top-similarity events can have no tradable markets, so the
	// scan window is wider than the candidate pool.
	CosineScan int

	// RerankTopN is the maximum number of viable candidates sent to the
	// reranker once found during the scan.
	RerankTopN int

	// RerankThreshold replaces Threshold as the acceptance bar once
	// reranking has occurred, applied to reranker scores.
	RerankThreshold float64

	// MinMatchCosine is a secondary floor on the original similarity of a
	// reranked candidate. It protects against the cross-encoder favoring
	// keyword overlap when raw semantic similarity was mediocre.
	MinMatchCosine float64

	// MaxMarkets caps the market list returned with a match.
	MaxMarkets int

	// DirectFallbackScan bounds how many top candidates the direct
	// (no-rerank) mode tries, skipping only candidates with an empty market
	// selection, never on score. 1 means top candidate only.
	DirectFallbackScan int
}

// Defaults returns the production-tuned parameter set.
func Defaults() Params {
	return Params{
		Threshold:          0.75,
		CosineGate:         0.65,
		CosineScan:         50,
		RerankTopN:         8,
		RerankThreshold:    0.83,
		MinMatchCosine:     0.72,
		MaxMarkets:         2,
		DirectFallbackScan: 1,
	}
}

// normalized fills zero-valued fields from Defaults.
func (p Params) normalized() Params {
	d := Defaults()
	if p.Threshold == 0 {
		p.Threshold = d.Threshold
	}
	if p.CosineGate == 0 {
		p.CosineGate = d.CosineGate
	}
	if p.CosineScan == 0 {
		p.CosineScan = d.CosineScan
	}
	if p.RerankTopN == 0 {
		p.RerankTopN = d.RerankTopN
	}
	if p.RerankThreshold == 0 {
		p.RerankThreshold = d.RerankThreshold
	}
	if p.MinMatchCosine == 0 {
		p.MinMatchCosine = d.MinMatchCosine
	}
	if p.MaxMarkets == 0 {
		p.MaxMarkets = d.MaxMarkets
	}
	if p.DirectFallbackScan == 0 {
		p.DirectFallbackScan = d.DirectFallbackScan
	}
	return p
}
