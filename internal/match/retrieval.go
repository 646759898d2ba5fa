package match

import (
	"sort"

	"github.com/saurrx/priced/internal/catalog"
)

// candidate is one retrieved event paired with its similarity to the query.
type candidate struct {
	pos        int // catalog position
	id         string
	similarity float64
	rerank     float64 // populated by the cascade, unused otherwise
}

// dot computes the dot product of two vectors. For unit-norm vectors this is
// the cosine similarity.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// retrieve ranks events descending by cosine similarity to the query vector.
// When candidateIDs is non-empty the scan is restricted to those events;
// unknown ids are silently dropped. Ties break in catalog order (stable sort).
// An empty result means the overall match fails immediately.
func retrieve(idx *catalog.Index, vector []float32, candidateIDs []string) []candidate {
	var ranked []candidate

	if len(candidateIDs) > 0 {
		ranked = make([]candidate, 0, len(candidateIDs))
		seen := make(map[int]bool, len(candidateIDs))
		for _, id := range candidateIDs {
			pos, ok := idx.EventIndex(id)
			if !ok || seen[pos] {
				continue
			}
			seen[pos] = true
			ranked = append(ranked, candidate{pos: pos, id: id})
		}
		// Ties break in catalog order regardless of how the caller ordered
		// the restriction.
		sort.Slice(ranked, func(i, j int) bool { return ranked[i].pos < ranked[j].pos })
	} else {
		ranked = make([]candidate, idx.NumEvents())
		for i := range ranked {
			ranked[i] = candidate{pos: i, id: idx.EventAt(i).ID}
		}
	}

	for i := range ranked {
		ranked[i].similarity = dot(vector, idx.EventAt(ranked[i].pos).Embedding)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].similarity > ranked[j].similarity
	})
	return ranked
}
