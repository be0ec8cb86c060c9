package insight

import "sort"

// DefaultMaxInsights caps the number of insights returned to a caller
const DefaultMaxInsights = 20

// RankOptions controls Rank
type RankOptions struct {
	// Max truncates the result; <= 0 means DefaultMaxInsights.
	Max int
	// Dedupe drops later insights sharing a normalized title and category.
	Dedupe bool
}

// Rank orders insights by priority and then by descending confidence.
// Ties keep their input order. The input slice is not modified.
func Rank(insights []Insight, opts RankOptions) []Insight {
	limit := opts.Max
	if limit <= 0 {
		limit = DefaultMaxInsights
	}

	ranked := make([]Insight, len(insights))
	copy(ranked, insights)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := ranked[i].Priority.Rank(), ranked[j].Priority.Rank()
		if pi != pj {
			return pi < pj
		}
		return ranked[i].Confidence > ranked[j].Confidence
	})

	if opts.Dedupe {
		seen := make(map[string]bool, len(ranked))
		kept := ranked[:0]
		for _, in := range ranked {
			key := in.dedupeKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			kept = append(kept, in)
		}
		ranked = kept
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
