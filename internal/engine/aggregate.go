package engine

import (
	"sort"

	"github.com/localizers/tmatch/internal/scorer"
	"github.com/localizers/tmatch/pkg/tm"
)

// Aggregate merges the accumulated candidates of one query into the final
// ranked list:
//
//  1. Candidates without a source text are dropped defensively.
//  2. Candidates are deduplicated by target text, first seen wins.
//  3. Unscored candidates are scored against the query text; supplied
//     quality values are clamped to [0, 100] and otherwise left as-is.
//  4. The list is stable-sorted by descending quality, so equal scores
//     keep arrival order.
//  5. The list is truncated to maxResults.
//
// Aggregate never mutates its input; it returns a fresh slice each call,
// because backends complete independently and the engine re-aggregates
// the full accumulated set after every completion.
func Aggregate(queryText string, candidates []tm.Candidate, maxResults int) []tm.Candidate {
	seen := make(map[string]bool, len(candidates))
	merged := make([]tm.Candidate, 0, len(candidates))

	for _, c := range candidates {
		if c.Source == "" {
			continue
		}
		if seen[c.Target] {
			continue
		}
		seen[c.Target] = true

		if c.Quality == nil {
			c.Quality = tm.QualityOf(scorer.Score(queryText, c.Source))
		} else {
			c.Quality = tm.QualityOf(scorer.Clamp(*c.Quality))
		}
		merged = append(merged, c)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return *merged[i].Quality > *merged[j].Quality
	})

	if maxResults > 0 && len(merged) > maxResults {
		merged = merged[:maxResults]
	}

	return merged
}
