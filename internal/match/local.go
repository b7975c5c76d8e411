package match

import (
	"context"
	"fmt"
	"sort"

	"github.com/localizers/tmatch/internal/scorer"
	"github.com/localizers/tmatch/internal/tmstore"
	"github.com/localizers/tmatch/pkg/tm"
)

// LocalSource matches the query against translated units of the currently
// open document. Candidates are prefiltered through the store's full-text
// index, then scored with the edit-distance scorer. Exact self-matches
// (the unit being translated matching itself at quality 100) are dropped
// so the backend only ever suggests fuzzy material.
type LocalSource struct {
	store          *tmstore.Store
	minSimilarity  int
	maxCandidates  int
	prefilterLimit int
}

// NewLocalSource creates a current-file matcher over the given unit store.
func NewLocalSource(store *tmstore.Store, minSimilarity, maxCandidates, prefilterLimit int) *LocalSource {
	if minSimilarity <= 0 {
		minSimilarity = 75
	}
	if maxCandidates <= 0 {
		maxCandidates = 9
	}
	if prefilterLimit <= 0 {
		prefilterLimit = 50
	}

	return &LocalSource{
		store:          store,
		minSimilarity:  minSimilarity,
		maxCandidates:  maxCandidates,
		prefilterLimit: prefilterLimit,
	}
}

func (l *LocalSource) Query(ctx context.Context, q tm.Query) ([]tm.Candidate, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	units, err := l.store.Search(ctx, q.Source, l.prefilterLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	candidates := make([]tm.Candidate, 0, len(units))
	for _, u := range units {
		if u.Target == "" {
			continue
		}

		quality := scorer.Score(q.Source, u.Source)
		if quality < l.minSimilarity {
			continue
		}
		if quality == scorer.MaxScore {
			// Exact self-match; the open document already contains
			// this translation
			continue
		}

		candidates = append(candidates, tm.Candidate{
			Source:  u.Source,
			Target:  u.Target,
			Quality: tm.QualityOf(quality),
			Context: u.Context,
			Origin:  SourceLocal,
		})
	}

	// Cap on the best-scoring candidates, not prefilter order
	sort.SliceStable(candidates, func(i, j int) bool {
		return *candidates[i].Quality > *candidates[j].Quality
	})
	if len(candidates) > l.maxCandidates {
		candidates = candidates[:l.maxCandidates]
	}

	return candidates, nil
}

func (l *LocalSource) Name() string {
	return SourceLocal
}

func (l *LocalSource) Close() error {
	return nil
}
