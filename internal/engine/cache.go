package engine

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/localizers/tmatch/pkg/tm"
)

// queryCache memoizes ranked match lists by exact query source text. It is
// document-scoped: the engine purges it whenever the open document changes
// or the backend set is rebuilt. Entries are stored and returned as
// copies, so cached lists are never mutated after aggregation.
type queryCache struct {
	cache *lru.Cache[string, []tm.Candidate]
}

func newQueryCache(size int) *queryCache {
	if size <= 0 {
		size = 2048
	}
	cache, err := lru.New[string, []tm.Candidate](size)
	if err != nil {
		// Only reachable with a non-positive size, which we normalized
		cache, _ = lru.New[string, []tm.Candidate](2048)
	}
	return &queryCache{cache: cache}
}

// Get returns a copy of the cached ranked list for the query text.
func (c *queryCache) Get(queryText string) ([]tm.Candidate, bool) {
	matches, ok := c.cache.Get(queryText)
	if !ok {
		return nil, false
	}
	return copyCandidates(matches), true
}

// Add stores a copy of the ranked list under the query text.
func (c *queryCache) Add(queryText string, matches []tm.Candidate) {
	c.cache.Add(queryText, copyCandidates(matches))
}

// Purge wipes all entries. Called on document load/close.
func (c *queryCache) Purge() {
	c.cache.Purge()
}

// Len returns the number of cached queries
func (c *queryCache) Len() int {
	return c.cache.Len()
}

func copyCandidates(src []tm.Candidate) []tm.Candidate {
	dst := make([]tm.Candidate, len(src))
	for i, c := range src {
		dst[i] = c
		if c.Quality != nil {
			q := *c.Quality
			dst[i].Quality = &q
		}
	}
	return dst
}
