// Package scorer computes normalized similarity scores between a query and
// candidate source texts. Scores drive both low-quality filtering in the
// backends and final ranking in the engine.
package scorer

import (
	"github.com/hbollon/go-edlib"
)

// MaxScore is the score of an exact match.
const MaxScore = 100

// Score returns the similarity between a and b as an integer in [0, 100],
// computed from Levenshtein edit distance normalized by the longer string:
//
//	100 * (1 - distance(a,b) / max(len(a), len(b)))
//
// floored at 0. Two empty strings are an exact match. Lengths and distances
// are measured in runes, not bytes. Score is pure and safe for concurrent
// use.
func Score(a, b string) int {
	if a == b {
		return MaxScore
	}

	la := len([]rune(a))
	lb := len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return MaxScore
	}

	dist := edlib.LevenshteinDistance(a, b)
	score := MaxScore * (maxLen - dist) / maxLen
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Clamp forces a backend-supplied quality value into [0, 100].
func Clamp(quality int) int {
	if quality < 0 {
		return 0
	}
	if quality > MaxScore {
		return MaxScore
	}
	return quality
}
