package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"identical", "hello", "hello", 100},
		{"both empty", "", "", 100},
		{"one empty", "hello", "", 0},
		{"single substitution", "hello", "hallo", 80},
		{"fully dissimilar", "abc", "xyz", 0},
		{"insertion", "Open file", "Open a file", 81},
		{"unicode runes", "café", "cafe", 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.a, tt.b))
		})
	}
}

func TestScoreSymmetric(t *testing.T) {
	assert.Equal(t, Score("Open file", "Open a file"), Score("Open a file", "Open file"))
}

func TestScoreRange(t *testing.T) {
	pairs := [][2]string{
		{"a", "b"},
		{"short", "a much longer string entirely"},
		{"", "x"},
		{"same", "same"},
	}
	for _, p := range pairs {
		s := Score(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, 100)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-5))
	assert.Equal(t, 100, Clamp(250))
	assert.Equal(t, 75, Clamp(75))
}
