package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localizers/tmatch/pkg/tm"
)

func TestAggregateRanking(t *testing.T) {
	candidates := []tm.Candidate{
		{Source: "a", Target: "t1", Quality: tm.QualityOf(40)},
		{Source: "b", Target: "t2", Quality: tm.QualityOf(95)},
		{Source: "c", Target: "t3", Quality: tm.QualityOf(70)},
	}

	ranked := Aggregate("query", candidates, 10)
	require.Len(t, ranked, 3)
	assert.Equal(t, 95, *ranked[0].Quality)
	assert.Equal(t, 70, *ranked[1].Quality)
	assert.Equal(t, 40, *ranked[2].Quality)
}

func TestAggregateTiesPreserveArrivalOrder(t *testing.T) {
	candidates := []tm.Candidate{
		{Source: "first", Target: "t1", Quality: tm.QualityOf(80)},
		{Source: "second", Target: "t2", Quality: tm.QualityOf(80)},
		{Source: "third", Target: "t3", Quality: tm.QualityOf(80)},
	}

	ranked := Aggregate("query", candidates, 10)
	require.Len(t, ranked, 3)
	assert.Equal(t, "first", ranked[0].Source)
	assert.Equal(t, "second", ranked[1].Source)
	assert.Equal(t, "third", ranked[2].Source)
}

func TestAggregateDeduplicatesByTarget(t *testing.T) {
	candidates := []tm.Candidate{
		{Source: "a", Target: "same", Quality: tm.QualityOf(60)},
		{Source: "b", Target: "same", Quality: tm.QualityOf(90)},
		{Source: "c", Target: "other", Quality: tm.QualityOf(50)},
	}

	ranked := Aggregate("query", candidates, 10)
	require.Len(t, ranked, 2)
	// First seen wins the dedup, before scoring order applies
	assert.Equal(t, "a", ranked[0].Source)
	assert.Equal(t, 60, *ranked[0].Quality)
}

func TestAggregateScoresUnscored(t *testing.T) {
	candidates := []tm.Candidate{
		{Source: "Open file", Target: "Ouvrir le fichier", Quality: tm.QualityOf(100)},
		{Source: "Open a file", Target: "Ouvrir un fichier"},
	}

	ranked := Aggregate("Open file", candidates, 10)
	require.Len(t, ranked, 2)
	assert.Equal(t, 100, *ranked[0].Quality)
	assert.Equal(t, 81, *ranked[1].Quality)
	assert.Equal(t, "Ouvrir un fichier", ranked[1].Target)
}

func TestAggregateClampsSuppliedQuality(t *testing.T) {
	candidates := []tm.Candidate{
		{Source: "a", Target: "t1", Quality: tm.QualityOf(250)},
		{Source: "b", Target: "t2", Quality: tm.QualityOf(-10)},
	}

	ranked := Aggregate("query", candidates, 10)
	require.Len(t, ranked, 2)
	assert.Equal(t, 100, *ranked[0].Quality)
	assert.Equal(t, 0, *ranked[1].Quality)
}

func TestAggregateDropsMalformed(t *testing.T) {
	candidates := []tm.Candidate{
		{Source: "", Target: "orphan"},
		{Source: "ok", Target: "t", Quality: tm.QualityOf(50)},
	}

	ranked := Aggregate("query", candidates, 10)
	require.Len(t, ranked, 1)
	assert.Equal(t, "ok", ranked[0].Source)
}

func TestAggregateTruncates(t *testing.T) {
	var candidates []tm.Candidate
	for i := 0; i < 10; i++ {
		candidates = append(candidates, tm.Candidate{
			Source:  "src",
			Target:  string(rune('a' + i)),
			Quality: tm.QualityOf(50 + i),
		})
	}

	ranked := Aggregate("query", candidates, 3)
	require.Len(t, ranked, 3)
	assert.Equal(t, 59, *ranked[0].Quality)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	candidates := []tm.Candidate{
		{Source: "a", Target: "t1"},
		{Source: "b", Target: "t2", Quality: tm.QualityOf(90)},
	}

	_ = Aggregate("query", candidates, 10)
	assert.Nil(t, candidates[0].Quality)
}
