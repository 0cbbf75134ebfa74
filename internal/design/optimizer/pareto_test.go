package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/VOLTA/internal/design"
)

func mkCandidate(index int, cost, eff float64) *design.Candidate {
	return &design.Candidate{Index: index, RelativeCost: cost, EfficiencyCEC: eff, Feasible: true}
}

var (
	costAxis = func(c *design.Candidate) float64 { return c.RelativeCost }
	effAxis  = func(c *design.Candidate) float64 { return c.EfficiencyCEC }
)

func TestFrontierDominance(t *testing.T) {
	cheapGood := mkCandidate(0, 10, 0.95)
	dearBetter := mkCandidate(1, 20, 0.97)
	dearWorse := mkCandidate(2, 20, 0.94) // dominated by cheapGood

	f := Frontier([]*design.Candidate{cheapGood, dearBetter, dearWorse}, costAxis, effAxis, true, false)

	require.Len(t, f, 2)
	assert.Contains(t, f, cheapGood)
	assert.Contains(t, f, dearBetter)
	assert.NotContains(t, f, dearWorse)
}

func TestFrontierTiesDoNotDominate(t *testing.T) {
	a := mkCandidate(0, 10, 0.95)
	b := mkCandidate(1, 10, 0.93) // same cost, worse efficiency: not strictly worse on both

	f := Frontier([]*design.Candidate{a, b}, costAxis, effAxis, true, false)
	assert.Len(t, f, 2)
}

func TestFrontierEqualCostLowerEfficiencyDominatedByCheaper(t *testing.T) {
	// Strictly cheaper and strictly better: domination.
	better := mkCandidate(0, 9, 0.96)
	worse := mkCandidate(1, 10, 0.95)

	f := Frontier([]*design.Candidate{better, worse}, costAxis, effAxis, true, false)
	require.Len(t, f, 1)
	assert.Same(t, better, f[0])
}

func TestFrontierIsSubsetAndStableUnderRemoval(t *testing.T) {
	cands := []*design.Candidate{
		mkCandidate(0, 10, 0.95),
		mkCandidate(1, 12, 0.96),
		mkCandidate(2, 14, 0.965),
		mkCandidate(3, 13, 0.94), // dominated by index 1
		mkCandidate(4, 11, 0.93), // dominated by index 0
	}

	f := Frontier(cands, costAxis, effAxis, true, false)
	members := make(map[*design.Candidate]bool)
	for _, c := range f {
		assert.Contains(t, cands, c, "frontier must be a subset")
		members[c] = true
	}

	// Removing a frontier member never re-admits a dominated candidate.
	var without []*design.Candidate
	for _, c := range cands {
		if c != f[0] {
			without = append(without, c)
		}
	}
	f2 := Frontier(without, costAxis, effAxis, true, false)
	for _, c := range f2 {
		if !members[c] {
			// A newly exposed member must have been dominated only by the
			// removed candidate; it must not be one already ruled out by a
			// remaining member.
			for _, other := range without {
				dominates := other.RelativeCost < c.RelativeCost && other.EfficiencyCEC > c.EfficiencyCEC
				assert.False(t, dominates)
			}
		}
	}
}

func TestFrontierSortedByXAscending(t *testing.T) {
	cands := []*design.Candidate{
		mkCandidate(0, 30, 0.99),
		mkCandidate(1, 10, 0.95),
		mkCandidate(2, 20, 0.97),
	}
	f := Frontier(cands, costAxis, effAxis, true, false)
	require.Len(t, f, 3)
	for i := 1; i < len(f); i++ {
		assert.LessOrEqual(t, f[i-1].RelativeCost, f[i].RelativeCost)
	}
}

func TestFrontierMinimizeBothAxes(t *testing.T) {
	small := mkCandidate(0, 10, 0)
	small.RelativeSize = 5
	big := mkCandidate(1, 12, 0)
	big.RelativeSize = 9

	sizeAxis := func(c *design.Candidate) float64 { return c.RelativeSize }
	f := Frontier([]*design.Candidate{small, big}, costAxis, sizeAxis, true, true)
	require.Len(t, f, 1)
	assert.Same(t, small, f[0])
}

func TestFrontierEmptyInput(t *testing.T) {
	assert.Empty(t, Frontier(nil, costAxis, effAxis, true, false))
}
