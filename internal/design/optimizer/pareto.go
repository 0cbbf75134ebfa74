package optimizer

import (
	"sort"

	"github.com/copyleftdev/VOLTA/internal/design"
)

// Metric extracts one objective axis from a candidate.
type Metric func(*design.Candidate) float64

// Frontier returns the non-dominated subset of candidates over the two
// metric axes. minimizeX/minimizeY select the improvement direction per
// axis. A candidate is dominated only when another is strictly better on
// both axes; ties never dominate. The result is stably sorted by the x
// metric ascending so output ordering is reproducible. O(n^2), fine for the
// candidate counts a run produces.
func Frontier(candidates []*design.Candidate, x, y Metric, minimizeX, minimizeY bool) []*design.Candidate {
	strictlyBetter := func(a, b float64, minimize bool) bool {
		if minimize {
			return a < b
		}
		return a > b
	}

	var frontier []*design.Candidate
	for i, c := range candidates {
		dominated := false
		for j, other := range candidates {
			if i == j {
				continue
			}
			if strictlyBetter(x(other), x(c), minimizeX) &&
				strictlyBetter(y(other), y(c), minimizeY) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, c)
		}
	}

	sort.SliceStable(frontier, func(i, j int) bool {
		return x(frontier[i]) < x(frontier[j])
	})
	return frontier
}
