package optimizer

import (
	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/VOLTA/internal/design"
	"github.com/copyleftdev/VOLTA/internal/design/catalog"
)

// Generator lazily enumerates candidate skeletons: the outer loop walks
// switch x rectifier combinations in library order, the inner loop walks the
// evenly spaced frequency samples. Generation stops after maxEvaluations
// skeletons, even mid-combination, so the produced set is always a
// deterministic prefix of the full cross-product. A Generator is single-use
// and not safe for concurrent callers.
type Generator struct {
	switches   []*catalog.SwitchSpec
	rectifiers []*catalog.RectifierSpec
	freqs      []float64
	max        int

	si, ri, fi int
	count      int
}

// NewGenerator builds a generator over the library's device combinations and
// samples evenly spaced frequencies across [fMin, fMax]. A single sample
// collapses the axis to fMin.
func NewGenerator(lib *catalog.Library, fMin, fMax float64, samples, maxEvaluations int) *Generator {
	var freqs []float64
	if samples <= 1 {
		freqs = []float64{fMin}
	} else {
		freqs = floats.Span(make([]float64, samples), fMin, fMax)
	}
	return &Generator{
		switches:   lib.Switches(),
		rectifiers: lib.Rectifiers(),
		freqs:      freqs,
		max:        maxEvaluations,
	}
}

// Total returns the untruncated size of the cross-product.
func (g *Generator) Total() int {
	return len(g.switches) * len(g.rectifiers) * len(g.freqs)
}

// Next yields the next skeleton. The second return is false once the space
// or the evaluation budget is exhausted.
func (g *Generator) Next() (design.Skeleton, bool) {
	if g.count >= g.max || g.si >= len(g.switches) {
		return design.Skeleton{}, false
	}

	s := design.Skeleton{
		Index:     g.count,
		Switch:    g.switches[g.si],
		Rectifier: g.rectifiers[g.ri],
		Frequency: g.freqs[g.fi],
	}
	g.count++

	g.fi++
	if g.fi == len(g.freqs) {
		g.fi = 0
		g.ri++
		if g.ri == len(g.rectifiers) {
			g.ri = 0
			g.si++
		}
	}
	return s, true
}
