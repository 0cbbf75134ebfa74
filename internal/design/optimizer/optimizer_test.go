package optimizer

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/VOLTA/internal/design"
	"github.com/copyleftdev/VOLTA/internal/design/catalog"
	"github.com/copyleftdev/VOLTA/internal/design/magnetics"
	"github.com/copyleftdev/VOLTA/internal/logging"
)

func testOptimizer(workers int) *Optimizer {
	designer := magnetics.NewDesigner(catalog.BuiltinCatalog(), magnetics.DefaultParams())
	logger := logging.New(logging.ErrorLevel, io.Discard)
	return New(catalog.BuiltinLibrary(), designer, logger, workers)
}

func testSpec() design.Specification {
	return design.Specification{
		PowerMin:         330,
		PowerRated:       3300,
		PowerMax:         3300,
		VinMin:           390,
		VinNom:           400,
		VinMax:           410,
		Vout:             46,
		NPhases:          3,
		EfficiencyTarget: 0.5,
		Objective:        design.Balanced,
		FrequencyMin:     100e3,
		FrequencyMax:     120e3,
		FrequencySamples: 2,
		MaxEvaluations:   40,
		ZVS:              true,
	}
}

func TestOptimizeEndToEnd(t *testing.T) {
	o := testOptimizer(1)
	result, err := o.Optimize(context.Background(), testSpec())
	require.NoError(t, err)
	require.NotEmpty(t, result.AllCandidates)

	for _, c := range result.AllCandidates {
		assert.True(t, c.Feasible)
		assert.Greater(t, c.EfficiencyCEC, 0.5)
		assert.Greater(t, c.RelativeCost, 0.0)
		assert.Greater(t, c.RelativeSize, 0.0)

		// Saturation invariant holds for every returned design.
		for _, m := range c.MagneticDesigns {
			assert.LessOrEqual(t, m.PeakFluxDensity(), 0.39*0.8+1e-9,
				"candidate %d %s", c.Index, m.Label())
		}

		// Total always equals the sum of the named sub-losses.
		require.Len(t, c.LossesByLoad, len(c.LoadFractions))
		for _, b := range c.LossesByLoad {
			sum := b.Conduction + b.Switching + b.GateDrive + b.Magnetic + b.Capacitor
			assert.InDelta(t, sum, b.Total, 1e-9)
		}

		// ZVS topology designs transformer + output inductor + resonant inductor.
		assert.Len(t, c.MagneticDesigns, 3)
	}

	require.NotNil(t, result.BestEfficiency)
	require.NotNil(t, result.BestCost)
	require.NotNil(t, result.BestBalanced)

	for _, c := range result.AllCandidates {
		assert.LessOrEqual(t, c.EfficiencyCEC, result.BestEfficiency.EfficiencyCEC)
		assert.GreaterOrEqual(t, c.RelativeCost, result.BestCost.RelativeCost)
	}

	// Frontier is a subset of the feasible set.
	for _, c := range result.Frontier {
		assert.Contains(t, result.AllCandidates, c)
	}
}

func TestOptimizeDeterministicAcrossRuns(t *testing.T) {
	o := testOptimizer(1)

	r1, err := o.Optimize(context.Background(), testSpec())
	require.NoError(t, err)
	r2, err := o.Optimize(context.Background(), testSpec())
	require.NoError(t, err)

	require.Equal(t, len(r1.AllCandidates), len(r2.AllCandidates))
	for i := range r1.AllCandidates {
		a, b := r1.AllCandidates[i], r2.AllCandidates[i]
		assert.Equal(t, a.Index, b.Index)
		assert.Equal(t, a.EfficiencyCEC, b.EfficiencyCEC)
		assert.Equal(t, a.RelativeCost, b.RelativeCost)
	}
	assert.Equal(t, r1.BestEfficiency.Index, r2.BestEfficiency.Index)
	assert.Equal(t, r1.BestCost.Index, r2.BestCost.Index)
	assert.Equal(t, r1.BestBalanced.Index, r2.BestBalanced.Index)
}

func TestOptimizeIndependentOfWorkerCount(t *testing.T) {
	serial, err := testOptimizer(1).Optimize(context.Background(), testSpec())
	require.NoError(t, err)
	parallel, err := testOptimizer(4).Optimize(context.Background(), testSpec())
	require.NoError(t, err)

	require.Equal(t, len(serial.AllCandidates), len(parallel.AllCandidates))
	for i := range serial.AllCandidates {
		assert.Equal(t, serial.AllCandidates[i].Index, parallel.AllCandidates[i].Index)
		assert.Equal(t, serial.AllCandidates[i].EfficiencyCEC, parallel.AllCandidates[i].EfficiencyCEC)
	}
	assert.Equal(t, serial.BestBalanced.Index, parallel.BestBalanced.Index)
}

func TestOptimizeBudgetPrefixMonotonicity(t *testing.T) {
	small := testSpec()
	small.MaxEvaluations = 4
	large := testSpec()
	large.MaxEvaluations = 8

	o := testOptimizer(1)
	rSmall, err := o.Optimize(context.Background(), small)
	require.NoError(t, err)
	rLarge, err := o.Optimize(context.Background(), large)
	require.NoError(t, err)

	// Every candidate of the smaller run appears unchanged in the larger
	// run's shared prefix.
	byIndex := make(map[int]*design.Candidate)
	for _, c := range rLarge.AllCandidates {
		byIndex[c.Index] = c
	}
	for _, c := range rSmall.AllCandidates {
		got, ok := byIndex[c.Index]
		require.True(t, ok, "index %d missing from larger run", c.Index)
		assert.Equal(t, c.EfficiencyCEC, got.EfficiencyCEC)
		assert.Equal(t, c.Switch.PartNumber, got.Switch.PartNumber)
	}
}

func TestOptimizeInvalidSpecification(t *testing.T) {
	o := testOptimizer(1)

	spec := testSpec()
	spec.VinMin = 500 // above nominal
	_, err := o.Optimize(context.Background(), spec)
	require.Error(t, err)

	var invalid *design.InvalidSpecificationError
	assert.True(t, errors.As(err, &invalid))
}

func TestOptimizeEmptyDesignSpace(t *testing.T) {
	o := testOptimizer(2)

	spec := testSpec()
	spec.EfficiencyTarget = 0.9999 // unreachable
	_, err := o.Optimize(context.Background(), spec)
	require.Error(t, err)

	var empty *design.EmptyDesignSpaceError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, 40, empty.Evaluated)
}

func TestOptimizeCancellation(t *testing.T) {
	o := testOptimizer(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Optimize(ctx, testSpec())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptimizeHardSwitchingLowersEfficiency(t *testing.T) {
	o := testOptimizer(1)

	soft := testSpec()
	hard := testSpec()
	hard.ZVS = false

	rSoft, err := o.Optimize(context.Background(), soft)
	require.NoError(t, err)
	rHard, err := o.Optimize(context.Background(), hard)
	require.NoError(t, err)

	assert.Greater(t, rSoft.BestEfficiency.EfficiencyCEC, rHard.BestEfficiency.EfficiencyCEC)
	// Hard switching drops the resonant inductor from the magnetic set.
	assert.Len(t, rHard.AllCandidates[0].MagneticDesigns, 2)
}

func TestRelativeCostModel(t *testing.T) {
	o := testOptimizer(1)
	spec := testSpec()

	lib := catalog.BuiltinLibrary()
	sw := lib.Switches()[0]
	rect := lib.Rectifiers()[0]

	sk := design.Skeleton{Switch: sw, Rectifier: rect}
	cost := o.relativeCost(spec, sk)

	want := 3*(4*sw.RelativeCost+4*rect.RelativeCost) +
		lib.InputCapacitors()[0].RelativeCost + lib.OutputCapacitors()[0].RelativeCost
	assert.InDelta(t, want, cost, 1e-9)
}
