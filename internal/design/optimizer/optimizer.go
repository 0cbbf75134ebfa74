// Package optimizer walks the discrete converter design space, evaluates
// every candidate with the magnetics designer and loss evaluator, and ranks
// the feasible set: CEC-weighted efficiency, relative cost/size models and
// the Pareto frontier over the cost/efficiency axes.
package optimizer

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/copyleftdev/VOLTA/internal/design"
	"github.com/copyleftdev/VOLTA/internal/design/catalog"
	"github.com/copyleftdev/VOLTA/internal/design/losses"
	"github.com/copyleftdev/VOLTA/internal/design/magnetics"
	"github.com/copyleftdev/VOLTA/internal/logging"
)

// effectiveDuty is the nominal effective duty cycle assumed for loss
// evaluation of a phase-shifted full bridge.
const effectiveDuty = 0.45

// cecLoadPoints are the CEC weighted-efficiency load buckets.
var cecLoadPoints = []struct {
	Fraction float64
	Weight   float64
}{
	{0.10, 0.04},
	{0.20, 0.05},
	{0.30, 0.12},
	{0.50, 0.21},
	{0.75, 0.53},
	{1.00, 0.05},
}

// balancedWeights are the default scalarization weights for the balanced
// objective: equal pull toward efficiency and away from cost.
var balancedWeights = [2]float64{0.5, 0.5}

// Optimizer runs design-space optimizations. It holds only read-only
// collaborators and is safe for concurrent runs.
type Optimizer struct {
	lib      *catalog.Library
	designer *magnetics.Designer
	logger   *logging.Logger
	workers  int
}

// New creates an Optimizer. workers bounds evaluation parallelism; values
// below 1 fall back to the number of CPUs.
func New(lib *catalog.Library, designer *magnetics.Designer, logger *logging.Logger, workers int) *Optimizer {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Optimizer{lib: lib, designer: designer, logger: logger, workers: workers}
}

// Optimize evaluates the candidate space for the specification and returns
// the ranked feasible set. It returns *design.InvalidSpecificationError for
// malformed input and *design.EmptyDesignSpaceError when no candidate
// survives; per-candidate infeasibility never fails the run. The returned
// ordering is deterministic and independent of worker count.
func (o *Optimizer) Optimize(ctx context.Context, spec design.Specification) (*design.ParetoResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	gen := NewGenerator(o.lib, spec.FrequencyMin, spec.FrequencyMax, spec.FrequencySamples, spec.MaxEvaluations)
	o.logger.Info("Starting design-space optimization", map[string]interface{}{
		"space_size":      gen.Total(),
		"max_evaluations": spec.MaxEvaluations,
		"workers":         o.workers,
		"objective":       string(spec.Objective),
	})

	var skeletons []design.Skeleton
	for {
		sk, ok := gen.Next()
		if !ok {
			break
		}
		skeletons = append(skeletons, sk)
	}

	evaluated, err := o.evaluateAll(ctx, spec, skeletons)
	if err != nil {
		return nil, err
	}

	feasible := make([]*design.Candidate, 0, len(evaluated))
	for _, c := range evaluated {
		if c.Feasible {
			feasible = append(feasible, c)
		} else {
			o.logger.Debug("Candidate infeasible", map[string]interface{}{
				"index":  c.Index,
				"reason": c.Infeasibility,
			})
		}
	}
	if len(feasible) == 0 {
		return nil, design.NewEmptyDesignSpace(len(evaluated))
	}

	result := o.rank(feasible)
	o.logger.Info("Optimization complete", map[string]interface{}{
		"evaluated":       len(evaluated),
		"feasible":        len(feasible),
		"frontier":        len(result.Frontier),
		"best_efficiency": result.BestEfficiency.EfficiencyCEC,
	})
	return result, nil
}

// evaluateAll fans the skeletons out over the worker pool. Each evaluation
// is a pure function of its skeleton; results are collected by a single
// writer and re-sorted by generation index, which makes the output
// independent of scheduling.
func (o *Optimizer) evaluateAll(ctx context.Context, spec design.Specification, skeletons []design.Skeleton) ([]*design.Candidate, error) {
	eval := o.newEvaluator(spec)

	in := make(chan design.Skeleton)
	out := make(chan *design.Candidate)

	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sk := range in {
				out <- o.evaluate(spec, eval, sk)
			}
		}()
	}

	go func() {
		defer close(in)
		for _, sk := range skeletons {
			select {
			case in <- sk:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(out)
	}()

	candidates := make([]*design.Candidate, 0, len(skeletons))
	for c := range out {
		candidates = append(candidates, c)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Index < candidates[j].Index })
	return candidates, nil
}

// newEvaluator builds the shared loss evaluator for a run, wiring in the
// first catalog filter capacitors when present.
func (o *Optimizer) newEvaluator(spec design.Specification) *losses.Evaluator {
	var inCap, outCap *catalog.CapacitorSpec
	if caps := o.lib.InputCapacitors(); len(caps) > 0 {
		inCap = caps[0]
	}
	if caps := o.lib.OutputCapacitors(); len(caps) > 0 {
		outCap = caps[0]
	}
	return losses.NewEvaluator(spec.Vout, spec.NPhases, spec.ZVS, inCap, outCap)
}

// evaluate turns one skeleton into a fully populated candidate. Feasibility
// failures are recorded on the candidate, never returned.
func (o *Optimizer) evaluate(spec design.Specification, eval *losses.Evaluator, sk design.Skeleton) *design.Candidate {
	c := &design.Candidate{
		Index:     sk.Index,
		Switch:    sk.Switch,
		Rectifier: sk.Rectifier,
		Frequency: sk.Frequency,
		Feasible:  true,
	}

	pPhase := spec.PowerPerPhase()

	xfmr, err := o.designer.DesignTransformer(magnetics.TransformerSpec{
		Power:     pPhase,
		VinNom:    spec.VinNom,
		VinMax:    spec.VinMax,
		Vout:      spec.Vout,
		Frequency: sk.Frequency,
	})
	if err != nil {
		return markInfeasible(c, err)
	}
	c.MagneticDesigns = append(c.MagneticDesigns, xfmr)

	outInd, err := o.designer.DesignOutputInductor(magnetics.OutputInductorSpec{
		Vout:      spec.Vout,
		CurrentDC: pPhase / spec.Vout,
		Frequency: sk.Frequency,
	})
	if err != nil {
		return markInfeasible(c, err)
	}
	c.MagneticDesigns = append(c.MagneticDesigns, outInd)

	if spec.ZVS {
		resInd, err := o.designer.DesignResonantInductor(magnetics.ResonantInductorSpec{
			VinNom:    spec.VinNom,
			Power:     pPhase,
			Frequency: sk.Frequency,
			Coss:      sk.Switch.Coss.At(spec.VinNom),
		})
		if err != nil {
			return markInfeasible(c, err)
		}
		c.MagneticDesigns = append(c.MagneticDesigns, resInd)
	}

	var effCEC float64
	for _, lp := range cecLoadPoints {
		pOut := lp.Fraction * spec.PowerRated
		op := design.OperatingPoint{
			RMSCurrent:         losses.PrimaryWaveform(spec.VinNom, pOut/float64(spec.NPhases), 0.96, effectiveDuty).RMS,
			BusVoltage:         spec.VinNom,
			SwitchingFrequency: sk.Frequency,
			DutyCycle:          effectiveDuty,
			JunctionTemp:       eval.SwitchTj,
			LoadFraction:       lp.Fraction,
			OutputPower:        pOut,
		}
		b, warns := eval.Evaluate(sk.Switch, sk.Rectifier, c.MagneticDesigns, op)

		c.LoadFractions = append(c.LoadFractions, lp.Fraction)
		c.LossesByLoad = append(c.LossesByLoad, b)
		eff := b.Efficiency(pOut)
		c.EfficiencyByLoad = append(c.EfficiencyByLoad, eff)
		c.Warnings = append(c.Warnings, warns...)

		effCEC += lp.Weight * eff
	}
	c.EfficiencyCEC = effCEC

	if effCEC < spec.EfficiencyTarget {
		return markInfeasible(c, design.NewFeasibility(
			"CEC efficiency %.4f below target %.4f", effCEC, spec.EfficiencyTarget))
	}

	c.RelativeCost = o.relativeCost(spec, sk)
	c.RelativeSize = relativeSize(spec, c.MagneticDesigns)
	return c
}

func markInfeasible(c *design.Candidate, err error) *design.Candidate {
	c.Feasible = false
	c.Infeasibility = err.Error()
	return c
}

// relativeCost is the additive unit-cost model: full bridges on both sides
// of every phase, plus the shared filter capacitors.
func (o *Optimizer) relativeCost(spec design.Specification, sk design.Skeleton) float64 {
	phases := float64(spec.NPhases)
	cost := phases * (4*sk.Switch.RelativeCost + 4*sk.Rectifier.RelativeCost)
	if caps := o.lib.InputCapacitors(); len(caps) > 0 {
		cost += caps[0].RelativeCost
	}
	if caps := o.lib.OutputCapacitors(); len(caps) > 0 {
		cost += caps[0].RelativeCost
	}
	return cost
}

// relativeSize sums magnetic core volume across phases, in cm^3.
func relativeSize(spec design.Specification, mags []design.MagneticDesign) float64 {
	var v float64
	for _, m := range mags {
		v += m.CoreVolume()
	}
	return v * float64(spec.NPhases) * 1e6
}

// rank computes the frontier and the three named rankings over the same
// feasible set.
func (o *Optimizer) rank(feasible []*design.Candidate) *design.ParetoResult {
	costMetric := func(c *design.Candidate) float64 { return c.RelativeCost }
	effMetric := func(c *design.Candidate) float64 { return c.EfficiencyCEC }

	result := &design.ParetoResult{
		AllCandidates: feasible,
		Frontier:      Frontier(feasible, costMetric, effMetric, true, false),
	}

	minCost, maxCost := feasible[0].RelativeCost, feasible[0].RelativeCost
	minEff, maxEff := feasible[0].EfficiencyCEC, feasible[0].EfficiencyCEC
	for _, c := range feasible {
		if c.RelativeCost < minCost {
			minCost = c.RelativeCost
		}
		if c.RelativeCost > maxCost {
			maxCost = c.RelativeCost
		}
		if c.EfficiencyCEC < minEff {
			minEff = c.EfficiencyCEC
		}
		if c.EfficiencyCEC > maxEff {
			maxEff = c.EfficiencyCEC
		}
	}

	normalize := func(v, lo, hi float64) float64 {
		if hi <= lo {
			return 1
		}
		return (v - lo) / (hi - lo)
	}

	var bestBalancedScore float64
	for _, c := range feasible {
		if result.BestEfficiency == nil || c.EfficiencyCEC > result.BestEfficiency.EfficiencyCEC {
			result.BestEfficiency = c
		}
		if result.BestCost == nil || c.RelativeCost < result.BestCost.RelativeCost {
			result.BestCost = c
		}
		score := balancedWeights[0]*normalize(c.EfficiencyCEC, minEff, maxEff) +
			balancedWeights[1]*(1-normalize(c.RelativeCost, minCost, maxCost))
		if result.BestBalanced == nil || score > bestBalancedScore {
			result.BestBalanced = c
			bestBalancedScore = score
		}
	}
	return result
}
