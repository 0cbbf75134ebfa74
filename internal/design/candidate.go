package design

import "github.com/copyleftdev/VOLTA/internal/design/catalog"

// MagneticDesign is the view of a synthesized magnetic component that the
// candidate model needs: its loss contribution, its bulk, and how to report
// it. The concrete type lives in the magnetics package.
type MagneticDesign interface {
	// Label identifies the component role, e.g. "transformer".
	Label() string
	// CoreName is the selected catalog core designation.
	CoreName() string
	// Loss returns total core plus copper loss at the design point (W).
	Loss() float64
	// CoreVolume returns the effective core volume (m^3).
	CoreVolume() float64
	// PeakFluxDensity returns the peak operating flux density (T).
	PeakFluxDensity() float64
}

// Skeleton is a candidate before evaluation: just the discrete choices made
// by the generator. The optimizer fills in the rest.
type Skeleton struct {
	Index     int
	Switch    *catalog.SwitchSpec
	Rectifier *catalog.RectifierSpec
	Frequency float64
}

// Candidate is one fully evaluated point of the design space. It is created
// as a Skeleton by the generator, populated by the optimizer, and immutable
// once evaluation completes. Infeasible candidates are dropped from results
// unless diagnostics are requested.
type Candidate struct {
	Index     int                    `json:"index"`
	Switch    *catalog.SwitchSpec    `json:"-"`
	Rectifier *catalog.RectifierSpec `json:"-"`
	Frequency float64                `json:"frequency"`

	MagneticDesigns []MagneticDesign `json:"-"`

	LoadFractions    []float64       `json:"load_fractions,omitempty"`
	LossesByLoad     []LossBreakdown `json:"losses_by_load,omitempty"`
	EfficiencyByLoad []float64       `json:"efficiency_by_load,omitempty"`

	EfficiencyCEC float64 `json:"efficiency_cec"`
	RelativeCost  float64 `json:"relative_cost"`
	RelativeSize  float64 `json:"relative_size"`

	Feasible      bool                `json:"feasible"`
	Infeasibility string              `json:"infeasibility,omitempty"`
	Warnings      []ModelRangeWarning `json:"warnings,omitempty"`
}

// MagneticLoss returns the summed loss of all magnetic designs (W).
func (c *Candidate) MagneticLoss() float64 {
	var sum float64
	for _, m := range c.MagneticDesigns {
		sum += m.Loss()
	}
	return sum
}

// ParetoResult is the ranked outcome of an optimization run. It is a derived
// view over the feasible candidate set, recomputed on demand and never
// stored.
type ParetoResult struct {
	AllCandidates []*Candidate `json:"all_candidates"`
	Frontier      []*Candidate `json:"frontier"`

	BestEfficiency *Candidate `json:"best_efficiency"`
	BestCost       *Candidate `json:"best_cost"`
	BestBalanced   *Candidate `json:"best_balanced"`
}

// Summary is the flattened per-candidate report consumed by display
// collaborators. The core never renders anything itself.
type Summary struct {
	Index         int     `json:"index"`
	SwitchPart    string  `json:"switch_part"`
	RectifierPart string  `json:"rectifier_part"`
	FrequencyHz   float64 `json:"frequency_hz"`
	EfficiencyPct float64 `json:"efficiency_pct"`
	RelativeCost  float64 `json:"relative_cost"`
	RelativeSize  float64 `json:"relative_size"`

	// Losses is the full-load breakdown, the last evaluated load point.
	Losses LossBreakdown `json:"losses"`

	Magnetics  []MagneticSummary `json:"magnetics"`
	OnFrontier bool              `json:"on_frontier"`
}

// MagneticSummary reports one magnetic component of a candidate.
type MagneticSummary struct {
	Role         string  `json:"role"`
	Core         string  `json:"core"`
	LossW        float64 `json:"loss_w"`
	PeakFluxT    float64 `json:"peak_flux_t"`
	CoreVolumeCC float64 `json:"core_volume_cc"`
}

// Summarize flattens a candidate for tabular or plotted display.
func (c *Candidate) Summarize(onFrontier bool) Summary {
	s := Summary{
		Index:         c.Index,
		SwitchPart:    c.Switch.PartNumber,
		RectifierPart: c.Rectifier.PartNumber,
		FrequencyHz:   c.Frequency,
		EfficiencyPct: c.EfficiencyCEC * 100,
		RelativeCost:  c.RelativeCost,
		RelativeSize:  c.RelativeSize,
		OnFrontier:    onFrontier,
	}
	if n := len(c.LossesByLoad); n > 0 {
		s.Losses = c.LossesByLoad[n-1]
	}
	for _, m := range c.MagneticDesigns {
		s.Magnetics = append(s.Magnetics, MagneticSummary{
			Role:         m.Label(),
			Core:         m.CoreName(),
			LossW:        m.Loss(),
			PeakFluxT:    m.PeakFluxDensity(),
			CoreVolumeCC: m.CoreVolume() * 1e6,
		})
	}
	return s
}
