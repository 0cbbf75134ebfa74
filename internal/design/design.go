// Package design defines the data model for the converter design optimizer:
// the input specification, candidate lifecycle, loss breakdowns and the
// Pareto-ranked result set. The algorithmic pieces live in the sub-packages
// catalog, magnetics, losses and optimizer.
package design

// Objective selects the scalarization used when reporting a single "best"
// design. All objectives are computed over the same feasible candidate set.
type Objective string

const (
	MaxEfficiency Objective = "max_efficiency"
	MinCost       Objective = "min_cost"
	Balanced      Objective = "balanced"
)

// Specification is the input contract for an optimization run. Voltages are
// in volts, powers in watts, frequencies in hertz.
type Specification struct {
	PowerMin   float64 `json:"power_min"`
	PowerRated float64 `json:"power_rated"`
	PowerMax   float64 `json:"power_max"`

	VinMin float64 `json:"vin_min"`
	VinNom float64 `json:"vin_nom"`
	VinMax float64 `json:"vin_max"`
	Vout   float64 `json:"vout"`

	NPhases int `json:"n_phases"`

	// EfficiencyTarget is the minimum acceptable CEC-weighted efficiency
	// (0-1). Candidates below it are dropped as infeasible.
	EfficiencyTarget float64 `json:"efficiency_target"`

	Objective Objective `json:"objective"`

	// FrequencyMin/Max bound the sampled switching-frequency axis of the
	// design space; FrequencySamples is the number of evenly spaced points.
	FrequencyMin     float64 `json:"frequency_min"`
	FrequencyMax     float64 `json:"frequency_max"`
	FrequencySamples int     `json:"frequency_samples"`

	// MaxEvaluations bounds the number of candidate skeletons generated.
	// It is the sole work-bounding mechanism of a run.
	MaxEvaluations int `json:"max_evaluations"`

	ZVS bool `json:"zvs"`
}

// Validate rejects malformed specifications before any candidate generation
// begins. It returns an *InvalidSpecificationError describing the first
// violation found.
func (s *Specification) Validate() error {
	switch {
	case s.PowerRated <= 0:
		return NewInvalidSpecification("power_rated must be positive, got %g", s.PowerRated)
	case s.PowerMin < 0 || s.PowerMin > s.PowerRated:
		return NewInvalidSpecification("power_min %g outside [0, power_rated]", s.PowerMin)
	case s.PowerMax < s.PowerRated:
		return NewInvalidSpecification("power_max %g below power_rated %g", s.PowerMax, s.PowerRated)
	case s.VinMin <= 0 || s.VinMin > s.VinNom || s.VinNom > s.VinMax:
		return NewInvalidSpecification("input voltage range invalid: min=%g nom=%g max=%g", s.VinMin, s.VinNom, s.VinMax)
	case s.Vout <= 0:
		return NewInvalidSpecification("vout must be positive, got %g", s.Vout)
	case s.NPhases < 1 || s.NPhases > 4:
		return NewInvalidSpecification("n_phases must be 1-4, got %d", s.NPhases)
	case s.EfficiencyTarget <= 0 || s.EfficiencyTarget >= 1:
		return NewInvalidSpecification("efficiency_target must be in (0,1), got %g", s.EfficiencyTarget)
	case s.FrequencyMin <= 0 || s.FrequencyMin > s.FrequencyMax:
		return NewInvalidSpecification("frequency range invalid: min=%g max=%g", s.FrequencyMin, s.FrequencyMax)
	case s.FrequencySamples < 1:
		return NewInvalidSpecification("frequency_samples must be >= 1, got %d", s.FrequencySamples)
	case s.MaxEvaluations <= 0:
		return NewInvalidSpecification("max_evaluations must be positive, got %d", s.MaxEvaluations)
	}
	switch s.Objective {
	case MaxEfficiency, MinCost, Balanced:
	default:
		return NewInvalidSpecification("unknown objective %q", s.Objective)
	}
	return nil
}

// PowerPerPhase returns the rated power carried by each interleaved phase.
func (s *Specification) PowerPerPhase() float64 {
	return s.PowerRated / float64(s.NPhases)
}

// OperatingPoint describes one electrical operating condition of a candidate.
// Constructed per evaluation and never persisted.
type OperatingPoint struct {
	RMSCurrent         float64 // primary-side switch RMS current (A)
	BusVoltage         float64 // input bus voltage (V)
	SwitchingFrequency float64 // Hz
	DutyCycle          float64 // effective duty cycle (0-1)
	JunctionTemp       float64 // fixed external input, degrees C
	LoadFraction       float64 // fraction of rated power (0-1]
	OutputPower        float64 // delivered power at this point (W)
}

// LossBreakdown is the per-operating-point loss decomposition. Total always
// equals the sum of the named sub-losses. Values are in watts and never
// negative: a negative result from an extrapolated model is clamped to zero
// and Clamped is set.
type LossBreakdown struct {
	Conduction float64 `json:"conduction"`
	Switching  float64 `json:"switching"`
	GateDrive  float64 `json:"gate_drive"`
	Magnetic   float64 `json:"magnetic"`
	Capacitor  float64 `json:"capacitor"`
	Total      float64 `json:"total"`

	Clamped bool `json:"clamped,omitempty"`
}

// Efficiency returns output power over input power for this breakdown at the
// given delivered power.
func (b LossBreakdown) Efficiency(outputPower float64) float64 {
	if outputPower <= 0 {
		return 0
	}
	return outputPower / (outputPower + b.Total)
}
