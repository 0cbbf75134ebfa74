package magnetics

import (
	"math"

	"github.com/copyleftdev/VOLTA/internal/design"
)

const (
	defaultRippleRatio = 0.30 // output inductor ripple, fraction of Idc

	minInductorTurns = 10
	gapFringeFactor  = 1.1

	// ZVS energy-balance tuning for the resonant inductor.
	zvsEnergyMargin  = 0.7
	zvsCurrentFactor = 1.5
	cossParallel     = 2 // half-bridge leg devices contributing Coss
	assumedEff       = 0.95
)

// OutputInductorSpec is the requirement for one phase's output filter
// inductor.
type OutputInductorSpec struct {
	Vout        float64 // output voltage (V)
	CurrentDC   float64 // phase DC output current (A)
	Frequency   float64 // effective ripple frequency (Hz)
	RippleRatio float64 // peak-to-peak ripple as fraction of CurrentDC; 0 means default
}

// ResonantInductorSpec is the requirement for the external series inductor
// that extends zero-voltage switching down to light load.
type ResonantInductorSpec struct {
	VinNom    float64 // nominal input voltage (V)
	Power     float64 // phase rated power (W)
	Frequency float64 // switching frequency (Hz)
	Coss      float64 // per-device output capacitance at the bus voltage (F)
}

// DesignOutputInductor synthesizes the output filter inductor: target
// inductance from the ripple budget, gapped-core realization, saturation
// check against the DC bias.
func (d *Designer) DesignOutputInductor(spec OutputInductorSpec) (*Result, error) {
	if spec.Vout <= 0 || spec.CurrentDC <= 0 || spec.Frequency <= 0 {
		return nil, design.NewFeasibility("output inductor spec has non-positive field: %+v", spec)
	}
	ripple := spec.RippleRatio
	if ripple <= 0 {
		ripple = defaultRippleRatio
	}

	deltaI := ripple * spec.CurrentDC
	l := spec.Vout * (1 - dutyNominal) / (deltaI * spec.Frequency)

	return d.designGapped("output inductor", l, spec.CurrentDC, deltaI, spec.Frequency)
}

// DesignResonantInductor sizes the series resonant inductor from the ZVS
// energy balance: the inductive energy at the light-load current must
// discharge the combined switch output capacitance across the bus.
func (d *Designer) DesignResonantInductor(spec ResonantInductorSpec) (*Result, error) {
	if spec.VinNom <= 0 || spec.Power <= 0 || spec.Frequency <= 0 || spec.Coss <= 0 {
		return nil, design.NewFeasibility("resonant inductor spec has non-positive field: %+v", spec)
	}

	cTotal := spec.Coss * cossParallel
	iLoad := spec.Power / (spec.VinNom * assumedEff * 0.5)

	l := zvsEnergyMargin * cTotal * math.Pow(spec.VinNom/(iLoad*zvsCurrentFactor), 2)

	// The inductor carries the full primary current; model it as a pure AC
	// triangle at the load peak.
	iPk := iLoad * 1.3
	return d.designGapped("resonant inductor", l, 0, 2*iPk, spec.Frequency)
}

// designGapped realizes an inductance on a gapped catalog core. deltaI is
// the peak-to-peak ripple; iDC may be zero for a purely AC choke.
func (d *Designer) designGapped(role string, l, iDC, deltaI, f float64) (*Result, error) {
	if l <= 0 {
		return nil, design.NewFeasibility("%s inductance must be positive, got %g H", role, l)
	}

	iPk := iDC + deltaI/2
	iRMS := math.Sqrt(iDC*iDC + deltaI*deltaI/12)

	// Energy-equivalent apparent power for the Kg method.
	energy := 0.5 * l * iPk * iPk
	core, err := d.selectCore(d.areaProductRequired(energy*f*2, f, waveformFactorSquare), role)
	if err != nil {
		return nil, err
	}

	n := int(math.Ceil(l * iPk / (0.8 * d.params.FluxDensityMax * core.EffectiveArea)))
	if n < minInductorTurns {
		n = minInductorTurns
	}
	turns := float64(n)

	gap := mu0 * turns * turns * core.EffectiveArea / (l * gapFringeFactor)

	bDC := l * iDC / (turns * core.EffectiveArea)
	bAC := l * deltaI / (turns * core.EffectiveArea)
	bPk := bDC + bAC/2
	if limit := core.BSat * d.params.SaturationGuard; bPk > limit {
		return nil, design.NewFeasibility(
			"%s peak flux %.3f T exceeds %.3f T on %s", role, bPk, limit, core.Name)
	}

	w, err := designWinding(iRMS, n, core.MeanLengthTurn,
		f, d.params.CurrentDensity, 2, d.params.Ambient+coreTempRise)
	if err != nil {
		return nil, err
	}

	pv, err := d.coreLossDensity(f, bAC)
	if err != nil {
		return nil, err
	}

	return &Result{
		Role:       role,
		Core:       core,
		Primary:    w,
		Inductance: l,
		AirGap:     gap,
		FluxPeak:   bPk,
		FluxAC:     bAC,
		FluxDC:     bDC,
		CoreLoss:   pv * core.EffectiveVolume * dcBiasLossFactor(bDC),
		CopperLoss: w.CopperLoss,
	}, nil
}
