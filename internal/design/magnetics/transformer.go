package magnetics

import (
	"math"

	"github.com/copyleftdev/VOLTA/internal/design"
)

// Duty-cycle assumptions for a phase-shifted full bridge. The nominal value
// sets the turns ratio; the maximum sets the worst-case flux excursion.
const (
	dutyNominal = 0.45
	dutyMax     = 0.48

	// rectDrop is the secondary rectifier drop budgeted into the turns
	// ratio (two devices in the conduction path).
	rectDrop = 2.0

	minPrimaryTurns = 2
)

// TransformerSpec is the electrical requirement for one phase's main
// transformer.
type TransformerSpec struct {
	Power     float64 // transferred power per phase (W)
	VinNom    float64 // nominal input voltage (V)
	VinMax    float64 // maximum input voltage (V)
	Vout      float64 // output voltage (V)
	Frequency float64 // switching frequency (Hz)
}

// DesignTransformer synthesizes the main transformer: core selection by the
// Kg method, integer turns from Faraday's law, and winding construction for
// both sides. It returns a *design.FeasibilityError when no catalog core can
// carry the power, when turns rounding drifts the ratio beyond tolerance, or
// when the peak flux would exceed the saturation guard band.
func (d *Designer) DesignTransformer(spec TransformerSpec) (*Result, error) {
	if spec.Power <= 0 || spec.VinNom <= 0 || spec.Vout <= 0 || spec.Frequency <= 0 {
		return nil, design.NewFeasibility("transformer spec has non-positive field: %+v", spec)
	}
	if spec.VinMax < spec.VinNom {
		spec.VinMax = spec.VinNom
	}

	// Target turns ratio from the volt-second balance at nominal duty,
	// with the rectifier drop reflected to the secondary.
	ratio := spec.VinNom * dutyNominal / (spec.Vout + rectDrop)

	iOut := spec.Power / spec.Vout
	iSecRMS := iOut / math.Sqrt(2*dutyNominal)
	iPriRMS := iSecRMS / ratio
	apparent := spec.VinNom * iPriRMS

	core, err := d.selectCore(d.areaProductRequired(apparent, spec.Frequency, waveformFactorSine), "transformer")
	if err != nil {
		return nil, err
	}

	// Faraday's law at maximum volt-seconds.
	nPri := int(math.Ceil(spec.VinMax * dutyMax /
		(waveformFactorSquare * spec.Frequency * d.params.FluxDensityMax * core.EffectiveArea)))
	if nPri < minPrimaryTurns {
		nPri = minPrimaryTurns
	}
	nSec := int(math.Round(float64(nPri) / ratio))
	if nSec < 1 {
		nSec = 1
	}

	actualRatio := float64(nPri) / float64(nSec)
	if drift := math.Abs(actualRatio-ratio) / ratio; drift > d.params.RatioTolerance {
		return nil, design.NewFeasibility(
			"turns rounding drifts ratio %.1f%% (target %.3f, got %.3f with %d:%d)",
			drift*100, ratio, actualRatio, nPri, nSec)
	}

	bPeak := spec.VinMax * dutyMax /
		(waveformFactorSquare * spec.Frequency * float64(nPri) * core.EffectiveArea)
	if limit := core.BSat * d.params.SaturationGuard; bPeak > limit {
		return nil, design.NewFeasibility(
			"transformer peak flux %.3f T exceeds %.3f T on %s", bPeak, limit, core.Name)
	}

	pri, err := designWinding(iPriRMS, nPri, core.MeanLengthTurn,
		spec.Frequency, d.params.CurrentDensity, 1, d.params.Ambient+coreTempRise)
	if err != nil {
		return nil, err
	}
	// Secondary sits in the outer window half; slightly relaxed density,
	// two layers for the center-tapped construction.
	sec, err := designWinding(iSecRMS, nSec, core.MeanLengthTurn,
		spec.Frequency, d.params.CurrentDensity*0.8, 2, d.params.Ambient+coreTempRise)
	if err != nil {
		return nil, err
	}

	pv, err := d.coreLossDensity(spec.Frequency, bPeak)
	if err != nil {
		return nil, err
	}

	return &Result{
		Role:       "transformer",
		Core:       core,
		Primary:    pri,
		Secondary:  sec,
		TurnsRatio: actualRatio,
		FluxPeak:   bPeak,
		FluxAC:     bPeak,
		CoreLoss:   pv * core.EffectiveVolume,
		CopperLoss: pri.CopperLoss + sec.CopperLoss,
		MagnetizingInductance: mu0 * muRelFerrite *
			float64(nPri) * float64(nPri) * core.EffectiveArea / core.EffectiveLength,
	}, nil
}
