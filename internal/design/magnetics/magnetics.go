// Package magnetics synthesizes the magnetic components of a phase-shifted
// full-bridge converter: the main transformer, the output filter inductor and
// the resonant (ZVS-assist) inductor. Core selection uses McLyman's Kg
// area-product method against the injected core catalog; winding synthesis
// accounts for skin and proximity effects via Dowell's equation with
// automatic Litz stranding; core loss uses Steinmetz coefficients
// interpolated at the design temperature.
package magnetics

import (
	"fmt"
	"math"

	"github.com/copyleftdev/VOLTA/internal/design"
	"github.com/copyleftdev/VOLTA/internal/design/catalog"
)

// Design-rule constants. These are conservative power-supply practice values,
// fixed for every synthesis a Designer performs.
const (
	// waveformFactorSquare is Faraday's constant for square-wave excitation,
	// used for transformers. Sine excitation would use 4.44.
	waveformFactorSquare = 4.0
	waveformFactorSine   = 4.44

	defaultCurrentDensity  = 5.0  // A/mm^2
	defaultWindowFill      = 0.5  // Ku
	defaultFluxDensityMax  = 0.25 // T, design swing for ferrite
	defaultSaturationGuard = 0.8  // fraction of BSat allowed at peak
	defaultCoreMargin      = 1.2  // Kg oversize factor at selection
	defaultRatioTolerance  = 0.1  // allowed turns-ratio drift from rounding
	defaultAmbient         = 40.0 // C
	coreTempRise           = 40.0 // assumed core rise above ambient

	muRelFerrite = 2000.0
)

// Params tunes a Designer. The zero value is not usable; DefaultParams
// supplies the standard rules.
type Params struct {
	CurrentDensity  float64 // target winding current density (A/mm^2)
	WindowFill      float64 // window utilization Ku
	FluxDensityMax  float64 // design flux swing (T)
	SaturationGuard float64 // peak flux allowed as fraction of BSat
	CoreMargin      float64 // required Kg headroom over the computed minimum
	RatioTolerance  float64 // max relative turns-ratio drift from rounding
	Ambient         float64 // ambient temperature (C)
	Material        catalog.Material
}

// DefaultParams returns the standard design rules with 3C95 ferrite.
func DefaultParams() Params {
	return Params{
		CurrentDensity:  defaultCurrentDensity,
		WindowFill:      defaultWindowFill,
		FluxDensityMax:  defaultFluxDensityMax,
		SaturationGuard: defaultSaturationGuard,
		CoreMargin:      defaultCoreMargin,
		RatioTolerance:  defaultRatioTolerance,
		Ambient:         defaultAmbient,
		Material:        catalog.Ferrite3C95,
	}
}

// Designer synthesizes magnetic components against a core catalog. It holds
// no per-design state and is safe for concurrent use.
type Designer struct {
	catalog *catalog.Catalog
	params  Params
}

// NewDesigner returns a Designer over the given catalog.
func NewDesigner(c *catalog.Catalog, p Params) *Designer {
	return &Designer{catalog: c, params: p}
}

// Result is one synthesized magnetic component. It satisfies
// design.MagneticDesign so candidates can hold transformers and inductors
// uniformly.
type Result struct {
	Role string // "transformer", "output inductor", "resonant inductor"
	Core catalog.CoreGeometry

	Primary   *Winding
	Secondary *Winding // nil for inductors

	TurnsRatio float64 // realized Npri/Nsec, 0 for inductors
	Inductance float64 // H, 0 for transformers
	AirGap     float64 // m, 0 for ungapped parts

	FluxPeak float64 // T, peak operating flux density
	FluxAC   float64 // T, AC component used for core loss
	FluxDC   float64 // T, DC bias component (inductors)

	CoreLoss   float64 // W
	CopperLoss float64 // W

	// MagnetizingInductance is the ungapped primary magnetizing inductance
	// of a transformer (H).
	MagnetizingInductance float64
}

// Label implements design.MagneticDesign.
func (r *Result) Label() string { return r.Role }

// CoreName implements design.MagneticDesign.
func (r *Result) CoreName() string { return r.Core.Name }

// Loss implements design.MagneticDesign: core plus copper loss (W).
func (r *Result) Loss() float64 { return r.CoreLoss + r.CopperLoss }

// CoreVolume implements design.MagneticDesign.
func (r *Result) CoreVolume() float64 { return r.Core.EffectiveVolume }

// PeakFluxDensity implements design.MagneticDesign.
func (r *Result) PeakFluxDensity() float64 { return r.FluxPeak }

var _ design.MagneticDesign = (*Result)(nil)

// selectCore returns the smallest catalog core whose area product carries
// the requirement with the configured margin. Catalog order is ascending
// area product, so selection is deterministic.
func (d *Designer) selectCore(apRequired float64, role string) (catalog.CoreGeometry, error) {
	need := apRequired * d.params.CoreMargin
	for _, c := range d.catalog.Cores() {
		if c.AreaProduct() >= need {
			return c, nil
		}
	}
	return catalog.CoreGeometry{}, design.NewFeasibility(
		"no catalog core large enough for %s: need area product >= %.3e m^4", role, need)
}

// areaProductRequired returns the minimum core area product (m^4) for
// apparent power s (VA) at frequency f with waveform factor kt. Current
// density is converted from A/mm^2 to A/m^2.
func (d *Designer) areaProductRequired(s, f, kt float64) float64 {
	jSI := d.params.CurrentDensity * 1e6
	return s / (d.params.WindowFill * kt * f * d.params.FluxDensityMax * jSI)
}

// coreLossDensity evaluates the Steinmetz model at the design temperature:
// Pv = k * f^alpha * B^beta, in W/m^3.
func (d *Designer) coreLossDensity(f, bAC float64) (float64, error) {
	coeff, err := d.catalog.Coefficients(d.params.Material, d.params.Ambient+coreTempRise)
	if err != nil {
		return 0, fmt.Errorf("core loss coefficients: %w", err)
	}
	if bAC <= 0 {
		return 0, nil
	}
	return coeff.K * math.Pow(f, coeff.Alpha) * math.Pow(bAC, coeff.Beta), nil
}

// dcBiasLossFactor derates Steinmetz loss for a DC-biased inductor core.
// The reduction saturates at 90% regardless of bias depth.
func dcBiasLossFactor(bDC float64) float64 {
	return 1 - 0.5*math.Min(bDC/0.5, 0.9)
}
