// Package losses evaluates the electrical loss budget of one candidate
// converter design at an operating point: MOSFET conduction/switching/gate
// losses on the primary full bridge, rectifier losses on the secondary
// full bridge, magnetic losses from the synthesized components, and filter
// capacitor ESR losses.
package losses

import (
	"math"

	"github.com/copyleftdev/VOLTA/internal/design"
	"github.com/copyleftdev/VOLTA/internal/design/catalog"
)

// Bridge device counts per phase.
const (
	switchesPerPhase   = 4
	rectifiersPerPhase = 4
)

const (
	// assumedEfficiency seeds the input-current estimate before the real
	// efficiency is known.
	assumedEfficiency = 0.96

	// rectStressFactor scales the output voltage to the rectifier's
	// reverse-voltage stress.
	rectStressFactor = 1.5

	// reflectedDropBudget is the secondary drop used when estimating the
	// turns ratio for capacitor ripple currents.
	reflectedDropBudget = 2.0

	defaultSwitchTj    = 100.0
	defaultRectifierTj = 125.0
	defaultRippleRatio = 0.30
)

// Waveform is a simplified trapezoidal current description used for
// conduction and switching loss estimates.
type Waveform struct {
	RMS  float64
	Avg  float64
	Peak float64
}

// PrimaryWaveform estimates the per-device primary current of one phase: the
// average input current split across the two bridge legs, conducting for the
// effective duty cycle.
func PrimaryWaveform(vin, pOut, efficiency, duty float64) Waveform {
	iInAvg := pOut / efficiency / vin
	avg := iInAvg * duty / 2
	return Waveform{
		RMS:  iInAvg * math.Sqrt(duty) / math.Sqrt2,
		Avg:  avg,
		Peak: 1.8 * avg,
	}
}

// RectifierWaveform estimates the per-diode current of a full-bridge
// rectifier in continuous conduction at DC output current iOut.
func RectifierWaveform(iOut, duty float64) Waveform {
	return Waveform{
		RMS:  iOut * math.Sqrt(duty) / 2,
		Avg:  iOut * duty / 2,
		Peak: iOut * 1.2,
	}
}

// Evaluator computes loss breakdowns for candidate designs. It is immutable
// after construction and safe for concurrent use across worker goroutines.
type Evaluator struct {
	Vout    float64
	NPhases int

	// ZVS selects zero-voltage-switching energies for the primary bridge;
	// otherwise hard-switching energies apply.
	ZVS bool

	SwitchTj    float64
	RectifierTj float64

	// RippleRatio is the per-phase output inductor ripple as a fraction of
	// the phase DC current, used for the output capacitor current.
	RippleRatio float64

	InputCap  *catalog.CapacitorSpec
	OutputCap *catalog.CapacitorSpec
}

// NewEvaluator returns an evaluator with standard junction temperatures and
// ripple assumptions filled in.
func NewEvaluator(vout float64, nPhases int, zvs bool, inputCap, outputCap *catalog.CapacitorSpec) *Evaluator {
	return &Evaluator{
		Vout:        vout,
		NPhases:     nPhases,
		ZVS:         zvs,
		SwitchTj:    defaultSwitchTj,
		RectifierTj: defaultRectifierTj,
		RippleRatio: defaultRippleRatio,
		InputCap:    inputCap,
		OutputCap:   outputCap,
	}
}

// Evaluate computes the full-converter loss breakdown for the given devices
// and magnetic set at one operating point. Magnetic losses are taken from
// the synthesized designs as-is; all other terms are computed at the point's
// voltage, power and frequency. Any negative term from an extrapolated model
// is clamped to zero and reported as a warning.
func (e *Evaluator) Evaluate(sw *catalog.SwitchSpec, rect *catalog.RectifierSpec, mags []design.MagneticDesign, op design.OperatingPoint) (design.LossBreakdown, []design.ModelRangeWarning) {
	phases := float64(e.NPhases)
	pPhase := op.OutputPower / phases
	fsw := op.SwitchingFrequency

	pri := PrimaryWaveform(op.BusVoltage, pPhase, assumedEfficiency, op.DutyCycle)
	iOutPhase := pPhase / e.Vout
	sec := RectifierWaveform(iOutPhase, op.DutyCycle)

	conduction := phases * (switchesPerPhase*sw.ConductionLoss(pri.RMS, pri.Avg, e.SwitchTj) +
		rectifiersPerPhase*rect.ConductionLoss(sec.RMS, sec.Avg, e.RectifierTj))

	var perSwitch float64
	if e.ZVS {
		eOn, eOff := sw.ZVSSwitchingEnergies(op.BusVoltage)
		perSwitch = (eOn + eOff) * fsw
	} else {
		perSwitch = sw.SwitchingLoss(op.BusVoltage, pri.Peak, fsw) +
			0.5*sw.Coss.At(op.BusVoltage)*op.BusVoltage*op.BusVoltage*fsw
	}
	perRect := rect.SwitchingLoss(rectStressFactor*e.Vout, sec.Peak, fsw)
	switching := phases * (switchesPerPhase*perSwitch + rectifiersPerPhase*perRect)

	gate := phases * switchesPerPhase * sw.GateDriveLoss(fsw)

	var magnetic float64
	for _, m := range mags {
		magnetic += m.Loss()
	}
	magnetic *= phases

	capacitor := e.capacitorLoss(op, iOutPhase)

	var b design.LossBreakdown
	var warns []design.ModelRangeWarning
	clamp := func(name string, v float64) float64 {
		if v >= 0 {
			return v
		}
		warns = append(warns, design.ModelRangeWarning{
			Quantity: name, Value: v, ClampedTo: 0,
		})
		b.Clamped = true
		return 0
	}

	b.Conduction = clamp("conduction loss", conduction)
	b.Switching = clamp("switching loss", switching)
	b.GateDrive = clamp("gate drive loss", gate)
	b.Magnetic = clamp("magnetic loss", magnetic)
	b.Capacitor = clamp("capacitor loss", capacitor)
	b.Total = b.Conduction + b.Switching + b.GateDrive + b.Magnetic + b.Capacitor
	return b, warns
}

// capacitorLoss models ESR dissipation of the input and output filter
// capacitors, with interleaving ripple cancellation factors.
func (e *Evaluator) capacitorLoss(op design.OperatingPoint, iOutPhase float64) float64 {
	var total float64

	if e.InputCap != nil {
		ratio := op.BusVoltage * op.DutyCycle / (e.Vout + reflectedDropBudget)
		iReflected := iOutPhase * float64(e.NPhases) / (2 * ratio)
		iRMS := iReflected * math.Sqrt(op.DutyCycle*(1-op.DutyCycle)) * inputRippleFactor(e.NPhases)
		total += e.InputCap.ESRLoss(iRMS)
	}

	if e.OutputCap != nil {
		ripplePP := e.RippleRatio * iOutPhase
		iRMS := ripplePP / math.Sqrt(12) * outputRippleFactor(e.NPhases)
		total += e.OutputCap.ESRLoss(iRMS)
	}

	return total
}

// inputRippleFactor reflects interleaved-phase cancellation of the pulsed
// input current.
func inputRippleFactor(nPhases int) float64 {
	switch {
	case nPhases <= 1:
		return 1.0
	case nPhases == 2:
		return 0.5
	default:
		return 0.3
	}
}

// outputRippleFactor reflects triangular ripple cancellation at the output
// capacitor for evenly phase-shifted channels.
func outputRippleFactor(nPhases int) float64 {
	switch nPhases {
	case 2:
		return 0.2
	case 3:
		return 0.15
	case 4:
		return 0.1
	default:
		return 1.0
	}
}
