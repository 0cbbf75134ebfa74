package catalog

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Device is the capability shared by both semiconductor kinds: a switch or a
// rectifier can report its conduction loss for a current waveform and its
// frequency-proportional switching loss. Loss evaluation goes through this
// interface so the evaluator never reaches into kind-specific fields it does
// not own.
type Device interface {
	// ConductionLoss returns dissipation from forward conduction (W) for
	// the given RMS and average currents at junction temperature tj (C).
	ConductionLoss(iRMS, iAvg, tj float64) float64
	// SwitchingLoss returns dissipation from commutation events (W) at
	// blocking voltage v, switched current i and frequency fsw.
	SwitchingLoss(v, i, fsw float64) float64
}

// CapacitanceCurve models a voltage-dependent device capacitance. Either a
// constant value or a piecewise-linear fit over (voltage, capacitance)
// points; outside the fitted range the nearest endpoint is used.
type CapacitanceCurve struct {
	constant float64
	volts    []float64
	fit      interp.PiecewiseLinear
	fitted   bool
}

// ConstantCapacitance returns a curve with no voltage dependence.
func ConstantCapacitance(c float64) CapacitanceCurve {
	return CapacitanceCurve{constant: c}
}

// NewCapacitanceCurve fits a piecewise-linear capacitance curve. Points must
// be ordered by strictly increasing voltage.
func NewCapacitanceCurve(points [][2]float64) (CapacitanceCurve, error) {
	if len(points) < 2 {
		return CapacitanceCurve{}, fmt.Errorf("capacitance curve needs at least 2 points, got %d", len(points))
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p[0]
		ys[i] = p[1]
	}
	var c CapacitanceCurve
	if err := c.fit.Fit(xs, ys); err != nil {
		return CapacitanceCurve{}, fmt.Errorf("fit capacitance curve: %w", err)
	}
	c.volts = xs
	c.fitted = true
	return c, nil
}

// At returns the capacitance (F) at drain-source voltage v.
func (c CapacitanceCurve) At(v float64) float64 {
	if !c.fitted {
		return c.constant
	}
	if v < c.volts[0] {
		v = c.volts[0]
	}
	if last := c.volts[len(c.volts)-1]; v > last {
		v = last
	}
	return c.fit.Predict(v)
}

// SwitchSpec holds the datasheet parameters of a primary-side MOSFET. All
// values are read-only once loaded from the component library.
type SwitchSpec struct {
	PartNumber   string
	VDSS         float64 // drain-source voltage rating (V)
	IDContinuous float64 // continuous drain current at 25C (A)

	// On-resistance calibration points (ohm). The temperature coefficient
	// is derived from the 25C/150C maximum pair.
	RdsOn25     float64
	RdsOn25Max  float64
	RdsOn150    float64
	RdsOn150Max float64

	// Gate charge.
	QG       float64 // total gate charge (C)
	QGS      float64
	QGD      float64
	VPlateau float64 // Miller plateau voltage (V)

	Coss CapacitanceCurve
	Crss CapacitanceCurve

	TRise float64 // current rise time (s)
	TFall float64 // current fall time (s)

	// Body diode.
	VSD float64
	QRR float64
	TRR float64

	RthJC float64
	TJMax float64

	VGSDrive   float64
	RGInternal float64
	RGExternal float64

	RelativeCost float64
}

// RGTotal returns the total gate resistance.
func (s *SwitchSpec) RGTotal() float64 {
	return s.RGInternal + s.RGExternal
}

// AlphaRdsOn returns the RdsOn temperature coefficient in %/C, derived from
// the two maximum-value calibration points:
//
//	alpha = 100 * (R150/R25 - 1) / 125
func (s *SwitchSpec) AlphaRdsOn() float64 {
	if s.RdsOn25Max == 0 {
		return 0
	}
	return 100 * (s.RdsOn150Max/s.RdsOn25Max - 1) / 125
}

// RdsOnAt returns the maximum on-resistance linearly extrapolated to
// junction temperature tj: R(Tj) = R25max * (1 + alpha/100 * (Tj - 25)).
func (s *SwitchSpec) RdsOnAt(tj float64) float64 {
	return s.RdsOn25Max * (1 + s.AlphaRdsOn()/100*(tj-25))
}

// ConductionLoss implements Device: RdsOn(Tj) * Irms^2.
func (s *SwitchSpec) ConductionLoss(iRMS, _ float64, tj float64) float64 {
	return s.RdsOnAt(tj) * iRMS * iRMS
}

// MillerTimes returns the voltage fall and rise times during hard
// commutation, from the two-point Crss approximation: the average Miller
// capacitance is charged by the gate current available above the plateau.
func (s *SwitchSpec) MillerTimes(vds float64) (tFall, tRise float64) {
	cgd := (s.Crss.At(25) + s.Crss.At(vds)) / 2
	iGate := (s.VGSDrive - s.VPlateau) / s.RGTotal()
	if iGate <= 0 {
		return 0, 0
	}
	t := cgd * vds / iGate
	return t, t
}

// HardSwitchingEnergies returns turn-on and turn-off energies (J) for hard
// commutation at voltage v and current i:
//
//	Eon  = v*i*(tri+tfu)/2 + Qrr*v
//	Eoff = v*i*(tru+tfi)/2
func (s *SwitchSpec) HardSwitchingEnergies(v, i float64) (eOn, eOff float64) {
	tfu, tru := s.MillerTimes(v)
	eOn = v*i*(s.TRise+tfu)/2 + s.QRR*v
	eOff = v * i * (s.TFall + tru) / 2
	return eOn, eOff
}

// ZVSSwitchingEnergies returns energies under zero-voltage switching:
// turn-on is lossless and turn-off reduces to charging Coss.
func (s *SwitchSpec) ZVSSwitchingEnergies(v float64) (eOn, eOff float64) {
	return 0, 0.5 * s.Coss.At(v) * v * v
}

// SwitchingLoss implements Device for the hard-switching case.
func (s *SwitchSpec) SwitchingLoss(v, i, fsw float64) float64 {
	eOn, eOff := s.HardSwitchingEnergies(v, i)
	return (eOn + eOff) * fsw
}

// GateDriveLoss returns Qg * Vgs * fsw (W) per device.
func (s *SwitchSpec) GateDriveLoss(fsw float64) float64 {
	return s.QG * s.VGSDrive * fsw
}

// RectifierSpec holds the datasheet parameters of a secondary-side rectifier
// diode. A zero VF0 models a SiC Schottky (purely resistive forward drop,
// negligible recovery charge).
type RectifierSpec struct {
	PartNumber string
	VRRM       float64 // repetitive reverse voltage rating (V)
	IFAvg      float64 // average forward current rating (A)

	VF0 float64 // threshold voltage at 25C (V); 0 for Schottky
	RD  float64 // dynamic resistance (ohm)

	QRR float64
	TRR float64

	RthJC float64
	TJMax float64

	RelativeCost float64
}

// vf0TempCoeff is the Si PN junction threshold drift, V per degree C.
const vf0TempCoeff = -2e-3

// ThresholdAt returns the forward threshold voltage at junction temperature
// tj. Schottky rectifiers have no threshold at any temperature.
func (r *RectifierSpec) ThresholdAt(tj float64) float64 {
	if r.VF0 <= 0 {
		return 0
	}
	return r.VF0 + vf0TempCoeff*(tj-25)
}

// ForwardVoltage returns the forward drop at current i and temperature tj.
func (r *RectifierSpec) ForwardVoltage(i, tj float64) float64 {
	return r.ThresholdAt(tj) + r.RD*i
}

// ConductionLoss implements Device: VF0(Tj)*Iavg + Rd*Irms^2.
func (r *RectifierSpec) ConductionLoss(iRMS, iAvg, tj float64) float64 {
	return r.ThresholdAt(tj)*iAvg + r.RD*iRMS*iRMS
}

// SwitchingLoss implements Device: reverse-recovery dissipation
// 0.5 * Qrr * Vr * fsw. Zero for Schottky parts.
func (r *RectifierSpec) SwitchingLoss(v, _ float64, fsw float64) float64 {
	return 0.5 * r.QRR * v * fsw
}

// CapacitorSpec is a filter capacitor with its ESR loss model inputs.
type CapacitorSpec struct {
	PartNumber    string
	Capacitance   float64
	VoltageRating float64
	ESR           float64
	RippleRating  float64

	RelativeCost float64
}

// ESRLoss returns Irms^2 * ESR (W).
func (c *CapacitorSpec) ESRLoss(iRMS float64) float64 {
	return iRMS * iRMS * c.ESR
}

var (
	_ Device = (*SwitchSpec)(nil)
	_ Device = (*RectifierSpec)(nil)
)
