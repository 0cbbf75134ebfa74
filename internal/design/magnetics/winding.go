package magnetics

import (
	"math"

	"github.com/copyleftdev/VOLTA/internal/design"
)

// Copper material constants.
const (
	rhoCopper20     = 1.68e-8 // ohm*m at 20C
	copperTempCoeff = 0.00393 // 1/C
	mu0             = 4 * math.Pi * 1e-7
)

// Winding is a synthesized winding: turn count, conductor construction and
// the resulting resistances and loss at the design current. Owned by the
// Result that contains it.
type Winding struct {
	Turns          int
	WireGauge      float64 // bare conductor diameter (mm)
	StrandCount    int     // >1 means Litz construction
	StrandDiameter float64 // individual strand diameter (mm)
	LayerCount     int

	DCResistance float64 // ohm
	ACResistance float64 // ohm, includes skin/proximity factor
	CopperLoss   float64 // W at the design RMS current

	CurrentDensity float64 // realized A/mm^2
}

// copperResistivity returns resistivity at the given temperature (C).
func copperResistivity(temp float64) float64 {
	return rhoCopper20 * (1 + copperTempCoeff*(temp-20))
}

// skinDepth returns the copper skin depth in mm at frequency f (Hz) and
// conductor temperature temp (C).
func skinDepth(f, temp float64) float64 {
	delta := math.Sqrt(copperResistivity(temp) / (math.Pi * mu0 * f))
	return delta * 1000
}

// dowellFactor returns the Rac/Rdc ratio from Dowell's equation for a
// winding of m layers with bare wire diameter d (mm) at skin depth delta
// (mm). The factor is bounded to [1, 100].
func dowellFactor(d, delta float64, layers int) float64 {
	x := d / (2 * delta)
	if x < 0.01 {
		return 1
	}

	sinh2, sin2 := math.Sinh(2*x), math.Sin(2*x)
	cosh2, cos2 := math.Cosh(2*x), math.Cos(2*x)
	skin := 1.0
	if math.Abs(cosh2-cos2) > 1e-10 {
		skin = x * (sinh2 + sin2) / (cosh2 - cos2)
	}

	prox := 0.0
	if layers > 1 {
		sh, sn := math.Sinh(x), math.Sin(x)
		ch, cn := math.Cosh(x), math.Cos(x)
		if math.Abs(ch+cn) > 1e-10 {
			m := float64(layers)
			prox = (2.0 / 3.0) * (m*m - 1) * x * (sh - sn) / (ch + cn)
		}
	}

	return math.Max(1, math.Min(skin+prox, 100))
}

// designWinding sizes the conductor for the given RMS current at the target
// current density (A/mm^2), switching to Litz stranding when the required
// bare diameter exceeds twice the skin depth, and computes DC/AC resistance
// and copper loss. mlt is the mean length per turn (m).
func designWinding(iRMS float64, turns int, mlt, f, jMax float64, layers int, temp float64) (*Winding, error) {
	if iRMS <= 0 {
		return nil, design.NewFeasibility("winding current must be positive, got %g A", iRMS)
	}
	if jMax <= 0 {
		return nil, design.NewFeasibility("current density must be positive, got %g A/mm2", jMax)
	}

	areaTotal := iRMS / jMax // mm^2
	dBare := 2 * math.Sqrt(areaTotal/math.Pi)
	delta := skinDepth(f, temp)

	w := &Winding{Turns: turns, LayerCount: layers, StrandCount: 1}

	if dBare > 2*delta && f > 50e3 {
		// Litz construction: many strands thin against the skin depth.
		strandDia := math.Min(delta*1.5, 0.2)
		strandArea := math.Pi * strandDia * strandDia / 4
		strands := int(math.Ceil(areaTotal / strandArea))
		if strands < 10 {
			strands = 10
		}
		areaTotal = float64(strands) * strandArea
		w.StrandCount = strands
		w.StrandDiameter = strandDia
		w.WireGauge = math.Sqrt(4 * areaTotal / math.Pi)
	} else {
		w.WireGauge = dBare
		w.StrandDiameter = dBare
	}

	areaM2 := areaTotal * 1e-6
	w.DCResistance = copperResistivity(temp) * float64(turns) * mlt / areaM2

	if w.StrandCount > 1 {
		// Litz largely removes proximity loss; residual skin-effect adder
		// from the per-strand penetration ratio.
		ratio := w.StrandDiameter / delta
		w.ACResistance = w.DCResistance * (1 + 0.1*ratio*ratio)
	} else {
		w.ACResistance = w.DCResistance * dowellFactor(w.WireGauge, delta, layers)
	}

	w.CopperLoss = w.ACResistance * iRMS * iRMS
	w.CurrentDensity = iRMS / areaTotal
	return w, nil
}
