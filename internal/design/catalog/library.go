package catalog

import "fmt"

// Library is the injected, read-only semiconductor and capacitor component
// set. Iteration order is the load order, which makes candidate enumeration
// deterministic for a given library.
type Library struct {
	switches   []*SwitchSpec
	rectifiers []*RectifierSpec
	inputCaps  []*CapacitorSpec
	outputCaps []*CapacitorSpec

	switchByPart    map[string]*SwitchSpec
	rectifierByPart map[string]*RectifierSpec
}

// NewLibrary assembles a library preserving the given ordering.
func NewLibrary(switches []*SwitchSpec, rectifiers []*RectifierSpec, inputCaps, outputCaps []*CapacitorSpec) (*Library, error) {
	if len(switches) == 0 {
		return nil, fmt.Errorf("library: no switches")
	}
	if len(rectifiers) == 0 {
		return nil, fmt.Errorf("library: no rectifiers")
	}
	l := &Library{
		switches:        switches,
		rectifiers:      rectifiers,
		inputCaps:       inputCaps,
		outputCaps:      outputCaps,
		switchByPart:    make(map[string]*SwitchSpec, len(switches)),
		rectifierByPart: make(map[string]*RectifierSpec, len(rectifiers)),
	}
	for _, s := range switches {
		if _, dup := l.switchByPart[s.PartNumber]; dup {
			return nil, fmt.Errorf("library: duplicate switch part %q", s.PartNumber)
		}
		l.switchByPart[s.PartNumber] = s
	}
	for _, r := range rectifiers {
		if _, dup := l.rectifierByPart[r.PartNumber]; dup {
			return nil, fmt.Errorf("library: duplicate rectifier part %q", r.PartNumber)
		}
		l.rectifierByPart[r.PartNumber] = r
	}
	return l, nil
}

// Switches returns the switch specs in library order.
func (l *Library) Switches() []*SwitchSpec { return l.switches }

// Rectifiers returns the rectifier specs in library order.
func (l *Library) Rectifiers() []*RectifierSpec { return l.rectifiers }

// InputCapacitors returns the input filter capacitor options.
func (l *Library) InputCapacitors() []*CapacitorSpec { return l.inputCaps }

// OutputCapacitors returns the output filter capacitor options.
func (l *Library) OutputCapacitors() []*CapacitorSpec { return l.outputCaps }

// Switch looks up a switch by part number.
func (l *Library) Switch(part string) (*SwitchSpec, bool) {
	s, ok := l.switchByPart[part]
	return s, ok
}

// Rectifier looks up a rectifier by part number.
func (l *Library) Rectifier(part string) (*RectifierSpec, bool) {
	r, ok := l.rectifierByPart[part]
	return r, ok
}

// BuiltinLibrary returns the bundled component set: 650-1200V SiC MOSFETs
// for the primary side, SiC Schottky and Si ultrafast rectifiers for the
// secondary, and film/electrolytic filter capacitors.
func BuiltinLibrary() *Library {
	mustCurve := func(points [][2]float64) CapacitanceCurve {
		c, err := NewCapacitanceCurve(points)
		if err != nil {
			panic(err)
		}
		return c
	}

	switches := []*SwitchSpec{
		{
			PartNumber: "IMZA65R020M2H", VDSS: 650, IDContinuous: 90,
			RdsOn25: 16e-3, RdsOn25Max: 20e-3, RdsOn150: 22e-3, RdsOn150Max: 28e-3,
			QG: 142e-9, QGS: 38e-9, QGD: 52e-9, VPlateau: 4.5,
			Coss: mustCurve([][2]float64{{25, 980e-12}, {100, 640e-12}, {400, 520e-12}}),
			Crss: mustCurve([][2]float64{{25, 45e-12}, {100, 22e-12}, {400, 15e-12}}),
			TRise: 25e-9, TFall: 20e-9,
			VSD: 3.4, QRR: 190e-9, TRR: 22e-9,
			RthJC: 0.48, TJMax: 175, VGSDrive: 18, RGInternal: 1.5, RGExternal: 5,
			RelativeCost: 2.8,
		},
		{
			PartNumber: "IMZA65R040M2H", VDSS: 650, IDContinuous: 58,
			RdsOn25: 32e-3, RdsOn25Max: 40e-3, RdsOn150: 44e-3, RdsOn150Max: 55e-3,
			QG: 98e-9, QGS: 26e-9, QGD: 36e-9, VPlateau: 4.2,
			Coss: mustCurve([][2]float64{{25, 660e-12}, {100, 420e-12}, {400, 340e-12}}),
			Crss: mustCurve([][2]float64{{25, 30e-12}, {100, 14e-12}, {400, 10e-12}}),
			TRise: 20e-9, TFall: 18e-9,
			VSD: 3.4, QRR: 120e-9, TRR: 18e-9,
			RthJC: 0.75, TJMax: 175, VGSDrive: 18, RGInternal: 2, RGExternal: 5,
			RelativeCost: 2.2,
		},
		{
			PartNumber: "C3M0065090J", VDSS: 900, IDContinuous: 36,
			RdsOn25: 50e-3, RdsOn25Max: 65e-3, RdsOn150: 70e-3, RdsOn150Max: 90e-3,
			QG: 55e-9, QGS: 18e-9, QGD: 20e-9, VPlateau: 4.8,
			Coss: mustCurve([][2]float64{{25, 240e-12}, {100, 150e-12}, {600, 120e-12}}),
			Crss: mustCurve([][2]float64{{25, 16e-12}, {100, 10e-12}, {600, 8e-12}}),
			TRise: 18e-9, TFall: 15e-9,
			VSD: 4.2, QRR: 85e-9, TRR: 16e-9,
			RthJC: 1.0, TJMax: 175, VGSDrive: 15, RGInternal: 4.7, RGExternal: 5,
			RelativeCost: 2.5,
		},
		{
			PartNumber: "C3M0021120K", VDSS: 1200, IDContinuous: 90,
			RdsOn25: 16e-3, RdsOn25Max: 21e-3, RdsOn150: 22e-3, RdsOn150Max: 29e-3,
			QG: 130e-9, QGS: 35e-9, QGD: 48e-9, VPlateau: 5.0,
			Coss: mustCurve([][2]float64{{25, 780e-12}, {100, 500e-12}, {800, 410e-12}}),
			Crss: mustCurve([][2]float64{{25, 24e-12}, {100, 15e-12}, {800, 12e-12}}),
			TRise: 22e-9, TFall: 20e-9,
			VSD: 4.4, QRR: 210e-9, TRR: 24e-9,
			RthJC: 0.32, TJMax: 175, VGSDrive: 15, RGInternal: 2.6, RGExternal: 5,
			RelativeCost: 3.5,
		},
	}

	rectifiers := []*RectifierSpec{
		{PartNumber: "C4D30120A", VRRM: 1200, IFAvg: 31, VF0: 0, RD: 35e-3, QRR: 0, TRR: 0, RthJC: 0.55, TJMax: 175, RelativeCost: 2.0},
		{PartNumber: "C4D20120D", VRRM: 1200, IFAvg: 20, VF0: 0, RD: 45e-3, QRR: 0, TRR: 0, RthJC: 0.75, TJMax: 175, RelativeCost: 1.5},
		{PartNumber: "C3D16065D", VRRM: 650, IFAvg: 16, VF0: 0, RD: 50e-3, QRR: 0, TRR: 0, RthJC: 1.1, TJMax: 175, RelativeCost: 1.2},
		{PartNumber: "MUR3020WT", VRRM: 200, IFAvg: 30, VF0: 0.85, RD: 12e-3, QRR: 180e-9, TRR: 45e-9, RthJC: 1.5, TJMax: 150, RelativeCost: 0.3},
		{PartNumber: "DSEI60-06A", VRRM: 600, IFAvg: 60, VF0: 1.0, RD: 8e-3, QRR: 380e-9, TRR: 55e-9, RthJC: 0.7, TJMax: 150, RelativeCost: 0.5},
	}

	inputCaps := []*CapacitorSpec{
		{PartNumber: "MKP-100uF-500V", Capacitance: 100e-6, VoltageRating: 500, ESR: 10e-3, RippleRating: 25, RelativeCost: 1.5},
		{PartNumber: "MKP-60uF-600V", Capacitance: 60e-6, VoltageRating: 600, ESR: 14e-3, RippleRating: 18, RelativeCost: 1.2},
	}
	outputCaps := []*CapacitorSpec{
		{PartNumber: "ALU-470uF-350V", Capacitance: 470e-6, VoltageRating: 350, ESR: 60e-3, RippleRating: 6.5, RelativeCost: 0.8},
		{PartNumber: "ALU-330uF-350V", Capacitance: 330e-6, VoltageRating: 350, ESR: 80e-3, RippleRating: 5.0, RelativeCost: 0.6},
	}

	l, err := NewLibrary(switches, rectifiers, inputCaps, outputCaps)
	if err != nil {
		panic(err)
	}
	return l
}
