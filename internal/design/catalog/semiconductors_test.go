package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitchRdsOnTemperatureModel(t *testing.T) {
	s := &SwitchSpec{RdsOn25Max: 20e-3, RdsOn150Max: 28e-3}

	// alpha = 100 * (28/20 - 1) / 125 = 0.32 %/C
	assert.InDelta(t, 0.32, s.AlphaRdsOn(), 1e-9)
	assert.InDelta(t, 20e-3, s.RdsOnAt(25), 1e-12)
	assert.InDelta(t, 28e-3, s.RdsOnAt(150), 1e-12)

	// 20 A RMS at Tj=100C: R = 24.8 mOhm, P = 9.92 W.
	assert.InDelta(t, 9.92, s.ConductionLoss(20, 0, 100), 0.01)
}

func TestSwitchGateDriveLoss(t *testing.T) {
	s := &SwitchSpec{QG: 142e-9, VGSDrive: 18}
	assert.InDelta(t, 142e-9*18*100e3, s.GateDriveLoss(100e3), 1e-9)
}

func TestSwitchSwitchingEnergies(t *testing.T) {
	lib := BuiltinLibrary()
	s, ok := lib.Switch("IMZA65R020M2H")
	require.True(t, ok)

	t.Run("hard switching", func(t *testing.T) {
		eOn, eOff := s.HardSwitchingEnergies(400, 10)
		assert.Greater(t, eOn, 0.0)
		assert.Greater(t, eOff, 0.0)
		// Qrr contribution makes turn-on the dominant edge here.
		assert.Greater(t, eOn, eOff)
	})

	t.Run("zvs", func(t *testing.T) {
		eOn, eOff := s.ZVSSwitchingEnergies(400)
		assert.Zero(t, eOn)
		assert.InDelta(t, 0.5*s.Coss.At(400)*400*400, eOff, 1e-12)
	})

	t.Run("zvs below hard", func(t *testing.T) {
		_, zvsOff := s.ZVSSwitchingEnergies(400)
		hardOn, hardOff := s.HardSwitchingEnergies(400, 10)
		assert.Less(t, zvsOff, hardOn+hardOff)
	})
}

func TestMillerTimes(t *testing.T) {
	lib := BuiltinLibrary()
	s, ok := lib.Switch("C3M0065090J")
	require.True(t, ok)

	tf, tr := s.MillerTimes(600)
	assert.Greater(t, tf, 0.0)
	assert.Equal(t, tf, tr)

	// No gate current above the plateau means no plateau transition.
	stuck := *s
	stuck.VGSDrive = stuck.VPlateau
	tf, tr = stuck.MillerTimes(600)
	assert.Zero(t, tf)
	assert.Zero(t, tr)
}

func TestCapacitanceCurve(t *testing.T) {
	t.Run("constant", func(t *testing.T) {
		c := ConstantCapacitance(100e-12)
		assert.Equal(t, 100e-12, c.At(0))
		assert.Equal(t, 100e-12, c.At(1000))
	})

	t.Run("fitted with endpoint clamping", func(t *testing.T) {
		c, err := NewCapacitanceCurve([][2]float64{{25, 980e-12}, {100, 640e-12}, {400, 520e-12}})
		require.NoError(t, err)

		assert.InDelta(t, 980e-12, c.At(0), 1e-15)   // below range
		assert.InDelta(t, 520e-12, c.At(800), 1e-15) // above range
		mid := c.At(62.5)
		assert.InDelta(t, (980e-12+640e-12)/2, mid, 1e-15)
	})

	t.Run("rejects single point", func(t *testing.T) {
		_, err := NewCapacitanceCurve([][2]float64{{25, 1e-12}})
		require.Error(t, err)
	})
}

func TestRectifierTemperatureModel(t *testing.T) {
	si := &RectifierSpec{VF0: 0.85, RD: 12e-3}

	// -2 mV/C drift.
	assert.InDelta(t, 0.85, si.ThresholdAt(25), 1e-12)
	assert.InDelta(t, 0.65, si.ThresholdAt(125), 1e-12)

	schottky := &RectifierSpec{VF0: 0, RD: 35e-3}
	assert.Zero(t, schottky.ThresholdAt(125))
	// Schottky conduction is purely resistive.
	assert.InDelta(t, 35e-3*100, schottky.ConductionLoss(10, 5, 125), 1e-9)
}

func TestRectifierSwitchingLoss(t *testing.T) {
	si := &RectifierSpec{QRR: 180e-9}
	assert.InDelta(t, 0.5*180e-9*72*100e3, si.SwitchingLoss(72, 0, 100e3), 1e-9)

	schottky := &RectifierSpec{QRR: 0}
	assert.Zero(t, schottky.SwitchingLoss(72, 0, 100e3))
}

func TestCapacitorESRLoss(t *testing.T) {
	c := &CapacitorSpec{ESR: 10e-3}
	assert.InDelta(t, 0.4, c.ESRLoss(2*3.1622776601683795), 1e-6) // 40 A^2 * 10 mOhm
}

func TestNewLibraryValidation(t *testing.T) {
	sw := &SwitchSpec{PartNumber: "SW1"}
	rect := &RectifierSpec{PartNumber: "D1"}

	t.Run("requires switches and rectifiers", func(t *testing.T) {
		_, err := NewLibrary(nil, []*RectifierSpec{rect}, nil, nil)
		require.Error(t, err)
		_, err = NewLibrary([]*SwitchSpec{sw}, nil, nil, nil)
		require.Error(t, err)
	})

	t.Run("rejects duplicate part numbers", func(t *testing.T) {
		_, err := NewLibrary([]*SwitchSpec{sw, sw}, []*RectifierSpec{rect}, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})
}

func TestBuiltinLibrary(t *testing.T) {
	lib := BuiltinLibrary()

	assert.Len(t, lib.Switches(), 4)
	assert.Len(t, lib.Rectifiers(), 5)
	assert.NotEmpty(t, lib.InputCapacitors())
	assert.NotEmpty(t, lib.OutputCapacitors())

	for _, s := range lib.Switches() {
		got, ok := lib.Switch(s.PartNumber)
		require.True(t, ok)
		assert.Same(t, s, got)
		assert.Greater(t, s.RelativeCost, 0.0)
	}
	for _, r := range lib.Rectifiers() {
		got, ok := lib.Rectifier(r.PartNumber)
		require.True(t, ok)
		assert.Same(t, r, got)
	}
}
