package optimizer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/VOLTA/internal/design"
	"github.com/copyleftdev/VOLTA/internal/design/catalog"
)

func smallLibrary(t *testing.T) *catalog.Library {
	t.Helper()
	lib, err := catalog.NewLibrary(
		[]*catalog.SwitchSpec{
			{PartNumber: "SW-A", RelativeCost: 1},
			{PartNumber: "SW-B", RelativeCost: 2},
		},
		[]*catalog.RectifierSpec{
			{PartNumber: "D-A", RelativeCost: 1},
			{PartNumber: "D-B", RelativeCost: 2},
		},
		nil, nil,
	)
	require.NoError(t, err)
	return lib
}

func drain(g *Generator) []design.Skeleton {
	var out []design.Skeleton
	for {
		sk, ok := g.Next()
		if !ok {
			return out
		}
		out = append(out, sk)
	}
}

func TestGeneratorFullCrossProduct(t *testing.T) {
	g := NewGenerator(smallLibrary(t), 80e3, 120e3, 2, 8)
	assert.Equal(t, 8, g.Total())

	skeletons := drain(g)
	require.Len(t, skeletons, 8)

	seen := make(map[string]bool)
	for i, sk := range skeletons {
		assert.Equal(t, i, sk.Index)
		key := fmt.Sprintf("%s/%s/%g", sk.Switch.PartNumber, sk.Rectifier.PartNumber, sk.Frequency)
		assert.False(t, seen[key], "duplicate tuple %s", key)
		seen[key] = true
	}

	// Outer loop switch x rectifier in library order, frequencies inside.
	assert.Equal(t, "SW-A", skeletons[0].Switch.PartNumber)
	assert.Equal(t, "D-A", skeletons[0].Rectifier.PartNumber)
	assert.Equal(t, 80e3, skeletons[0].Frequency)
	assert.Equal(t, 120e3, skeletons[1].Frequency)
	assert.Equal(t, "D-B", skeletons[2].Rectifier.PartNumber)
	assert.Equal(t, "SW-B", skeletons[4].Switch.PartNumber)
}

func TestGeneratorTruncatesAtBudget(t *testing.T) {
	full := drain(NewGenerator(smallLibrary(t), 80e3, 120e3, 2, 8))
	short := drain(NewGenerator(smallLibrary(t), 80e3, 120e3, 2, 5))

	require.Len(t, short, 5)
	// Budget truncation yields a strict prefix, even mid-combination.
	for i, sk := range short {
		assert.Equal(t, full[i].Switch.PartNumber, sk.Switch.PartNumber)
		assert.Equal(t, full[i].Rectifier.PartNumber, sk.Rectifier.PartNumber)
		assert.Equal(t, full[i].Frequency, sk.Frequency)
	}
}

func TestGeneratorSingleFrequencySample(t *testing.T) {
	skeletons := drain(NewGenerator(smallLibrary(t), 100e3, 200e3, 1, 100))
	require.Len(t, skeletons, 4)
	for _, sk := range skeletons {
		assert.Equal(t, 100e3, sk.Frequency)
	}
}

func TestGeneratorExhaustedStaysExhausted(t *testing.T) {
	g := NewGenerator(smallLibrary(t), 80e3, 120e3, 2, 8)
	drain(g)
	_, ok := g.Next()
	assert.False(t, ok)
}
