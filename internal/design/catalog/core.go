// Package catalog provides the read-only component data a design run draws
// from: magnetic core geometries with Steinmetz loss coefficients, and
// semiconductor/capacitor libraries. A catalog is loaded once at process
// start and injected; nothing in it is mutated afterwards.
package catalog

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Material identifies a magnetic core material.
type Material string

const (
	Ferrite3C95     Material = "3C95"
	Ferrite3F3      Material = "3F3"
	FerriteN87      Material = "N87"
	FerriteN97      Material = "N97"
	Nanocrystalline Material = "nanocrystalline"
)

// CoreGeometry is one physical core. All dimensions are SI (m, m^2, m^3).
// Records are immutable and looked up by name.
type CoreGeometry struct {
	Name            string
	EffectiveArea   float64 // Ae
	EffectiveLength float64 // le
	EffectiveVolume float64 // Ve
	WindowArea      float64 // Wa
	MeanLengthTurn  float64 // MLT
	SurfaceArea     float64 // for thermal estimates
	BSat            float64 // saturation flux density at 100C (T)
}

// AreaProduct returns Ae*Wa (m^4), the quantity the catalog is ordered by.
func (g CoreGeometry) AreaProduct() float64 {
	return g.EffectiveArea * g.WindowArea
}

// Kg returns McLyman's geometrical constant (Wa*Ae)^2 / MLT (m^5).
func (g CoreGeometry) Kg() float64 {
	ap := g.AreaProduct()
	return ap * ap / g.MeanLengthTurn
}

// CoreLossCoefficients holds Steinmetz parameters for one material at one
// temperature bucket: Pv = K * f^Alpha * B^Beta (W/m^3).
type CoreLossCoefficients struct {
	K           float64
	Alpha       float64
	Beta        float64
	Temperature float64 // degrees C the bucket is valid at
}

// Catalog is the injected, read-only core table. Cores are held in ascending
// area-product order so that "smallest core that satisfies" selections are
// deterministic by catalog order.
type Catalog struct {
	cores  []CoreGeometry
	byName map[string]int
	coeffs map[Material][]CoreLossCoefficients
}

// NewCatalog builds a catalog from core geometries and per-material
// coefficient buckets. Cores are sorted ascending by area product with name
// as tie-break; coefficient buckets are sorted by temperature.
func NewCatalog(cores []CoreGeometry, coeffs map[Material][]CoreLossCoefficients) *Catalog {
	cs := make([]CoreGeometry, len(cores))
	copy(cs, cores)
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].AreaProduct() != cs[j].AreaProduct() {
			return cs[i].AreaProduct() < cs[j].AreaProduct()
		}
		return cs[i].Name < cs[j].Name
	})

	byName := make(map[string]int, len(cs))
	for i, c := range cs {
		byName[c.Name] = i
	}

	cm := make(map[Material][]CoreLossCoefficients, len(coeffs))
	for m, buckets := range coeffs {
		b := make([]CoreLossCoefficients, len(buckets))
		copy(b, buckets)
		sort.Slice(b, func(i, j int) bool { return b[i].Temperature < b[j].Temperature })
		cm[m] = b
	}

	return &Catalog{cores: cs, byName: byName, coeffs: cm}
}

// Cores returns the cores in ascending area-product order. Callers must not
// mutate the returned slice.
func (c *Catalog) Cores() []CoreGeometry {
	return c.cores
}

// Core looks up a core geometry by name.
func (c *Catalog) Core(name string) (CoreGeometry, bool) {
	i, ok := c.byName[name]
	if !ok {
		return CoreGeometry{}, false
	}
	return c.cores[i], true
}

// Coefficients returns Steinmetz coefficients for the material, linearly
// interpolated at the requested temperature. Outside the bucketed range the
// nearest bucket is used.
func (c *Catalog) Coefficients(m Material, temperature float64) (CoreLossCoefficients, error) {
	buckets, ok := c.coeffs[m]
	if !ok || len(buckets) == 0 {
		return CoreLossCoefficients{}, fmt.Errorf("catalog: no loss coefficients for material %q", m)
	}
	if len(buckets) == 1 {
		out := buckets[0]
		out.Temperature = temperature
		return out, nil
	}

	temps := make([]float64, len(buckets))
	ks := make([]float64, len(buckets))
	alphas := make([]float64, len(buckets))
	betas := make([]float64, len(buckets))
	for i, b := range buckets {
		temps[i] = b.Temperature
		ks[i] = b.K
		alphas[i] = b.Alpha
		betas[i] = b.Beta
	}

	// Clamp rather than extrapolate outside the characterized range.
	t := temperature
	if t < temps[0] {
		t = temps[0]
	}
	if t > temps[len(temps)-1] {
		t = temps[len(temps)-1]
	}

	var pk, pa, pb interp.PiecewiseLinear
	if err := pk.Fit(temps, ks); err != nil {
		return CoreLossCoefficients{}, fmt.Errorf("catalog: fit k: %w", err)
	}
	if err := pa.Fit(temps, alphas); err != nil {
		return CoreLossCoefficients{}, fmt.Errorf("catalog: fit alpha: %w", err)
	}
	if err := pb.Fit(temps, betas); err != nil {
		return CoreLossCoefficients{}, fmt.Errorf("catalog: fit beta: %w", err)
	}

	return CoreLossCoefficients{
		K:           pk.Predict(t),
		Alpha:       pa.Predict(t),
		Beta:        pb.Predict(t),
		Temperature: temperature,
	}, nil
}
