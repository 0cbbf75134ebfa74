package catalog

// Built-in core table: TDK PQ power cores, Ferroxcube ETD cores and EPCOS E
// cores, with datasheet effective parameters. BSat values are for MnZn
// ferrite at 100C.
func builtinCores() []CoreGeometry {
	return []CoreGeometry{
		// Ferroxcube ETD series.
		{Name: "ETD39", EffectiveArea: 125e-6, EffectiveLength: 92.7e-3, EffectiveVolume: 11.6e-6, WindowArea: 117e-6, MeanLengthTurn: 69e-3, SurfaceArea: 69e-4, BSat: 0.39},
		{Name: "ETD44", EffectiveArea: 173e-6, EffectiveLength: 103e-3, EffectiveVolume: 17.8e-6, WindowArea: 174e-6, MeanLengthTurn: 77e-3, SurfaceArea: 89e-4, BSat: 0.39},
		{Name: "ETD49", EffectiveArea: 211e-6, EffectiveLength: 114e-3, EffectiveVolume: 24.1e-6, WindowArea: 231e-6, MeanLengthTurn: 85e-3, SurfaceArea: 107e-4, BSat: 0.39},
		{Name: "ETD54", EffectiveArea: 280e-6, EffectiveLength: 127e-3, EffectiveVolume: 35.5e-6, WindowArea: 314e-6, MeanLengthTurn: 96e-3, SurfaceArea: 131e-4, BSat: 0.39},
		{Name: "ETD59", EffectiveArea: 368e-6, EffectiveLength: 139e-3, EffectiveVolume: 51.2e-6, WindowArea: 511e-6, MeanLengthTurn: 106e-3, SurfaceArea: 163e-4, BSat: 0.39},

		// EPCOS E series.
		{Name: "E42/21/20", EffectiveArea: 181e-6, EffectiveLength: 96e-3, EffectiveVolume: 17.4e-6, WindowArea: 196e-6, MeanLengthTurn: 93e-3, SurfaceArea: 88e-4, BSat: 0.39},
		{Name: "E55/28/25", EffectiveArea: 353e-6, EffectiveLength: 124e-3, EffectiveVolume: 43.8e-6, WindowArea: 412e-6, MeanLengthTurn: 116e-3, SurfaceArea: 146e-4, BSat: 0.39},
		{Name: "E65/32/27", EffectiveArea: 530e-6, EffectiveLength: 148e-3, EffectiveVolume: 78.5e-6, WindowArea: 678e-6, MeanLengthTurn: 140e-3, SurfaceArea: 200e-4, BSat: 0.39},

		// TDK large PQ series.
		{Name: "PQ60/42", EffectiveArea: 630e-6, EffectiveLength: 147e-3, EffectiveVolume: 92.6e-6, WindowArea: 585e-6, MeanLengthTurn: 130e-3, SurfaceArea: 125e-4, BSat: 0.39},
		{Name: "PQ65/50", EffectiveArea: 842e-6, EffectiveLength: 156e-3, EffectiveVolume: 131e-6, WindowArea: 708e-6, MeanLengthTurn: 150e-3, SurfaceArea: 155e-4, BSat: 0.39},
		{Name: "PQ80/60", EffectiveArea: 1230e-6, EffectiveLength: 188e-3, EffectiveVolume: 231e-6, WindowArea: 1100e-6, MeanLengthTurn: 175e-3, SurfaceArea: 220e-4, BSat: 0.39},
		{Name: "PQ107/87", EffectiveArea: 2210e-6, EffectiveLength: 258e-3, EffectiveVolume: 570e-6, WindowArea: 2480e-6, MeanLengthTurn: 240e-3, SurfaceArea: 440e-4, BSat: 0.39},
	}
}

// Steinmetz coefficient buckets fitted from manufacturer loss curves,
// Pv = K * f^Alpha * B^Beta in W/m^3 with f in Hz and B in T. Anchored so
// 3C95 at 100 kHz / 0.2 T / 100C gives ~350 kW/m^3.
func builtinCoefficients() map[Material][]CoreLossCoefficients {
	return map[Material][]CoreLossCoefficients{
		Ferrite3C95: {
			{K: 0.123, Alpha: 1.61, Beta: 2.55, Temperature: 25},
			{K: 0.140, Alpha: 1.63, Beta: 2.60, Temperature: 60},
			{K: 0.169, Alpha: 1.63, Beta: 2.62, Temperature: 100},
			{K: 0.188, Alpha: 1.64, Beta: 2.64, Temperature: 120},
		},
		Ferrite3F3: {
			{K: 0.081, Alpha: 1.58, Beta: 2.48, Temperature: 25},
			{K: 0.116, Alpha: 1.60, Beta: 2.53, Temperature: 100},
		},
		FerriteN87: {
			{K: 0.105, Alpha: 1.57, Beta: 2.51, Temperature: 25},
			{K: 0.150, Alpha: 1.59, Beta: 2.58, Temperature: 100},
		},
		FerriteN97: {
			{K: 0.071, Alpha: 1.54, Beta: 2.45, Temperature: 25},
			{K: 0.104, Alpha: 1.56, Beta: 2.50, Temperature: 100},
		},
		Nanocrystalline: {
			{K: 0.037, Alpha: 1.51, Beta: 2.20, Temperature: 25},
			{K: 0.054, Alpha: 1.52, Beta: 2.24, Temperature: 100},
		},
	}
}

// BuiltinCatalog returns the catalog of bundled core geometries and loss
// coefficients.
func BuiltinCatalog() *Catalog {
	return NewCatalog(builtinCores(), builtinCoefficients())
}
