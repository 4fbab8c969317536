// Package density finds the molar densities at which a mixture reaches a
// target pressure.
//
// The solver scans molar volume from the close-packing bound upward:
//
//	ρ_max : ζ3(ρ_max) = MaxPackingFraction (π/(3√2) by default)
//	ρ_min = MinRhoFrac · ρ_max
//	v_{n+1} = v_n + min(v_n/RhoInc, VSpaceMax)
//
// ending at min(1/ρ_min, 4RT/P). Every sign change of P(v) − P_target is
// refined with Brent's method; a root is flagged Stable when pressure falls
// with volume across its bracket (∂P/∂ρ > 0). The same scan locates the
// spinodal local minimum and maximum returned by PressureBounds.
//
// Knobs come from a `density_dict` through FromDict: minrhofrac, rhoinc,
// vspacemax.
package density
