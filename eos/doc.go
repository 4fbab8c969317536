// Package eos assembles the SAFT-γ-Mie residual Helmholtz free energy and the
// thermodynamic properties derived from it.
//
// A/(NkT) is split into Contributions: ideal, hard sphere (BMCSL), the three
// perturbation orders of the monomer term, chain and association. Pressure,
// residual chemical potentials and fugacity coefficients are central finite
// differences of the residual part (gonum diff/fd), so every property shares a
// single free-energy definition:
//
//	P          = ρRT (1 + ρ ∂a_res/∂ρ)
//	μ_res,i/kT = ∂(N a_res)/∂N_i |_{T,V}
//	ln φ_i     = μ_res,i/kT − ln Z
//
// Segment diameters follow Barker–Henderson, integrated with fixed
// Gauss–Legendre quadrature (gonum integrate/quad).
//
// Units: T [K], ρ [mol/m³], P [Pa]. Every Evaluator is immutable and bound
// to one parameter snapshot.
package eos
