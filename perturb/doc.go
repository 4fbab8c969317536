// Package perturb computes the Barker–Henderson perturbation terms of the
// SAFT-γ-Mie monomer contribution (Lafitte et al. 2013, Papaioannou et al. 2014).
//
// The central operation is A1S, the first-order term of a Sutherland
// potential of exponent λ evaluated through the effective packing fraction
// η_eff(ζx, λ):
//
//	a1s_kl = (1 − η/2)/(1 − η)³ · (−2π·Cmol2seg·ε_kl·d_kl³/(λ_kl − 3)) · ρ
//
// A1S is the pairwise (matrix) form; A1S1D is the single-bead-type (vector)
// form over per-component averaged parameters. Select picks one from the
// number of distinct groups. On top of it the package builds the B term,
// K^HS, χ and the a1, a2, a3 pair matrices consumed by eos.
//
// Units: ρ is a molecular number density [1/m³], d and σ are in meters,
// ε is ε/k_B in K. All outputs are therefore in K (energy over k_B);
// callers multiply by β = 1/T.
//
// Kernel modes (Options.Kernel):
//   - KernelReference: straight loops, one η_eff evaluation per pair and density.
//   - KernelFused: per-call coefficient vectors in a flat buffer and Horner
//     evaluation across all densities. Agrees with KernelReference to ≤1e-12.
//
// Errors: poles are never returned as ±Inf/NaN. λ ≤ 3, λ = 4 in the J
// integral, ζx ≥ 1, η_eff ≥ 1 and negative densities yield *faults.DomainError.
// Shape mismatches return matrix dimension sentinels.
package perturb
