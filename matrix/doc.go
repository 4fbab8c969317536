// Package matrix offers the dense storage used for every pairwise (k,l)
// group quantity in saftgamma.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with safe accessors (At/Set return
//     errors instead of panicking) and a finite-value policy on Set.
//   - NewSymmetric, the builder used by combining rules: it evaluates a
//     pair function once per unordered pair and mirrors the result.
//   - Map and Combine, which always return a new matrix, so a matrix shared
//     between goroutines is never mutated after build.
//   - Validators for shape, symmetry and finiteness.
//
// Group counts in SAFT-γ-Mie systems are small (usually below 20), so the
// package favours clarity and determinism over blocked kernels.
package matrix
