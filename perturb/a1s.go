// SPDX-License-Identifier: MIT

package perturb

import (
	"fmt"
	"math"

	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/matrix"
)

const (
	opEta   = "perturb.EffectivePackingFraction"
	opA1S   = "perturb.A1S"
	opA1S1D = "perturb.A1S1D"
	opB     = "perturb.B"
)

// A1SFunc is the matrix-form signature shared by A1S and the Select result.
type A1SFunc func(rho []float64, cmol2seg float64, lambda *matrix.Dense, zetax []float64, eps, d *matrix.Dense) ([]*matrix.Dense, error)

func checkLambda(op string, lambda float64) error {
	if !(lambda > 3) || math.IsInf(lambda, 0) {
		return faults.Domain(op, "lambda", lambda)
	}
	return nil
}

func checkZeta(op, name string, z float64) error {
	if !(z >= 0 && z < 1) {
		return faults.Domain(op, name, z)
	}
	return nil
}

func checkDensities(op string, rho []float64, cmol2seg float64) error {
	if !(cmol2seg > 0) || math.IsInf(cmol2seg, 0) {
		return faults.Domain(op, "Cmol2seg", cmol2seg)
	}
	for _, r := range rho {
		if !(r >= 0) || math.IsInf(r, 0) {
			return faults.Domain(op, "rho", r)
		}
	}
	return nil
}

// EffectivePackingFraction returns η_eff = Σ_{m=1..4} c_m(λ) ζxᵐ.
//
// Errors: DomainError for λ ≤ 3, ζx outside [0,1) or η_eff ≥ 1.
func EffectivePackingFraction(zetax, lambda float64) (float64, error) {
	if err := checkLambda(opEta, lambda); err != nil {
		return 0, err
	}
	if err := checkZeta(opEta, "zetax", zetax); err != nil {
		return 0, err
	}
	c := coefficients(lambda)
	eta := c[0]*zetax + c[1]*math.Pow(zetax, 2) + c[2]*math.Pow(zetax, 3) + c[3]*math.Pow(zetax, 4)
	if !(eta < 1) {
		return 0, faults.Domain(opEta, "eta", eta)
	}
	return eta, nil
}

// a1sPrefactor is −2π·ε·d³/(λ−3), the density-independent part of a1s.
func a1sPrefactor(eps, d, lambda float64) float64 {
	return -2 * math.Pi * eps * d * d * d / (lambda - 3)
}

// a1sFlat evaluates a1s for P interaction entries at every density.
// dst[i] receives the P values at rho[i].
func (c *Calculator) a1sFlat(op string, rho []float64, cmol2seg float64, lambda, zetax, eps, d []float64) ([][]float64, error) {
	if len(rho) != len(zetax) {
		return nil, fmt.Errorf("%s: rho/zetax: %w", op, matrix.ErrDimensionMismatch)
	}
	if len(eps) != len(lambda) || len(d) != len(lambda) {
		return nil, fmt.Errorf("%s: parameters: %w", op, matrix.ErrDimensionMismatch)
	}
	if err := checkDensities(op, rho, cmol2seg); err != nil {
		return nil, err
	}
	for _, z := range zetax {
		if err := checkZeta(op, "zetax", z); err != nil {
			return nil, err
		}
	}
	for _, l := range lambda {
		if err := checkLambda(op, l); err != nil {
			return nil, err
		}
	}

	dst := make([][]float64, len(rho))
	if c.opts.Kernel == KernelFused {
		return dst, c.a1sFused(op, rho, cmol2seg, lambda, zetax, eps, d, dst)
	}
	for i, r := range rho {
		row := make([]float64, len(lambda))
		for p, l := range lambda {
			eta, err := EffectivePackingFraction(zetax[i], l)
			if err != nil {
				return nil, err
			}
			corr := (1 - eta/2) / math.Pow(1-eta, 3)
			row[p] = corr * a1sPrefactor(cmol2seg*eps[p], d[p], l) * r
		}
		dst[i] = row
	}
	return dst, nil
}

// a1sFused stores coefficients and prefactors of every entry in one buffer
// (5 values per entry) and sweeps densities with Horner evaluation.
func (c *Calculator) a1sFused(op string, rho []float64, cmol2seg float64, lambda, zetax, eps, d []float64, dst [][]float64) error {
	const stride = 5
	buf := make([]float64, stride*len(lambda))
	for p, l := range lambda {
		cf := coefficients(l)
		copy(buf[p*stride:], cf[:])
		buf[p*stride+4] = a1sPrefactor(cmol2seg*eps[p], d[p], l)
	}
	for i, r := range rho {
		z := zetax[i]
		row := make([]float64, len(lambda))
		for p := range lambda {
			e := buf[p*stride : p*stride+stride]
			eta := z * (e[0] + z*(e[1]+z*(e[2]+z*e[3])))
			if !(eta < 1) {
				return faults.Domain(op, "eta", eta)
			}
			om := 1 - eta
			row[p] = (1 - eta/2) / (om * om * om) * e[4] * r
		}
		dst[i] = row
	}
	return nil
}

// A1S computes the pairwise first-order Sutherland term for every density.
// MAIN DESCRIPTION:
//   - For density ρ_i and pair (k,l): η = η_eff(ζx_i, λ_kl) and
//     a1s = (1 − η/2)/(1 − η)³ · (−2π·Cmol2seg·ε_kl·d_kl³/(λ_kl − 3)) · ρ_i.
//
// Inputs:
//   - rho: molecular number densities [1/m³], one per evaluation.
//   - zetax: packing fraction at each density (len(zetax) == len(rho)).
//   - lambda, eps, d: square pair matrices of identical shape.
//
// Errors:
//   - DomainError for λ ≤ 3, ζx ∉ [0,1), η ≥ 1, ρ < 0, Cmol2seg ≤ 0.
//   - matrix.ErrDimensionMismatch / ErrNilMatrix for bad shapes.
//
// Complexity: O(len(rho)·G²).
func (c *Calculator) A1S(rho []float64, cmol2seg float64, lambda *matrix.Dense, zetax []float64, eps, d *matrix.Dense) ([]*matrix.Dense, error) {
	if err := validatePairs(opA1S, lambda, eps, d); err != nil {
		return nil, err
	}
	rows, err := c.a1sFlat(opA1S, rho, cmol2seg, lambda.Flat(), zetax, eps.Flat(), d.Flat())
	if err != nil {
		return nil, err
	}
	return toMatrices(opA1S, lambda.Rows(), rows)
}

// A1S1D is the single-bead-type form of A1S: lambda, eps and d are vectors
// (one averaged bead per entry) and the result is len(rho)×len(lambda).
func (c *Calculator) A1S1D(rho []float64, cmol2seg float64, lambda, zetax, eps, d []float64) (*matrix.Dense, error) {
	if len(lambda) == 0 {
		return nil, fmt.Errorf("%s: %w", opA1S1D, matrix.ErrInvalidDimensions)
	}
	rows, err := c.a1sFlat(opA1S1D, rho, cmol2seg, lambda, zetax, eps, d)
	if err != nil {
		return nil, err
	}
	return stack(opA1S1D, rows, len(lambda))
}

// Select returns the matrix form when more than one group exists and the
// vector form, broadcast into 1×1 matrices, otherwise.
func (c *Calculator) Select(nbeads int) A1SFunc {
	if nbeads > 1 {
		return c.A1S
	}
	return func(rho []float64, cmol2seg float64, lambda *matrix.Dense, zetax []float64, eps, d *matrix.Dense) ([]*matrix.Dense, error) {
		if err := validatePairs(opA1S1D, lambda, eps, d); err != nil {
			return nil, err
		}
		if lambda.Rows() != 1 {
			return nil, fmt.Errorf("%s: single bead form with %d groups: %w", opA1S1D, lambda.Rows(), matrix.ErrDimensionMismatch)
		}
		v, err := c.A1S1D(rho, cmol2seg, lambda.Diag(), zetax, eps.Diag(), d.Diag())
		if err != nil {
			return nil, err
		}
		out := make([]*matrix.Dense, len(rho))
		for i := range rho {
			if out[i], err = matrix.FromFlat(1, 1, v.Row(i)); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}

// B computes the B term of the Sutherland expansion for every density:
//
//	B = 2π ρs d³ ε [ (1 − ζx/2)/(1 − ζx)³ · I(λ) − 9ζx(1 + ζx)/(2(1 − ζx)³) · J(λ) ]
//
// with ρs = Cmol2seg·ρ and x0 = σ/d. λ = 4 is a pole of J.
func (c *Calculator) B(rho []float64, cmol2seg float64, lambda *matrix.Dense, zetax []float64, x0, eps, d *matrix.Dense) ([]*matrix.Dense, error) {
	if err := validatePairs(opB, lambda, eps, d); err != nil {
		return nil, err
	}
	if err := matrix.ValidateSameShape(lambda, x0); err != nil {
		return nil, fmt.Errorf("%s: %w", opB, err)
	}
	rows, err := bFlat(rho, cmol2seg, lambda.Flat(), zetax, x0.Flat(), eps.Flat(), d.Flat())
	if err != nil {
		return nil, err
	}
	return toMatrices(opB, lambda.Rows(), rows)
}

// B1D is the vector form of B.
func (c *Calculator) B1D(rho []float64, cmol2seg float64, lambda, zetax, x0, eps, d []float64) (*matrix.Dense, error) {
	if len(lambda) == 0 {
		return nil, fmt.Errorf("%s: %w", opB, matrix.ErrInvalidDimensions)
	}
	rows, err := bFlat(rho, cmol2seg, lambda, zetax, x0, eps, d)
	if err != nil {
		return nil, err
	}
	return stack(opB, rows, len(lambda))
}

func bFlat(rho []float64, cmol2seg float64, lambda, zetax, x0, eps, d []float64) ([][]float64, error) {
	if len(rho) != len(zetax) {
		return nil, fmt.Errorf("%s: rho/zetax: %w", opB, matrix.ErrDimensionMismatch)
	}
	if len(eps) != len(lambda) || len(d) != len(lambda) || len(x0) != len(lambda) {
		return nil, fmt.Errorf("%s: parameters: %w", opB, matrix.ErrDimensionMismatch)
	}
	if err := checkDensities(opB, rho, cmol2seg); err != nil {
		return nil, err
	}
	ij := make([]float64, 2*len(lambda))
	for p, l := range lambda {
		if err := checkLambda(opB, l); err != nil {
			return nil, err
		}
		if l == 4 {
			return nil, faults.Domain(opB, "lambda", l)
		}
		x3 := math.Pow(x0[p], 3-l)
		x4 := math.Pow(x0[p], 4-l)
		ij[2*p] = -(x3 - 1) / (l - 3)
		ij[2*p+1] = -(x4*(l-3) - x3*(l-4) - 1) / ((l - 3) * (l - 4))
	}
	dst := make([][]float64, len(rho))
	for i, r := range rho {
		z := zetax[i]
		if err := checkZeta(opB, "zetax", z); err != nil {
			return nil, err
		}
		om3 := math.Pow(1-z, 3)
		fI := (1 - z/2) / om3
		fJ := 9 * z * (1 + z) / (2 * om3)
		rhoS := cmol2seg * r
		row := make([]float64, len(lambda))
		for p := range lambda {
			row[p] = 2 * math.Pi * rhoS * d[p] * d[p] * d[p] * eps[p] * (fI*ij[2*p] - fJ*ij[2*p+1])
		}
		dst[i] = row
	}
	return dst, nil
}

func validatePairs(op string, lambda, eps, d *matrix.Dense) error {
	if err := matrix.ValidateSquare(lambda); err != nil {
		return fmt.Errorf("%s: lambda: %w", op, err)
	}
	if err := matrix.ValidateSameShape(lambda, eps); err != nil {
		return fmt.Errorf("%s: epsilon: %w", op, err)
	}
	if err := matrix.ValidateSameShape(lambda, d); err != nil {
		return fmt.Errorf("%s: d: %w", op, err)
	}
	return nil
}

func toMatrices(op string, n int, rows [][]float64) ([]*matrix.Dense, error) {
	out := make([]*matrix.Dense, len(rows))
	for i, r := range rows {
		m, err := matrix.FromFlat(n, n, r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out[i] = m
	}
	return out, nil
}

func stack(op string, rows [][]float64, n int) (*matrix.Dense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no densities: %w", op, matrix.ErrInvalidDimensions)
	}
	flat := make([]float64, 0, len(rows)*n)
	for _, r := range rows {
		flat = append(flat, r...)
	}
	m, err := matrix.FromFlat(len(rows), n, flat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}
