// SPDX-License-Identifier: MIT

package perturb

import (
	"fmt"
	"math"

	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/matrix"
)

const (
	opKHS   = "perturb.KHS"
	opTerms = "perturb.terms"
)

// State is the mixture-level input shared by every pair at one density.
type State struct {
	Rho       float64 // molecular number density [1/m³]
	Cmol2seg  float64 // segments per molecule
	ZetaX     float64 // packing fraction with d_kl
	ZetaXStar float64 // packing fraction with σ_kl
}

// RhoS returns the segment density Cmol2seg·ρ.
func (s State) RhoS() float64 { return s.Cmol2seg * s.Rho }

// Inputs carries the pairwise parameter matrices (all G×G).
type Inputs struct {
	State
	Epsilon, Sigma, D, LambdaR, LambdaA *matrix.Dense
}

// Inputs1D carries averaged single-bead parameters, one entry per bead.
type Inputs1D struct {
	State
	Epsilon, Sigma, D, LambdaR, LambdaA []float64
}

// entries is the flat view shared by the matrix and vector forms.
type entries struct {
	eps, sigma, d, lr, la, x0 []float64
}

func (in Inputs) entries() (entries, int, error) {
	if err := validatePairs(opTerms, in.LambdaR, in.Epsilon, in.D); err != nil {
		return entries{}, 0, err
	}
	for _, m := range []*matrix.Dense{in.Sigma, in.LambdaA} {
		if err := matrix.ValidateSameShape(in.LambdaR, m); err != nil {
			return entries{}, 0, fmt.Errorf("%s: %w", opTerms, err)
		}
	}
	e := entries{eps: in.Epsilon.Flat(), sigma: in.Sigma.Flat(), d: in.D.Flat(), lr: in.LambdaR.Flat(), la: in.LambdaA.Flat()}
	return e.withX0(), in.LambdaR.Rows(), nil
}

func (in Inputs1D) entries() (entries, error) {
	n := len(in.LambdaR)
	if n == 0 {
		return entries{}, fmt.Errorf("%s: %w", opTerms, matrix.ErrInvalidDimensions)
	}
	for _, v := range [][]float64{in.Epsilon, in.Sigma, in.D, in.LambdaA} {
		if len(v) != n {
			return entries{}, fmt.Errorf("%s: %w", opTerms, matrix.ErrDimensionMismatch)
		}
	}
	e := entries{eps: in.Epsilon, sigma: in.Sigma, d: in.D, lr: in.LambdaR, la: in.LambdaA}
	return e.withX0(), nil
}

func (e entries) withX0() entries {
	e.x0 = make([]float64, len(e.d))
	for p := range e.d {
		e.x0[p] = e.sigma[p] / e.d[p]
	}
	return e
}

// sutherland returns a1s(λ)+B(λ) for each entry at one density.
func (c *Calculator) sutherland(st State, e entries, lambda []float64) ([]float64, error) {
	rho, zx := []float64{st.Rho}, []float64{st.ZetaX}
	a1s, err := c.a1sFlat(opA1S, rho, st.Cmol2seg, lambda, zx, e.eps, e.d)
	if err != nil {
		return nil, err
	}
	b, err := bFlat(rho, st.Cmol2seg, lambda, zx, e.x0, e.eps, e.d)
	if err != nil {
		return nil, err
	}
	out := a1s[0]
	for p := range out {
		out[p] += b[0][p]
	}
	return out, nil
}

// Sutherland returns a1s(λ)+B(λ) for averaged beads at an arbitrary
// exponent vector (one λ per bead).
func (c *Calculator) Sutherland(in Inputs1D, lambda []float64) ([]float64, error) {
	e, err := in.entries()
	if err != nil {
		return nil, err
	}
	if len(lambda) != len(e.d) {
		return nil, fmt.Errorf("%s: %w", opTerms, matrix.ErrDimensionMismatch)
	}
	return c.sutherland(in.State, e, lambda)
}

func combineExp(a, b []float64, fa, fb float64) []float64 {
	out := make([]float64, len(a))
	for p := range a {
		out[p] = fa*a[p] + fb*b[p]
	}
	return out
}

func (c *Calculator) a1(st State, e entries) ([]float64, error) {
	sa, err := c.sutherland(st, e, e.la)
	if err != nil {
		return nil, err
	}
	sr, err := c.sutherland(st, e, e.lr)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(sa))
	for p := range out {
		cc := Prefactor(e.lr[p], e.la[p])
		out[p] = cc * (math.Pow(e.x0[p], e.la[p])*sa[p] - math.Pow(e.x0[p], e.lr[p])*sr[p])
	}
	return out, nil
}

// a2 returns a2 per entry; withChi=false yields a2/(1+χ).
func (c *Calculator) a2(st State, e entries, withChi bool) ([]float64, error) {
	khs, err := KHS(st.ZetaX)
	if err != nil {
		return nil, err
	}
	s2a, err := c.sutherland(st, e, combineExp(e.la, e.la, 1, 1))
	if err != nil {
		return nil, err
	}
	sar, err := c.sutherland(st, e, combineExp(e.la, e.lr, 1, 1))
	if err != nil {
		return nil, err
	}
	s2r, err := c.sutherland(st, e, combineExp(e.lr, e.lr, 1, 1))
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(s2a))
	for p := range out {
		lr, la, x0 := e.lr[p], e.la[p], e.x0[p]
		cc := Prefactor(lr, la)
		brace := math.Pow(x0, 2*la)*s2a[p] - 2*math.Pow(x0, la+lr)*sar[p] + math.Pow(x0, 2*lr)*s2r[p]
		v := 0.5 * khs * e.eps[p] * cc * cc * brace
		if withChi {
			v *= 1 + chi(st.ZetaXStar, Alpha(lr, la))
		}
		out[p] = v
	}
	return out, nil
}

func a3(st State, e entries) []float64 {
	zs := st.ZetaXStar
	out := make([]float64, len(e.eps))
	for p := range out {
		alpha := Alpha(e.lr[p], e.la[p])
		eps := e.eps[p]
		out[p] = -eps * eps * eps * F(4, alpha) * zs * math.Exp(F(5, alpha)*zs+F(6, alpha)*zs*zs)
	}
	return out
}

func chi(zetaxStar, alpha float64) float64 {
	return F(1, alpha)*zetaxStar + F(2, alpha)*math.Pow(zetaxStar, 5) + F(3, alpha)*math.Pow(zetaxStar, 8)
}

// KHS returns the isothermal compressibility of the hard-sphere reference:
// (1−ζx)⁴ / (1 + 4ζx + 4ζx² − 4ζx³ + ζx⁴).
func KHS(zetax float64) (float64, error) {
	if err := checkZeta(opKHS, "zetax", zetax); err != nil {
		return 0, err
	}
	z := zetax
	return math.Pow(1-z, 4) / (1 + 4*z + 4*z*z - 4*z*z*z + z*z*z*z), nil
}

// Chi returns the correction χ_kl = f1 ζ*x + f2 ζ*x⁵ + f3 ζ*x⁸ for each pair.
func Chi(zetaxStar float64, lambdaR, lambdaA *matrix.Dense) (*matrix.Dense, error) {
	if err := checkZeta("perturb.Chi", "zetaxstar", zetaxStar); err != nil {
		return nil, err
	}
	if err := matrix.ValidateSameShape(lambdaR, lambdaA); err != nil {
		return nil, fmt.Errorf("perturb.Chi: %w", err)
	}
	return lambdaR.Map(func(i, j int, lr float64) float64 {
		la := lambdaA.Row(i)[j]
		return chi(zetaxStar, Alpha(lr, la))
	})
}

func (in Inputs) check() error {
	if err := checkZeta(opTerms, "zetaxstar", in.ZetaXStar); err != nil {
		return err
	}
	return nil
}

// A1 returns the first-order pair term
// a1_kl = C_kl [x0^λa (a1s+B)(λa) − x0^λr (a1s+B)(λr)].
// a1s goes through Select(G) and B through B or B1D, so a single group
// takes the vector kernels.
func (c *Calculator) A1(in Inputs) (*matrix.Dense, error) {
	e, n, err := in.entries()
	if err != nil {
		return nil, err
	}
	x0, err := matrix.FromFlat(n, n, e.x0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opTerms, err)
	}
	a1s := c.Select(n)
	rho, zx := []float64{in.Rho}, []float64{in.ZetaX}
	sutherland := func(lambda *matrix.Dense) ([]float64, error) {
		s, err := a1s(rho, in.Cmol2seg, lambda, zx, in.Epsilon, in.D)
		if err != nil {
			return nil, err
		}
		var b []float64
		if n == 1 {
			bv, err := c.B1D(rho, in.Cmol2seg, lambda.Diag(), zx, x0.Diag(), in.Epsilon.Diag(), in.D.Diag())
			if err != nil {
				return nil, err
			}
			b = bv.Row(0)
		} else {
			bm, err := c.B(rho, in.Cmol2seg, lambda, zx, x0, in.Epsilon, in.D)
			if err != nil {
				return nil, err
			}
			b = bm[0].Flat()
		}
		out := s[0].Flat()
		for p := range out {
			out[p] += b[p]
		}
		return out, nil
	}
	sa, err := sutherland(in.LambdaA)
	if err != nil {
		return nil, err
	}
	sr, err := sutherland(in.LambdaR)
	if err != nil {
		return nil, err
	}
	v := make([]float64, len(sa))
	for p := range v {
		v[p] = Prefactor(e.lr[p], e.la[p]) * (math.Pow(e.x0[p], e.la[p])*sa[p] - math.Pow(e.x0[p], e.lr[p])*sr[p])
	}
	return matrix.FromFlat(n, n, v)
}

// A2 returns the second-order pair term
// a2_kl = ½ K^HS (1+χ_kl) ε_kl C_kl² {x0^2λa S(2λa) − 2x0^(λa+λr) S(λa+λr) + x0^2λr S(2λr)}.
func (c *Calculator) A2(in Inputs) (*matrix.Dense, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	e, n, err := in.entries()
	if err != nil {
		return nil, err
	}
	v, err := c.a2(in.State, e, true)
	if err != nil {
		return nil, err
	}
	return matrix.FromFlat(n, n, v)
}

// A3 returns the third-order pair term a3_kl = −ε³ f4 ζ*x exp(f5 ζ*x + f6 ζ*x²).
func (c *Calculator) A3(in Inputs) (*matrix.Dense, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	e, n, err := in.entries()
	if err != nil {
		return nil, err
	}
	return matrix.FromFlat(n, n, a3(in.State, e))
}

// A1Vec is the single-bead form of A1.
func (c *Calculator) A1Vec(in Inputs1D) ([]float64, error) {
	e, err := in.entries()
	if err != nil {
		return nil, err
	}
	return c.a1(in.State, e)
}

// A2MCAVec returns a2/(1+χ) per bead, the macroscopic compressibility
// approximation used by the chain term.
func (c *Calculator) A2MCAVec(in Inputs1D) ([]float64, error) {
	e, err := in.entries()
	if err != nil {
		return nil, err
	}
	return c.a2(in.State, e, false)
}

// GammaC returns the γc correction of the second-order RDF term for one bead:
// φ7,0 (1 − tanh(φ7,1(φ7,2 − α))) ζ*x θ exp(φ7,3 ζ*x + φ7,4 ζ*x²), θ = exp(ε/T) − 1.
func GammaC(zetaxStar, alpha, epsOverT float64) (float64, error) {
	if err := checkZeta("perturb.GammaC", "zetaxstar", zetaxStar); err != nil {
		return 0, err
	}
	p := phi[6]
	theta := math.Exp(epsOverT) - 1
	if math.IsInf(theta, 0) {
		return 0, faults.Domain("perturb.GammaC", "epsilon/T", epsOverT)
	}
	return p[0] * (1 - math.Tanh(p[1]*(p[2]-alpha))) * zetaxStar * theta * math.Exp(p[3]*zetaxStar+p[4]*zetaxStar*zetaxStar), nil
}
