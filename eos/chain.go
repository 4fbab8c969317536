// SPDX-License-Identifier: MIT

package eos

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/saftgamma/matrix"
	"github.com/katalvlaran/saftgamma/perturb"
)

// chain returns −Σ_i x_i (m_i − 1) ln g^Mie_ii(σ̄_ii).
//
// Each molecule is reduced to one averaged bead: σ̄³, d̄³, ε̄, λ̄r, λ̄a are
// z_ki z_li weighted sums over the pair matrices. g^Mie combines the hard
// sphere contact value with the first and second order corrections g1, g2,
// both built from ρs derivatives of the single-bead a1 and a2/(1+χ).
func (e *Evaluator) chain(tt *thermo, p packing, x []float64) (float64, error) {
	nc := e.sys.NumComponents()
	tbl := e.sys.Table()
	z := e.sys.GroupWeights()

	in := perturb.Inputs1D{
		State:   perturb.State{Rho: p.rhoN, Cmol2seg: p.cmol2seg, ZetaX: p.zetax, ZetaXStar: p.zetaxStar},
		Epsilon: make([]float64, nc), Sigma: make([]float64, nc), D: make([]float64, nc),
		LambdaR: make([]float64, nc), LambdaA: make([]float64, nc),
	}
	for i := 0; i < nc; i++ {
		zi := z.Row(i)
		var s3, d3 float64
		for _, q := range []struct {
			m   *matrix.Dense
			dst *float64
		}{
			{e.sigma3, &s3}, {tt.dkl3, &d3},
			{tbl.Epsilon(), &in.Epsilon[i]}, {tbl.LambdaR(), &in.LambdaR[i]}, {tbl.LambdaA(), &in.LambdaA[i]},
		} {
			v, err := q.m.QuadForm(zi)
			if err != nil {
				return 0, fmt.Errorf("eos.chain: component %d: %w", i, err)
			}
			*q.dst = v
		}
		in.Sigma[i], in.D[i] = math.Cbrt(s3), math.Cbrt(d3)
	}

	da1, err := e.rhoSDerivative(in, e.calc.A1Vec)
	if err != nil {
		return 0, err
	}
	da2, err := e.rhoSDerivative(in, e.calc.A2MCAVec)
	if err != nil {
		return 0, err
	}
	lr, la := in.LambdaR, in.LambdaA
	sum := func(a, b []float64) []float64 {
		out := make([]float64, nc)
		for i := range out {
			out[i] = a[i] + b[i]
		}
		return out
	}
	var s [5][]float64
	for j, lam := range [][]float64{la, lr, sum(la, la), sum(la, lr), sum(lr, lr)} {
		if s[j], err = e.calc.Sutherland(in, lam); err != nil {
			return 0, err
		}
	}
	khs, err := perturb.KHS(p.zetax)
	if err != nil {
		return 0, err
	}

	zx := p.zetax
	om := 1 - zx
	om3 := om * om * om
	k0 := -math.Log(om) + (42*zx-39*zx*zx+9*zx*zx*zx-2*zx*zx*zx*zx)/(6*om3)
	k1 := (zx*zx*zx*zx + 6*zx*zx - 12*zx) / (2 * om3)
	k2 := -3 * zx * zx / (8 * om * om)
	k3 := (-zx*zx*zx*zx + 3*zx*zx + 3*zx) / (6 * om3)

	rhoS := p.rhoN * p.cmol2seg
	var a float64
	for i := 0; i < nc; i++ {
		m := e.sys.Segments(i)
		if m == 1 || x[i] == 0 {
			continue
		}
		eps, d := in.Epsilon[i], in.D[i]
		x0 := in.Sigma[i] / d
		c := perturb.Prefactor(lr[i], la[i])
		d3 := d * d * d

		ghs := math.Exp(k0 + k1*x0 + k2*x0*x0 + k3*x0*x0*x0)
		g1 := (3*da1[i] - c*la[i]*math.Pow(x0, la[i])*s[0][i]/rhoS + c*lr[i]*math.Pow(x0, lr[i])*s[1][i]/rhoS) /
			(2 * math.Pi * eps * d3)
		g2mca := (3*da2[i] -
			eps*khs*c*c*lr[i]*math.Pow(x0, 2*lr[i])*s[4][i]/rhoS +
			eps*khs*c*c*(lr[i]+la[i])*math.Pow(x0, lr[i]+la[i])*s[3][i]/rhoS -
			eps*khs*c*c*la[i]*math.Pow(x0, 2*la[i])*s[2][i]/rhoS) /
			(2 * math.Pi * eps * eps * d3)
		gc, err := perturb.GammaC(p.zetaxStar, perturb.Alpha(lr[i], la[i]), eps/tt.T)
		if err != nil {
			return 0, err
		}
		be := eps / tt.T
		lng := math.Log(ghs) + be*g1/ghs + be*be*(1+gc)*g2mca/ghs
		a -= x[i] * (m - 1) * lng
	}
	return a, nil
}

// rhoSDerivative differentiates a single-bead term with respect to the
// segment density at fixed composition. Scaling ρ, ζx and ζ*x by s moves ρs
// to s·ρs, so ∂f/∂ρs = (∂f/∂s)/ρs at s = 1.
func (e *Evaluator) rhoSDerivative(in perturb.Inputs1D, f func(perturb.Inputs1D) ([]float64, error)) ([]float64, error) {
	n := len(in.D)
	base := in.State
	var ferr error
	jac := mat.NewDense(n, 1, nil)
	fd.Jacobian(jac, func(y, s []float64) {
		in.State = perturb.State{
			Rho: base.Rho * s[0], Cmol2seg: base.Cmol2seg,
			ZetaX: base.ZetaX * s[0], ZetaXStar: base.ZetaXStar * s[0],
		}
		v, err := f(in)
		if err != nil {
			if ferr == nil {
				ferr = err
			}
			for i := range y {
				y[i] = math.NaN()
			}
			return
		}
		copy(y, v)
	}, []float64{1}, &fd.JacobianSettings{Formula: fd.Central, Step: e.opts.DerivativeStep})
	if ferr != nil {
		return nil, ferr
	}
	rhoS := base.Rho * base.Cmol2seg
	out := make([]float64, n)
	for i := range out {
		out[i] = jac.At(i, 0) / rhoS
	}
	return out, nil
}
