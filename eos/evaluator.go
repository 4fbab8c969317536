// SPDX-License-Identifier: MIT

package eos

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/integrate/quad"

	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/groups"
	"github.com/katalvlaran/saftgamma/matrix"
	"github.com/katalvlaran/saftgamma/perturb"
)

// Evaluator computes Helmholtz contributions and derived properties for one
// System. It is immutable and safe for concurrent use.
type Evaluator struct {
	sys    *groups.System
	calc   *perturb.Calculator
	assoc  Associator
	opts   Options
	log    *zap.Logger
	sigma3 *matrix.Dense // σ_kl³, temperature independent
}

// NewEvaluator binds a system to the evaluation options.
func NewEvaluator(sys *groups.System, opts Options) (*Evaluator, error) {
	if sys == nil {
		return nil, ErrNilSystem
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	calc, err := perturb.New(opts.Perturb)
	if err != nil {
		return nil, fmt.Errorf("eos: %w", err)
	}
	sigma3, err := sys.Table().Sigma().Map(func(_, _ int, s float64) float64 { return s * s * s })
	if err != nil {
		return nil, err
	}
	assoc := opts.Associator
	if assoc == nil {
		if len(sys.Table().Bonds()) > 0 {
			assoc = ContactAssociation{}
		} else {
			assoc = NoAssociation{}
		}
	}

	return &Evaluator{sys: sys, calc: calc, assoc: assoc, opts: opts, log: opts.Logger, sigma3: sigma3}, nil
}

// System returns the bound system.
func (e *Evaluator) System() *groups.System { return e.sys }

// Options returns the resolved options.
func (e *Evaluator) Options() Options { return e.opts }

// thermo caches the temperature-only quantities of one call.
type thermo struct {
	T    float64
	d    []float64     // d_k [m]
	dkl  *matrix.Dense // (d_k + d_l)/2
	dkl3 *matrix.Dense
}

// Diameters returns the Barker–Henderson segment diameters d_k(T) [m].
//
//	d_k = ∫_0^σ (1 − exp(−u_k(r)/T)) dr
//
// Below r0, where the repulsion alone exceeds 40 k_B T, the integrand is 1
// and is integrated exactly; [r0, σ] uses Gauss–Legendre.
func (e *Evaluator) Diameters(T float64) ([]float64, error) {
	if !(T > 0) || math.IsInf(T, 0) {
		return nil, faults.Domain("eos.Diameters", "T", T)
	}
	tbl := e.sys.Table()
	out := make([]float64, tbl.Len())
	for k := range out {
		g := tbl.Group(k)
		sigma := g.Sigma * groups.Angstrom
		c := perturb.Prefactor(g.LambdaR, g.LambdaA)
		u := func(r float64) float64 {
			x := sigma / r
			return c * g.Epsilon * (math.Pow(x, g.LambdaR) - math.Pow(x, g.LambdaA))
		}
		r0 := sigma * math.Min(1, math.Pow(c*g.Epsilon/(40*T), 1/g.LambdaR))
		integral := quad.Fixed(func(r float64) float64 {
			return 1 - math.Exp(-u(r)/T)
		}, r0, sigma, e.opts.QuadraturePoints, quad.Legendre{}, 0)
		out[k] = r0 + integral
	}
	return out, nil
}

func (e *Evaluator) atTemperature(T float64) (*thermo, error) {
	d, err := e.Diameters(T)
	if err != nil {
		return nil, err
	}
	n := len(d)
	dkl, err := matrix.NewSymmetric(n, func(k, l int) float64 { return (d[k] + d[l]) / 2 })
	if err != nil {
		return nil, err
	}
	dkl3, err := dkl.Map(func(_, _ int, v float64) float64 { return v * v * v })
	if err != nil {
		return nil, err
	}
	return &thermo{T: T, d: d, dkl: dkl, dkl3: dkl3}, nil
}

// packing holds the density-level quantities of one evaluation.
type packing struct {
	rhoN      float64 // molecules/m³
	cmol2seg  float64
	xs        []float64
	zeta      [4]float64
	zetax     float64
	zetaxStar float64
}

func (e *Evaluator) pack(tt *thermo, rho float64, x []float64) (packing, error) {
	var p packing
	var err error
	if p.cmol2seg, err = e.sys.Cmol2seg(x); err != nil {
		return p, err
	}
	if p.xs, err = e.sys.SegmentFractions(x); err != nil {
		return p, err
	}
	p.rhoN = rho * Avogadro
	rhoS := p.rhoN * p.cmol2seg
	for m := 0; m < 4; m++ {
		var s float64
		for k, xsk := range p.xs {
			s += xsk * math.Pow(tt.d[k], float64(m))
		}
		p.zeta[m] = math.Pi / 6 * rhoS * s
	}
	zx, err := tt.dkl3.QuadForm(p.xs)
	if err != nil {
		return p, err
	}
	zs, err := e.sigma3.QuadForm(p.xs)
	if err != nil {
		return p, err
	}
	p.zetax = math.Pi / 6 * rhoS * zx
	p.zetaxStar = math.Pi / 6 * rhoS * zs
	if !(p.zeta[3] < 1) {
		return p, faults.Domain("eos.pack", "zeta3", p.zeta[3])
	}
	return p, nil
}

// MaxDensity returns the molar density at which ζ3 reaches limit.
func (e *Evaluator) MaxDensity(T float64, x groups.Mixture, limit float64) (float64, error) {
	tt, err := e.atTemperature(T)
	if err != nil {
		return 0, err
	}
	p, err := e.pack(tt, 1, x.X())
	if err != nil {
		return 0, err
	}
	return limit / p.zeta[3], nil
}

// Helmholtz returns every reduced contribution at sp.
func (e *Evaluator) Helmholtz(sp StatePoint) (Contributions, error) {
	if err := e.check(sp); err != nil {
		return Contributions{}, err
	}
	tt, err := e.atTemperature(sp.T)
	if err != nil {
		return Contributions{}, err
	}
	x := sp.X.X()
	c, err := e.residual(tt, sp.Rho, x)
	if err != nil {
		return Contributions{}, err
	}
	c.Ideal = math.Log(sp.Rho*Avogadro) - 1
	for _, xi := range x {
		if xi > 0 {
			c.Ideal += xi * math.Log(xi)
		}
	}
	return c, nil
}

func (e *Evaluator) check(sp StatePoint) error {
	if err := sp.Validate(); err != nil {
		return err
	}
	if sp.X.Len() != e.sys.NumComponents() {
		return faults.Validation("state point", "composition has %d entries, system has %d components", sp.X.Len(), e.sys.NumComponents())
	}
	return nil
}

// residual evaluates every residual term. x sums to one; inside derivative
// stencils an absent component may carry a tiny negative fraction.
func (e *Evaluator) residual(tt *thermo, rho float64, x []float64) (Contributions, error) {
	var c Contributions
	if rho == 0 {
		return c, nil
	}
	p, err := e.pack(tt, rho, x)
	if err != nil {
		return c, err
	}
	if c.HardSphere, err = hardSphere(p); err != nil {
		return c, err
	}
	if err = e.monomer(tt, p, &c); err != nil {
		return c, err
	}
	if c.Chain, err = e.chain(tt, p, x); err != nil {
		return c, err
	}
	c.Association, err = e.assoc.Helmholtz(AssocContext{
		T: tt.T, RhoN: p.rhoN, X: x, Diameters: tt.d,
		Zeta2: p.zeta[2], Zeta3: p.zeta[3], System: e.sys,
	})
	if err != nil {
		return c, fmt.Errorf("eos: association: %w", err)
	}
	return c, nil
}

// hardSphere is the BMCSL expression per molecule:
// 6/(πρ)[(ζ2³/ζ3² − ζ0) ln(1−ζ3) + 3ζ1ζ2/(1−ζ3) + ζ2³/(ζ3(1−ζ3)²)].
func hardSphere(p packing) (float64, error) {
	z0, z1, z2, z3 := p.zeta[0], p.zeta[1], p.zeta[2], p.zeta[3]
	if !(z3 > 0) {
		return 0, nil
	}
	om := 1 - z3
	v := (z2*z2*z2/(z3*z3)-z0)*math.Log(om) + 3*z1*z2/om + z2*z2*z2/(z3*om*om)
	return 6 / (math.Pi * p.rhoN) * v, nil
}

func (e *Evaluator) inputs(tt *thermo, p packing) perturb.Inputs {
	tbl := e.sys.Table()
	return perturb.Inputs{
		State:   perturb.State{Rho: p.rhoN, Cmol2seg: p.cmol2seg, ZetaX: p.zetax, ZetaXStar: p.zetaxStar},
		Epsilon: tbl.Epsilon(), Sigma: tbl.Sigma(), D: tt.dkl,
		LambdaR: tbl.LambdaR(), LambdaA: tbl.LambdaA(),
	}
}

// monomer fills the three perturbation orders:
// Cmol2seg·βⁿ·Σ_kl x_sk x_sl a_n,kl.
func (e *Evaluator) monomer(tt *thermo, p packing, c *Contributions) error {
	in := e.inputs(tt, p)
	beta := 1 / tt.T
	a1, err := e.calc.A1(in)
	if err != nil {
		return err
	}
	a2, err := e.calc.A2(in)
	if err != nil {
		return err
	}
	a3, err := e.calc.A3(in)
	if err != nil {
		return err
	}
	for n, m := range []*matrix.Dense{a1, a2, a3} {
		v, err := m.QuadForm(p.xs)
		if err != nil {
			return err
		}
		v *= p.cmol2seg * math.Pow(beta, float64(n+1))
		switch n {
		case 0:
			c.Perturbation1 = v
		case 1:
			c.Perturbation2 = v
		default:
			c.Perturbation3 = v
		}
	}
	return nil
}
