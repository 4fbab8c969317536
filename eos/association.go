// SPDX-License-Identifier: MIT

package eos

import (
	"math"

	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/groups"
)

// AssocContext is what the evaluator hands to an Associator.
type AssocContext struct {
	T         float64
	RhoN      float64   // molecules/m³
	X         []float64 // mole fractions
	Diameters []float64 // d_k [m]
	Zeta2     float64
	Zeta3     float64
	System    *groups.System
}

// ContactValue returns the Boublík hard-sphere contact value g^HS(d_kl).
func (c AssocContext) ContactValue(k, l int) float64 {
	dk, dl := c.Diameters[k], c.Diameters[l]
	dd := dk * dl / (dk + dl)
	om := 1 - c.Zeta3
	return 1/om + 3*dd*c.Zeta2/(om*om) + 2*dd*dd*c.Zeta2*c.Zeta2/(om*om*om)
}

// Associator evaluates the association contribution A_assoc/(NkT).
// Implementations must report non-convergence as an error, never as zero.
type Associator interface {
	Helmholtz(ctx AssocContext) (float64, error)
}

// NoAssociation is the Associator of non-bonding systems.
type NoAssociation struct{}

// Helmholtz returns 0.
func (NoAssociation) Helmholtz(AssocContext) (float64, error) { return 0, nil }

// ContactAssociation solves Wertheim's first-order site balance
//
//	X_a = 1 / (1 + Σ_b ρ_b n_b X_b Δ_ab),  Δ_ab = (exp(ε^HB_ab/T) − 1) κ_ab g^HS(d_kl)
//
// by damped successive substitution, with ρ_b the number density of the
// group carrying site b. Zero fields take the defaults below.
type ContactAssociation struct {
	Tol     float64 // max |ΔX| (default 1e-12)
	MaxIter int     // default 1000
	Damping float64 // weight of the new iterate (default 0.5)
}

type site struct {
	group int
	count float64
}

// Helmholtz returns Σ_a ρ_a/ρ n_a (ln X_a − X_a/2 + 1/2).
func (a ContactAssociation) Helmholtz(ctx AssocContext) (float64, error) {
	tol, maxIter, damp := a.Tol, a.MaxIter, a.Damping
	if tol == 0 {
		tol = 1e-12
	}
	if maxIter == 0 {
		maxIter = 1000
	}
	if damp == 0 {
		damp = 0.5
	}
	tbl := ctx.System.Table()
	bonds := tbl.Bonds()
	if len(bonds) == 0 || ctx.RhoN == 0 {
		return 0, nil
	}

	// sites and their per-molecule abundance
	var sites []site
	index := map[[2]string]int{}
	for k := 0; k < tbl.Len(); k++ {
		g := tbl.Group(k)
		for _, s := range g.Sites {
			index[[2]string{g.Name, s.Name}] = len(sites)
			sites = append(sites, site{group: k, count: s.Count})
		}
	}
	abundance := make([]float64, tbl.Len()) // Σ_i x_i ν_ki
	nu := ctx.System.Nu()
	for i, xi := range ctx.X {
		for k, v := range nu.Row(i) {
			abundance[k] += xi * v
		}
	}

	n := len(sites)
	delta := make([]float64, n*n)
	for _, b := range bonds {
		s, t := index[[2]string{b.GroupA, b.SiteA}], index[[2]string{b.GroupB, b.SiteB}]
		v := (math.Exp(b.Epsilon/ctx.T) - 1) * b.Kappa * 1e-30 * ctx.ContactValue(sites[s].group, sites[t].group)
		delta[s*n+t], delta[t*n+s] = v, v
	}

	x := make([]float64, n)
	for s := range x {
		x[s] = 1
	}
	next := make([]float64, n)
	var resid float64
	for it := 1; it <= maxIter; it++ {
		resid = 0
		for s := 0; s < n; s++ {
			var sum float64
			for t := 0; t < n; t++ {
				if d := delta[s*n+t]; d != 0 {
					sum += ctx.RhoN * abundance[sites[t].group] * sites[t].count * x[t] * d
				}
			}
			next[s] = (1-damp)*x[s] + damp/(1+sum)
			resid = math.Max(resid, math.Abs(next[s]-x[s]))
		}
		x, next = next, x
		if resid < tol {
			var out float64
			for s, xs := range x {
				out += abundance[sites[s].group] * sites[s].count * (math.Log(xs) - xs/2 + 0.5)
			}
			return out, nil
		}
	}
	return 0, faults.Convergence("eos.ContactAssociation", maxIter, resid)
}
