// SPDX-License-Identifier: MIT

package groups

import (
	"math"

	"github.com/katalvlaran/saftgamma/faults"
)

// Angstrom converts σ inputs (Å) into meters.
const Angstrom = 1e-10

// Group is the per-bead Mie potential record.
// Sigma is given in Å, Epsilon as ε/k_B in K.
type Group struct {
	Name        string  `yaml:"name"`
	Segments    float64 `yaml:"segments"`     // ν*_k, number of identical segments in the group
	ShapeFactor float64 `yaml:"shape_factor"` // S_k
	Epsilon     float64 `yaml:"epsilon"`      // ε_kk/k_B [K]
	Sigma       float64 `yaml:"sigma"`        // σ_kk [Å]
	LambdaR     float64 `yaml:"lambdar"`      // repulsive exponent
	LambdaA     float64 `yaml:"lambdaa"`      // attractive exponent
	Mass        float64 `yaml:"mass"`         // molar mass [kg/mol], optional, used for mass densities

	// Sites lists association site types carried by the group and their counts.
	Sites []Site `yaml:"sites"`
}

// Site is an association site type on a group (e.g. "H", "e1").
type Site struct {
	Name  string  `yaml:"name"`
	Count float64 `yaml:"count"`
}

// Validate checks the physical ranges of a group record.
func (g Group) Validate() error {
	field := "group " + g.Name
	switch {
	case g.Name == "":
		return faults.Validation("group", "empty name")
	case !finitePositive(g.Segments) || g.Segments < 1:
		return faults.Validation(field, "segments must be >= 1, got %g", g.Segments)
	case !finitePositive(g.ShapeFactor) || g.ShapeFactor > 1:
		return faults.Validation(field, "shape factor must be in (0,1], got %g", g.ShapeFactor)
	case !finitePositive(g.Epsilon):
		return faults.Validation(field, "epsilon must be > 0, got %g", g.Epsilon)
	case !finitePositive(g.Sigma):
		return faults.Validation(field, "sigma must be > 0, got %g", g.Sigma)
	case !(g.LambdaA > 3) || math.IsInf(g.LambdaA, 0):
		return faults.Validation(field, "lambdaa must be > 3, got %g", g.LambdaA)
	case !(g.LambdaR > g.LambdaA) || math.IsInf(g.LambdaR, 0):
		return faults.Validation(field, "lambdar must exceed lambdaa, got %g", g.LambdaR)
	}
	for _, s := range g.Sites {
		if s.Name == "" || !finitePositive(s.Count) {
			return faults.Validation(field, "site %q count must be > 0", s.Name)
		}
	}

	return nil
}

// Cross overrides the combining rules for one unlike pair (K,L).
// Zero fields keep the combining-rule value.
type Cross struct {
	K       string  `yaml:"k"`
	L       string  `yaml:"l"`
	Epsilon float64 `yaml:"epsilon"`
	LambdaR float64 `yaml:"lambdar"`
}

// Bond is an association interaction between two sites.
type Bond struct {
	GroupA  string  `yaml:"group_a"`
	SiteA   string  `yaml:"site_a"`
	GroupB  string  `yaml:"group_b"`
	SiteB   string  `yaml:"site_b"`
	Epsilon float64 `yaml:"epsilon"` // ε^HB/k_B [K]
	Kappa   float64 `yaml:"kappa"`   // bonding volume [Å³]
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
