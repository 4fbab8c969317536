// SPDX-License-Identifier: MIT

package eos

import (
	"math"

	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/groups"
)

// StatePoint is one (T, ρ, x) evaluation point.
type StatePoint struct {
	T   float64 // K
	Rho float64 // mol/m³
	X   groups.Mixture
}

// NewStatePoint validates T > 0 and ρ ≥ 0.
func NewStatePoint(T, rho float64, x groups.Mixture) (StatePoint, error) {
	sp := StatePoint{T: T, Rho: rho, X: x}
	return sp, sp.Validate()
}

// Validate checks the ranges of a state point built by hand.
func (sp StatePoint) Validate() error {
	if !(sp.T > 0) || math.IsInf(sp.T, 0) {
		return faults.Domain("eos.StatePoint", "T", sp.T)
	}
	if !(sp.Rho >= 0) || math.IsInf(sp.Rho, 0) {
		return faults.Domain("eos.StatePoint", "rho", sp.Rho)
	}
	if sp.X.Len() == 0 {
		return faults.Validation("state point", "empty composition")
	}
	return nil
}

// Contributions holds reduced Helmholtz terms A/(NkT).
type Contributions struct {
	Ideal         float64
	HardSphere    float64
	Perturbation1 float64
	Perturbation2 float64
	Perturbation3 float64
	Chain         float64
	Association   float64
}

// Residual excludes the ideal part.
func (c Contributions) Residual() float64 {
	return c.HardSphere + c.Perturbation1 + c.Perturbation2 + c.Perturbation3 + c.Chain + c.Association
}

// Total includes the ideal part.
func (c Contributions) Total() float64 { return c.Ideal + c.Residual() }
