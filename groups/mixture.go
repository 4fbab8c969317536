// SPDX-License-Identifier: MIT

package groups

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/saftgamma/faults"
)

// SumTolerance bounds |Σx − 1| for a valid mixture.
const SumTolerance = 1e-8

// Mixture is a validated mole-fraction vector over the components of a System.
// The zero value is not usable; build one with NewMixture, Normalize or Pure.
type Mixture struct {
	x []float64
}

// NewMixture validates x (non-negative, finite, Σx = 1 within SumTolerance)
// and stores a private copy.
func NewMixture(x []float64) (Mixture, error) {
	if len(x) == 0 {
		return Mixture{}, faults.Validation("mixture", "empty composition")
	}
	for i, v := range x {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Mixture{}, faults.Validation("mixture", "fraction %d is %g", i, v)
		}
	}
	if s := floats.Sum(x); math.Abs(s-1) > SumTolerance {
		return Mixture{}, faults.Validation("mixture", "fractions sum to %.12g", s)
	}

	return Mixture{x: append([]float64(nil), x...)}, nil
}

// Normalize scales a non-negative vector to unit sum.
// Used for compositions produced by K-value updates.
func Normalize(x []float64) (Mixture, error) {
	s := floats.Sum(x)
	if !(s > 0) || math.IsInf(s, 0) {
		return Mixture{}, faults.Validation("mixture", "cannot normalize sum %g", s)
	}
	out := append([]float64(nil), x...)
	floats.Scale(1/s, out)

	return NewMixture(out)
}

// Pure returns the mixture with component i at unit fraction among n.
func Pure(n, i int) Mixture {
	x := make([]float64, n)
	x[i] = 1
	return Mixture{x: x}
}

// Len returns the number of components.
func (m Mixture) Len() int { return len(m.x) }

// At returns x_i.
func (m Mixture) At(i int) float64 { return m.x[i] }

// X returns a copy of the fractions.
func (m Mixture) X() []float64 { return append([]float64(nil), m.x...) }

// Equal reports element-wise equality within tol.
func (m Mixture) Equal(o Mixture, tol float64) bool {
	return len(m.x) == len(o.x) && floats.EqualApprox(m.x, o.x, tol)
}
