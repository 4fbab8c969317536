// SPDX-License-Identifier: MIT

package phase

import (
	"math"

	"github.com/katalvlaran/saftgamma/density"
)

type spinodal density.Bounds

// spinodalMargin is the relative distance kept from a spinodal pressure
// when a guess has to be moved into the loop.
const spinodalMargin = 1e-3

// inside moves p into the open spinodal interval.
func (b spinodal) inside(p float64) float64 {
	if !b.HasLoop {
		return p
	}
	if p >= b.Max {
		p = b.Max * (1 - spinodalMargin)
	}
	if b.Min > 0 && p <= b.Min {
		p = b.Min * (1 + spinodalMargin)
	}
	return p
}

// clamp keeps a pressure update inside the open spinodal interval by
// halving the step toward the violated bound.
func (b spinodal) clamp(prev, next float64) float64 {
	if !b.HasLoop {
		return next
	}
	if hi := b.inside(b.Max); next >= hi {
		next = (prev + hi) / 2
	}
	if b.Min > 0 {
		if lo := b.inside(b.Min); next <= lo {
			next = (prev + lo) / 2
		}
	}
	return next
}

// floor is the lowest pressure of the loop worth trying.
func (b spinodal) floor() float64 { return math.Max(b.Min, 0) }

// retreat halves the distance from p to the far edge of the loop: up when
// the liquid root is missing, down when the vapor root is.
func (b spinodal) retreat(p float64, liquid bool) float64 { return b.toward(p, liquid, 0.5) }

// toward moves p by frac of its distance to the far edge of the loop.
func (b spinodal) toward(p float64, up bool, frac float64) float64 {
	if up {
		return p + frac*(b.inside(b.Max)-p)
	}
	return p - frac*(p-b.floor())
}
