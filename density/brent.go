// SPDX-License-Identifier: MIT

package density

import (
	"math"

	"github.com/katalvlaran/saftgamma/faults"
)

const opBrent = "density.brent"

// brent finds a root of f in [a, b] given f(a)=fa and f(b)=fb of opposite
// sign. It stops when the bracket is below xtol or f vanishes.
// Errors from f abort the search; exhausting maxIter yields ConvergenceError.
func brent(f func(float64) (float64, error), a, b, fa, fb, xtol float64, maxIter int) (float64, error) {
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if math.Signbit(fa) == math.Signbit(fb) {
		return 0, faults.Convergence(opBrent, 0, math.Min(math.Abs(fa), math.Abs(fb)))
	}
	c, fc := a, fa
	d := b - a
	e := d
	for it := 1; it <= maxIter; it++ {
		if math.Signbit(fb) == math.Signbit(fc) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tol := 2*1e-16*math.Abs(b) + xtol/2
		m := (c - b) / 2
		if math.Abs(m) <= tol || fb == 0 {
			return b, nil
		}
		if math.Abs(e) >= tol && math.Abs(fa) > math.Abs(fb) {
			var p, q float64
			s := fb / fa
			if a == c {
				p = 2 * m * s
				q = 1 - s
			} else {
				qq := fa / fc
				r := fb / fc
				p = s * (2*m*qq*(qq-r) - (b-a)*(r-1))
				q = (qq - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			} else {
				p = -p
			}
			if 2*p < math.Min(3*m*q-math.Abs(tol*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = m
				e = m
			}
		} else {
			d = m
			e = m
		}
		a, fa = b, fb
		if math.Abs(d) > tol {
			b += d
		} else if m > 0 {
			b += tol
		} else {
			b -= tol
		}
		var err error
		if fb, err = f(b); err != nil {
			return 0, err
		}
	}
	return 0, faults.Convergence(opBrent, maxIter, math.Abs(fb))
}

// Brent finds a root of f in [a, b], which must bracket a sign change.
// xtol is the absolute tolerance on the root.
func Brent(f func(float64) (float64, error), a, b, xtol float64, maxIter int) (float64, error) {
	fa, err := f(a)
	if err != nil {
		return 0, err
	}
	fb, err := f(b)
	if err != nil {
		return 0, err
	}
	return brent(f, a, b, fa, fb, xtol, maxIter)
}
