// SPDX-License-Identifier: MIT

package density

import (
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/saftgamma/eos"
	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/groups"
)

const (
	opRoots  = "density.Roots"
	opBounds = "density.PressureBounds"
)

// gasLikeZ is the compressibility above which a loopless low-density
// fluid counts as ideal-gas-like.
const gasLikeZ = 0.99

// Root is one refined density.
type Root struct {
	Rho    float64 // mol/m³
	Stable bool    // ∂P/∂ρ > 0 across the bracket
}

// Result lists roots in decreasing density (liquid first).
type Result struct {
	Roots     []Root
	Converged bool
}

// Liquid returns the densest stable root.
func (r Result) Liquid() (Root, bool) {
	for _, rt := range r.Roots {
		if rt.Stable {
			return rt, true
		}
	}
	return Root{}, false
}

// Vapor returns the least dense stable root.
func (r Result) Vapor() (Root, bool) {
	for i := len(r.Roots) - 1; i >= 0; i-- {
		if r.Roots[i].Stable {
			return r.Roots[i], true
		}
	}
	return Root{}, false
}

// Bounds holds the spinodal pressures of a van der Waals loop.
// Without a loop (supercritical) Min is 0 and Max is +Inf.
type Bounds struct {
	Min, Max float64 // Pa
	RhoMin   float64 // density at the local minimum (liquid spinodal)
	RhoMax   float64 // density at the local maximum (vapor spinodal)
	HasLoop  bool
}

// LiquidSide reports whether rho is at or above the liquid spinodal.
// Every density qualifies when the isotherm has no loop.
func (b Bounds) LiquidSide(rho float64) bool { return !b.HasLoop || rho >= b.RhoMin }

// VaporSide reports whether rho is at or below the vapor spinodal.
func (b Bounds) VaporSide(rho float64) bool { return !b.HasLoop || rho <= b.RhoMax }

// Solver evaluates density roots through one Evaluator.
type Solver struct {
	ev   *eos.Evaluator
	opts Options
	log  *zap.Logger
}

// NewSolver validates opts.
func NewSolver(ev *eos.Evaluator, opts Options) (*Solver, error) {
	if ev == nil {
		return nil, faults.Validation("density", "nil evaluator")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Solver{ev: ev, opts: opts, log: opts.Logger}, nil
}

// Evaluator returns the bound evaluator.
func (s *Solver) Evaluator() *eos.Evaluator { return s.ev }

// Options returns the solver options.
func (s *Solver) Options() Options { return s.opts }

func (s *Solver) pressure(T float64, x groups.Mixture) func(v float64) (float64, error) {
	return func(v float64) (float64, error) {
		return s.ev.Pressure(eos.StatePoint{T: T, Rho: 1 / v, X: x})
	}
}

// scan walks the volume grid from 1/ρ_max to vEnd and calls visit with
// consecutive (v, P) samples. visit returns false to stop early.
func (s *Solver) scan(T float64, x groups.Mixture, vEnd float64, visit func(v0, p0, v1, p1 float64, last bool) (bool, error)) error {
	rhoMax, err := s.ev.MaxDensity(T, x, s.opts.MaxPackingFraction)
	if err != nil {
		return err
	}
	p := s.pressure(T, x)
	v := 1 / rhoMax
	if end := 1 / (s.opts.MinRhoFrac * rhoMax); vEnd > end {
		vEnd = end
	}
	pv, err := p(v)
	if err != nil {
		return err
	}
	for n := 1; v < vEnd; n++ {
		next := v + math.Min(v/s.opts.RhoInc, s.opts.VSpaceMax)
		if n >= s.opts.MaxScanPoints || next > vEnd {
			next = vEnd
		}
		pn, err := p(next)
		if err != nil {
			return err
		}
		more, err := visit(v, pv, next, pn, next >= vEnd)
		if err != nil || !more {
			return err
		}
		v, pv = next, pn
	}
	return nil
}

// Roots returns every density at which P(T, ρ, x) equals target.
//
// Errors:
//   - DomainError for T ≤ 0 or target ≤ 0.
//   - ConvergenceError when no sign change is found or a bracket cannot be
//     refined within MaxIter.
func (s *Solver) Roots(T float64, x groups.Mixture, target float64) (Result, error) {
	if !(target > 0) || math.IsInf(target, 0) {
		return Result{}, faults.Domain(opRoots, "P", target)
	}
	if !(T > 0) {
		return Result{}, faults.Domain(opRoots, "T", T)
	}
	p := s.pressure(T, x)
	f := func(v float64) (float64, error) {
		pv, err := p(v)
		return pv - target, err
	}
	var (
		res     Result
		closest = math.Inf(1)
	)
	err := s.scan(T, x, 4*eos.GasConstant*T/target, func(v0, p0, v1, p1 float64, _ bool) (bool, error) {
		f0, f1 := p0-target, p1-target
		closest = math.Min(closest, math.Abs(f1))
		var v float64
		switch {
		case f1 == 0:
			v = v1
		case f0 == 0 || math.Signbit(f0) == math.Signbit(f1):
			// a sample that hit the target exactly was recorded as the
			// end of the previous interval
			return true, nil
		default:
			var err error
			if v, err = brent(f, v0, v1, f0, f1, s.opts.Tol*v0, s.opts.MaxIter); err != nil {
				return false, err
			}
		}
		res.Roots = append(res.Roots, Root{Rho: 1 / v, Stable: p0 > p1})
		return true, nil
	})
	if err != nil {
		return Result{}, err
	}
	if len(res.Roots) == 0 {
		return Result{}, &faults.ConvergenceError{Op: opRoots, Residual: closest / target, Err: ErrNotBracketed}
	}
	res.Converged = true
	s.log.Debug("density roots", zap.Float64("T", T), zap.Float64("P", target), zap.Any("roots", res.Roots))
	return res, nil
}

// Liquid returns the densest stable root at target.
// A lone stable root below the liquid spinodal is refused with ErrWrongBranch.
func (s *Solver) Liquid(T float64, x groups.Mixture, target float64) (float64, error) {
	return s.pick(T, x, target, Result.Liquid, Bounds.LiquidSide)
}

// Vapor returns the least dense stable root at target.
// A lone stable root above the vapor spinodal is refused with ErrWrongBranch.
func (s *Solver) Vapor(T float64, x groups.Mixture, target float64) (float64, error) {
	return s.pick(T, x, target, Result.Vapor, Bounds.VaporSide)
}

func (s *Solver) pick(T float64, x groups.Mixture, target float64, sel func(Result) (Root, bool), side func(Bounds, float64) bool) (float64, error) {
	res, err := s.Roots(T, x, target)
	if err != nil {
		return 0, err
	}
	rt, ok := sel(res)
	if !ok {
		return 0, &faults.ConvergenceError{Op: opRoots, Err: ErrNoStableRoot}
	}
	if res.stableCount() > 1 {
		return rt.Rho, nil
	}
	// one stable root: only the spinodal tells which branch it is on
	b, err := s.PressureBounds(T, x)
	if err != nil {
		return 0, err
	}
	if !side(b, rt.Rho) {
		return 0, &faults.ConvergenceError{Op: opRoots, Residual: target, Err: ErrWrongBranch}
	}
	return rt.Rho, nil
}

func (r Result) stableCount() int {
	n := 0
	for _, rt := range r.Roots {
		if rt.Stable {
			n++
		}
	}
	return n
}

// PressureBounds locates the spinodal pressures of the isotherm.
// The scan stops after the vapor-side maximum, or when Z climbs back to
// 0.99 after having dropped below it without any minimum on the way.
// The dense end starts far above 0.99 and does not count.
func (s *Solver) PressureBounds(T float64, x groups.Mixture) (Bounds, error) {
	if !(T > 0) {
		return Bounds{}, faults.Domain(opBounds, "T", T)
	}
	b := Bounds{Min: 0, Max: math.Inf(1)}
	var (
		prevSlope float64
		haveMin   bool
		dipped    bool // Z has been below gasLikeZ
		first     = true
	)
	err := s.scan(T, x, math.Inf(1), func(v0, p0, v1, p1 float64, _ bool) (bool, error) {
		slope := p1 - p0
		if !first {
			switch {
			case prevSlope < 0 && slope >= 0 && !haveMin:
				b.Min, b.RhoMin, haveMin = p0, 1/v0, true
			case prevSlope > 0 && slope <= 0 && haveMin:
				b.Max, b.RhoMax, b.HasLoop = p0, 1/v0, true
				return false, nil
			}
		}
		first, prevSlope = false, slope
		z := p1 * v1 / (eos.GasConstant * T)
		if z < gasLikeZ {
			dipped = true
		} else if dipped && !haveMin {
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return Bounds{}, err
	}
	if haveMin && !b.HasLoop {
		b.Min, b.RhoMin = 0, 0
	}
	s.log.Debug("pressure bounds", zap.Float64("T", T), zap.Float64("Pmin", b.Min), zap.Float64("Pmax", b.Max), zap.Bool("loop", b.HasLoop))
	return b, nil
}
