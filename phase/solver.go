// SPDX-License-Identifier: MIT

package phase

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/saftgamma/density"
	"github.com/katalvlaran/saftgamma/eos"
	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/groups"
)

const (
	opSolve = "phase.Solve"
	opPsat  = "phase.SaturationPressure"
)

// maxRetreats caps pressure moves made because one phase had no root.
const maxRetreats = 40

// fallbackPressure seeds a loopless isotherm when no guess is given.
const fallbackPressure = 101325.0

// Solver runs equilibrium calculations through one density solver.
// It holds no mutable state.
type Solver struct {
	dens *density.Solver
	opts Options
	log  *zap.Logger
}

// NewSolver validates opts.
func NewSolver(dens *density.Solver, opts Options) (*Solver, error) {
	if dens == nil {
		return nil, faults.Validation("phase", "nil density solver")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Solver{dens: dens, opts: opts, log: opts.Logger}, nil
}

// Density returns the density solver in use.
func (s *Solver) Density() *density.Solver { return s.dens }

// BubblePressure solves phase_xiT: liquid composition x known.
// pGuess ≤ 0 seeds the pressure from the spinodal bounds.
func (s *Solver) BubblePressure(T float64, x groups.Mixture, pGuess float64) (Result, error) {
	return s.Solve(PhaseXiT, T, x, pGuess)
}

// DewPressure solves phase_yiT: vapor composition y known.
func (s *Solver) DewPressure(T float64, y groups.Mixture, pGuess float64) (Result, error) {
	return s.Solve(PhaseYiT, T, y, pGuess)
}

// run carries the working values of one state machine pass.
type run struct {
	mode      Mode
	T, P      float64
	known     groups.Mixture
	unknown   groups.Mixture
	lnKnown   []float64
	lnUnknown []float64
	rhoKnown  float64
	rhoOther  float64
	knownAtP  float64 // pressure at which rhoKnown/lnKnown were computed
	bounds    spinodal
	sum       float64 // S = Σ x_i K_i (bubble) or Σ y_i/K_i (dew)
	change    float64 // max |Δ unknown composition|
	inner     int
	iter      int
}

// Solve runs the state machine for either mode.
//
// A guess outside the spinodal loop is moved just inside it.
//
// Errors:
//   - ConvergenceError after MaxIter pressure updates (Residual = |S−1|).
//   - ConvergenceError wrapping ErrTrivialSolution when both phases settle
//     on the same density.
//   - any density or EOS error, immediately and unchanged.
func (s *Solver) Solve(mode Mode, T float64, known groups.Mixture, pGuess float64) (Result, error) {
	if mode != PhaseXiT && mode != PhaseYiT {
		return Result{}, faults.Validation("calculation_type", "unknown mode %v", mode)
	}
	r := &run{mode: mode, T: T, known: known, unknown: known, knownAtP: math.NaN()}
	st := StateInit
	for {
		var err error
		switch st {
		case StateInit:
			err = s.init(r, pGuess)
			st = StateDensitySolve
		case StateDensitySolve:
			err = s.densitySolve(r)
			st = StateFugacityCheck
		case StateFugacityCheck:
			st, err = s.fugacityCheck(r)
		case StateCompositionUpdate:
			st, err = s.compositionUpdate(r)
		case StateConverged:
			return r.result(true, st), nil
		}
		if err != nil {
			s.log.Debug("phase solve failed", zap.Stringer("mode", mode), zap.Stringer("state", st), zap.Error(err))
			return r.result(false, StateFailed), err
		}
	}
}

func (s *Solver) init(r *run, pGuess float64) error {
	if !(r.T > 0) {
		return faults.Domain(opSolve, "T", r.T)
	}
	b, err := s.dens.PressureBounds(r.T, r.known)
	if err != nil {
		return err
	}
	r.bounds = spinodal(b)
	switch {
	case pGuess > 0 && !math.IsInf(pGuess, 0):
		r.P = r.bounds.inside(pGuess)
	case b.HasLoop && b.Min > 0:
		r.P = (b.Min + b.Max) / 2
	case b.HasLoop:
		r.P = b.Max / 2
	default:
		r.P = fallbackPressure
	}
	return nil
}

func (r *run) liquidKnown() bool { return r.mode == PhaseXiT }

func (s *Solver) solvePhase(T, P float64, x groups.Mixture, liquid bool) (float64, []float64, error) {
	var (
		rho float64
		err error
	)
	if liquid {
		rho, err = s.dens.Liquid(T, x, P)
	} else {
		rho, err = s.dens.Vapor(T, x, P)
	}
	if err != nil {
		return 0, nil, err
	}
	lnphi, err := s.dens.Evaluator().FugacityCoefficients(eos.StatePoint{T: T, Rho: rho, X: x})
	if err != nil {
		return 0, nil, err
	}
	return rho, lnphi, nil
}

func (s *Solver) densitySolve(r *run) error {
	for k := 0; ; k++ {
		liquid, err := s.phasePair(r)
		if !errors.Is(err, density.ErrWrongBranch) || !r.bounds.HasLoop || k == maxRetreats {
			return err
		}
		// the missing phase has no root at this pressure
		r.P = r.bounds.retreat(r.P, liquid)
		s.log.Debug("pressure moved into loop", zap.Bool("liquid", liquid), zap.Float64("P", r.P))
	}
}

// phasePair solves both densities at r.P and reports which phase failed.
func (s *Solver) phasePair(r *run) (liquid bool, err error) {
	if r.knownAtP != r.P {
		if r.rhoKnown, r.lnKnown, err = s.solvePhase(r.T, r.P, r.known, r.liquidKnown()); err != nil {
			return r.liquidKnown(), err
		}
		r.knownAtP = r.P
	}
	if r.rhoOther, r.lnUnknown, err = s.solvePhase(r.T, r.P, r.unknown, !r.liquidKnown()); err != nil {
		return !r.liquidKnown(), err
	}
	// both phases on one root: K = 1 and S = 1 mean nothing
	if d := math.Abs(r.rhoKnown-r.rhoOther) / math.Max(r.rhoKnown, r.rhoOther); d < s.opts.TrivialTol {
		return false, &faults.ConvergenceError{Op: opSolve, Iterations: r.iter, Residual: d, Err: ErrTrivialSolution}
	}
	return false, nil
}

func (s *Solver) fugacityCheck(r *run) (State, error) {
	n := r.known.Len()
	next := make([]float64, n)
	for i := 0; i < n; i++ {
		// bubble: y_i = x_i K_i; dew: x_i = y_i / K_i; K_i = φ_L,i/φ_V,i
		next[i] = r.known.At(i) * math.Exp(r.lnKnown[i]-r.lnUnknown[i])
	}
	r.sum = floats.Sum(next)
	if math.IsNaN(r.sum) || math.IsInf(r.sum, 0) || !(r.sum > 0) {
		return StateFailed, faults.Domain(opSolve, "sum", r.sum)
	}
	mix, err := groups.Normalize(next)
	if err != nil {
		return StateFailed, err
	}
	var change float64
	for i := 0; i < n; i++ {
		change = math.Max(change, math.Abs(mix.At(i)-r.unknown.At(i)))
	}
	r.change, r.unknown = change, mix
	s.log.Debug("fugacity check",
		zap.Stringer("mode", r.mode), zap.Int("iter", r.iter), zap.Float64("P", r.P),
		zap.Float64("S", r.sum), zap.Float64("dcomp", change))
	if math.Abs(r.sum-1) < s.opts.Tol && change < s.opts.Tol {
		return StateConverged, nil
	}
	return StateCompositionUpdate, nil
}

func (s *Solver) compositionUpdate(r *run) (State, error) {
	r.inner++
	if r.change >= s.opts.Tol && r.inner < s.opts.InnerMaxIter {
		return StateDensitySolve, nil
	}
	r.inner = 0
	r.iter++
	if r.iter > s.opts.MaxIter {
		return StateFailed, &faults.ConvergenceError{Op: opSolve, Iterations: s.opts.MaxIter, Residual: math.Abs(r.sum - 1)}
	}
	p := r.P * r.sum
	if !r.liquidKnown() {
		p = r.P / r.sum
	}
	r.P = r.bounds.clamp(r.P, p)
	return StateDensitySolve, nil
}

func (r *run) result(ok bool, st State) Result {
	res := Result{Mode: r.mode, T: r.T, P: r.P, Converged: ok, Iterations: r.iter, State: st}
	if r.liquidKnown() {
		res.X, res.Y, res.RhoL, res.RhoV = r.known, r.unknown, r.rhoKnown, r.rhoOther
	} else {
		res.X, res.Y, res.RhoL, res.RhoV = r.unknown, r.known, r.rhoOther, r.rhoKnown
	}
	return res
}

// SaturationPressure solves ln φ_L = ln φ_V for pure component i of the
// system by Brent's method between the spinodal pressures.
//
// Errors: DomainError when the isotherm has no loop (T above critical).
func (s *Solver) SaturationPressure(T float64, component int) (Saturation, error) {
	nc := s.dens.Evaluator().System().NumComponents()
	if component < 0 || component >= nc {
		return Saturation{}, faults.Validation("component", "index %d out of range [0,%d)", component, nc)
	}
	x := groups.Pure(nc, component)
	b, err := s.dens.PressureBounds(T, x)
	if err != nil {
		return Saturation{}, err
	}
	if !b.HasLoop {
		return Saturation{}, faults.Domain(opPsat, "T", T)
	}
	var last Saturation
	g := func(p float64) (float64, error) {
		rl, lnL, err := s.solvePhase(T, p, x, true)
		if err != nil {
			return 0, err
		}
		rv, lnV, err := s.solvePhase(T, p, x, false)
		if err != nil {
			return 0, err
		}
		last = Saturation{P: p, RhoL: rl, RhoV: rv}
		return lnL[component] - lnV[component], nil
	}

	sp := spinodal(b)
	hi := sp.inside(b.Max)
	ghi, err := g(hi)
	for k := 0; errors.Is(err, density.ErrWrongBranch) && k < maxRetreats; k++ {
		// vapor root not yet resolved next to the spinodal
		hi = sp.toward(hi, false, 0.1)
		ghi, err = g(hi)
	}
	if err != nil {
		return Saturation{}, err
	}
	if ghi > 0 {
		return Saturation{}, &faults.ConvergenceError{Op: opPsat, Residual: ghi, Err: density.ErrNotBracketed}
	}
	lo := hi
	glo := ghi
	for k := 0; glo <= 0; k++ {
		if k == 60 {
			return Saturation{}, &faults.ConvergenceError{Op: opPsat, Iterations: k, Residual: glo, Err: density.ErrNotBracketed}
		}
		next := lo / 2
		if b.Min > 0 && next <= b.Min {
			next = (lo + b.Min) / 2
		}
		lo = next
		if glo, err = g(lo); err != nil {
			return Saturation{}, err
		}
	}
	p, err := density.Brent(g, lo, hi, s.opts.Tol*lo, s.dens.Options().MaxIter)
	if err != nil {
		return Saturation{}, fmt.Errorf("%s: %w", opPsat, err)
	}
	if last.P != p {
		if _, err = g(p); err != nil {
			return Saturation{}, err
		}
	}
	return last, nil
}
