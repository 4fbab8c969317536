// SPDX-License-Identifier: MIT

package objective

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/saftgamma/dataset"
	"github.com/katalvlaran/saftgamma/density"
	"github.com/katalvlaran/saftgamma/eos"
	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/groups"
	"github.com/katalvlaran/saftgamma/phase"
)

// Options configures an Evaluator.
type Options struct {
	Form  Form
	EOS   eos.Options
	Phase phase.Options

	// SkipFailedPoints turns a non-converged point into NaN predictions
	// instead of failing the whole dataset. Domain errors still fail it.
	SkipFailedPoints bool

	Logger *zap.Logger
}

// DefaultOptions returns the default form and solver settings.
func DefaultOptions() Options {
	return Options{
		Form:   DefaultForm(),
		EOS:    eos.DefaultOptions(),
		Phase:  phase.DefaultOptions(),
		Logger: zap.NewNop(),
	}
}

// Evaluator scores datasets against a parameterised system.
// It holds no per-call state and is safe for concurrent use.
type Evaluator struct {
	opts Options
	log  *zap.Logger
}

// NewEvaluator validates opts.
func NewEvaluator(opts Options) (*Evaluator, error) {
	if err := opts.Form.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Evaluator{opts: opts, log: opts.Logger}, nil
}

// Options returns the configuration.
func (e *Evaluator) Options() Options { return e.opts }

// Channel is one property channel score.
type Channel struct {
	Name  string
	Score float64 // NaN when the channel failed
}

// Breakdown is the per-channel score of one dataset.
type Breakdown struct {
	Dataset  string
	Channels []Channel
	Total    float64 // +Inf when every channel failed
	Err      error   // cause when the prediction itself failed
}

// Score returns the dataset score, +Inf on any prediction failure.
// The error is non-nil only when ctx is done.
func (e *Evaluator) Score(ctx context.Context, ds dataset.Dataset, sys *groups.System) (float64, error) {
	b, err := e.Breakdown(ctx, ds, sys)
	return b.Total, err
}

// Breakdown predicts ds and reduces each channel. Failures are logged at
// Warn and reported as a +Inf total with Err set.
func (e *Evaluator) Breakdown(ctx context.Context, ds dataset.Dataset, sys *groups.System) (Breakdown, error) {
	out := Breakdown{Dataset: ds.Name, Total: math.Inf(1)}

	pred, err := e.Predict(ctx, ds, sys)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		e.log.Warn("dataset prediction failed", zap.String("dataset", ds.Name), zap.Error(err))
		out.Err = err
		return out, nil
	}

	switch ds.Kind {
	case dataset.KindTLVE:
		out.Channels = e.tlveChannels(ds.TLVE, pred)
	case dataset.KindSatProps:
		out.Channels = e.satChannels(ds.SatProps, pred)
	}
	out.Total = aggregate(out.Channels)

	fields := make([]zap.Field, 0, len(out.Channels)+2)
	fields = append(fields, zap.String("dataset", ds.Name), zap.Float64("total", out.Total))
	for _, c := range out.Channels {
		fields = append(fields, zap.Float64(c.Name, c.Score))
	}
	e.log.Debug("objective breakdown", fields...)

	return out, nil
}

// aggregate returns +Inf when no channel produced a score, else the sum of
// the finite channel scores.
func aggregate(chs []Channel) float64 {
	var (
		sum    float64
		scored bool
	)
	for _, c := range chs {
		if math.IsNaN(c.Score) {
			continue
		}
		sum += c.Score
		scored = true
	}
	if !scored {
		return math.Inf(1)
	}
	return sum
}

func (e *Evaluator) tlveChannels(d *dataset.TLVE, p Prediction) []Channel {
	var chs []Channel
	if d.P != nil {
		chs = append(chs, Channel{Name: "P", Score: e.opts.Form.Evaluate(p.P, d.P, d.Weights.P)})
	}

	name := "yi"
	if d.Mode == phase.PhaseYiT {
		name = "xi"
	}
	w := d.UnknownWeights()
	ncomp := d.Unknown(0).Len()
	pred := make([]float64, len(d.T))
	exp := make([]float64, len(d.T))
	var comp float64
	for c := 0; c < ncomp; c++ {
		for i := range d.T {
			pred[i] = p.Z[i][c]
			exp[i] = d.Unknown(i).At(c)
		}
		// a NaN component poisons the whole composition channel
		comp += e.opts.Form.Evaluate(pred, exp, w)
	}
	return append(chs, Channel{Name: name, Score: comp})
}

func (e *Evaluator) satChannels(d *dataset.SatProps, p Prediction) []Channel {
	var chs []Channel
	add := func(name string, pred, exp, w []float64) {
		if exp != nil {
			chs = append(chs, Channel{Name: name, Score: e.opts.Form.Evaluate(pred, exp, w)})
		}
	}
	add("Psat", p.P, d.Psat, d.Weights.Psat)
	add("rhol", p.RhoL, d.RhoL, d.Weights.RhoL)
	add("rhov", p.RhoV, d.RhoV, d.Weights.RhoV)
	return chs
}

// Prediction holds model values at every point of a dataset.
// Failed points carry NaN when SkipFailedPoints is set.
type Prediction struct {
	Dataset string
	P       []float64   // bubble/dew or saturation pressure [Pa]
	Z       [][]float64 // TLVE only: composition of the solved phase
	RhoL    []float64   // mol/m³
	RhoV    []float64   // mol/m³
}

// Predict solves every point of ds with the parameters carried by sys.
// Point failures are returned as *faults.PointError.
func (e *Evaluator) Predict(ctx context.Context, ds dataset.Dataset, sys *groups.System) (Prediction, error) {
	var dopts density.Options
	switch ds.Kind {
	case dataset.KindTLVE:
		dopts = ds.TLVE.Density
	case dataset.KindSatProps:
		dopts = ds.SatProps.Density
	default:
		return Prediction{}, faults.Validation("dataset "+ds.Name, "unknown kind %v", ds.Kind)
	}

	solver, err := e.solver(sys, dopts)
	if err != nil {
		return Prediction{}, err
	}

	n := ds.Len()
	out := Prediction{
		Dataset: ds.Name,
		P:       make([]float64, n),
		RhoL:    make([]float64, n),
		RhoV:    make([]float64, n),
	}
	if ds.Kind == dataset.KindTLVE {
		out.Z = make([][]float64, n)
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		var perr error
		if ds.Kind == dataset.KindTLVE {
			perr = e.predictTLVE(solver, ds.TLVE, i, &out)
		} else {
			perr = e.predictSat(solver, ds.SatProps, i, &out)
		}
		if perr == nil {
			continue
		}
		if e.opts.SkipFailedPoints && errors.Is(perr, faults.ErrConvergence) {
			e.log.Debug("point skipped", zap.String("dataset", ds.Name), zap.Int("point", i), zap.Error(perr))
			out.markFailed(i, sys.NumComponents())
			continue
		}
		return out, &faults.PointError{Dataset: ds.Name, Index: i, Err: perr}
	}

	return out, nil
}

func (e *Evaluator) solver(sys *groups.System, dopts density.Options) (*phase.Solver, error) {
	eopts := e.opts.EOS
	if eopts.Logger == nil {
		eopts.Logger = e.log
	}
	ev, err := eos.NewEvaluator(sys, eopts)
	if err != nil {
		return nil, err
	}
	if dopts.Logger == nil {
		dopts.Logger = e.log
	}
	dens, err := density.NewSolver(ev, dopts)
	if err != nil {
		return nil, err
	}
	popts := e.opts.Phase
	if popts.Logger == nil {
		popts.Logger = e.log
	}
	return phase.NewSolver(dens, popts)
}

func (e *Evaluator) predictTLVE(s *phase.Solver, d *dataset.TLVE, i int, out *Prediction) error {
	guess := 0.0
	if d.P != nil {
		guess = d.P[i]
	}
	r, err := s.Solve(d.Mode, d.T[i], d.Known(i), guess)
	if err != nil {
		return err
	}
	out.P[i], out.RhoL[i], out.RhoV[i] = r.P, r.RhoL, r.RhoV
	if d.Mode == phase.PhaseXiT {
		out.Z[i] = r.Y.X()
	} else {
		out.Z[i] = r.X.X()
	}
	return nil
}

func (e *Evaluator) predictSat(s *phase.Solver, d *dataset.SatProps, i int, out *Prediction) error {
	sat, err := s.SaturationPressure(d.T[i], d.Component)
	if err != nil {
		return err
	}
	out.P[i], out.RhoL[i], out.RhoV[i] = sat.P, sat.RhoL, sat.RhoV
	return nil
}

func (p *Prediction) markFailed(i, ncomp int) {
	nan := math.NaN()
	p.P[i], p.RhoL[i], p.RhoV[i] = nan, nan, nan
	if p.Z != nil {
		p.Z[i] = make([]float64, ncomp)
		for c := range p.Z[i] {
			p.Z[i][c] = nan
		}
	}
}
