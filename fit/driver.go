// SPDX-License-Identifier: MIT

package fit

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/saftgamma/dataset"
	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/groups"
)

// ErrNoDatasets is returned by NewDriver for an empty dataset list.
var ErrNoDatasets = errors.New("fit: no datasets")

// Driver evaluates the fitting objective for parameter vectors.
// Objective is safe for concurrent use.
type Driver struct {
	base     *groups.Table
	baseSys  *groups.System
	sets     []dataset.Dataset
	names    []string
	bindings []groups.Binding
	opts     Options
	log      *zap.Logger
	runID    uuid.UUID

	mu    sync.Mutex
	seq   int
	best  float64
	bestX []float64
}

// NewDriver checks that every binding resolves on base and that the
// components bind to it.
func NewDriver(base *groups.Table, comps []groups.Component, sets []dataset.Dataset, bindings []groups.Binding, opts Options) (*Driver, error) {
	if base == nil {
		return nil, faults.Validation("fit", "nil parameter table")
	}
	if len(sets) == 0 {
		return nil, ErrNoDatasets
	}
	if len(bindings) == 0 {
		return nil, faults.Validation("fit.parameters", "no parameters to fit")
	}
	sys, err := groups.NewSystem(base, comps)
	if err != nil {
		return nil, err
	}
	for _, b := range bindings {
		if _, err := base.Value(b); err != nil {
			return nil, err
		}
	}
	opts, err = opts.withDefaults()
	if err != nil {
		return nil, err
	}

	d := &Driver{
		base:     base,
		baseSys:  sys,
		sets:     append([]dataset.Dataset(nil), sets...),
		bindings: append([]groups.Binding(nil), bindings...),
		opts:     opts,
		runID:    uuid.New(),
		best:     math.Inf(1),
	}
	d.names = make([]string, len(d.sets))
	for i, s := range d.sets {
		d.names[i] = s.Name
	}
	d.log = opts.Logger.With(zap.Stringer("run", d.runID))

	return d, nil
}

// RunID identifies this driver in recorded evaluations.
func (d *Driver) RunID() uuid.UUID { return d.runID }

// Bindings returns the parameter order of the vector.
func (d *Driver) Bindings() []groups.Binding { return append([]groups.Binding(nil), d.bindings...) }

// Datasets returns the dataset names in summation order.
func (d *Driver) Datasets() []string { return append([]string(nil), d.names...) }

// Initial reads the starting vector from the base table.
func (d *Driver) Initial() []float64 {
	x := make([]float64, len(d.bindings))
	for i, b := range d.bindings {
		// resolved in NewDriver
		x[i], _ = d.base.Value(b)
	}
	return x
}

// Best returns the lowest objective seen and its vector.
func (d *Driver) Best() (float64, []float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.best, append([]float64(nil), d.bestX...)
}

// Evaluations returns the number of completed objective calls.
func (d *Driver) Evaluations() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

// System builds the system at vec. Parameter values the table rejects are
// returned as errors.
func (d *Driver) System(vec []float64) (*groups.System, error) {
	t, err := d.base.Apply(d.bindings, vec)
	if err != nil {
		return nil, err
	}
	return d.baseSys.WithTable(t)
}

// Objective returns Σ dataset scores at vec.
//
// Errors:
//   - ValidationError when vec has the wrong length or a non-finite entry.
//   - ctx.Err() when ctx is done.
//
// Unphysical parameter values and failed predictions give +Inf.
func (d *Driver) Objective(ctx context.Context, vec []float64) (float64, error) {
	if len(vec) != len(d.bindings) {
		return 0, faults.Validation("parameters", "vector length %d, want %d", len(vec), len(d.bindings))
	}
	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, faults.Validation("parameter "+d.bindings[i].String(), "non-finite value %g", v)
		}
	}
	start := time.Now()
	scores := make([]float64, len(d.sets))

	sys, err := d.System(vec)
	if err != nil {
		d.log.Warn("parameters rejected", zap.Float64s("vector", vec), zap.Error(err))
		for i := range scores {
			scores[i] = math.Inf(1)
		}
	} else if err := d.scoreAll(ctx, sys, scores); err != nil {
		return 0, err
	}

	var total float64
	for _, s := range scores {
		total += s
	}

	e, improved := d.finish(vec, total, scores)
	d.opts.Metrics.observe(e, d.names, time.Since(start), improved)
	if d.opts.Recorder != nil {
		if err := d.opts.Recorder.Record(ctx, e); err != nil {
			d.log.Warn("record evaluation", zap.Int("seq", e.Seq), zap.Error(err))
		}
	}
	d.log.Debug("objective", zap.Int("seq", e.Seq), zap.Float64s("vector", vec), zap.Float64("score", total))

	return total, nil
}

func (d *Driver) scoreAll(ctx context.Context, sys *groups.System, scores []float64) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)
	for i := range d.sets {
		i := i
		g.Go(func() error {
			s, err := d.opts.Objective.Score(gctx, d.sets[i], sys)
			if err != nil {
				return err
			}
			scores[i] = s
			return nil
		})
	}
	return g.Wait()
}

func (d *Driver) finish(vec []float64, total float64, scores []float64) (Evaluation, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	improved := total < d.best
	if improved {
		d.best = total
		d.bestX = append(d.bestX[:0], vec...)
	}
	return Evaluation{
		ID:       uuid.New(),
		RunID:    d.runID,
		Seq:      d.seq,
		Vector:   append([]float64(nil), vec...),
		Score:    total,
		Datasets: scores,
		At:       time.Now().UTC(),
	}, improved
}

// Func adapts Objective to the plain signature external optimizers expect.
// Errors map to +Inf.
func (d *Driver) Func(ctx context.Context) func([]float64) float64 {
	return func(x []float64) float64 {
		v, err := d.Objective(ctx, x)
		if err != nil {
			return math.Inf(1)
		}
		return v
	}
}
