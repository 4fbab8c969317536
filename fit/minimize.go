// SPDX-License-Identifier: MIT

package fit

import (
	"context"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"github.com/katalvlaran/saftgamma/faults"
)

// Method names an optimize.Method.
type Method string

// Supported methods. Gradient methods use central differences of the
// objective.
const (
	NelderMead      Method = "NelderMead"
	LBFGS           Method = "LBFGS"
	BFGS            Method = "BFGS"
	GradientDescent Method = "GradientDescent"
	CG              Method = "CG"
)

func (m Method) gonum() (optimize.Method, bool, error) {
	switch m {
	case NelderMead, "":
		return &optimize.NelderMead{}, false, nil
	case LBFGS:
		return &optimize.LBFGS{}, true, nil
	case BFGS:
		return &optimize.BFGS{}, true, nil
	case GradientDescent:
		return &optimize.GradientDescent{}, true, nil
	case CG:
		return &optimize.CG{}, true, nil
	}
	return nil, false, faults.Validation("fit.method", "unknown method %q", string(m))
}

// MinimizeOptions bounds a Minimize call.
type MinimizeOptions struct {
	Method          Method
	FuncEvaluations int     // 0 means unbounded
	MajorIterations int     // 0 means unbounded
	GradientStep    float64 // finite-difference step, default 1e-6
}

// Result is the optimizer outcome.
type Result struct {
	X               []float64
	F               float64
	Status          string
	FuncEvaluations int
	MajorIterations int
}

// Minimize runs the optimizer from x0 (Initial when nil). A cancelled ctx
// stops the search at the next evaluation.
func (d *Driver) Minimize(ctx context.Context, x0 []float64, opts MinimizeOptions) (Result, error) {
	method, needsGrad, err := opts.Method.gonum()
	if err != nil {
		return Result{}, err
	}
	if x0 == nil {
		x0 = d.Initial()
	}
	if opts.GradientStep == 0 {
		opts.GradientStep = 1e-6
	}

	f := d.Func(ctx)
	p := optimize.Problem{
		Func: f,
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}
	if needsGrad {
		step := opts.GradientStep
		p.Grad = func(grad, x []float64) {
			fd.Gradient(grad, f, x, &fd.Settings{Formula: fd.Central, Step: step})
		}
	}
	settings := &optimize.Settings{
		FuncEvaluations: opts.FuncEvaluations,
		MajorIterations: opts.MajorIterations,
	}

	d.log.Info("minimize", zap.String("method", string(opts.Method)), zap.Float64s("x0", x0))
	res, err := optimize.Minimize(p, x0, settings, method)
	if res == nil {
		return Result{}, err
	}
	out := Result{
		X:               res.X,
		F:               res.F,
		Status:          res.Status.String(),
		FuncEvaluations: res.Stats.FuncEvaluations,
		MajorIterations: res.Stats.MajorIterations,
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}
	switch res.Status {
	case optimize.FunctionEvaluationLimit, optimize.IterationLimit, optimize.RuntimeLimit:
		// budget exhausted; the best point so far is the answer
		return out, nil
	}
	return out, err
}
