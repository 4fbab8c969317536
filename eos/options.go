// SPDX-License-Identifier: MIT

package eos

import (
	"errors"

	"go.uber.org/zap"

	"github.com/katalvlaran/saftgamma/perturb"
)

var (
	// ErrNilSystem is returned when NewEvaluator receives no system.
	ErrNilSystem = errors.New("eos: nil system")

	// ErrBadOptions marks out-of-range Options fields.
	ErrBadOptions = errors.New("eos: invalid options")
)

// Options configures an Evaluator.
type Options struct {
	// Perturb selects the perturbation kernel.
	Perturb perturb.Options

	// Associator evaluates the association term. Nil picks ContactAssociation
	// when the table declares bonds and NoAssociation otherwise.
	Associator Associator

	// QuadraturePoints is the Gauss–Legendre order of the diameter integral.
	QuadraturePoints int

	// DerivativeStep is the relative central-difference step.
	DerivativeStep float64

	Logger *zap.Logger
}

// DefaultOptions returns 20 quadrature points, a 1e-5 relative step and a
// no-op logger.
func DefaultOptions() Options {
	return Options{
		Perturb:          perturb.DefaultOptions(),
		QuadraturePoints: 20,
		DerivativeStep:   1e-5,
		Logger:           zap.NewNop(),
	}
}

func (o Options) withDefaults() (Options, error) {
	def := DefaultOptions()
	if o.QuadraturePoints == 0 {
		o.QuadraturePoints = def.QuadraturePoints
	}
	if o.DerivativeStep == 0 {
		o.DerivativeStep = def.DerivativeStep
	}
	if o.Logger == nil {
		o.Logger = def.Logger
	}
	if o.QuadraturePoints < 2 || !(o.DerivativeStep > 0 && o.DerivativeStep < 0.1) {
		return o, ErrBadOptions
	}
	return o, nil
}
