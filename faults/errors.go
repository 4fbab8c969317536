// SPDX-License-Identifier: MIT

// Package faults defines the error kinds shared by every numeric stage of
// saftgamma. Each package keeps its own sentinels for local conditions, but
// the three kinds below decide how a failure travels:
//
//   - ErrDomain: a closed-form term hit a pole or an unphysical input
//     (exponent equal to 3, packing fraction ≥ 1, negative density).
//     Always fatal to the current evaluation.
//   - ErrConvergence: an iterative solve ran out of iterations or could not
//     bracket a root. Converted to an infinite score only at the objective
//     boundary; propagated everywhere else.
//   - ErrValidation: malformed inputs detected at construction time.
//
// Typed errors (DomainError, ConvergenceError, ValidationError, PointError)
// carry structured context and match their kind through errors.Is.
package faults

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain marks a pole or singularity in a closed-form term.
	ErrDomain = errors.New("saftgamma: domain error")

	// ErrConvergence marks an iterative solve that did not converge.
	ErrConvergence = errors.New("saftgamma: convergence error")

	// ErrValidation marks malformed construction-time input.
	ErrValidation = errors.New("saftgamma: validation error")
)

// DomainError reports the offending quantity of a closed-form evaluation.
type DomainError struct {
	Op       string  // operation tag, e.g. "perturb.A1S"
	Quantity string  // name of the quantity at the pole
	Value    float64 // offending value
}

// Domain builds a *DomainError.
func Domain(op, quantity string, value float64) error {
	return &DomainError{Op: op, Quantity: quantity, Value: value}
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s=%g: %v", e.Op, e.Quantity, e.Value, ErrDomain)
}

// Is reports kind equality so errors.Is(err, ErrDomain) holds.
func (e *DomainError) Is(target error) bool { return target == ErrDomain }

// ConvergenceError reports the last state of a non-converged iteration.
type ConvergenceError struct {
	Op         string
	Iterations int
	Residual   float64
	Err        error // optional cause
}

// Convergence builds a *ConvergenceError without a cause.
func Convergence(op string, iterations int, residual float64) error {
	return &ConvergenceError{Op: op, Iterations: iterations, Residual: residual}
}

func (e *ConvergenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: after %d iterations (residual %.3e): %v: %v", e.Op, e.Iterations, e.Residual, ErrConvergence, e.Err)
	}
	return fmt.Sprintf("%s: after %d iterations (residual %.3e): %v", e.Op, e.Iterations, e.Residual, ErrConvergence)
}

// Is reports kind equality so errors.Is(err, ErrConvergence) holds.
func (e *ConvergenceError) Is(target error) bool { return target == ErrConvergence }

// Unwrap exposes the cause.
func (e *ConvergenceError) Unwrap() error { return e.Err }

// ValidationError names the rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

// Validation builds a *ValidationError.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Field, e.Reason, ErrValidation)
}

// Is reports kind equality so errors.Is(err, ErrValidation) holds.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// PointError attaches dataset and point index to a failure raised while
// predicting one experimental point.
type PointError struct {
	Dataset string
	Index   int
	Err     error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("dataset %q point %d: %v", e.Dataset, e.Index, e.Err)
}

// Unwrap exposes the underlying kind.
func (e *PointError) Unwrap() error { return e.Err }
