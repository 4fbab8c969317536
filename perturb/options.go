// SPDX-License-Identifier: MIT

package perturb

import (
	"errors"
	"fmt"
)

// KernelMode selects how the A1S family is evaluated.
type KernelMode int

const (
	// KernelReference evaluates every (density, pair) independently.
	KernelReference KernelMode = iota
	// KernelFused precomputes per-pair polynomial coefficients once per call.
	KernelFused
)

func (m KernelMode) String() string {
	switch m {
	case KernelReference:
		return "reference"
	case KernelFused:
		return "fused"
	}
	return fmt.Sprintf("KernelMode(%d)", int(m))
}

// ErrUnknownKernel is returned for an unrecognised KernelMode.
var ErrUnknownKernel = errors.New("perturb: unknown kernel mode")

// Options configures a Calculator.
type Options struct {
	Kernel KernelMode
}

// DefaultOptions returns the reference kernel.
func DefaultOptions() Options { return Options{Kernel: KernelReference} }

// Calculator evaluates perturbation terms with a fixed kernel choice.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	opts Options
}

// New validates opts and returns a Calculator.
func New(opts Options) (*Calculator, error) {
	switch opts.Kernel {
	case KernelReference, KernelFused:
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKernel, opts.Kernel)
	}
	return &Calculator{opts: opts}, nil
}

// Options returns the configuration in use.
func (c *Calculator) Options() Options { return c.opts }
