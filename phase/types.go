// SPDX-License-Identifier: MIT

package phase

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/groups"
)

// Mode is the calculation type of a point.
type Mode int

const (
	// PhaseXiT: T and liquid composition known (bubble pressure).
	PhaseXiT Mode = iota
	// PhaseYiT: T and vapor composition known (dew pressure).
	PhaseYiT
)

func (m Mode) String() string {
	switch m {
	case PhaseXiT:
		return "phase_xiT"
	case PhaseYiT:
		return "phase_yiT"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode reads "phase_xiT" or "phase_yiT".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "phase_xiT":
		return PhaseXiT, nil
	case "phase_yiT":
		return PhaseYiT, nil
	}
	return 0, faults.Validation("calculation_type", "unknown calculation type %q", s)
}

// State is a step of the equilibrium state machine.
type State int

// enumeration of State
const (
	StateInit State = iota
	StateDensitySolve
	StateFugacityCheck
	StateCompositionUpdate
	StateConverged
	StateFailed
)

var stateNames = [...]string{"INIT", "DENSITY_SOLVE", "FUGACITY_CHECK", "COMPOSITION_UPDATE", "CONVERGED", "FAILED"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result is the terminal outcome of one equilibrium calculation.
type Result struct {
	Mode       Mode
	T          float64 // K
	P          float64 // Pa
	X          groups.Mixture
	Y          groups.Mixture
	RhoL       float64 // mol/m³
	RhoV       float64 // mol/m³
	Converged  bool
	Iterations int
	State      State
}

// Saturation is a pure-component coexistence point.
type Saturation struct {
	P    float64
	RhoL float64
	RhoV float64
}

// ErrTrivialSolution is the cause of a ConvergenceError when the liquid
// and vapor densities coincide.
var ErrTrivialSolution = errors.New("phase: liquid and vapor densities coincide")

// Options bounds the successive substitution.
type Options struct {
	Tol          float64 // on |S−1| and max|Δcomposition|
	MaxIter      int     // pressure updates
	InnerMaxIter int     // composition updates per pressure
	TrivialTol   float64 // |ρL−ρV|/max(ρL,ρV) below this is one phase
	Logger       *zap.Logger
}

// DefaultOptions returns Tol 1e-7, 100 pressure and 50 composition updates.
func DefaultOptions() Options {
	return Options{Tol: 1e-7, MaxIter: 100, InnerMaxIter: 50, TrivialTol: 1e-3, Logger: zap.NewNop()}
}

func (o Options) validate() error {
	if !(o.Tol > 0) || o.MaxIter < 1 || o.InnerMaxIter < 1 || !(o.TrivialTol > 0) {
		return faults.Validation("phase options", "tolerance and iteration caps must be positive")
	}
	return nil
}
