// SPDX-License-Identifier: MIT
package phase_test

import (
	"errors"
	"testing"

	"github.com/katalvlaran/saftgamma/density"
	"github.com/katalvlaran/saftgamma/eos"
	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/groups"
	"github.com/katalvlaran/saftgamma/phase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ch4 = groups.Group{Name: "CH4", Segments: 1, ShapeFactor: 1, Epsilon: 153.36, Sigma: 3.7412, LambdaR: 12.65, LambdaA: 6}

func solver(t *testing.T, names []string, opts phase.Options) *phase.Solver {
	t.Helper()
	tbl, err := groups.NewTable([]groups.Group{ch4}, nil, nil)
	require.NoError(t, err)
	comps := make([]groups.Component, len(names))
	for i, n := range names {
		comps[i] = groups.Component{Name: n, Groups: []groups.GroupCount{{Group: "CH4", Count: 1}}}
	}
	sys, err := groups.NewSystem(tbl, comps)
	require.NoError(t, err)
	ev, err := eos.NewEvaluator(sys, eos.DefaultOptions())
	require.NoError(t, err)
	ds, err := density.NewSolver(ev, density.DefaultOptions())
	require.NoError(t, err)
	s, err := phase.NewSolver(ds, opts)
	require.NoError(t, err)
	return s
}

// TestParseMode round-trips the calculation type names.
func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, m := range []phase.Mode{phase.PhaseXiT, phase.PhaseYiT} {
		got, err := phase.ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := phase.ParseMode("phase_TiP")
	assert.ErrorIs(t, err, faults.ErrValidation)
	assert.Equal(t, "FUGACITY_CHECK", phase.StateFugacityCheck.String())
}

// TestPureComponentRoundTrip compares the bubble route with the independent
// saturation route for one component.
func TestPureComponentRoundTrip(t *testing.T) {
	t.Parallel()

	s := solver(t, []string{"methane"}, phase.DefaultOptions())
	sat, err := s.SaturationPressure(150, 0)
	require.NoError(t, err)
	assert.Greater(t, sat.P, 5e5)
	assert.Less(t, sat.P, 2e6)
	assert.Greater(t, sat.RhoL, 10*sat.RhoV)

	x := groups.Pure(1, 0)
	bub, err := s.BubblePressure(150, x, 0)
	require.NoError(t, err)
	assert.True(t, bub.Converged)
	assert.Equal(t, phase.StateConverged, bub.State)
	assert.InDelta(t, 1.0, bub.Y.At(0), 1e-12)
	assert.InEpsilon(t, sat.P, bub.P, 1e-4)
	assert.InEpsilon(t, sat.RhoL, bub.RhoL, 1e-3)
	assert.InEpsilon(t, sat.RhoV, bub.RhoV, 1e-3)

	dew, err := s.DewPressure(150, x, 5e5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dew.X.At(0), 1e-12)
	assert.InEpsilon(t, sat.P, dew.P, 1e-4)
}

// TestIdenticalBinary keeps the vapor composition equal to the liquid one.
func TestIdenticalBinary(t *testing.T) {
	t.Parallel()

	s := solver(t, []string{"a", "b"}, phase.DefaultOptions())
	x, err := groups.NewMixture([]float64{0.3, 0.7})
	require.NoError(t, err)
	res, err := s.BubblePressure(150, x, 1e6)
	require.NoError(t, err)
	assert.True(t, res.Y.Equal(x, 1e-9))

	sat, err := s.SaturationPressure(150, 1)
	require.NoError(t, err)
	assert.InEpsilon(t, sat.P, res.P, 1e-4)
}

// TestIterationCap reports ConvergenceError with the last residual.
func TestIterationCap(t *testing.T) {
	t.Parallel()

	opts := phase.DefaultOptions()
	opts.MaxIter = 1
	s := solver(t, []string{"methane"}, opts)
	res, err := s.BubblePressure(150, groups.Pure(1, 0), 3e5)
	require.Error(t, err)
	var ce *faults.ConvergenceError
	require.True(t, errors.As(err, &ce))
	assert.Greater(t, ce.Residual, 0.0)
	assert.False(t, res.Converged)
	assert.Equal(t, phase.StateFailed, res.State)
}

// TestSaturationPressure_Rejects covers supercritical temperatures and bad indices.
func TestSaturationPressure_Rejects(t *testing.T) {
	t.Parallel()

	s := solver(t, []string{"methane"}, phase.DefaultOptions())
	_, err := s.SaturationPressure(400, 0)
	assert.ErrorIs(t, err, faults.ErrDomain)
	_, err = s.SaturationPressure(150, 3)
	assert.ErrorIs(t, err, faults.ErrValidation)

	_, err = phase.NewSolver(nil, phase.DefaultOptions())
	assert.ErrorIs(t, err, faults.ErrValidation)
}

// TestBubblePressure_GuessAboveLoop starts above the vapor spinodal, where
// only the liquid root exists, and must still reach saturation instead of
// settling on one density for both phases.
func TestBubblePressure_GuessAboveLoop(t *testing.T) {
	t.Parallel()

	s := solver(t, []string{"methane"}, phase.DefaultOptions())
	sat, err := s.SaturationPressure(150, 0)
	require.NoError(t, err)
	assert.InEpsilon(t, 1.048e6, sat.P, 0.05)

	for _, guess := range []float64{3e6, 2.5e6} {
		res, err := s.BubblePressure(150, groups.Pure(1, 0), guess)
		require.NoError(t, err, "guess %g", guess)
		assert.True(t, res.Converged)
		assert.NotEqual(t, guess, res.P)
		assert.InEpsilon(t, sat.P, res.P, 1e-4)
		assert.Greater(t, res.RhoL, 10*res.RhoV)
	}
}

// TestSolve_Supercritical reports a trivial solution when only one density
// exists.
func TestSolve_Supercritical(t *testing.T) {
	t.Parallel()

	s := solver(t, []string{"methane"}, phase.DefaultOptions())
	res, err := s.BubblePressure(400, groups.Pure(1, 0), 3e6)
	require.Error(t, err)
	assert.ErrorIs(t, err, faults.ErrConvergence)
	assert.ErrorIs(t, err, phase.ErrTrivialSolution)
	assert.False(t, res.Converged)

	opts := phase.DefaultOptions()
	opts.TrivialTol = 0
	_, err = phase.NewSolver(s.Density(), opts)
	assert.ErrorIs(t, err, faults.ErrValidation)
}
