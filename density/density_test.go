// SPDX-License-Identifier: MIT
package density_test

import (
	"errors"
	"math"
	"testing"

	"github.com/katalvlaran/saftgamma/density"
	"github.com/katalvlaran/saftgamma/eos"
	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/groups"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func methaneSolver(t *testing.T) *density.Solver {
	t.Helper()
	tbl, err := groups.NewTable([]groups.Group{{Name: "CH4", Segments: 1, ShapeFactor: 1, Epsilon: 153.36, Sigma: 3.7412, LambdaR: 12.65, LambdaA: 6}}, nil, nil)
	require.NoError(t, err)
	sys, err := groups.NewSystem(tbl, []groups.Component{{Name: "methane", Groups: []groups.GroupCount{{Group: "CH4", Count: 1}}}})
	require.NoError(t, err)
	ev, err := eos.NewEvaluator(sys, eos.DefaultOptions())
	require.NoError(t, err)
	s, err := density.NewSolver(ev, density.DefaultOptions())
	require.NoError(t, err)
	return s
}

var pureX = groups.Pure(1, 0)

// TestFromDict overlays density_dict keys on the defaults.
func TestFromDict(t *testing.T) {
	t.Parallel()

	def := density.DefaultOptions()
	assert.InDelta(t, 1.0/300000, def.MinRhoFrac, 1e-18)
	assert.Equal(t, 10.0, def.RhoInc)
	assert.Equal(t, 1e-4, def.VSpaceMax)

	o, err := density.FromDict(map[string]float64{"rhoinc": 20, "vspacemax": 5e-5})
	require.NoError(t, err)
	assert.Equal(t, 20.0, o.RhoInc)
	assert.Equal(t, 5e-5, o.VSpaceMax)
	assert.Equal(t, def.MinRhoFrac, o.MinRhoFrac)

	for _, bad := range []map[string]float64{{"rhoinc": 0.5}, {"minrhofrac": 2}, {"vspacemax": -1}, {"maxrho": 1}} {
		_, err = density.FromDict(bad)
		assert.ErrorIs(t, err, faults.ErrValidation, "%v", bad)
	}
}

// TestRoots_Consistency checks that a density reproduces itself through its
// own pressure, on both branches.
func TestRoots_Consistency(t *testing.T) {
	t.Parallel()

	s := methaneSolver(t)
	ev := s.Evaluator()
	for _, rho := range []float64{25000, 100} {
		p, err := ev.Pressure(eos.StatePoint{T: 150, Rho: rho, X: pureX})
		require.NoError(t, err)
		require.Greater(t, p, 0.0)

		res, err := s.Roots(150, pureX, p)
		require.NoError(t, err)
		require.True(t, res.Converged)

		best := math.Inf(1)
		var found float64
		for _, r := range res.Roots {
			if d := math.Abs(r.Rho-rho) / rho; d < best {
				best, found = d, r.Rho
			}
		}
		assert.Less(t, best, 1e-6, "rho %g roots %+v", rho, res.Roots)

		back, err := ev.Pressure(eos.StatePoint{T: 150, Rho: found, X: pureX})
		require.NoError(t, err)
		assert.InDelta(t, p, back, 1e-6*p)
	}
}

// TestRoots_ThreeBranches finds liquid, unstable and vapor roots inside the loop.
func TestRoots_ThreeBranches(t *testing.T) {
	t.Parallel()

	s := methaneSolver(t)
	b, err := s.PressureBounds(150, pureX)
	require.NoError(t, err)
	require.True(t, b.HasLoop)
	require.Less(t, b.Min, b.Max)
	require.Greater(t, b.RhoMin, b.RhoMax)

	target := b.Max / 2
	if b.Min > 0 {
		target = (b.Min + b.Max) / 2
	}
	res, err := s.Roots(150, pureX, target)
	require.NoError(t, err)
	require.Len(t, res.Roots, 3)
	assert.True(t, res.Roots[0].Stable)
	assert.False(t, res.Roots[1].Stable)
	assert.True(t, res.Roots[2].Stable)

	liq, ok := res.Liquid()
	require.True(t, ok)
	vap, ok := res.Vapor()
	require.True(t, ok)
	assert.Greater(t, liq.Rho, b.RhoMin)
	assert.Less(t, vap.Rho, b.RhoMax)

	l, err := s.Liquid(150, pureX, target)
	require.NoError(t, err)
	assert.Equal(t, liq.Rho, l)
	v, err := s.Vapor(150, pureX, target)
	require.NoError(t, err)
	assert.Equal(t, vap.Rho, v)
}

// TestPressureBounds_Supercritical reports no loop above the critical point.
func TestPressureBounds_Supercritical(t *testing.T) {
	t.Parallel()

	b, err := methaneSolver(t).PressureBounds(400, pureX)
	require.NoError(t, err)
	assert.False(t, b.HasLoop)
	assert.True(t, math.IsInf(b.Max, 1))
}

// TestRoots_Failures covers bad targets and unbracketed roots.
func TestRoots_Failures(t *testing.T) {
	t.Parallel()

	s := methaneSolver(t)
	_, err := s.Roots(150, pureX, -1)
	assert.ErrorIs(t, err, faults.ErrDomain)

	_, err = s.Roots(150, pureX, 1e13)
	assert.ErrorIs(t, err, faults.ErrConvergence)
	assert.ErrorIs(t, err, density.ErrNotBracketed)
	var ce *faults.ConvergenceError
	require.True(t, errors.As(err, &ce))
	assert.Greater(t, ce.Residual, 0.0)
}

// TestPressureBounds_Subcritical finds the van der Waals loop of methane at
// 150 K, where the liquid spinodal pressure is negative.
func TestPressureBounds_Subcritical(t *testing.T) {
	t.Parallel()

	b, err := methaneSolver(t).PressureBounds(150, pureX)
	require.NoError(t, err)
	require.True(t, b.HasLoop)
	assert.Less(t, b.Min, 0.0)
	assert.InEpsilon(t, 2.17e6, b.Max, 0.05)
	assert.Greater(t, b.RhoMin, b.RhoMax)
	assert.True(t, b.LiquidSide(b.RhoMin))
	assert.False(t, b.VaporSide(b.RhoMin))
	assert.True(t, b.VaporSide(b.RhoMax/2))
}

// TestVapor_AboveLoop refuses the liquid root as a vapor density when the
// target lies above the vapor spinodal.
func TestVapor_AboveLoop(t *testing.T) {
	t.Parallel()

	s := methaneSolver(t)
	liq, err := s.Liquid(150, pureX, 3e6)
	require.NoError(t, err)
	assert.Greater(t, liq, 20000.0)

	_, err = s.Vapor(150, pureX, 3e6)
	assert.ErrorIs(t, err, faults.ErrConvergence)
	assert.ErrorIs(t, err, density.ErrWrongBranch)

	// supercritical: the one root serves both phases
	l, err := s.Liquid(400, pureX, 3e6)
	require.NoError(t, err)
	v, err := s.Vapor(400, pureX, 3e6)
	require.NoError(t, err)
	assert.Equal(t, l, v)
}

// TestRoots_ExactGridSample keeps a root that falls exactly on a scan sample.
func TestRoots_ExactGridSample(t *testing.T) {
	t.Parallel()

	opts := density.DefaultOptions()
	opts.RhoInc = 100
	s, err := density.NewSolver(methaneSolver(t).Evaluator(), opts)
	require.NoError(t, err)
	ev := s.Evaluator()
	b, err := s.PressureBounds(150, pureX)
	require.NoError(t, err)
	require.True(t, b.HasLoop)

	rhoMax, err := ev.MaxDensity(150, pureX, opts.MaxPackingFraction)
	require.NoError(t, err)
	rt := eos.GasConstant * 150
	var vHit, target float64
	for v := 1 / rhoMax; v < 1e-3; {
		v += math.Min(v/opts.RhoInc, opts.VSpaceMax)
		p, err := ev.Pressure(eos.StatePoint{T: 150, Rho: 1 / v, X: pureX})
		require.NoError(t, err)
		if p > 2*b.Max && p < 2*rt/v {
			vHit, target = v, p
			break
		}
	}
	require.NotZero(t, vHit, "no liquid sample between the loop and the scan end")

	res, err := s.Roots(150, pureX, target)
	require.NoError(t, err)
	require.Len(t, res.Roots, 1)
	assert.Equal(t, 1/vHit, res.Roots[0].Rho)
	assert.True(t, res.Roots[0].Stable)
}
