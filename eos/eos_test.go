// SPDX-License-Identifier: MIT
package eos_test

import (
	"errors"
	"math"
	"testing"

	"github.com/katalvlaran/saftgamma/eos"
	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/groups"
	"github.com/katalvlaran/saftgamma/perturb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ch4 = groups.Group{Name: "CH4", Segments: 1, ShapeFactor: 1, Epsilon: 153.36, Sigma: 3.7412, LambdaR: 12.65, LambdaA: 6}
	ch3 = groups.Group{Name: "CH3", Segments: 1, ShapeFactor: 0.57255, Epsilon: 256.77, Sigma: 4.0773, LambdaR: 15.050, LambdaA: 6}
)

func methane(t *testing.T, opts eos.Options) *eos.Evaluator {
	t.Helper()
	tbl, err := groups.NewTable([]groups.Group{ch4}, nil, nil)
	require.NoError(t, err)
	sys, err := groups.NewSystem(tbl, []groups.Component{{Name: "methane", Groups: []groups.GroupCount{{Group: "CH4", Count: 1}}}})
	require.NoError(t, err)
	ev, err := eos.NewEvaluator(sys, opts)
	require.NoError(t, err)
	return ev
}

func pure(t *testing.T, T, rho float64) eos.StatePoint {
	t.Helper()
	sp, err := eos.NewStatePoint(T, rho, groups.Pure(1, 0))
	require.NoError(t, err)
	return sp
}

// TestNewEvaluator_Rejects covers nil systems and bad options.
func TestNewEvaluator_Rejects(t *testing.T) {
	t.Parallel()

	_, err := eos.NewEvaluator(nil, eos.DefaultOptions())
	assert.ErrorIs(t, err, eos.ErrNilSystem)

	tbl, err := groups.NewTable([]groups.Group{ch4}, nil, nil)
	require.NoError(t, err)
	sys, err := groups.NewSystem(tbl, []groups.Component{{Name: "m", Groups: []groups.GroupCount{{Group: "CH4", Count: 1}}}})
	require.NoError(t, err)
	_, err = eos.NewEvaluator(sys, eos.Options{DerivativeStep: 0.5})
	assert.ErrorIs(t, err, eos.ErrBadOptions)
	_, err = eos.NewEvaluator(sys, eos.Options{Perturb: perturb.Options{Kernel: 9}})
	assert.ErrorIs(t, err, perturb.ErrUnknownKernel)
}

// TestStatePoint_Validate rejects T ≤ 0, ρ < 0 and wrong composition length.
func TestStatePoint_Validate(t *testing.T) {
	t.Parallel()

	_, err := eos.NewStatePoint(0, 1, groups.Pure(1, 0))
	assert.ErrorIs(t, err, faults.ErrDomain)
	_, err = eos.NewStatePoint(100, -1, groups.Pure(1, 0))
	assert.ErrorIs(t, err, faults.ErrDomain)

	ev := methane(t, eos.DefaultOptions())
	sp, err := eos.NewStatePoint(150, 100, groups.Pure(2, 0))
	require.NoError(t, err)
	_, err = ev.Pressure(sp)
	assert.ErrorIs(t, err, faults.ErrValidation)
}

// TestDiameters stays below σ and close to it.
func TestDiameters(t *testing.T) {
	t.Parallel()

	ev := methane(t, eos.DefaultOptions())
	d, err := ev.Diameters(150)
	require.NoError(t, err)
	sigma := ch4.Sigma * groups.Angstrom
	assert.Less(t, d[0], sigma)
	assert.Greater(t, d[0], 0.9*sigma)

	hot, err := ev.Diameters(600)
	require.NoError(t, err)
	assert.Less(t, hot[0], d[0], "diameter shrinks with temperature")

	_, err = ev.Diameters(-1)
	assert.ErrorIs(t, err, faults.ErrDomain)
}

// TestIdealGasLimit checks Z → 1 and P → ρRT at low density.
func TestIdealGasLimit(t *testing.T) {
	t.Parallel()

	ev := methane(t, eos.DefaultOptions())
	sp := pure(t, 300, 1)
	z, err := ev.Compressibility(sp)
	require.NoError(t, err)
	assert.InDelta(t, 1, z, 1e-3)

	p, err := ev.Pressure(sp)
	require.NoError(t, err)
	assert.InEpsilon(t, eos.GasConstant*300, p, 1e-3)

	zero, err := ev.Pressure(pure(t, 300, 0))
	require.NoError(t, err)
	assert.Equal(t, 0.0, zero)
}

// TestHelmholtz_Contributions checks signs of the individual terms.
func TestHelmholtz_Contributions(t *testing.T) {
	t.Parallel()

	ev := methane(t, eos.DefaultOptions())
	c, err := ev.Helmholtz(pure(t, 150, 20000))
	require.NoError(t, err)
	assert.Greater(t, c.HardSphere, 0.0)
	assert.Less(t, c.Perturbation1, 0.0)
	assert.Less(t, c.Perturbation2, 0.0)
	assert.Equal(t, 0.0, c.Chain, "single segment molecule")
	assert.Equal(t, 0.0, c.Association)
	assert.InDelta(t, c.Total()-c.Ideal, c.Residual(), 1e-12)

	ar, err := ev.ResidualHelmholtz(pure(t, 150, 20000))
	require.NoError(t, err)
	assert.InDelta(t, c.Residual(), ar, 1e-12)

	_, err = ev.Helmholtz(pure(t, 150, 1e6))
	assert.ErrorIs(t, err, faults.ErrDomain, "ζ3 beyond unity")
}

// TestChain_Ethane produces a non-zero chain term for a two-bead molecule.
func TestChain_Ethane(t *testing.T) {
	t.Parallel()

	tbl, err := groups.NewTable([]groups.Group{ch3}, nil, nil)
	require.NoError(t, err)
	sys, err := groups.NewSystem(tbl, []groups.Component{{Name: "ethane", Groups: []groups.GroupCount{{Group: "CH3", Count: 2}}}})
	require.NoError(t, err)
	ev, err := eos.NewEvaluator(sys, eos.DefaultOptions())
	require.NoError(t, err)

	c, err := ev.Helmholtz(pure(t, 250, 12000))
	require.NoError(t, err)
	assert.Less(t, c.Chain, 0.0)
	assert.False(t, math.IsNaN(c.Chain))
}

// TestFugacity_PureIdentity checks ln φ = a_res + Z − 1 − ln Z for one component.
func TestFugacity_PureIdentity(t *testing.T) {
	t.Parallel()

	ev := methane(t, eos.DefaultOptions())
	for _, rho := range []float64{50, 800, 24000} {
		sp := pure(t, 150, rho)
		ar, err := ev.ResidualHelmholtz(sp)
		require.NoError(t, err)
		z, err := ev.Compressibility(sp)
		require.NoError(t, err)
		lnphi, err := ev.FugacityCoefficients(sp)
		require.NoError(t, err)
		assert.InDelta(t, ar+z-1-math.Log(z), lnphi[0], 1e-6, "rho %g", rho)
	}
}

// TestFugacity_IdenticalComponents treats a binary of identical molecules.
func TestFugacity_IdenticalComponents(t *testing.T) {
	t.Parallel()

	tbl, err := groups.NewTable([]groups.Group{ch4}, nil, nil)
	require.NoError(t, err)
	formula := []groups.GroupCount{{Group: "CH4", Count: 1}}
	sys, err := groups.NewSystem(tbl, []groups.Component{{Name: "a", Groups: formula}, {Name: "b", Groups: formula}})
	require.NoError(t, err)
	bin, err := eos.NewEvaluator(sys, eos.DefaultOptions())
	require.NoError(t, err)

	x, err := groups.NewMixture([]float64{0.3, 0.7})
	require.NoError(t, err)
	sp, err := eos.NewStatePoint(150, 25000, x)
	require.NoError(t, err)
	got, err := bin.FugacityCoefficients(sp)
	require.NoError(t, err)
	want, err := methane(t, eos.DefaultOptions()).FugacityCoefficients(pure(t, 150, 25000))
	require.NoError(t, err)

	assert.InDelta(t, want[0], got[0], 1e-6)
	assert.InDelta(t, want[0], got[1], 1e-6)
}

// TestKernelModesAgree compares pressure across perturbation kernels.
func TestKernelModesAgree(t *testing.T) {
	t.Parallel()

	ref := methane(t, eos.DefaultOptions())
	opts := eos.DefaultOptions()
	opts.Perturb.Kernel = perturb.KernelFused
	fused := methane(t, opts)

	sp := pure(t, 150, 22000)
	a, err := ref.Pressure(sp)
	require.NoError(t, err)
	b, err := fused.Pressure(sp)
	require.NoError(t, err)
	assert.InDelta(t, a, b, 1e-6*math.Abs(a)+1e-3)
}

type failingAssociator struct{}

func (failingAssociator) Helmholtz(eos.AssocContext) (float64, error) {
	return 0, faults.Convergence("test.assoc", 3, 0.1)
}

// TestAssociation_FailurePropagates never turns a failed solve into zero.
func TestAssociation_FailurePropagates(t *testing.T) {
	t.Parallel()

	opts := eos.DefaultOptions()
	opts.Associator = failingAssociator{}
	ev := methane(t, opts)
	_, err := ev.Pressure(pure(t, 150, 1000))
	var ce *faults.ConvergenceError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "test.assoc", ce.Op)
}

func water(t *testing.T, assoc eos.Associator) *eos.Evaluator {
	t.Helper()
	h2o := groups.Group{
		Name: "H2O", Segments: 1, ShapeFactor: 1, Epsilon: 266.68, Sigma: 3.0063, LambdaR: 17.02, LambdaA: 6,
		Sites: []groups.Site{{Name: "H", Count: 2}, {Name: "e1", Count: 2}},
	}
	tbl, err := groups.NewTable([]groups.Group{h2o}, nil, []groups.Bond{
		{GroupA: "H2O", SiteA: "H", GroupB: "H2O", SiteB: "e1", Epsilon: 1985.4, Kappa: 101.69},
	})
	require.NoError(t, err)
	sys, err := groups.NewSystem(tbl, []groups.Component{{Name: "water", Groups: []groups.GroupCount{{Group: "H2O", Count: 1}}}})
	require.NoError(t, err)
	opts := eos.DefaultOptions()
	opts.Associator = assoc
	ev, err := eos.NewEvaluator(sys, opts)
	require.NoError(t, err)
	return ev
}

// TestContactAssociation checks the sign of the term and the iteration cap.
func TestContactAssociation(t *testing.T) {
	t.Parallel()

	c, err := water(t, nil).Helmholtz(pure(t, 400, 50000))
	require.NoError(t, err)
	assert.Less(t, c.Association, 0.0)

	_, err = water(t, eos.ContactAssociation{MaxIter: 1}).Helmholtz(pure(t, 400, 50000))
	assert.ErrorIs(t, err, faults.ErrConvergence)

	none, err := water(t, eos.NoAssociation{}).Helmholtz(pure(t, 400, 50000))
	require.NoError(t, err)
	assert.Equal(t, 0.0, none.Association)
}
