// SPDX-License-Identifier: MIT
package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/saftgamma/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewDense_InvalidDimensions rejects non-positive shapes.
func TestNewDense_InvalidDimensions(t *testing.T) {
	t.Parallel()

	for _, shape := range [][2]int{{0, 1}, {1, 0}, {-1, 2}} {
		_, err := matrix.NewDense(shape[0], shape[1])
		assert.ErrorIs(t, err, matrix.ErrInvalidDimensions, "shape %v", shape)
	}
}

// TestDense_AtSetBounds covers safe accessors and the finite policy.
func TestDense_AtSetBounds(t *testing.T) {
	t.Parallel()

	m, err := matrix.NewDense(2, 3)
	require.NoError(t, err)

	require.NoError(t, m.Set(1, 2, 4.5))
	v, err := m.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	_, err = m.At(2, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, -1, 1), matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, 0, math.NaN()), matrix.ErrNaNInf)
	assert.ErrorIs(t, m.Set(0, 0, math.Inf(1)), matrix.ErrNaNInf)
}

// TestNewSymmetric_Mirrors checks the pair function is mirrored and called once per pair.
func TestNewSymmetric_Mirrors(t *testing.T) {
	t.Parallel()

	calls := 0
	m, err := matrix.NewSymmetric(3, func(k, l int) float64 {
		calls++
		assert.LessOrEqual(t, k, l)
		return float64(10*k + l)
	})
	require.NoError(t, err)
	assert.Equal(t, 6, calls)
	require.NoError(t, matrix.ValidateSymmetric(m, 0))
	v, _ := m.At(2, 0)
	assert.Equal(t, 2.0, v)
}

// TestDense_MapDoesNotMutate ensures Map and Combine return fresh matrices.
func TestDense_MapDoesNotMutate(t *testing.T) {
	t.Parallel()

	a, err := matrix.FromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	b, err := a.Map(func(_, _ int, v float64) float64 { return v * v })
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2}, a.Row(0))
	assert.Equal(t, []float64{9, 16}, b.Row(1))

	c, err := matrix.Combine(a, b, func(x, y float64) float64 { return x + y })
	require.NoError(t, err)
	assert.Equal(t, 2+6+12+20.0, c.Sum())

	_, err = a.Map(func(_, _ int, v float64) float64 { return math.Log(v - 4) })
	assert.ErrorIs(t, err, matrix.ErrNaNInf)
}

// TestFromRows_Ragged rejects ragged input.
func TestFromRows_Ragged(t *testing.T) {
	t.Parallel()

	_, err := matrix.FromRows([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.FromRows(nil)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

// TestDense_QuadForm checks the composition average Σ x_k x_l m_kl.
func TestDense_QuadForm(t *testing.T) {
	t.Parallel()

	m, err := matrix.FromRows([][]float64{{1, 2}, {2, 5}})
	require.NoError(t, err)

	got, err := m.QuadForm([]float64{0.25, 0.75})
	require.NoError(t, err)
	assert.InDelta(t, 0.0625*1+2*0.1875*2+0.5625*5, got, 1e-15)

	_, err = m.QuadForm([]float64{1})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	assert.Equal(t, []float64{1, 5}, m.Diag())
}
