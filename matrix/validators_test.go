// SPDX-License-Identifier: MIT
package matrix_test

import (
	"errors"
	"math"
	"testing"

	"github.com/katalvlaran/saftgamma/matrix"
	"github.com/stretchr/testify/require"
)

// TestValidators covers nil inputs, shape and value checks.
func TestValidators(t *testing.T) {
	t.Parallel()

	sq := func(n int) *matrix.Dense {
		m, err := matrix.NewSquare(n)
		require.NoError(t, err)
		return m
	}
	rect, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	asym, err := matrix.FromRows([][]float64{{0, 1}, {2, 0}})
	require.NoError(t, err)

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{"square nil", func() error { return matrix.ValidateSquare(nil) }, matrix.ErrNilMatrix},
		{"square ok", func() error { return matrix.ValidateSquare(sq(2)) }, nil},
		{"square rect", func() error { return matrix.ValidateSquare(rect) }, matrix.ErrDimensionMismatch},
		{"same shape", func() error { return matrix.ValidateSameShape(sq(2), rect) }, matrix.ErrDimensionMismatch},
		{"veclen nil", func() error { return matrix.ValidateVecLen(nil, 2) }, matrix.ErrNilMatrix},
		{"veclen bad", func() error { return matrix.ValidateVecLen([]float64{1}, 2) }, matrix.ErrDimensionMismatch},
		{"symmetric bad", func() error { return matrix.ValidateSymmetric(asym, 1e-9) }, matrix.ErrAsymmetry},
		{"symmetric loose", func() error { return matrix.ValidateSymmetric(asym, 2) }, nil},
		{"symmetric nan tol", func() error { return matrix.ValidateSymmetric(asym, math.NaN()) }, matrix.ErrNaNInf},
		{"finite ok", func() error { return matrix.ValidateFinite(asym) }, nil},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Truef(t, errors.Is(err, tc.wantErr), "expected errors.Is(%v, %v)", err, tc.wantErr)
		})
	}
}

// TestAllClose covers tolerance semantics.
func TestAllClose(t *testing.T) {
	t.Parallel()

	a, _ := matrix.FromRows([][]float64{{1, 2}})
	b, _ := matrix.FromRows([][]float64{{1 + 1e-10, 2}})
	ok, err := matrix.AllClose(a, b, 0, 1e-9)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = matrix.AllClose(a, b, 0, 1e-12)
	require.NoError(t, err)
	require.False(t, ok)
}
