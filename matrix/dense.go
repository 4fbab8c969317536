// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a flat row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Keep determinism (fixed loop orders, no map iteration).
//   - Enforce the numeric policy (rejection of NaN/Inf) on Set.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone/Map: O(r*c); Row: O(1).

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt   = "At"
	ctxSet  = "Set"
	ctxFrom = "FromRows"
	ctxMap  = "Map"
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
type Dense struct {
	r, c int
	data []float64
}

var _ fmt.Stringer = (*Dense)(nil)

// NewDense creates an r×c zero matrix using row-major storage.
// MAIN DESCRIPTION:
//   - Public constructor with strict shape validation.
//
// Errors:
//   - ErrInvalidDimensions when rows<=0 or cols<=0.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewSquare is a shorthand for NewDense(n, n).
func NewSquare(n int) (*Dense, error) { return NewDense(n, n) }

// FromRows builds a Dense from a rectangular [][]float64 (deep copy).
//
// Errors:
//   - ErrInvalidDimensions on empty input.
//   - ErrDimensionMismatch when rows have different lengths.
//   - ErrNaNInf when a value is not finite.
func FromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	m, err := NewDense(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != m.c {
			return nil, denseErrorf(ctxFrom, i, len(row), ErrDimensionMismatch)
		}
		for j, v := range row {
			if err = m.Set(i, j, v); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

// NewSymmetric builds an n×n matrix from a pair function.
// MAIN DESCRIPTION:
//   - Evaluate fn(k,l) once per unordered pair k<=l and mirror it into (l,k).
//
// Behavior highlights:
//   - Combining rules are symmetric by construction; fn is never asked for k>l.
//   - Every value passes the finite-value policy.
//
// Errors:
//   - ErrInvalidDimensions when n<=0; ErrNaNInf for non-finite values.
//
// Complexity:
//   - Time O(n²/2) fn calls, Space O(n²).
func NewSymmetric(n int, fn func(k, l int) float64) (*Dense, error) {
	m, err := NewSquare(n)
	if err != nil {
		return nil, err
	}
	for k := 0; k < n; k++ {
		for l := k; l < n; l++ {
			v := fn(k, l)
			if err = m.Set(k, l, v); err != nil {
				return nil, err
			}
			m.data[l*n+k] = v
		}
	}

	return m, nil
}

// Rows returns the row count.
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count.
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call.
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// indexOf computes the row-major offset or returns ErrOutOfRange.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err)
	}

	return m.data[off], nil
}

// Set stores v at (row, col) or returns an error (bounds or numeric policy).
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v

	return nil
}

// Row returns row i as a slice aliasing the backing buffer.
// Hot numeric loops index through Row instead of At; callers must treat the
// slice as read-only once the matrix is shared. Panics on a bad index like
// any slice expression.
func (m *Dense) Row(i int) []float64 {
	return m.data[i*m.c : (i+1)*m.c]
}

// Clone returns a deep copy.
func (m *Dense) Clone() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp}
}

// Map returns a new matrix with out(i,j) = fn(i, j, m(i,j)).
// The receiver is left untouched. Non-finite results are rejected with
// ErrNaNInf, mirroring Set.
//
// Complexity: O(r*c).
func (m *Dense) Map(fn func(i, j int, v float64) float64) (*Dense, error) {
	if m == nil {
		return nil, ErrNilMatrix
	}
	out := m.Clone()
	for i := 0; i < m.r; i++ {
		for j := 0; j < m.c; j++ {
			v := fn(i, j, m.data[i*m.c+j])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, denseErrorf(ctxMap, i, j, ErrNaNInf)
			}
			out.data[i*m.c+j] = v
		}
	}

	return out, nil
}

// Combine returns out(i,j) = fn(a(i,j), b(i,j)) for two same-shaped matrices.
func Combine(a, b *Dense, fn func(x, y float64) float64) (*Dense, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return nil, err
	}

	return a.Map(func(i, j int, v float64) float64 { return fn(v, b.data[i*b.c+j]) })
}

// Sum returns the sum of all entries.
func (m *Dense) Sum() float64 {
	var s float64
	for _, v := range m.data {
		s += v
	}

	return s
}

// QuadForm returns Σ_k Σ_l x_k x_l m(k,l), the composition average used for
// every mixed (k,l) quantity.
//
// Errors:
//   - ErrDimensionMismatch when m is not square of order len(x).
func (m *Dense) QuadForm(x []float64) (float64, error) {
	if err := ValidateSquare(m); err != nil {
		return 0, err
	}
	if err := ValidateVecLen(x, m.r); err != nil {
		return 0, err
	}
	var s float64
	for k := 0; k < m.r; k++ {
		row := m.data[k*m.c : (k+1)*m.c]
		for l, v := range row {
			s += x[k] * x[l] * v
		}
	}

	return s, nil
}

// Diag returns a copy of the main diagonal.
func (m *Dense) Diag() []float64 {
	n := m.r
	if m.c < n {
		n = m.c
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = m.data[i*m.c+i]
	}

	return out
}

// String renders matrix rows as bracketed lines for diagnostics.
func (m *Dense) String() string {
	var sb strings.Builder
	for i := 0; i < m.r; i++ {
		sb.WriteString("[")
		for j := 0; j < m.c; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%g", m.data[i*m.c+j])
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}

// FromFlat builds a rows×cols matrix from a row-major buffer (deep copy).
//
// Errors:
//   - ErrInvalidDimensions for non-positive shapes.
//   - ErrDimensionMismatch when len(data) != rows*cols.
//   - ErrNaNInf when a value is not finite.
func FromFlat(rows, cols int, data []float64) (*Dense, error) {
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, denseErrorf("FromFlat", rows, cols, ErrDimensionMismatch)
	}
	for off, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, denseErrorf("FromFlat", off/cols, off%cols, ErrNaNInf)
		}
	}
	copy(m.data, data)

	return m, nil
}

// Flat returns a row-major copy of the entries.
func (m *Dense) Flat() []float64 {
	return append([]float64(nil), m.data...)
}
