package density

import (
	"math"
	"testing"

	"github.com/katalvlaran/saftgamma/faults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrent(t *testing.T) {
	t.Parallel()

	f := func(x float64) (float64, error) { return math.Cos(x) - x, nil }
	fa, _ := f(0)
	fb, _ := f(1)
	x, err := brent(f, 0, 1, fa, fb, 1e-14, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.7390851332151607, x, 1e-12)

	_, err = brent(f, 0, 0.5, fa, 1, 1e-14, 100)
	assert.ErrorIs(t, err, faults.ErrConvergence, "same sign")

	_, err = brent(f, 0, 1, fa, fb, 1e-300, 2)
	assert.ErrorIs(t, err, faults.ErrConvergence, "iteration cap")
}
