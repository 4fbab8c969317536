package history_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/saftgamma/fit"
	"github.com/katalvlaran/saftgamma/history"
)

func tempStore(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.NewStore(filepath.Join(t.TempDir(), "fit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func eval(run uuid.UUID, seq int, score float64, x ...float64) fit.Evaluation {
	return fit.Evaluation{
		ID:       uuid.New(),
		RunID:    run,
		Seq:      seq,
		Vector:   x,
		Score:    score,
		Datasets: []float64{score, 0},
		At:       time.Now(),
	}
}

func TestRunRoundTrip(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	run := history.Run{ID: uuid.New(), Method: "NelderMead", Parameters: []string{"epsilon_CH4"}, Datasets: []string{"sat", "vle"}}
	require.NoError(t, s.StartRun(ctx, run))

	got, err := s.Run(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Method, got.Method)
	assert.Equal(t, run.Parameters, got.Parameters)
	assert.Equal(t, run.Datasets, got.Datasets)
	assert.False(t, got.StartedAt.IsZero())

	assert.Error(t, s.StartRun(ctx, run), "duplicate run id")
}

func TestBestSkipsInfinite(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, s.StartRun(ctx, history.Run{ID: id, Method: "NelderMead"}))

	_, err := s.Best(ctx, id)
	assert.ErrorIs(t, err, history.ErrNoEvaluations)

	require.NoError(t, s.Record(ctx, eval(id, 1, math.Inf(1), 150)))
	require.NoError(t, s.Record(ctx, eval(id, 2, 0.25, 152)))
	require.NoError(t, s.Record(ctx, eval(id, 3, 0.5, 155)))

	best, err := s.Best(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, best.Seq)
	assert.Equal(t, 0.25, best.Score)
	assert.Equal(t, []float64{152}, best.Vector)
	assert.Equal(t, []float64{0.25, 0}, best.Datasets)
	assert.Equal(t, id, best.RunID)

	total, failed, err := s.Count(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, failed)
}

func TestRecordRequiresRun(t *testing.T) {
	s := tempStore(t)
	err := s.Record(context.Background(), eval(uuid.New(), 1, 1, 1))
	assert.Error(t, err)
}

// TestRecorderWiring stores the evaluations a driver reports.
func TestRecorderWiring(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, s.StartRun(ctx, history.Run{ID: id, Method: "LBFGS"}))

	var rec fit.Recorder = s
	for i, score := range []float64{3, 1, 2} {
		require.NoError(t, rec.Record(ctx, eval(id, i+1, score, float64(i))))
	}
	best, err := s.Best(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, best.Vector)
}
