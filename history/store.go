// SPDX-License-Identifier: MIT

// Package history persists fitting runs and every objective evaluation in a
// SQLite database so a long fit can be inspected or resumed from its best
// point.
package history

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/katalvlaran/saftgamma/fit"
)

// ErrNoEvaluations is returned by Best when a run has no finite score.
var ErrNoEvaluations = errors.New("history: no finite evaluations")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	method      TEXT NOT NULL,
	parameters  TEXT NOT NULL,
	datasets    TEXT NOT NULL,
	started_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluations (
	eval_id     TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	vector      BLOB NOT NULL,
	score       REAL,
	datasets    BLOB NOT NULL,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS evaluations_run_score ON evaluations(run_id, score);
`

// Run describes one fitting run.
type Run struct {
	ID         uuid.UUID
	Method     string
	Parameters []string // binding names in vector order
	Datasets   []string // dataset names in score order
	StartedAt  time.Time
}

// Store is a SQLite-backed fit.Recorder.
type Store struct {
	db *sql.DB
}

var _ fit.Recorder = (*Store)(nil)

// NewStore opens the database at path and runs migrations. Pragmas are set
// through the DSN so every pooled connection enforces foreign keys.
func NewStore(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one writer; evaluations arrive from a single driver
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartRun registers r. Evaluations of an unknown run are rejected.
func (s *Store) StartRun(ctx context.Context, r Run) error {
	params, err := json.Marshal(r.Parameters)
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}
	sets, err := json.Marshal(r.Datasets)
	if err != nil {
		return fmt.Errorf("marshal datasets: %w", err)
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, method, parameters, datasets, started_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID.String(), r.Method, string(params), string(sets), r.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Run reads a registered run.
func (s *Store) Run(ctx context.Context, id uuid.UUID) (Run, error) {
	var (
		r                Run
		params, sets, at string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT method, parameters, datasets, started_at FROM runs WHERE run_id = ?`, id.String(),
	).Scan(&r.Method, &params, &sets, &at)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	r.ID = id
	if err := json.Unmarshal([]byte(params), &r.Parameters); err != nil {
		return Run{}, fmt.Errorf("unmarshal parameters: %w", err)
	}
	if err := json.Unmarshal([]byte(sets), &r.Datasets); err != nil {
		return Run{}, fmt.Errorf("unmarshal datasets: %w", err)
	}
	r.StartedAt, _ = time.Parse(time.RFC3339Nano, at)
	return r, nil
}

// Record stores one evaluation. An infinite score is stored as NULL.
func (s *Store) Record(ctx context.Context, e fit.Evaluation) error {
	var score sql.NullFloat64
	if !math.IsInf(e.Score, 0) && !math.IsNaN(e.Score) {
		score = sql.NullFloat64{Float64: e.Score, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO evaluations (eval_id, run_id, seq, vector, score, datasets, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.RunID.String(), e.Seq, encodeVector(e.Vector), score,
		encodeVector(e.Datasets), e.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert evaluation %d: %w", e.Seq, err)
	}
	return nil
}

// Best returns the lowest finite evaluation of a run.
func (s *Store) Best(ctx context.Context, runID uuid.UUID) (fit.Evaluation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT eval_id, seq, vector, score, datasets, created_at FROM evaluations
		 WHERE run_id = ? AND score IS NOT NULL
		 ORDER BY score ASC, seq ASC LIMIT 1`, runID.String())

	var (
		e         fit.Evaluation
		id, at    string
		vec, sets []byte
		score     sql.NullFloat64
	)
	if err := row.Scan(&id, &e.Seq, &vec, &score, &sets, &at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fit.Evaluation{}, ErrNoEvaluations
		}
		return fit.Evaluation{}, fmt.Errorf("best of %s: %w", runID, err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fit.Evaluation{}, fmt.Errorf("eval id: %w", err)
	}
	e.ID = parsed
	e.RunID = runID
	e.Vector = decodeVector(vec)
	e.Score = score.Float64
	e.Datasets = decodeVector(sets)
	e.At, _ = time.Parse(time.RFC3339Nano, at)
	return e, nil
}

// Count returns the total and the infinite evaluation counts of a run.
func (s *Store) Count(ctx context.Context, runID uuid.UUID) (total, failed int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) - COUNT(score) FROM evaluations WHERE run_id = ?`, runID.String(),
	).Scan(&total, &failed)
	if err != nil {
		return 0, 0, fmt.Errorf("count %s: %w", runID, err)
	}
	return total, failed, nil
}

func encodeVector(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}
