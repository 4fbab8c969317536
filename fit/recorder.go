// SPDX-License-Identifier: MIT

package fit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Evaluation is one objective call.
type Evaluation struct {
	ID       uuid.UUID
	RunID    uuid.UUID
	Seq      int       // 1-based call number within the run
	Vector   []float64 // parameter values in binding order
	Score    float64
	Datasets []float64 // per-dataset scores in dataset order
	At       time.Time
}

// Recorder persists evaluations.
type Recorder interface {
	Record(ctx context.Context, e Evaluation) error
}
