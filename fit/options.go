// SPDX-License-Identifier: MIT

package fit

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/katalvlaran/saftgamma/objective"
)

// Options configures a Driver.
type Options struct {
	// Workers bounds concurrent dataset evaluations; 0 means GOMAXPROCS.
	Workers int

	// Objective scores one dataset; nil uses objective.DefaultOptions.
	Objective *objective.Evaluator

	// Metrics is optional.
	Metrics *Metrics

	// Recorder is optional; failures to record are logged, not returned.
	Recorder Recorder

	Logger *zap.Logger
}

// DefaultOptions uses every CPU and a no-op logger.
func DefaultOptions() Options {
	return Options{Workers: runtime.GOMAXPROCS(0), Logger: zap.NewNop()}
}

func (o Options) withDefaults() (Options, error) {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Objective == nil {
		opts := objective.DefaultOptions()
		opts.Logger = o.Logger
		ev, err := objective.NewEvaluator(opts)
		if err != nil {
			return o, err
		}
		o.Objective = ev
	}
	return o, nil
}
