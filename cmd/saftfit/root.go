// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/katalvlaran/saftgamma/dataset"
	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/fit"
	"github.com/katalvlaran/saftgamma/groups"
	"github.com/katalvlaran/saftgamma/history"
	"github.com/katalvlaran/saftgamma/objective"
)

var errNoFiniteObjective = errors.New("saftfit: no finite objective found")

type rootFlags struct {
	verbose int
	logPath string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	v := newViper()

	root := &cobra.Command{
		Use:           "saftfit",
		Short:         "Fit and evaluate SAFT-γ-Mie group parameters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().CountVarP(&flags.verbose, "verbose", "v", "verbose level, repeat up to three times")
	root.PersistentFlags().StringVar(&flags.logPath, "log", "", "also write a debug log to this file")

	root.AddCommand(newFitCmd(v, &flags), newEvalCmd(v, &flags))
	return root
}

// app is everything a subcommand needs from a run file.
type app struct {
	log      *zap.Logger
	cfg      runConfig
	input    dataset.Input
	system   *groups.System
	datasets []dataset.Dataset
	scorer   *objective.Evaluator
}

func setup(v *viper.Viper, flags *rootFlags, path string) (*app, func(), error) {
	log, closeLog, err := newLogger(flags.verbose, flags.logPath)
	if err != nil {
		return nil, nil, err
	}
	fail := func(err error) (*app, func(), error) {
		closeLog()
		return nil, nil, err
	}

	cfg, err := loadConfig(v, path)
	if err != nil {
		return fail(err)
	}
	in, err := dataset.LoadFile(path)
	if err != nil {
		return fail(err)
	}
	sys, sets, err := in.Build(log)
	if err != nil {
		return fail(err)
	}

	opts := objective.DefaultOptions()
	opts.Form = cfg.Form
	opts.SkipFailedPoints = cfg.SkipFailed
	opts.EOS.Perturb.Kernel = cfg.Kernel
	opts.Logger = log
	scorer, err := objective.NewEvaluator(opts)
	if err != nil {
		return fail(err)
	}

	log.Info("run file loaded",
		zap.String("path", path),
		zap.Int("groups", sys.NumGroups()),
		zap.Int("components", sys.NumComponents()),
		zap.Int("datasets", len(sets)),
	)
	return &app{log: log, cfg: cfg, input: in, system: sys, datasets: sets, scorer: scorer}, closeLog, nil
}

func newEvalCmd(v *viper.Viper, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <input.yaml>",
		Short: "Score every dataset at the parameters of the run file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := setup(v, flags, args[0])
			if err != nil {
				return err
			}
			defer done()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATASET\tCHANNEL\tSCORE")
			var total float64
			for _, ds := range a.datasets {
				b, err := a.scorer.Breakdown(cmd.Context(), ds, a.system)
				if err != nil {
					return err
				}
				for _, c := range b.Channels {
					fmt.Fprintf(w, "%s\t%s\t%g\n", ds.Name, c.Name, c.Score)
				}
				if b.Err != nil {
					fmt.Fprintf(w, "%s\t-\tfailed: %v\n", ds.Name, b.Err)
				}
				total += b.Total
			}
			fmt.Fprintf(w, "total\t\t%g\n", total)
			return w.Flush()
		},
	}
}

func newFitCmd(v *viper.Viper, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit <input.yaml>",
		Short: "Minimize the objective over fit.parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := setup(v, flags, args[0])
			if err != nil {
				return err
			}
			defer done()
			return runFit(cmd, a)
		},
	}
	cmd.Flags().Int("workers", 0, "concurrent dataset evaluations (0 = all CPUs)")
	cmd.Flags().String("history", "", "SQLite file recording every evaluation")
	cmd.Flags().String("method", "", "optimizer: NelderMead, LBFGS, BFGS, GradientDescent or CG")
	cmd.Flags().String("metrics", "", "write Prometheus metrics to this text file on exit")
	_ = v.BindPFlag("fit.workers", cmd.Flags().Lookup("workers"))
	_ = v.BindPFlag("history.path", cmd.Flags().Lookup("history"))
	_ = v.BindPFlag("fit.method", cmd.Flags().Lookup("method"))
	_ = v.BindPFlag("metrics.path", cmd.Flags().Lookup("metrics"))
	return cmd
}

func runFit(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()
	if len(a.cfg.Parameters) == 0 {
		return faults.Validation("fit.parameters", "no parameters to fit")
	}

	reg := prometheus.NewRegistry()
	metrics, err := fit.NewMetrics(reg)
	if err != nil {
		return err
	}
	opts := fit.Options{
		Workers:   a.cfg.Workers,
		Objective: a.scorer,
		Metrics:   metrics,
		Logger:    a.log,
	}

	var store *history.Store
	if a.cfg.HistoryPath != "" {
		store, err = history.NewStore(a.cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Recorder = store
	}

	d, err := fit.NewDriver(a.system.Table(), a.input.Components, a.datasets, a.cfg.Parameters, opts)
	if err != nil {
		return err
	}
	names := make([]string, len(a.cfg.Parameters))
	for i, b := range a.cfg.Parameters {
		names[i] = b.String()
	}
	if store != nil {
		if err := store.StartRun(ctx, history.Run{ID: d.RunID(), Method: string(a.cfg.Method), Parameters: names, Datasets: d.Datasets()}); err != nil {
			return err
		}
	}

	res, err := d.Minimize(ctx, nil, fit.MinimizeOptions{
		Method:          a.cfg.Method,
		FuncEvaluations: a.cfg.MaxEvaluations,
		MajorIterations: a.cfg.MaxIterations,
	})
	if err != nil {
		a.log.Error("minimize stopped", zap.Error(err))
	}

	best, bestX := d.Best()
	if bestX == nil {
		bestX = d.Initial()
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %s after %d evaluations\n", d.RunID(), res.Status, d.Evaluations())
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMETER\tVALUE")
	for i, n := range names {
		fmt.Fprintf(w, "%s\t%g\n", n, bestX[i])
	}
	fmt.Fprintf(w, "objective\t%g\n", best)
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}

	if a.cfg.MetricsPath != "" {
		if merr := prometheus.WriteToTextfile(a.cfg.MetricsPath, reg); merr != nil {
			return merr
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if math.IsInf(best, 1) {
		return errNoFiniteObjective
	}
	return nil
}
