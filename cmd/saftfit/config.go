// SPDX-License-Identifier: MIT

package main

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/fit"
	"github.com/katalvlaran/saftgamma/groups"
	"github.com/katalvlaran/saftgamma/objective"
	"github.com/katalvlaran/saftgamma/perturb"
)

// runConfig is the non-model part of a run file.
type runConfig struct {
	Parameters     []groups.Binding
	Method         fit.Method
	MaxEvaluations int
	MaxIterations  int
	Workers        int
	Form           objective.Form
	SkipFailed     bool
	Kernel         perturb.KernelMode
	HistoryPath    string
	MetricsPath    string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("SAFTFIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := objective.DefaultForm()
	v.SetDefault("fit.method", string(fit.NelderMead))
	v.SetDefault("fit.max_evaluations", 0)
	v.SetDefault("fit.max_iterations", 0)
	v.SetDefault("fit.workers", 0)
	v.SetDefault("fit.objective.method", def.Method.String())
	v.SetDefault("fit.objective.nan_ratio", def.NaNRatio)
	v.SetDefault("fit.objective.nan_number", def.NaNNumber)
	v.SetDefault("fit.objective.skip_failed_points", false)
	v.SetDefault("kernel.compiled", false)
	v.SetDefault("history.path", "")
	v.SetDefault("metrics.path", "")
	return v
}

// loadConfig reads path into v and decodes the fit section.
func loadConfig(v *viper.Viper, path string) (runConfig, error) {
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return runConfig{}, err
	}

	method, err := objective.ParseMethod(v.GetString("fit.objective.method"))
	if err != nil {
		return runConfig{}, err
	}
	cfg := runConfig{
		Method:         fit.Method(v.GetString("fit.method")),
		MaxEvaluations: v.GetInt("fit.max_evaluations"),
		MaxIterations:  v.GetInt("fit.max_iterations"),
		Workers:        v.GetInt("fit.workers"),
		Form: objective.Form{
			Method:    method,
			NaNRatio:  v.GetFloat64("fit.objective.nan_ratio"),
			NaNNumber: v.GetInt("fit.objective.nan_number"),
		},
		SkipFailed:  v.GetBool("fit.objective.skip_failed_points"),
		HistoryPath: v.GetString("history.path"),
		MetricsPath: v.GetString("metrics.path"),
	}
	if v.GetBool("kernel.compiled") {
		cfg.Kernel = perturb.KernelFused
	}
	for _, name := range v.GetStringSlice("fit.parameters") {
		b, err := groups.ParseBinding(name)
		if err != nil {
			return runConfig{}, err
		}
		cfg.Parameters = append(cfg.Parameters, b)
	}
	if err := cfg.Form.Validate(); err != nil {
		return runConfig{}, err
	}
	if cfg.MaxEvaluations < 0 || cfg.MaxIterations < 0 || cfg.Workers < 0 {
		return runConfig{}, faults.Validation("fit", "limits must be non-negative")
	}
	return cfg, nil
}
