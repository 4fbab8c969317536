// SPDX-License-Identifier: MIT

package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// consoleLevel maps the -v count: 0 error, 1 warn, 2 info, 3+ debug.
func consoleLevel(verbose int) zapcore.Level {
	switch {
	case verbose <= 0:
		return zapcore.ErrorLevel
	case verbose == 1:
		return zapcore.WarnLevel
	case verbose == 2:
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

// newLogger writes to stderr at the verbosity level and, when logPath is
// set, everything at Debug as JSON to that file.
func newLogger(verbose int, logPath string) (*zap.Logger, func(), error) {
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr),
			consoleLevel(verbose),
		),
	}
	closeFn := func() {}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(f),
			zapcore.DebugLevel,
		))
		closeFn = func() { f.Close() }
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return log, func() {
		_ = log.Sync()
		closeFn()
	}, nil
}
