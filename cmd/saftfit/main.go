// Command saftfit fits SAFT-γ-Mie group parameters to experimental phase
// equilibrium data, or evaluates the objective at the parameters of a run
// file.
//
//	saftfit fit  input.yaml [-v...] [--log file] [--workers n] [--history fit.db]
//	saftfit eval input.yaml [-v...]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
