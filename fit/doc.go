// Package fit turns a set of datasets and parameter bindings into a scalar
// objective f(vec) for an external optimizer.
//
// Each call snapshots the base parameter table with the vector applied,
// scores every dataset concurrently (bounded by Options.Workers) and sums
// the dataset scores in dataset order, so the result does not depend on
// scheduling. A dataset that cannot be predicted contributes +Inf; only a
// malformed vector or a cancelled context returns an error.
//
// Minimize drives gonum's optimize package over the objective. Every
// evaluation can be observed through Metrics (Prometheus) and persisted
// through a Recorder such as history.Store.
package fit
