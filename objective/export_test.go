package objective

// Aggregate exposes the channel reduction to the external tests.
var Aggregate = aggregate
