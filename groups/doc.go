// Package groups holds the group-contribution parameter tables of a
// SAFT-γ-Mie model and the mixtures built on top of them.
//
// A Group is one bead type of the heteronuclear model (CH3, CH2, H2O, ...)
// described by its Mie potential. A Component is a molecule written as
// multiplicities of groups. A Table owns the groups, the unlike (k,l)
// overrides and the pairwise matrices produced by the combining rules; it is
// immutable once built, and every parameter change produces a fresh Table
// through With or Apply. A System binds components to one Table and answers
// the segment-level questions (segment fractions, Cmol2seg, per-molecule
// group weights) that the perturbation and chain terms need.
//
// Usage:
//
//	tbl, err := groups.NewTable([]groups.Group{ch4}, nil)
//	sys, err := groups.NewSystem(tbl, []groups.Component{{Name: "methane", Groups: []groups.GroupCount{{Group: "CH4", Count: 1}}}})
//	mix, err := groups.NewMixture([]float64{1})
//
// Concurrency: Tables and Systems are read-only after construction and safe
// to share between goroutines.
package groups
