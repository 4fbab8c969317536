// Package saftgamma is a SAFT-γ-Mie equation of state engine with a
// phase-equilibrium solver and a parameter-fitting objective.
//
// 🚀 What is saftgamma?
//
//	A pure-Go toolkit that takes group-contribution Mie parameters and
//	experimental vapor–liquid data and turns them into a scalar an optimizer
//	can minimize:
//		• Group tables: like/unlike Mie parameters, combining rules, bonds
//		• Perturbation terms: a1s, B, a1, a2, a3 and the chain corrections
//		• Helmholtz free energy: ideal, hard sphere, monomer, chain, association
//		• Densities: liquid and vapor roots of P(ρ) = P_target
//		• Phase equilibrium: bubble and dew pressures, saturation points
//		• Fitting: dataset scores, parallel objective, run history
//
// Everything is organized as flat subpackages, bottom-up:
//
//	faults/     shared error kinds: domain, convergence, validation
//	matrix/     small dense matrices for pairwise group quantities
//	groups/     parameter tables, parameter bindings, mixtures, components
//	perturb/    closed-form Mie perturbation terms
//	eos/        Helmholtz contributions, pressure, fugacity coefficients
//	density/    density roots and spinodal bounds
//	phase/      bubble/dew state machine and pure saturation
//	dataset/    YAML run files and validated experimental datasets
//	objective/  per-dataset scores with the NaN/∞ policy
//	fit/        parallel objective, metrics, gonum optimizers
//	history/    SQLite record of every evaluation
//	cmd/saftfit  command line front end
//
// Quick example (methane, one group):
//
//	tbl, _ := groups.NewTable([]groups.Group{ch4}, nil, nil)
//	sys, _ := groups.NewSystem(tbl, []groups.Component{methane})
//	ev, _ := eos.NewEvaluator(sys, eos.DefaultOptions())
//	dens, _ := density.NewSolver(ev, density.DefaultOptions())
//	ps, _ := phase.NewSolver(dens, phase.DefaultOptions())
//	sat, _ := ps.SaturationPressure(150, 0) // ≈ 1 MPa
//
//	go install github.com/katalvlaran/saftgamma/cmd/saftfit@latest
package saftgamma
