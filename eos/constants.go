// SPDX-License-Identifier: MIT

package eos

const (
	// Avogadro is N_A [1/mol].
	Avogadro = 6.02214076e23
	// Boltzmann is k_B [J/K].
	Boltzmann = 1.380649e-23
	// GasConstant is R = N_A k_B [J/(mol K)].
	GasConstant = Avogadro * Boltzmann
)
