// Package phase solves vapor–liquid equilibrium at fixed temperature.
//
// BubblePressure (phase_xiT) knows the liquid composition and finds the
// vapor composition and pressure; DewPressure (phase_yiT) is the mirror
// case. Both run one state machine:
//
//	INIT → DENSITY_SOLVE → FUGACITY_CHECK → CONVERGED
//	                        ↓
//	              COMPOSITION_UPDATE → DENSITY_SOLVE
//	(iteration cap or density failure) → FAILED
//
// Compositions follow K_i = φ_L,i/φ_V,i by successive substitution. Once the
// unknown composition settles at the current pressure, the pressure moves by
// P ← P·Σx_iK_i (bubble) or P ← P/Σ(y_i/K_i) (dew), kept inside the spinodal
// bounds of the known phase.
//
// SaturationPressure is an independent route for a pure component: Brent's
// method on ln φ_L − ln φ_V between the spinodal pressures.
package phase
