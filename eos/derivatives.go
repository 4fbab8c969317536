// SPDX-License-Identifier: MIT

package eos

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/saftgamma/faults"
)

// ResidualHelmholtz returns a_res = A_res/(NkT) at sp.
func (e *Evaluator) ResidualHelmholtz(sp StatePoint) (float64, error) {
	if err := e.check(sp); err != nil {
		return 0, err
	}
	tt, err := e.atTemperature(sp.T)
	if err != nil {
		return 0, err
	}
	c, err := e.residual(tt, sp.Rho, sp.X.X())
	if err != nil {
		return 0, err
	}
	return c.Residual(), nil
}

// densityDerivative returns ∂a_res/∂ρ by a central difference.
func (e *Evaluator) densityDerivative(tt *thermo, rho float64, x []float64) (float64, error) {
	var ferr error
	f := func(r float64) float64 {
		c, err := e.residual(tt, r, x)
		if err != nil {
			if ferr == nil {
				ferr = err
			}
			return math.NaN()
		}
		return c.Residual()
	}
	v := fd.Derivative(f, rho, &fd.Settings{Formula: fd.Central, Step: e.opts.DerivativeStep * rho})
	if ferr != nil {
		return 0, ferr
	}
	return v, nil
}

// Pressure returns P = ρRT(1 + ρ ∂a_res/∂ρ) [Pa].
func (e *Evaluator) Pressure(sp StatePoint) (float64, error) {
	if err := e.check(sp); err != nil {
		return 0, err
	}
	if sp.Rho == 0 {
		return 0, nil
	}
	tt, err := e.atTemperature(sp.T)
	if err != nil {
		return 0, err
	}
	return e.pressure(tt, sp.Rho, sp.X.X())
}

func (e *Evaluator) pressure(tt *thermo, rho float64, x []float64) (float64, error) {
	da, err := e.densityDerivative(tt, rho, x)
	if err != nil {
		return 0, err
	}
	return rho * GasConstant * tt.T * (1 + rho*da), nil
}

// Compressibility returns Z = P/(ρRT).
func (e *Evaluator) Compressibility(sp StatePoint) (float64, error) {
	if err := e.check(sp); err != nil {
		return 0, err
	}
	if sp.Rho == 0 {
		return 1, nil
	}
	tt, err := e.atTemperature(sp.T)
	if err != nil {
		return 0, err
	}
	da, err := e.densityDerivative(tt, sp.Rho, sp.X.X())
	if err != nil {
		return 0, err
	}
	return 1 + sp.Rho*da, nil
}

// ResidualChemicalPotential returns μ_res,i/kT = ∂(N a_res)/∂N_i at fixed
// T and V, differentiated on mole numbers around N = 1.
func (e *Evaluator) ResidualChemicalPotential(sp StatePoint) ([]float64, error) {
	if err := e.check(sp); err != nil {
		return nil, err
	}
	tt, err := e.atTemperature(sp.T)
	if err != nil {
		return nil, err
	}
	return e.chemicalPotential(tt, sp.Rho, sp.X.X())
}

func (e *Evaluator) chemicalPotential(tt *thermo, rho float64, x []float64) ([]float64, error) {
	if rho == 0 {
		return make([]float64, len(x)), nil
	}
	var ferr error
	f := func(n []float64) float64 {
		total := floats.Sum(n)
		xn := make([]float64, len(n))
		for i, v := range n {
			xn[i] = v / total
		}
		c, err := e.residual(tt, rho*total, xn)
		if err != nil {
			if ferr == nil {
				ferr = err
			}
			return math.NaN()
		}
		return total * c.Residual()
	}
	mu := fd.Gradient(nil, f, x, &fd.Settings{Formula: fd.Central, Step: e.opts.DerivativeStep})
	if ferr != nil {
		return nil, ferr
	}
	return mu, nil
}

// FugacityCoefficients returns ln φ_i = μ_res,i/kT − ln Z.
//
// Errors: DomainError when Z ≤ 0 (no mechanically meaningful phase at sp).
func (e *Evaluator) FugacityCoefficients(sp StatePoint) ([]float64, error) {
	if err := e.check(sp); err != nil {
		return nil, err
	}
	tt, err := e.atTemperature(sp.T)
	if err != nil {
		return nil, err
	}
	x := sp.X.X()
	z := 1.0
	if sp.Rho > 0 {
		da, err := e.densityDerivative(tt, sp.Rho, x)
		if err != nil {
			return nil, err
		}
		z = 1 + sp.Rho*da
	}
	if !(z > 0) {
		return nil, faults.Domain("eos.FugacityCoefficients", "Z", z)
	}
	mu, err := e.chemicalPotential(tt, sp.Rho, x)
	if err != nil {
		return nil, err
	}
	lnZ := math.Log(z)
	for i := range mu {
		mu[i] -= lnZ
	}
	e.log.Debug("fugacity coefficients",
		zap.Float64("T", sp.T), zap.Float64("rho", sp.Rho), zap.Float64("Z", z), zap.Float64s("lnphi", mu))
	return mu, nil
}
