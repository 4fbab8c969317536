// SPDX-License-Identifier: MIT

package perturb

import "math"

// ckl holds the correlation coefficients of the effective packing fraction:
// c_m(λ) = Σ_n ckl[m][n] / λ^n, for ζx powers m = 1..4.
var ckl = [4][4]float64{
	{0.81096, 1.7888, -37.578, 92.284},
	{1.0205, -19.341, 151.26, -463.50},
	{-1.9057, 22.845, -228.14, 973.92},
	{1.0885, -6.1962, 106.98, -677.64},
}

// phi is the φ_{m,n} table (m = 1..7, n = 0..6) of the χ, a3 and γc
// correlations.
var phi = [7][7]float64{
	{7.5365557, -37.60463, 71.745953, -46.83552, -2.467982, -0.50272, 8.0956883},
	{-359.44, 1825.6, -3168.0, 1884.2, -0.82376, -3.1935, 3.7090},
	{1550.9, -5070.1, 6534.6, -3288.7, -2.7171, 2.0883, 0},
	{-1.19932, 9.063632, -17.9482, 11.34027, 20.52142, -56.6377, 40.53683},
	{-1911.28, 21390.175, -51320.7, 37064.54, 1103.742, -3264.61, 2556.181},
	{9236.9, -129430, 357230, -315530, 1390.2, -4518.2, 4241.6},
	{10, 10, 0.57, -6.7, -8, 0, 0},
}

// coefficients returns c_1..c_4 for exponent λ.
func coefficients(lambda float64) [4]float64 {
	inv := 1 / lambda
	pows := [4]float64{1, inv, inv * inv, inv * inv * inv}
	var c [4]float64
	for m := 0; m < 4; m++ {
		for n := 0; n < 4; n++ {
			c[m] += ckl[m][n] * pows[n]
		}
	}
	return c
}

// F returns f_m(α) = Σ_{n=0..3} φ_{m,n} αⁿ / (1 + Σ_{n=4..6} φ_{m,n} α^{n−3}),
// for m = 1..6.
func F(m int, alpha float64) float64 {
	p := phi[m-1]
	num := p[0] + alpha*(p[1]+alpha*(p[2]+alpha*p[3]))
	den := 1 + alpha*(p[4]+alpha*(p[5]+alpha*p[6]))
	return num / den
}

// Prefactor returns the Mie constant C = λr/(λr−λa)·(λr/λa)^(λa/(λr−λa)).
func Prefactor(lambdaR, lambdaA float64) float64 {
	return lambdaR / (lambdaR - lambdaA) * math.Pow(lambdaR/lambdaA, lambdaA/(lambdaR-lambdaA))
}

// Alpha returns the van der Waals-like constant α = C(1/(λa−3) − 1/(λr−3)).
func Alpha(lambdaR, lambdaA float64) float64 {
	return Prefactor(lambdaR, lambdaA) * (1/(lambdaA-3) - 1/(lambdaR-3))
}
