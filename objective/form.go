// SPDX-License-Identifier: MIT

package objective

import (
	"math"

	"github.com/katalvlaran/saftgamma/faults"
)

// Method selects the residual reduction of one property channel.
type Method int

// enumeration of Method
const (
	AverageSquaredDeviation Method = iota // Σ w·d² / n
	SumSquaredDeviation                   // Σ w·d²
	SumDeviation                          // Σ w·|d|
)

var methodNames = map[Method]string{
	AverageSquaredDeviation: "average-squared-deviation",
	SumSquaredDeviation:     "sum-squared-deviation",
	SumDeviation:            "sum-deviation",
}

func (m Method) String() string { return methodNames[m] }

// ParseMethod reads a method name; "" selects the default.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return AverageSquaredDeviation, nil
	}
	for m, name := range methodNames {
		if name == s {
			return m, nil
		}
	}
	return 0, faults.Validation("objective.method", "unknown method %q", s)
}

// Form reduces predicted and measured values of one channel to a score.
//
// The deviation of a point is d = (pred−exp)/exp, or pred−exp when exp is
// zero. NaN predictions are dropped; when more than NaNNumber points or a
// fraction above NaNRatio of the points are NaN the channel is NaN.
type Form struct {
	Method    Method
	NaNRatio  float64
	NaNNumber int
}

// DefaultForm is the average squared relative deviation tolerating up to
// 10 NaN points and at most 10% of the channel.
func DefaultForm() Form {
	return Form{Method: AverageSquaredDeviation, NaNRatio: 0.1, NaNNumber: 10}
}

// Validate checks the NaN thresholds.
func (f Form) Validate() error {
	if _, ok := methodNames[f.Method]; !ok {
		return faults.Validation("objective.method", "unknown method %d", int(f.Method))
	}
	if !(f.NaNRatio >= 0 && f.NaNRatio <= 1) || f.NaNNumber < 0 {
		return faults.Validation("objective.nan", "ratio must be in [0,1] and number >= 0")
	}
	return nil
}

// Evaluate scores pred against exp with per-point weights w.
// All three slices have the same length.
func (f Form) Evaluate(pred, exp, w []float64) float64 {
	n := len(pred)
	if n == 0 {
		return math.NaN()
	}

	var (
		sum   float64
		valid int
	)
	for i := 0; i < n; i++ {
		if math.IsNaN(pred[i]) {
			continue
		}
		d := pred[i] - exp[i]
		if exp[i] != 0 {
			d /= exp[i]
		}
		switch f.Method {
		case SumDeviation:
			sum += w[i] * math.Abs(d)
		default:
			sum += w[i] * d * d
		}
		valid++
	}

	missing := n - valid
	if valid == 0 || missing > f.NaNNumber || float64(missing)/float64(n) > f.NaNRatio {
		return math.NaN()
	}
	if f.Method == AverageSquaredDeviation {
		return sum / float64(valid)
	}
	return sum
}
