// SPDX-License-Identifier: MIT

package density

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/katalvlaran/saftgamma/faults"
)

// Options configures the scan and the root refinement.
type Options struct {
	MinRhoFrac         float64 // ρ_min/ρ_max
	RhoInc             float64 // volume step divisor
	VSpaceMax          float64 // largest volume step [m³/mol]
	MaxPackingFraction float64 // ζ3 at ρ_max
	Tol                float64 // relative root tolerance on ρ
	MaxIter            int     // Brent iteration cap
	MaxScanPoints      int     // scan cap; the remainder becomes one bracket
	Logger             *zap.Logger
}

// DefaultOptions mirrors the documented density_dict defaults.
func DefaultOptions() Options {
	return Options{
		MinRhoFrac:         1.0 / 300000,
		RhoInc:             10,
		VSpaceMax:          1e-4,
		MaxPackingFraction: math.Pi / (3 * math.Sqrt2),
		Tol:                1e-10,
		MaxIter:            200,
		MaxScanPoints:      20000,
		Logger:             zap.NewNop(),
	}
}

// FromDict overlays a density_dict on the defaults. Keys: minrhofrac,
// rhoinc, vspacemax. Unknown keys are rejected.
func FromDict(d map[string]float64) (Options, error) {
	o := DefaultOptions()
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := d[k]
		switch k {
		case "minrhofrac":
			o.MinRhoFrac = v
		case "rhoinc":
			o.RhoInc = v
		case "vspacemax":
			o.VSpaceMax = v
		default:
			return o, faults.Validation("density_dict", "unknown option %q", k)
		}
	}
	return o, o.Validate()
}

// Validate checks ranges.
func (o Options) Validate() error {
	switch {
	case !(o.MinRhoFrac > 0 && o.MinRhoFrac < 1):
		return faults.Validation("density_dict.minrhofrac", "must be in (0,1), got %g", o.MinRhoFrac)
	case !(o.RhoInc > 1) || math.IsInf(o.RhoInc, 0):
		return faults.Validation("density_dict.rhoinc", "must be > 1, got %g", o.RhoInc)
	case !(o.VSpaceMax > 0) || math.IsInf(o.VSpaceMax, 0):
		return faults.Validation("density_dict.vspacemax", "must be > 0, got %g", o.VSpaceMax)
	case !(o.MaxPackingFraction > 0 && o.MaxPackingFraction < 1):
		return faults.Validation("density.max_packing_fraction", "must be in (0,1), got %g", o.MaxPackingFraction)
	case !(o.Tol > 0):
		return faults.Validation("density.tol", "must be > 0, got %g", o.Tol)
	case o.MaxIter < 1 || o.MaxScanPoints < 2:
		return faults.Validation("density.max_iter", "iteration caps must be positive")
	}
	return nil
}
