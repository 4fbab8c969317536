// SPDX-License-Identifier: MIT

package dataset

import (
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/saftgamma/density"
	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/groups"
	"github.com/katalvlaran/saftgamma/phase"
)

// Type names accepted in data_class_type.
const (
	TypeTLVE     = "TLVE"
	TypeSatProps = "saturation_properties"
)

// Units accepted in density_units for rhol and rhov. Molar is the default.
const (
	UnitsMolar = "mol/m3"
	UnitsMass  = "kg/m3"
)

// New validates raw against sys and returns the typed dataset. A missing
// calculation_type defaults to phase_xiT when xi is present, else phase_yiT,
// and is reported on log at Warn.
func New(raw Raw, sys *groups.System, log *zap.Logger) (Dataset, error) {
	if sys == nil {
		return Dataset{}, faults.Validation("dataset", "nil system")
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("dataset", raw.Name))

	dens, err := density.FromDict(raw.DensityDict)
	if err != nil {
		return Dataset{}, err
	}
	dens.Logger = log

	switch raw.Type {
	case TypeTLVE:
		d, err := newTLVE(raw, sys, dens, log)
		if err != nil {
			return Dataset{}, err
		}
		return Dataset{Name: raw.Name, Kind: KindTLVE, TLVE: d}, nil
	case TypeSatProps:
		d, err := newSatProps(raw, sys, dens)
		if err != nil {
			return Dataset{}, err
		}
		return Dataset{Name: raw.Name, Kind: KindSatProps, SatProps: d}, nil
	}

	return Dataset{}, faults.Validation(field(raw, "data_class_type"), "unknown type %q", raw.Type)
}

func newTLVE(raw Raw, sys *groups.System, dens density.Options, log *zap.Logger) (*TLVE, error) {
	if raw.T == nil && raw.P == nil {
		return nil, faults.Validation(field(raw, "T"), "at least one of T or P is required")
	}
	if raw.Xi == nil || raw.Yi == nil {
		return nil, faults.Validation(field(raw, "xi"), "both xi and yi are required")
	}

	var mode phase.Mode
	if raw.CalculationType == "" {
		mode = phase.PhaseYiT
		if len(raw.Xi) > 0 {
			mode = phase.PhaseXiT
		}
		log.Warn("calculation_type not given, using default", zap.Stringer("mode", mode))
	} else {
		m, err := phase.ParseMode(raw.CalculationType)
		if err != nil {
			return nil, err
		}
		mode = m
	}
	if raw.T == nil {
		return nil, faults.Validation(field(raw, "T"), "%s requires T", mode)
	}

	n := len(raw.T)
	if n == 0 {
		return nil, faults.Validation(field(raw, "T"), "no points")
	}
	if err := sameLength(raw, n, map[string]int{"xi": len(raw.Xi), "yi": len(raw.Yi)}); err != nil {
		return nil, err
	}
	if raw.P != nil {
		if err := sameLength(raw, n, map[string]int{"P": len(raw.P)}); err != nil {
			return nil, err
		}
	}
	if err := positive(raw, "T", raw.T); err != nil {
		return nil, err
	}

	xi, err := mixtures(raw, "xi", raw.Xi, sys.NumComponents())
	if err != nil {
		return nil, err
	}
	yi, err := mixtures(raw, "yi", raw.Yi, sys.NumComponents())
	if err != nil {
		return nil, err
	}

	w, err := weights(raw, n, "P", "T", "xi", "yi")
	if err != nil {
		return nil, err
	}

	return &TLVE{
		Mode:    mode,
		T:       raw.T,
		P:       raw.P,
		Xi:      xi,
		Yi:      yi,
		Weights: TLVEWeights{P: w["P"], T: w["T"], Xi: w["xi"], Yi: w["yi"]},
		Density: dens,
	}, nil
}

func newSatProps(raw Raw, sys *groups.System, dens density.Options) (*SatProps, error) {
	ci := 0
	if raw.Component != "" {
		i, ok := sys.ComponentIndex(raw.Component)
		if !ok {
			return nil, faults.Validation(field(raw, "component"), "unknown component %q", raw.Component)
		}
		ci = i
	} else if sys.NumComponents() != 1 {
		return nil, faults.Validation(field(raw, "component"), "required when the system has %d components", sys.NumComponents())
	}

	n := len(raw.T)
	if n == 0 {
		return nil, faults.Validation(field(raw, "T"), "T is required")
	}
	if raw.Psat == nil && raw.RhoL == nil && raw.RhoV == nil {
		return nil, faults.Validation(field(raw, "Psat"), "at least one of Psat, rhol or rhov is required")
	}
	lengths := map[string]int{}
	for name, v := range map[string][]float64{"Psat": raw.Psat, "rhol": raw.RhoL, "rhov": raw.RhoV} {
		if v != nil {
			lengths[name] = len(v)
		}
	}
	if err := sameLength(raw, n, lengths); err != nil {
		return nil, err
	}
	if err := positive(raw, "T", raw.T); err != nil {
		return nil, err
	}

	rhol, rhov, err := molarDensities(raw, sys, ci)
	if err != nil {
		return nil, err
	}
	w, err := weights(raw, n, "T", "Psat", "rhol", "rhov")
	if err != nil {
		return nil, err
	}

	return &SatProps{
		Component: ci,
		T:         raw.T,
		Psat:      raw.Psat,
		RhoL:      rhol,
		RhoV:      rhov,
		Weights:   SatPropsWeights{T: w["T"], Psat: w["Psat"], RhoL: w["rhol"], RhoV: w["rhov"]},
		Density:   dens,
	}, nil
}

// molarDensities returns rhol and rhov in mol/m³. Mass densities are
// divided by the molar mass of component ci.
func molarDensities(raw Raw, sys *groups.System, ci int) (rhol, rhov []float64, err error) {
	switch raw.DensityUnits {
	case "", UnitsMolar:
		return raw.RhoL, raw.RhoV, nil
	case UnitsMass:
	default:
		return nil, nil, faults.Validation(field(raw, "density_units"), "unknown units %q", raw.DensityUnits)
	}
	m := sys.MolarMass(ci)
	if !(m > 0) {
		return nil, nil, faults.Validation(field(raw, "density_units"), "%s needs group masses for component %d", UnitsMass, ci)
	}
	molar := func(v []float64) []float64 {
		if v == nil {
			return nil
		}
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = x / m
		}
		return out
	}
	return molar(raw.RhoL), molar(raw.RhoV), nil
}

func field(raw Raw, name string) string {
	if raw.Name == "" {
		return name
	}
	return raw.Name + "." + name
}

func sameLength(raw Raw, n int, lengths map[string]int) error {
	for name, l := range lengths {
		if l != n {
			return faults.Validation(field(raw, name), "length %d does not match T length %d", l, n)
		}
	}
	return nil
}

func positive(raw Raw, name string, v []float64) error {
	for i, x := range v {
		if !(x > 0) || math.IsInf(x, 0) {
			return faults.Validation(field(raw, name), "point %d: must be finite and positive, got %g", i, x)
		}
	}
	return nil
}

func mixtures(raw Raw, name string, rows [][]float64, ncomp int) ([]groups.Mixture, error) {
	out := make([]groups.Mixture, len(rows))
	for i, row := range rows {
		if len(row) != ncomp {
			return nil, faults.Validation(field(raw, name), "point %d: %d fractions for %d components", i, len(row), ncomp)
		}
		m, err := groups.NewMixture(row)
		if err != nil {
			return nil, faults.Validation(field(raw, name), "point %d: %v", i, err)
		}
		out[i] = m
	}
	return out, nil
}

// weights broadcasts the given keys to n points. Absent keys weigh 1.
func weights(raw Raw, n int, keys ...string) (map[string][]float64, error) {
	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}
	for k := range raw.Weights {
		if !allowed[k] {
			return nil, faults.Validation(field(raw, "weights"), "unknown weight key %q", k)
		}
	}

	out := make(map[string][]float64, len(keys))
	for _, k := range keys {
		w, ok := raw.Weights[k]
		vals := make([]float64, n)
		switch {
		case !ok:
			for i := range vals {
				vals[i] = 1
			}
		case len(w) == 1 && n != 1:
			for i := range vals {
				vals[i] = w[0]
			}
		case len(w) == n:
			copy(vals, w)
		default:
			return nil, faults.Validation(field(raw, "weights."+k), "length %d does not match %d points", len(w), n)
		}
		for i, v := range vals {
			if !(v >= 0) || math.IsInf(v, 0) {
				return nil, faults.Validation(field(raw, "weights."+k), "point %d: weight %g", i, v)
			}
		}
		out[k] = vals
	}
	return out, nil
}
