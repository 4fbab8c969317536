// SPDX-License-Identifier: MIT

package dataset

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/saftgamma/density"
	"github.com/katalvlaran/saftgamma/groups"
	"github.com/katalvlaran/saftgamma/phase"
)

// Kind tags the dataset variant.
type Kind int

// enumeration of Kind
const (
	KindTLVE Kind = iota
	KindSatProps
)

func (k Kind) String() string {
	switch k {
	case KindTLVE:
		return "TLVE"
	case KindSatProps:
		return "saturation_properties"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Dataset is the tagged variant; exactly one payload matches Kind.
type Dataset struct {
	Name     string
	Kind     Kind
	TLVE     *TLVE
	SatProps *SatProps
}

// Len returns the number of points.
func (d Dataset) Len() int {
	switch d.Kind {
	case KindTLVE:
		return len(d.TLVE.T)
	case KindSatProps:
		return len(d.SatProps.T)
	}
	return 0
}

// TLVEWeights are per-point weights of each channel, already broadcast to N.
type TLVEWeights struct {
	P, T, Xi, Yi []float64
}

// TLVE is one vapor–liquid equilibrium dataset.
type TLVE struct {
	Mode    phase.Mode
	T       []float64        // K
	P       []float64        // Pa; nil when not measured
	Xi      []groups.Mixture // liquid compositions
	Yi      []groups.Mixture // vapor compositions
	Weights TLVEWeights
	Density density.Options
}

// Known returns the composition fixed by the calculation mode at point i.
func (d *TLVE) Known(i int) groups.Mixture {
	if d.Mode == phase.PhaseXiT {
		return d.Xi[i]
	}
	return d.Yi[i]
}

// Unknown returns the measured composition of the solved phase at point i.
func (d *TLVE) Unknown(i int) groups.Mixture {
	if d.Mode == phase.PhaseXiT {
		return d.Yi[i]
	}
	return d.Xi[i]
}

// UnknownWeights returns the weights of the solved phase channel.
func (d *TLVE) UnknownWeights() []float64 {
	if d.Mode == phase.PhaseXiT {
		return d.Weights.Yi
	}
	return d.Weights.Xi
}

// SatPropsWeights are per-point weights of each channel.
type SatPropsWeights struct {
	T, Psat, RhoL, RhoV []float64
}

// SatProps is a pure-component saturation dataset.
type SatProps struct {
	Component int // index in the system
	T         []float64
	Psat      []float64 // Pa; nil when not measured
	RhoL      []float64 // mol/m³; nil when not measured
	RhoV      []float64 // mol/m³; nil when not measured
	Weights   SatPropsWeights
	Density   density.Options
}

// Raw is the YAML form of one dataset.
type Raw struct {
	Name            string                 `yaml:"name"`
	Type            string                 `yaml:"data_class_type"`
	CalculationType string                 `yaml:"calculation_type"`
	Component       string                 `yaml:"component"`
	T               []float64              `yaml:"T"`
	P               []float64              `yaml:"P"`
	Xi              [][]float64            `yaml:"xi"`
	Yi              [][]float64            `yaml:"yi"`
	Psat            []float64              `yaml:"Psat"`
	RhoL            []float64              `yaml:"rhol"`
	RhoV            []float64              `yaml:"rhov"`
	Weights         map[string]WeightValue `yaml:"weights"`
	DensityDict     map[string]float64     `yaml:"density_dict"`
	DensityUnits    string                 `yaml:"density_units"`
}

// WeightValue is a scalar weight or one weight per point.
type WeightValue []float64

// UnmarshalYAML accepts both `1.5` and `[1, 2, 3]`.
func (w *WeightValue) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var v float64
		if err := n.Decode(&v); err != nil {
			return err
		}
		*w = WeightValue{v}
		return nil
	}
	var vs []float64
	if err := n.Decode(&vs); err != nil {
		return err
	}
	*w = vs
	return nil
}

// Scalar marks a single broadcast weight.
func Scalar(v float64) WeightValue { return WeightValue{v} }
