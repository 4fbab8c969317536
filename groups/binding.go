// SPDX-License-Identifier: MIT

package groups

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/saftgamma/faults"
)

// Param names one fittable table field.
type Param int

// enumeration of Param
const (
	ParamEpsilon Param = iota
	ParamSigma
	ParamLambdaR
	ParamLambdaA
	ParamSegments
	ParamShapeFactor
	ParamBondEpsilon
	ParamBondKappa
)

var paramNames = map[Param]string{
	ParamEpsilon:     "epsilon",
	ParamSigma:       "sigma",
	ParamLambdaR:     "lambdar",
	ParamLambdaA:     "lambdaa",
	ParamSegments:    "segments",
	ParamShapeFactor: "shape_factor",
	ParamBondEpsilon: "epsilonHB",
	ParamBondKappa:   "kappaHB",
}

func (p Param) String() string {
	if s, ok := paramNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Param(%d)", int(p))
}

// Binding maps one slot of an optimizer parameter vector onto the table.
//
//   - Group only: a self parameter of that group.
//   - Group and Other: an unlike (k,l) override (epsilon or lambdar only).
//   - Bond params: Group/SiteA and Other/SiteB identify the site pair.
type Binding struct {
	Param Param
	Group string
	Other string
	SiteA string
	SiteB string
}

func (b Binding) String() string {
	parts := []string{b.Param.String(), b.Group}
	if b.SiteA != "" {
		parts[1] = b.Group + ":" + b.SiteA
	}
	if b.Other != "" {
		o := b.Other
		if b.SiteB != "" {
			o += ":" + b.SiteB
		}
		parts = append(parts, o)
	}
	return strings.Join(parts, "_")
}

// ParseBinding reads names of the form "epsilon_CH3", "epsilon_CH3_CH2",
// "lambdar_CH2_CH3" or "epsilonHB_H2O:H_H2O:e1".
func ParseBinding(name string) (Binding, error) {
	parts := strings.Split(name, "_")
	if len(parts) < 2 || len(parts) > 3 {
		return Binding{}, faults.Validation("parameter", "cannot parse %q", name)
	}
	var (
		b     Binding
		found bool
	)
	for p, s := range paramNames {
		if s == parts[0] {
			b.Param, found = p, true
			break
		}
	}
	if !found {
		return Binding{}, faults.Validation("parameter", "unknown parameter kind %q", parts[0])
	}
	b.Group, b.SiteA = splitSite(parts[1])
	if len(parts) == 3 {
		b.Other, b.SiteB = splitSite(parts[2])
	}
	if err := b.validateShape(); err != nil {
		return Binding{}, err
	}

	return b, nil
}

func splitSite(s string) (group, site string) {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

func (b Binding) validateShape() error {
	switch b.Param {
	case ParamBondEpsilon, ParamBondKappa:
		if b.Other == "" || b.SiteA == "" || b.SiteB == "" {
			return faults.Validation("parameter", "%s needs two group:site operands", b.Param)
		}
	default:
		if b.SiteA != "" || b.SiteB != "" {
			return faults.Validation("parameter", "%s does not take sites", b.Param)
		}
		if b.Other != "" && b.Param != ParamEpsilon && b.Param != ParamLambdaR {
			return faults.Validation("parameter", "unlike %s is not supported", b.Param)
		}
	}

	return nil
}

// Assignment pairs a binding with a new value.
type Assignment struct {
	Binding Binding
	Value   float64
}
