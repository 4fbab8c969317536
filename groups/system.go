// SPDX-License-Identifier: MIT

package groups

import (
	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/matrix"
)

// GroupCount is one entry of a component formula: Count groups named Group.
type GroupCount struct {
	Group string  `yaml:"group"`
	Count float64 `yaml:"count"`
}

// Component is a molecule expressed in groups (ν_ki).
type Component struct {
	Name   string       `yaml:"name"`
	Groups []GroupCount `yaml:"groups"`
}

// System binds an ordered list of components to one Table.
//
// Derived per-molecule quantities:
//
//	m_i  = Σ_k ν_ki ν*_k S_k              (segments per molecule)
//	z_ki = ν_ki ν*_k S_k / m_i            (chain-term group weights)
//
// A System is immutable; WithTable rebinds the same components to a new
// parameter snapshot.
type System struct {
	table    *Table
	comps    []Component
	index    map[string]int
	nu       *matrix.Dense // components × groups
	segments []float64     // m_i
	weights  *matrix.Dense // z_ki, components × groups
}

// NewSystem validates the component formulas against t.
func NewSystem(t *Table, comps []Component) (*System, error) {
	if t == nil {
		return nil, faults.Validation("system", "nil table")
	}
	if len(comps) == 0 {
		return nil, faults.Validation("system", "at least one component is required")
	}
	s := &System{
		comps: append([]Component(nil), comps...),
		index: make(map[string]int, len(comps)),
	}
	for i, c := range s.comps {
		if c.Name == "" {
			return nil, faults.Validation("component", "component %d has no name", i)
		}
		if _, dup := s.index[c.Name]; dup {
			return nil, faults.Validation("component "+c.Name, "duplicate component")
		}
		if len(c.Groups) == 0 {
			return nil, faults.Validation("component "+c.Name, "no groups")
		}
		s.index[c.Name] = i
	}
	if err := s.bind(t); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *System) bind(t *Table) error {
	nu, err := matrix.NewDense(len(s.comps), t.Len())
	if err != nil {
		return err
	}
	for i, c := range s.comps {
		for _, gc := range c.Groups {
			k, ok := t.Index(gc.Group)
			if !ok {
				return faults.Validation("component "+c.Name, "unknown group %q", gc.Group)
			}
			if !finitePositive(gc.Count) {
				return faults.Validation("component "+c.Name, "count of %s must be > 0", gc.Group)
			}
			prev, _ := nu.At(i, k)
			if err = nu.Set(i, k, prev+gc.Count); err != nil {
				return err
			}
		}
	}
	segs := make([]float64, len(s.comps))
	for i := range s.comps {
		for k, v := range nu.Row(i) {
			g := t.Group(k)
			segs[i] += v * g.Segments * g.ShapeFactor
		}
	}
	w, err := nu.Map(func(i, k int, v float64) float64 {
		g := t.Group(k)
		return v * g.Segments * g.ShapeFactor / segs[i]
	})
	if err != nil {
		return err
	}
	s.table, s.nu, s.segments, s.weights = t, nu, segs, w

	return nil
}

// WithTable returns a System with the same components bound to t.
func (s *System) WithTable(t *Table) (*System, error) {
	if t == nil {
		return nil, faults.Validation("system", "nil table")
	}
	out := &System{comps: s.comps, index: s.index}
	if err := out.bind(t); err != nil {
		return nil, err
	}
	return out, nil
}

// Table returns the bound parameter snapshot.
func (s *System) Table() *Table { return s.table }

// NumComponents returns the number of components.
func (s *System) NumComponents() int { return len(s.comps) }

// NumGroups returns the number of groups in the bound table.
func (s *System) NumGroups() int { return s.table.Len() }

// Component returns the i-th component.
func (s *System) Component(i int) Component { return s.comps[i] }

// ComponentIndex finds a component by name.
func (s *System) ComponentIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Nu returns ν_ki as a components × groups matrix (read-only).
func (s *System) Nu() *matrix.Dense { return s.nu }

// Segments returns m_i for component i.
func (s *System) Segments(i int) float64 { return s.segments[i] }

// GroupWeights returns z_ki as a components × groups matrix (read-only).
func (s *System) GroupWeights() *matrix.Dense { return s.weights }

// Cmol2seg converts molecular density to segment density:
// Σ_i x_i Σ_k ν_ki ν*_k S_k.
func (s *System) Cmol2seg(x []float64) (float64, error) {
	if err := matrix.ValidateVecLen(x, len(s.comps)); err != nil {
		return 0, err
	}
	var c float64
	for i, xi := range x {
		c += xi * s.segments[i]
	}
	return c, nil
}

// SegmentFractions returns x_sk = Σ_i x_i ν_ki ν*_k S_k / Cmol2seg.
// x need not be normalised; the fractions always sum to one.
func (s *System) SegmentFractions(x []float64) ([]float64, error) {
	c, err := s.Cmol2seg(x)
	if err != nil {
		return nil, err
	}
	if !(c > 0) {
		return nil, faults.Domain("groups.SegmentFractions", "Cmol2seg", c)
	}
	out := make([]float64, s.table.Len())
	for i, xi := range x {
		for k, v := range s.nu.Row(i) {
			g := s.table.Group(k)
			out[k] += xi * v * g.Segments * g.ShapeFactor
		}
	}
	for k := range out {
		out[k] /= c
	}
	return out, nil
}

// MolarMass returns Σ_k ν_ki M_k for component i [kg/mol].
// Zero when group masses are not provided.
func (s *System) MolarMass(i int) float64 {
	var m float64
	for k, v := range s.nu.Row(i) {
		m += v * s.table.Group(k).Mass
	}
	return m
}
