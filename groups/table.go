// SPDX-License-Identifier: MIT

package groups

import (
	"fmt"
	"math"

	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/matrix"
)

// Table is an immutable snapshot of group parameters and the pairwise
// matrices derived from them by the combining rules.
//
// MAIN DESCRIPTION:
//   - NewTable validates every record and builds ε, σ, λr, λa once.
//   - With/Apply never touch the receiver; they rebuild a fresh Table so
//     concurrent readers of the old snapshot never observe a partial update.
//
// Matrix accessors return the shared internal matrices; callers must treat
// them as read-only.
type Table struct {
	groups []Group
	index  map[string]int
	cross  []Cross
	bonds  []Bond

	epsilon *matrix.Dense // ε_kl/k_B [K]
	sigma   *matrix.Dense // σ_kl [m]
	lambdaR *matrix.Dense
	lambdaA *matrix.Dense
}

// NewTable builds a validated table.
//
// Errors:
//   - ValidationError for invalid records, duplicate names, overrides or
//     bonds naming unknown groups or sites.
//
// Complexity: O(G²).
func NewTable(gs []Group, cross []Cross, bonds []Bond) (*Table, error) {
	if len(gs) == 0 {
		return nil, faults.Validation("groups", "at least one group is required")
	}
	t := &Table{
		groups: append([]Group(nil), gs...),
		index:  make(map[string]int, len(gs)),
		cross:  append([]Cross(nil), cross...),
		bonds:  append([]Bond(nil), bonds...),
	}
	for i, g := range t.groups {
		if err := g.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.index[g.Name]; dup {
			return nil, faults.Validation("group "+g.Name, "duplicate group")
		}
		t.index[g.Name] = i
	}
	if err := t.validateLinks(); err != nil {
		return nil, err
	}
	if err := t.combine(); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Table) validateLinks() error {
	for _, c := range t.cross {
		k, okK := t.index[c.K]
		l, okL := t.index[c.L]
		if !okK || !okL {
			return faults.Validation("cross", "unknown pair %s-%s", c.K, c.L)
		}
		if k == l {
			return faults.Validation("cross", "override %s-%s is not an unlike pair", c.K, c.L)
		}
		if c.Epsilon < 0 || math.IsNaN(c.Epsilon) {
			return faults.Validation("cross", "%s-%s epsilon must be > 0", c.K, c.L)
		}
		if c.LambdaR != 0 && !(c.LambdaR > 3) {
			return faults.Validation("cross", "%s-%s lambdar must be > 3", c.K, c.L)
		}
	}
	for _, b := range t.bonds {
		if !t.hasSite(b.GroupA, b.SiteA) || !t.hasSite(b.GroupB, b.SiteB) {
			return faults.Validation("bond", "unknown site in %s:%s-%s:%s", b.GroupA, b.SiteA, b.GroupB, b.SiteB)
		}
		if !finitePositive(b.Epsilon) || !finitePositive(b.Kappa) {
			return faults.Validation("bond", "%s:%s-%s:%s needs positive epsilon and kappa", b.GroupA, b.SiteA, b.GroupB, b.SiteB)
		}
	}

	return nil
}

func (t *Table) hasSite(group, site string) bool {
	i, ok := t.index[group]
	if !ok {
		return false
	}
	for _, s := range t.groups[i].Sites {
		if s.Name == site {
			return true
		}
	}
	return false
}

// combine applies the combining rules and the unlike overrides. The
// diagonal keeps each group's own parameters.
//
//	σ_kl = (σ_k + σ_l)/2
//	ε_kl = √(σ_k³σ_l³)/σ_kl³ · √(ε_k ε_l)
//	λ_kl = 3 + √((λ_k − 3)(λ_l − 3))
func (t *Table) combine() error {
	n := len(t.groups)
	g := t.groups
	var err error
	if t.sigma, err = matrix.NewSymmetric(n, func(k, l int) float64 {
		return (g[k].Sigma + g[l].Sigma) / 2 * Angstrom
	}); err != nil {
		return fmt.Errorf("groups: sigma: %w", err)
	}
	if t.epsilon, err = matrix.NewSymmetric(n, func(k, l int) float64 {
		if k == l {
			return g[k].Epsilon
		}
		if v := t.override(k, l).Epsilon; v > 0 {
			return v
		}
		sk, sl := g[k].Sigma, g[l].Sigma
		skl := (sk + sl) / 2
		return math.Sqrt(sk*sk*sk*sl*sl*sl) / (skl * skl * skl) * math.Sqrt(g[k].Epsilon*g[l].Epsilon)
	}); err != nil {
		return fmt.Errorf("groups: epsilon: %w", err)
	}
	if t.lambdaR, err = matrix.NewSymmetric(n, func(k, l int) float64 {
		if k == l {
			return g[k].LambdaR
		}
		if v := t.override(k, l).LambdaR; v > 0 {
			return v
		}
		return 3 + math.Sqrt((g[k].LambdaR-3)*(g[l].LambdaR-3))
	}); err != nil {
		return fmt.Errorf("groups: lambdar: %w", err)
	}
	if t.lambdaA, err = matrix.NewSymmetric(n, func(k, l int) float64 {
		if k == l {
			return g[k].LambdaA
		}
		return 3 + math.Sqrt((g[k].LambdaA-3)*(g[l].LambdaA-3))
	}); err != nil {
		return fmt.Errorf("groups: lambdaa: %w", err)
	}

	return nil
}

// override returns the last Cross entry for the unordered pair (k,l).
func (t *Table) override(k, l int) Cross {
	var out Cross
	if k == l {
		return out
	}
	for _, c := range t.cross {
		ck, cl := t.index[c.K], t.index[c.L]
		if (ck == k && cl == l) || (ck == l && cl == k) {
			out = c
		}
	}
	return out
}

// Len returns the number of groups.
func (t *Table) Len() int { return len(t.groups) }

// Groups returns a copy of the group records in table order.
func (t *Table) Groups() []Group { return append([]Group(nil), t.groups...) }

// Group returns the i-th record.
func (t *Table) Group(i int) Group { return t.groups[i] }

// Index returns the position of a named group.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Cross returns a copy of the unlike overrides.
func (t *Table) Cross() []Cross { return append([]Cross(nil), t.cross...) }

// Bonds returns a copy of the association bonds.
func (t *Table) Bonds() []Bond { return append([]Bond(nil), t.bonds...) }

// Epsilon returns ε_kl/k_B [K].
func (t *Table) Epsilon() *matrix.Dense { return t.epsilon }

// Sigma returns σ_kl [m].
func (t *Table) Sigma() *matrix.Dense { return t.sigma }

// LambdaR returns the repulsive exponent matrix.
func (t *Table) LambdaR() *matrix.Dense { return t.lambdaR }

// LambdaA returns the attractive exponent matrix.
func (t *Table) LambdaA() *matrix.Dense { return t.lambdaA }

// With returns a new Table with the assignments applied in order.
// The receiver is never modified.
//
// Errors:
//   - ValidationError when a binding names an unknown group, pair or bond,
//     or when the resulting records fail validation.
func (t *Table) With(assignments ...Assignment) (*Table, error) {
	gs := append([]Group(nil), t.groups...)
	cross := append([]Cross(nil), t.cross...)
	bonds := append([]Bond(nil), t.bonds...)
	for _, a := range assignments {
		var err error
		if cross, err = t.assign(gs, cross, bonds, a); err != nil {
			return nil, err
		}
	}

	return NewTable(gs, cross, bonds)
}

func (t *Table) assign(gs []Group, cross []Cross, bonds []Bond, a Assignment) ([]Cross, error) {
	b, v := a.Binding, a.Value
	if err := b.validateShape(); err != nil {
		return cross, err
	}
	k, ok := t.index[b.Group]
	if !ok {
		return cross, faults.Validation("parameter "+b.String(), "unknown group %q", b.Group)
	}
	switch b.Param {
	case ParamBondEpsilon, ParamBondKappa:
		for i := range bonds {
			if !bonds[i].matches(b) {
				continue
			}
			if b.Param == ParamBondEpsilon {
				bonds[i].Epsilon = v
			} else {
				bonds[i].Kappa = v
			}
			return cross, nil
		}
		return cross, faults.Validation("parameter "+b.String(), "no such bond")
	}
	if b.Other != "" {
		if _, ok = t.index[b.Other]; !ok {
			return cross, faults.Validation("parameter "+b.String(), "unknown group %q", b.Other)
		}
		c := Cross{K: b.Group, L: b.Other}
		for _, prev := range cross {
			if (prev.K == c.K && prev.L == c.L) || (prev.K == c.L && prev.L == c.K) {
				c.Epsilon, c.LambdaR = prev.Epsilon, prev.LambdaR
			}
		}
		if b.Param == ParamEpsilon {
			c.Epsilon = v
		} else {
			c.LambdaR = v
		}
		return append(cross, c), nil
	}
	g := &gs[k]
	switch b.Param {
	case ParamEpsilon:
		g.Epsilon = v
	case ParamSigma:
		g.Sigma = v
	case ParamLambdaR:
		g.LambdaR = v
	case ParamLambdaA:
		g.LambdaA = v
	case ParamSegments:
		g.Segments = v
	case ParamShapeFactor:
		g.ShapeFactor = v
	default:
		return cross, faults.Validation("parameter "+b.String(), "unsupported")
	}

	return cross, nil
}

func (bd Bond) matches(b Binding) bool {
	fwd := bd.GroupA == b.Group && bd.SiteA == b.SiteA && bd.GroupB == b.Other && bd.SiteB == b.SiteB
	rev := bd.GroupA == b.Other && bd.SiteA == b.SiteB && bd.GroupB == b.Group && bd.SiteB == b.SiteA
	return fwd || rev
}

// Apply maps an optimizer vector onto the bindings and returns the new table.
//
// Errors:
//   - ValidationError when len(vec) != len(bindings) or any value is not finite.
func (t *Table) Apply(bindings []Binding, vec []float64) (*Table, error) {
	if len(vec) != len(bindings) {
		return nil, faults.Validation("parameters", "vector length %d, want %d", len(vec), len(bindings))
	}
	as := make([]Assignment, len(vec))
	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, faults.Validation("parameter "+bindings[i].String(), "non-finite value %g", v)
		}
		as[i] = Assignment{Binding: bindings[i], Value: v}
	}

	return t.With(as...)
}

// Value reads the current value behind a binding.
func (t *Table) Value(b Binding) (float64, error) {
	k, ok := t.index[b.Group]
	if !ok {
		return 0, faults.Validation("parameter "+b.String(), "unknown group %q", b.Group)
	}
	switch b.Param {
	case ParamBondEpsilon, ParamBondKappa:
		for _, bd := range t.bonds {
			if bd.matches(b) {
				if b.Param == ParamBondEpsilon {
					return bd.Epsilon, nil
				}
				return bd.Kappa, nil
			}
		}
		return 0, faults.Validation("parameter "+b.String(), "no such bond")
	}
	if b.Other != "" {
		l, ok := t.index[b.Other]
		if !ok {
			return 0, faults.Validation("parameter "+b.String(), "unknown group %q", b.Other)
		}
		if b.Param == ParamEpsilon {
			return t.epsilon.At(k, l)
		}
		return t.lambdaR.At(k, l)
	}
	g := t.groups[k]
	switch b.Param {
	case ParamEpsilon:
		return g.Epsilon, nil
	case ParamSigma:
		return g.Sigma, nil
	case ParamLambdaR:
		return g.LambdaR, nil
	case ParamLambdaA:
		return g.LambdaA, nil
	case ParamSegments:
		return g.Segments, nil
	case ParamShapeFactor:
		return g.ShapeFactor, nil
	}

	return 0, faults.Validation("parameter "+b.String(), "unsupported")
}
