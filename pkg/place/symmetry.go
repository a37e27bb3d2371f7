package place

import "github.com/matzehuels/symplace/pkg/errors"

// Axis identifies the orientation of a symmetry axis.
type Axis int

const (
	// AxisVertical mirrors modules left/right across a vertical line x = X*.
	AxisVertical Axis = iota
	// AxisHorizontal mirrors modules below/above across a horizontal line y = Y*.
	AxisHorizontal
)

// String returns the axis name as used in problem files.
func (a Axis) String() string {
	if a == AxisHorizontal {
		return "HORIZONTAL"
	}
	return "VERTICAL"
}

// Pair names the two modules of one symmetry pair. The pair is unordered for
// symmetry purposes; A is the initially chosen representative.
type Pair struct {
	A, B string
}

// SymmetryGroup declares the symmetry constraints over a set of modules.
// All members of one group form a symmetry island: a contiguous rectangular
// region sharing a single axis. A module may appear in at most one group.
type SymmetryGroup struct {
	Name          string
	Axis          Axis
	Pairs         []Pair
	SelfSymmetric []string
}

// Members returns all module names in the group: pair members in declaration
// order followed by self-symmetric modules.
func (g *SymmetryGroup) Members() []string {
	members := make([]string, 0, 2*len(g.Pairs)+len(g.SelfSymmetric))
	for _, p := range g.Pairs {
		members = append(members, p.A, p.B)
	}
	members = append(members, g.SelfSymmetric...)
	return members
}

// Contains reports whether name belongs to the group.
func (g *SymmetryGroup) Contains(name string) bool {
	if g.IsSelfSymmetric(name) {
		return true
	}
	_, ok := g.PairOf(name)
	return ok
}

// PairOf returns the partner of name if name belongs to a symmetry pair.
func (g *SymmetryGroup) PairOf(name string) (string, bool) {
	for _, p := range g.Pairs {
		switch name {
		case p.A:
			return p.B, true
		case p.B:
			return p.A, true
		}
	}
	return "", false
}

// IsSelfSymmetric reports whether name is declared self-symmetric.
func (g *SymmetryGroup) IsSelfSymmetric(name string) bool {
	for _, m := range g.SelfSymmetric {
		if m == name {
			return true
		}
	}
	return false
}

// Validate checks the group declaration: non-empty name, pairs of distinct
// modules, and no module declared twice within the group.
func (g *SymmetryGroup) Validate() error {
	if err := errors.ValidateName(g.Name); err != nil {
		return err
	}
	if len(g.Pairs) == 0 && len(g.SelfSymmetric) == 0 {
		return errors.New(errors.ErrCodeInvalidGroup, "group %q declares no members", g.Name)
	}

	seen := make(map[string]struct{})
	claim := func(name string) error {
		if err := errors.ValidateName(name); err != nil {
			return err
		}
		if _, dup := seen[name]; dup {
			return errors.New(errors.ErrCodeInvalidGroup, "group %q declares module %q twice", g.Name, name)
		}
		seen[name] = struct{}{}
		return nil
	}

	for _, p := range g.Pairs {
		if p.A == p.B {
			return errors.New(errors.ErrCodeInvalidGroup, "group %q pairs module %q with itself", g.Name, p.A)
		}
		if err := claim(p.A); err != nil {
			return err
		}
		if err := claim(p.B); err != nil {
			return err
		}
	}
	for _, m := range g.SelfSymmetric {
		if err := claim(m); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an independent copy of the group.
func (g *SymmetryGroup) Clone() *SymmetryGroup {
	c := &SymmetryGroup{Name: g.Name, Axis: g.Axis}
	c.Pairs = append([]Pair(nil), g.Pairs...)
	c.SelfSymmetric = append([]string(nil), g.SelfSymmetric...)
	return c
}
