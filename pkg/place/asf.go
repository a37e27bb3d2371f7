package place

import "github.com/matzehuels/symplace/pkg/errors"

// asfNode is one node of an ASF-B*-tree. It references the representative
// module of a symmetry pair, or a self-symmetric module when self is set.
type asfNode struct {
	module *Module
	self   bool
	left   *asfNode
	right  *asfNode
	parent *asfNode
}

// ASFBTree is a symmetric-feasible B*-tree representing one symmetry island.
//
// Only one representative per symmetry pair is stored in the tree; the
// partner is obtained by mirroring across the axis at pack time.
// Self-symmetric modules occupy the axis-facing spine of the tree: the chain
// of right children from the root for a vertical axis, left children for a
// horizontal axis. This discipline guarantees that the packing plus its
// mirror forms a valid symmetric island.
//
// Axis arithmetic is kept integral by tracking twice the axis coordinate
// (twoAxis). Centers live on half-integer grid points, so 2*X* is always a
// whole number.
type ASFBTree struct {
	group   *SymmetryGroup
	modules map[string]*Module
	reps    []string // reps[i] is the representative of group.Pairs[i]
	root    *asfNode
	nodes   map[string]*asfNode // representative or self-symmetric name -> node
	twoAxis int
	packed  bool
}

// NewASFBTree creates an empty tree for the given symmetry group.
// Member modules must be registered with AddModule before ConstructInitial.
func NewASFBTree(group *SymmetryGroup) *ASFBTree {
	return &ASFBTree{
		group:   group,
		modules: make(map[string]*Module),
	}
}

// Group returns the symmetry group this island implements.
func (t *ASFBTree) Group() *SymmetryGroup { return t.group }

// Modules returns the island's modules keyed by name, including mirrored
// partners. The engine shares these Module instances; packing writes
// coordinates through them.
func (t *ASFBTree) Modules() map[string]*Module { return t.modules }

// AddModule registers a member module. Nil modules and names outside the
// group are ignored.
func (t *ASFBTree) AddModule(m *Module) {
	if m == nil || !t.group.Contains(m.Name) {
		return
	}
	t.modules[m.Name] = m
}

// ConstructInitial chooses a representative per pair and builds the initial
// tree. Representatives are chained along the packing direction; the
// self-symmetric modules form the axis-facing spine rooted at the tree root.
//
// Returns an infeasibility error when a member module is missing, a pair has
// mismatched dimensions, or self-symmetric modules cannot share one axis on
// the integer grid (mixed extent parity).
func (t *ASFBTree) ConstructInitial() error {
	if err := t.checkMembers(); err != nil {
		return err
	}

	t.reps = make([]string, len(t.group.Pairs))
	for i, p := range t.group.Pairs {
		t.reps[i] = p.A
	}
	t.buildTree()
	return nil
}

// checkMembers validates that packing can reach symmetric feasibility.
func (t *ASFBTree) checkMembers() error {
	for _, name := range t.group.Members() {
		if _, ok := t.modules[name]; !ok {
			return errors.New(errors.ErrCodeInfeasible, "group %q member %q has no module", t.group.Name, name)
		}
	}
	for _, p := range t.group.Pairs {
		a, b := t.modules[p.A], t.modules[p.B]
		if a.Width != b.Width || a.Height != b.Height {
			return errors.New(errors.ErrCodeInfeasible,
				"group %q pair (%s, %s) has mismatched dimensions %dx%d vs %dx%d",
				t.group.Name, p.A, p.B, a.Width, a.Height, b.Width, b.Height)
		}
	}
	// Self-symmetric modules share one axis only when their extents across
	// the axis all have the same parity: centers must land on the same
	// half-integer grid line.
	parity := -1
	for _, name := range t.group.SelfSymmetric {
		extent := t.modules[name].Width
		if t.group.Axis == AxisHorizontal {
			extent = t.modules[name].Height
		}
		if parity == -1 {
			parity = extent % 2
		} else if extent%2 != parity {
			return errors.New(errors.ErrCodeInfeasible,
				"group %q self-symmetric modules cannot share an axis: mixed extent parity", t.group.Name)
		}
	}
	return nil
}

// buildTree rebuilds the node structure from the current representative
// choice, resetting any packed state.
func (t *ASFBTree) buildTree() {
	t.nodes = make(map[string]*asfNode)
	t.root = nil
	t.packed = false

	repNodes := make([]*asfNode, len(t.reps))
	for i, name := range t.reps {
		repNodes[i] = &asfNode{module: t.modules[name]}
		t.nodes[name] = repNodes[i]
	}
	selfNodes := make([]*asfNode, len(t.group.SelfSymmetric))
	for i, name := range t.group.SelfSymmetric {
		selfNodes[i] = &asfNode{module: t.modules[name], self: true}
		t.nodes[name] = selfNodes[i]
	}

	vertical := t.group.Axis == AxisVertical

	// Representatives chain along the packing direction.
	for i := 1; i < len(repNodes); i++ {
		prev, n := repNodes[i-1], repNodes[i]
		if vertical {
			prev.left = n
		} else {
			prev.right = n
		}
		n.parent = prev
	}

	spine := selfNodes
	if len(repNodes) > 0 {
		t.root = repNodes[0]
	} else if len(selfNodes) > 0 {
		t.root = selfNodes[0]
		spine = selfNodes[1:]
	}

	// Self-symmetric chain hugs the axis-facing spine from the root.
	prev := t.root
	for _, n := range spine {
		if vertical {
			prev.right = n
		} else {
			prev.left = n
		}
		n.parent = prev
		prev = n
	}
}

// Pack computes the placement of the whole island: representatives by
// standard B*-tree rules against a local contour, the axis from their
// extents, self-symmetric modules recentered onto the axis, and mirrored
// partners completing the island.
//
// Pack is idempotent: repeated calls yield the same coordinates.
func (t *ASFBTree) Pack() {
	if t.root == nil {
		return
	}
	t.packRepresentatives()
	t.computeAxis()
	t.recenterSelfSymmetric()
	t.placeMirrors()
	t.packed = true
}

// packRepresentatives places the modules stored in the tree using B*-tree
// rules. For a vertical axis, a left child sits immediately to the right of
// its parent and a right child stacks above it; the roles of x and y swap
// for a horizontal axis.
func (t *ASFBTree) packRepresentatives() {
	contour := NewContour()
	vertical := t.group.Axis == AxisVertical

	var walk func(n *asfNode)
	walk = func(n *asfNode) {
		m := n.module
		if vertical {
			x := 0
			if p := n.parent; p != nil {
				if p.left == n {
					x = p.module.X + p.module.Width
				} else {
					x = p.module.X
				}
			}
			y := contour.Height(x, x+m.Width)
			m.X, m.Y = x, y
			contour.AddSegment(x, x+m.Width, y+m.Height)
		} else {
			y := 0
			if p := n.parent; p != nil {
				if p.left == n {
					y = p.module.Y + p.module.Height
				} else {
					y = p.module.Y
				}
			}
			x := contour.Height(y, y+m.Height)
			m.X, m.Y = x, y
			contour.AddSegment(y, y+m.Height, x+m.Width)
		}
		if n.left != nil {
			walk(n.left)
		}
		if n.right != nil {
			walk(n.right)
		}
	}
	walk(t.root)
}

// computeAxis derives 2*X* (or 2*Y*): the smallest axis position such that
// no mirrored module crosses back into the representative half.
func (t *ASFBTree) computeAxis() {
	vertical := t.group.Axis == AxisVertical
	twoAxis := 0
	selfParity := -1

	for _, name := range t.reps {
		m := t.modules[name]
		if vertical {
			twoAxis = max(twoAxis, 2*(m.X+m.Width))
		} else {
			twoAxis = max(twoAxis, 2*(m.Y+m.Height))
		}
	}
	for _, name := range t.group.SelfSymmetric {
		m := t.modules[name]
		if vertical {
			twoAxis = max(twoAxis, 2*m.X+m.Width)
			selfParity = m.Width % 2
		} else {
			twoAxis = max(twoAxis, 2*m.Y+m.Height)
			selfParity = m.Height % 2
		}
	}

	// Align parity so self-symmetric centers land exactly on the axis.
	if selfParity >= 0 && (twoAxis-selfParity)%2 != 0 {
		twoAxis++
	}
	t.twoAxis = twoAxis
}

// recenterSelfSymmetric moves every self-symmetric module so its center sits
// on the axis.
func (t *ASFBTree) recenterSelfSymmetric() {
	for _, name := range t.group.SelfSymmetric {
		m := t.modules[name]
		if t.group.Axis == AxisVertical {
			m.X = (t.twoAxis - m.Width) / 2
		} else {
			m.Y = (t.twoAxis - m.Height) / 2
		}
	}
}

// placeMirrors positions every pair partner as the reflection of its
// representative across the axis.
func (t *ASFBTree) placeMirrors() {
	for i, p := range t.group.Pairs {
		rep := t.modules[t.reps[i]]
		partner := p.B
		if t.reps[i] == p.B {
			partner = p.A
		}
		m := t.modules[partner]
		m.Width, m.Height = rep.Width, rep.Height
		m.Rotated = rep.Rotated
		if t.group.Axis == AxisVertical {
			m.X = t.twoAxis - rep.X - rep.Width
			m.Y = rep.Y
		} else {
			m.Y = t.twoAxis - rep.Y - rep.Height
			m.X = rep.X
		}
	}
}

// translate shifts the whole island, axis included. Used by the outer
// packer when positioning the island inside the global floorplan.
func (t *ASFBTree) translate(dx, dy int) {
	for _, m := range t.modules {
		m.X += dx
		m.Y += dy
	}
	if t.group.Axis == AxisVertical {
		t.twoAxis += 2 * dx
	} else {
		t.twoAxis += 2 * dy
	}
}

// AxisPosition returns X* for a vertical group or Y* for a horizontal one.
// The value is meaningful after Pack.
func (t *ASFBTree) AxisPosition() float64 { return float64(t.twoAxis) / 2 }

// BoundingBox returns the extents of the packed island, mirrored partners
// included. Returns zeros for an empty island.
func (t *ASFBTree) BoundingBox() (xmin, ymin, xmax, ymax int) {
	first := true
	for _, m := range t.modules {
		if first {
			xmin, ymin = m.X, m.Y
			first = false
		}
		xmin = min(xmin, m.X)
		ymin = min(ymin, m.Y)
		xmax = max(xmax, m.X+m.Width)
		ymax = max(ymax, m.Y+m.Height)
	}
	return xmin, ymin, xmax, ymax
}

// TopContour returns the island's upper envelope computed from the current
// module positions.
func (t *ASFBTree) TopContour() *Contour {
	c := NewContour()
	for _, m := range t.modules {
		c.AddSegment(m.X, m.X+m.Width, m.Y+m.Height)
	}
	return c
}

// RotateModule rotates a member module. Pair members rotate together with
// their partner so the mirror stays exact. Self-symmetric modules may only
// rotate when square: any other rotation would pull their center off the
// axis they must straddle. Returns false when the rotation is not allowed or
// the name is not a member.
func (t *ASFBTree) RotateModule(name string) bool {
	m, ok := t.modules[name]
	if !ok {
		return false
	}
	if t.group.IsSelfSymmetric(name) {
		if m.Width != m.Height {
			return false
		}
		m.Rotate()
		t.packed = false
		return true
	}
	partner, ok := t.group.PairOf(name)
	if !ok {
		return false
	}
	m.Rotate()
	t.modules[partner].Rotate()
	t.packed = false
	return true
}

// ChangeRepresentative swaps which member of the pair containing name is
// stored in the tree. Returns false when name is not part of a pair.
func (t *ASFBTree) ChangeRepresentative(name string) bool {
	for i, p := range t.group.Pairs {
		if name != p.A && name != p.B {
			continue
		}
		old := t.reps[i]
		next := p.A
		if old == p.A {
			next = p.B
		}
		node := t.nodes[old]
		node.module = t.modules[next]
		delete(t.nodes, old)
		t.nodes[next] = node
		t.reps[i] = next
		t.packed = false
		return true
	}
	return false
}

// ConvertSymmetryType switches the group between vertical and horizontal
// symmetry and rebuilds the tree so the self-symmetric spine matches the new
// axis. The current representative choice and rotations are preserved.
func (t *ASFBTree) ConvertSymmetryType() bool {
	if t.group.Axis == AxisVertical {
		t.group.Axis = AxisHorizontal
	} else {
		t.group.Axis = AxisVertical
	}
	if err := t.checkMembers(); err != nil {
		// Revert: the new axis cannot center the self-symmetric set.
		if t.group.Axis == AxisVertical {
			t.group.Axis = AxisHorizontal
		} else {
			t.group.Axis = AxisVertical
		}
		return false
	}
	t.buildTree()
	return true
}

// IsSymmetricFeasible verifies the three feasibility conditions: each pair
// represented exactly once, the self-symmetric spine discipline, and (when
// packed) the exact mirror equations.
func (t *ASFBTree) IsSymmetricFeasible() bool {
	if t.root == nil && (len(t.group.Pairs) > 0 || len(t.group.SelfSymmetric) > 0) {
		return false
	}

	// Each pair represented exactly once, each self-symmetric module present.
	for i, p := range t.group.Pairs {
		rep := t.reps[i]
		if rep != p.A && rep != p.B {
			return false
		}
		if _, ok := t.nodes[rep]; !ok {
			return false
		}
	}
	for _, name := range t.group.SelfSymmetric {
		if _, ok := t.nodes[name]; !ok {
			return false
		}
	}
	if len(t.nodes) != len(t.group.Pairs)+len(t.group.SelfSymmetric) {
		return false
	}

	// Self-symmetric nodes must lie on the axis-facing spine from the root.
	onSpine := make(map[*asfNode]bool)
	for n := t.root; n != nil; {
		onSpine[n] = true
		if t.group.Axis == AxisVertical {
			n = n.right
		} else {
			n = n.left
		}
	}
	for _, name := range t.group.SelfSymmetric {
		if !onSpine[t.nodes[name]] {
			return false
		}
	}

	if !t.packed {
		return true
	}

	// Mirror equations, exact in doubled coordinates.
	for _, p := range t.group.Pairs {
		a, b := t.modules[p.A], t.modules[p.B]
		if t.group.Axis == AxisVertical {
			if (2*a.X+a.Width)+(2*b.X+b.Width) != 2*t.twoAxis {
				return false
			}
			if 2*a.Y+a.Height != 2*b.Y+b.Height {
				return false
			}
		} else {
			if (2*a.Y+a.Height)+(2*b.Y+b.Height) != 2*t.twoAxis {
				return false
			}
			if 2*a.X+a.Width != 2*b.X+b.Width {
				return false
			}
		}
	}
	for _, name := range t.group.SelfSymmetric {
		m := t.modules[name]
		if t.group.Axis == AxisVertical {
			if 2*m.X+m.Width != t.twoAxis {
				return false
			}
		} else {
			if 2*m.Y+m.Height != t.twoAxis {
				return false
			}
		}
	}
	return true
}

// Clone returns a structurally independent deep copy of the island,
// including its modules.
func (t *ASFBTree) Clone() *ASFBTree {
	mods := make(map[string]*Module, len(t.modules))
	for name, m := range t.modules {
		mods[name] = m.Clone()
	}
	return t.cloneWith(t.group.Clone(), mods)
}

// cloneWith rebuilds the tree against the given group and module instances.
// The module map may contain more entries than the island's members; only
// member names are referenced. Used by HBTree.Clone so that the island clone
// shares the outer tree's cloned Module objects.
func (t *ASFBTree) cloneWith(group *SymmetryGroup, mods map[string]*Module) *ASFBTree {
	clone := &ASFBTree{
		group:   group,
		modules: make(map[string]*Module, len(t.modules)),
		reps:    append([]string(nil), t.reps...),
		nodes:   make(map[string]*asfNode),
		twoAxis: t.twoAxis,
		packed:  t.packed,
	}
	for name := range t.modules {
		clone.modules[name] = mods[name]
	}

	var copyNode func(n *asfNode, parent *asfNode) *asfNode
	copyNode = func(n *asfNode, parent *asfNode) *asfNode {
		if n == nil {
			return nil
		}
		c := &asfNode{
			module: clone.modules[n.module.Name],
			self:   n.self,
			parent: parent,
		}
		clone.nodes[n.module.Name] = c
		c.left = copyNode(n.left, c)
		c.right = copyNode(n.right, c)
		return c
	}
	clone.root = copyNode(t.root, nil)
	return clone
}
