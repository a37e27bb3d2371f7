package place

import (
	"sort"

	"github.com/matzehuels/symplace/pkg/errors"
)

// HBTree is the hierarchical B*-tree composing symmetry islands with free
// modules. It owns all modules, symmetry groups, and nodes of one placement
// state.
//
// HBTree is not safe for concurrent use; the annealing driver calls it
// synchronously and uses Clone for rollback.
type HBTree struct {
	root    *HBNode
	modules map[string]*Module
	groups  []*SymmetryGroup
	nets    []Net

	moduleNodes map[string]*HBNode // free modules only
	groupNodes  map[string]*HBNode // hierarchy nodes by group name
	nodes       map[string]*HBNode // every registered node by name

	horizontal *Contour
	vertical   *Contour
	dirty      map[*HBNode]struct{}
	area       int
	packed     bool
}

// NewHBTree creates an empty engine instance.
func NewHBTree() *HBTree {
	return &HBTree{
		modules:     make(map[string]*Module),
		moduleNodes: make(map[string]*HBNode),
		groupNodes:  make(map[string]*HBNode),
		nodes:       make(map[string]*HBNode),
		horizontal:  NewContour(),
		vertical:    NewContour(),
		dirty:       make(map[*HBNode]struct{}),
	}
}

// AddModule registers a module. Returns an error for nil modules, invalid
// names or dimensions, and duplicate names.
func (t *HBTree) AddModule(m *Module) error {
	if m == nil {
		return errors.New(errors.ErrCodeInvalidInput, "module must not be nil")
	}
	if err := errors.ValidateName(m.Name); err != nil {
		return err
	}
	if err := errors.ValidateDimensions(m.Name, m.Width, m.Height); err != nil {
		return err
	}
	if _, exists := t.modules[m.Name]; exists {
		return errors.New(errors.ErrCodeDuplicateModule, "module %q already declared", m.Name)
	}
	t.modules[m.Name] = m
	return nil
}

// AddSymmetryGroup registers a symmetry group. Returns an error when the
// declaration is invalid, the group name collides, or a member already
// belongs to another group.
func (t *HBTree) AddSymmetryGroup(g *SymmetryGroup) error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "symmetry group must not be nil")
	}
	if err := g.Validate(); err != nil {
		return err
	}
	for _, existing := range t.groups {
		if existing.Name == g.Name {
			return errors.New(errors.ErrCodeDuplicateGroup, "symmetry group %q already declared", g.Name)
		}
		for _, member := range g.Members() {
			if existing.Contains(member) {
				return errors.New(errors.ErrCodeInvalidGroup,
					"module %q appears in groups %q and %q", member, existing.Name, g.Name)
			}
		}
	}
	t.groups = append(t.groups, g)
	return nil
}

// SetNetlist attaches an optional netlist used by WireLength.
func (t *HBTree) SetNetlist(nets []Net) {
	t.nets = append([]Net(nil), nets...)
}

// ConstructInitialTree builds the initial HB*-tree: one hierarchy node per
// symmetry group chained as a left-only spine from the root, followed by the
// free modules sorted by area descending.
func (t *HBTree) ConstructInitialTree() error {
	t.clearTree()

	if err := t.constructSymmetryIslands(); err != nil {
		return err
	}

	free := t.freeModuleNames()
	sort.Slice(free, func(i, j int) bool {
		a, b := t.modules[free[i]], t.modules[free[j]]
		if a.Area() != b.Area() {
			return a.Area() > b.Area()
		}
		return a.Name < b.Name
	})
	for _, name := range free {
		t.moduleNodes[name] = newModuleNode(name)
	}

	var spine []*HBNode
	for _, g := range t.groups {
		spine = append(spine, t.groupNodes[g.Name])
	}
	for _, name := range free {
		spine = append(spine, t.moduleNodes[name])
	}
	if len(spine) == 0 {
		return nil
	}

	t.root = spine[0]
	for i := 1; i < len(spine); i++ {
		spine[i-1].setLeft(spine[i])
	}
	t.registerSubtree(t.root)
	return nil
}

// constructSymmetryIslands builds one ASF-B*-tree per group and wraps each in
// a hierarchy node.
func (t *HBTree) constructSymmetryIslands() error {
	for _, g := range t.groups {
		asf := NewASFBTree(g)
		for _, name := range g.Members() {
			if m, ok := t.modules[name]; ok {
				asf.AddModule(m)
			}
		}
		if err := asf.ConstructInitial(); err != nil {
			return err
		}
		t.groupNodes[g.Name] = newHierarchyNode(g.Name, asf)
	}
	return nil
}

// freeModuleNames returns the modules outside every symmetry group.
func (t *HBTree) freeModuleNames() []string {
	inGroup := make(map[string]struct{})
	for _, g := range t.groups {
		for _, name := range g.Members() {
			inGroup[name] = struct{}{}
		}
	}
	var free []string
	for name := range t.modules {
		if _, ok := inGroup[name]; !ok {
			free = append(free, name)
		}
	}
	return free
}

// clearTree drops the node structure while keeping modules and groups.
func (t *HBTree) clearTree() {
	t.root = nil
	t.moduleNodes = make(map[string]*HBNode)
	t.groupNodes = make(map[string]*HBNode)
	t.nodes = make(map[string]*HBNode)
	t.dirty = make(map[*HBNode]struct{})
	t.packed = false
	t.area = 0
}

// registerSubtree indexes node and its descendants by name.
func (t *HBTree) registerSubtree(node *HBNode) {
	if node == nil {
		return
	}
	t.nodes[node.name] = node
	t.registerSubtree(node.left)
	t.registerSubtree(node.right)
}

// unregisterSubtree removes node and its descendants from the name index.
func (t *HBTree) unregisterSubtree(node *HBNode) {
	if node == nil {
		return
	}
	delete(t.nodes, node.name)
	t.unregisterSubtree(node.left)
	t.unregisterSubtree(node.right)
}

// FindNode returns the node with the given name, or nil.
func (t *HBTree) FindNode(name string) *HBNode { return t.nodes[name] }

// Root returns the root of the tree, or nil before construction.
func (t *HBTree) Root() *HBNode { return t.root }

// Modules returns the module map keyed by name. Callers must not mutate it.
func (t *HBTree) Modules() map[string]*Module { return t.modules }

// SymmetryGroups returns the registered symmetry groups.
func (t *HBTree) SymmetryGroups() []*SymmetryGroup { return t.groups }

// Area returns the bounding-box area of the packed placement, 0 if the tree
// has not been packed.
func (t *HBTree) Area() int {
	if !t.packed {
		return 0
	}
	return t.area
}

// IsPacked reports whether the current structure has been packed.
func (t *HBTree) IsPacked() bool { return t.packed }

// groupOf returns the symmetry group containing name, or nil.
func (t *HBTree) groupOf(name string) *SymmetryGroup {
	for _, g := range t.groups {
		if g.Contains(name) {
			return g
		}
	}
	return nil
}

// Validate checks cross-structure invariants: every registered node name
// resolves, every group member has a module, and no module is claimed by two
// hierarchy nodes. A violation indicates internal corruption and is returned
// as an INTERNAL error; callers should treat it as fatal.
func (t *HBTree) Validate() error {
	claimed := make(map[string]string)
	for groupName, node := range t.groupNodes {
		if node.asf == nil {
			return errors.New(errors.ErrCodeInternal, "hierarchy node %q has no island tree", groupName)
		}
		for name := range node.asf.Modules() {
			if prev, ok := claimed[name]; ok {
				return errors.New(errors.ErrCodeInternal,
					"module %q claimed by hierarchy nodes %q and %q", name, prev, groupName)
			}
			claimed[name] = groupName
			if _, ok := t.modules[name]; !ok {
				return errors.New(errors.ErrCodeInternal, "island module %q missing from module map", name)
			}
		}
	}
	for name := range t.moduleNodes {
		if _, ok := t.modules[name]; !ok {
			return errors.New(errors.ErrCodeInternal, "free node %q missing from module map", name)
		}
		if prev, ok := claimed[name]; ok {
			return errors.New(errors.ErrCodeInternal, "module %q is free but claimed by group %q", name, prev)
		}
	}
	return nil
}

// Clone returns a structurally independent deep copy preserving module
// positions, tree structure, and packed state. Mutating the clone never
// affects the original.
func (t *HBTree) Clone() *HBTree {
	clone := NewHBTree()

	for name, m := range t.modules {
		clone.modules[name] = m.Clone()
	}
	groupClones := make(map[string]*SymmetryGroup, len(t.groups))
	for _, g := range t.groups {
		gc := g.Clone()
		groupClones[g.Name] = gc
		clone.groups = append(clone.groups, gc)
	}
	clone.nets = append([]Net(nil), t.nets...)

	var copyNode func(n *HBNode) *HBNode
	copyNode = func(n *HBNode) *HBNode {
		if n == nil {
			return nil
		}
		c := &HBNode{
			kind:    n.kind,
			name:    n.name,
			islandX: n.islandX, islandY: n.islandY, islandW: n.islandW, islandH: n.islandH,
			x1: n.x1, y1: n.y1, x2: n.x2, y2: n.y2,
		}
		if n.asf != nil {
			c.asf = n.asf.cloneWith(groupClones[n.asf.group.Name], clone.modules)
		}
		c.setLeft(copyNode(n.left))
		c.setRight(copyNode(n.right))
		switch c.kind {
		case NodeKindModule:
			clone.moduleNodes[c.name] = c
		case NodeKindHierarchy:
			clone.groupNodes[c.name] = c
		}
		return c
	}
	clone.root = copyNode(t.root)
	clone.registerSubtree(clone.root)

	clone.horizontal = t.horizontal.Clone()
	clone.vertical = t.vertical.Clone()
	clone.area = t.area
	clone.packed = t.packed
	return clone
}
