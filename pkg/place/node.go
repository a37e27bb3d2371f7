package place

// NodeKind distinguishes the three kinds of HB*-tree nodes.
type NodeKind int

const (
	// NodeKindModule is a free module outside every symmetry group.
	NodeKindModule NodeKind = iota
	// NodeKindHierarchy owns one ASF-B*-tree and stands for a whole
	// symmetry island.
	NodeKindHierarchy
	// NodeKindContour mirrors one segment of the top envelope of its
	// hierarchy parent's island; other nodes attach to the island through it.
	NodeKindContour
)

// String returns a short lower-case kind name for logs and debug output.
func (k NodeKind) String() string {
	switch k {
	case NodeKindHierarchy:
		return "hierarchy"
	case NodeKindContour:
		return "contour"
	default:
		return "module"
	}
}

// HBNode is a node of the hierarchical B*-tree. Kind and name are immutable
// after construction. Children are owned by their parent; the parent link is
// a non-owning back-reference.
type HBNode struct {
	kind   NodeKind
	name   string
	left   *HBNode
	right  *HBNode
	parent *HBNode

	// Hierarchy payload.
	asf                                *ASFBTree
	islandX, islandY, islandW, islandH int // placed island rectangle

	// Contour payload: one segment of the island's top envelope.
	x1, y1, x2, y2 int
}

func newModuleNode(name string) *HBNode {
	return &HBNode{kind: NodeKindModule, name: name}
}

func newHierarchyNode(name string, asf *ASFBTree) *HBNode {
	return &HBNode{kind: NodeKindHierarchy, name: name, asf: asf}
}

func newContourNode(name string, x1, y1, x2, y2 int) *HBNode {
	return &HBNode{kind: NodeKindContour, name: name, x1: x1, y1: y1, x2: x2, y2: y2}
}

// Kind returns the node kind.
func (n *HBNode) Kind() NodeKind { return n.kind }

// Name returns the node name: a module name, a symmetry group name, or a
// generated contour identifier.
func (n *HBNode) Name() string { return n.name }

// Left returns the left child (the node placed immediately to the right).
func (n *HBNode) Left() *HBNode { return n.left }

// Right returns the right child (the node placed above).
func (n *HBNode) Right() *HBNode { return n.right }

// Parent returns the parent node, or nil for the root.
func (n *HBNode) Parent() *HBNode { return n.parent }

// ASF returns the island tree of a hierarchy node, nil otherwise.
func (n *HBNode) ASF() *ASFBTree { return n.asf }

// ContourSpan returns the segment coordinates of a contour node.
func (n *HBNode) ContourSpan() (x1, y1, x2, y2 int) {
	return n.x1, n.y1, n.x2, n.y2
}

// IsLeaf reports whether the node has no children.
func (n *HBNode) IsLeaf() bool { return n.left == nil && n.right == nil }

// IsLeftChild reports whether the node is its parent's left child.
func (n *HBNode) IsLeftChild() bool { return n.parent != nil && n.parent.left == n }

// IsRightChild reports whether the node is its parent's right child.
func (n *HBNode) IsRightChild() bool { return n.parent != nil && n.parent.right == n }

// setLeft attaches child as the left child, maintaining its parent link.
// The previous left child, if any, is orphaned.
func (n *HBNode) setLeft(child *HBNode) {
	n.left = child
	if child != nil {
		child.parent = n
	}
}

// setRight attaches child as the right child, maintaining its parent link.
func (n *HBNode) setRight(child *HBNode) {
	n.right = child
	if child != nil {
		child.parent = n
	}
}

// isDescendantOf reports whether n lies in the subtree rooted at ancestor.
func (n *HBNode) isDescendantOf(ancestor *HBNode) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// depth returns the number of ancestors above n.
func (n *HBNode) depth() int {
	d := 0
	for cur := n.parent; cur != nil; cur = cur.parent {
		d++
	}
	return d
}
