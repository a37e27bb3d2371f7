package place

// Perturbation operators for the annealing driver. Every operator validates
// its names first and returns false without touching state when a name is
// unknown or the operation is not allowed. After a successful structural
// change the affected subtrees are marked stale and, if the tree was packed,
// repacked incrementally.

// RotateModule rotates a module. Modules inside a symmetry group delegate to
// their island so the mirror partner stays consistent; free modules rotate
// in place.
func (t *HBTree) RotateModule(name string) bool {
	if _, ok := t.modules[name]; !ok {
		return false
	}

	if g := t.groupOf(name); g != nil {
		hier := t.groupNodes[g.Name]
		if hier == nil || hier.asf == nil {
			return false
		}
		if !hier.asf.RotateModule(name) {
			return false
		}
		t.markForRepack(hier)
		if t.packed {
			t.repackAffected()
		}
		return true
	}

	node := t.moduleNodes[name]
	if node == nil {
		return false
	}
	t.modules[name].Rotate()
	t.markForRepack(node)
	if t.packed {
		t.repackAffected()
	}
	return true
}

// MoveNode detaches the named node and re-attaches it under newParent as its
// left or right child. A child already occupying the slot is re-homed: first
// into an empty child slot of the moved node, otherwise at the end of the
// moved node's leftmost (or rightmost) path.
//
// The root cannot move (every candidate parent lies in its own subtree), and
// contour nodes are placement bookkeeping rather than movable content.
func (t *HBTree) MoveNode(name, newParent string, asLeftChild bool) bool {
	node := t.FindNode(name)
	parent := t.FindNode(newParent)
	if node == nil || parent == nil || node == parent {
		return false
	}
	if node.kind == NodeKindContour || parent.isDescendantOf(node) {
		return false
	}

	if old := node.parent; old != nil {
		if old.left == node {
			old.left = nil
		} else if old.right == node {
			old.right = nil
		}
		node.parent = nil
		t.markForRepack(old)
	}

	displaced := parent.right
	if asLeftChild {
		displaced = parent.left
	}
	if displaced != nil {
		switch {
		case node.left == nil:
			node.setLeft(displaced)
		case node.right == nil:
			node.setRight(displaced)
		case asLeftChild:
			cur := node.left
			for cur.left != nil {
				cur = cur.left
			}
			cur.setLeft(displaced)
		default:
			cur := node.right
			for cur.right != nil {
				cur = cur.right
			}
			cur.setRight(displaced)
		}
		t.markForRepack(displaced)
	}

	if asLeftChild {
		parent.setLeft(node)
	} else {
		parent.setRight(node)
	}

	t.markForRepack(parent)
	t.markForRepack(node)
	if t.packed {
		t.repackAffected()
	}
	return true
}

// SwapNodes exchanges the positions of two nodes; the children stay where
// they are, so each node takes over the other's children. Direct
// parent-child pairs are handled specially so the subtree stays
// well-formed. Applying the same swap twice restores the original structure.
func (t *HBTree) SwapNodes(name1, name2 string) bool {
	n1 := t.FindNode(name1)
	n2 := t.FindNode(name2)
	if n1 == nil || n2 == nil || n1 == n2 {
		return false
	}
	if n1.kind == NodeKindContour || n2.kind == NodeKindContour {
		return false
	}

	t.markForRepack(n1)
	t.markForRepack(n2)

	switch {
	case n1.left == n2 || n1.right == n2:
		t.swapWithChild(n1, n2)
	case n2.left == n1 || n2.right == n1:
		t.swapWithChild(n2, n1)
	default:
		t.swapUnrelated(n1, n2)
	}

	if t.packed {
		t.repackAffected()
	}
	return true
}

// swapWithChild exchanges a parent with its direct child.
func (t *HBTree) swapWithChild(parent, child *HBNode) {
	grand := parent.parent
	parentWasLeft := parent.IsLeftChild()
	childWasLeft := parent.left == child

	// The parent takes the child's old slot and the child's children; the
	// child takes the parent's place and keeps the parent's other child.
	childLeft, childRight := child.left, child.right
	var sibling *HBNode
	siblingWasLeft := false
	if childWasLeft {
		sibling = parent.right
	} else {
		sibling = parent.left
		siblingWasLeft = true
	}

	child.left, child.right = nil, nil
	parent.left, parent.right = nil, nil

	parent.setLeft(childLeft)
	parent.setRight(childRight)
	if childWasLeft {
		child.setLeft(parent)
	} else {
		child.setRight(parent)
	}
	if siblingWasLeft {
		child.setLeft(sibling)
	} else {
		child.setRight(sibling)
	}

	if grand != nil {
		if parentWasLeft {
			grand.setLeft(child)
		} else {
			grand.setRight(child)
		}
	} else {
		t.root = child
		child.parent = nil
	}
}

// swapUnrelated exchanges two nodes with no direct parent-child relation.
func (t *HBTree) swapUnrelated(n1, n2 *HBNode) {
	p1, p2 := n1.parent, n2.parent
	n1WasLeft := n1.IsLeftChild()
	n2WasLeft := n2.IsLeftChild()

	l1, r1 := n1.left, n1.right
	l2, r2 := n2.left, n2.right

	n1.setLeft(l2)
	n1.setRight(r2)
	n2.setLeft(l1)
	n2.setRight(r1)

	attach := func(p *HBNode, wasLeft bool, n *HBNode) {
		if p == nil {
			t.root = n
			n.parent = nil
			return
		}
		if wasLeft {
			p.setLeft(n)
		} else {
			p.setRight(n)
		}
	}
	attach(p1, n1WasLeft, n2)
	attach(p2, n2WasLeft, n1)
}

// ChangeRepresentative swaps the stored representative of the pair
// containing module within the named group.
func (t *HBTree) ChangeRepresentative(group, module string) bool {
	hier := t.groupNodes[group]
	if hier == nil || hier.asf == nil {
		return false
	}
	if !hier.asf.ChangeRepresentative(module) {
		return false
	}
	t.markForRepack(hier)
	if t.packed {
		t.repackAffected()
	}
	return true
}

// ConvertSymmetryType switches the named group between vertical and
// horizontal symmetry.
func (t *HBTree) ConvertSymmetryType(group string) bool {
	hier := t.groupNodes[group]
	if hier == nil || hier.asf == nil {
		return false
	}
	if !hier.asf.ConvertSymmetryType() {
		return false
	}
	t.markForRepack(hier)
	if t.packed {
		t.repackAffected()
	}
	return true
}
