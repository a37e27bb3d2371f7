package place

import (
	"fmt"
	"sort"
)

// Pack computes coordinates for every module by packing the whole tree from
// scratch: contours are reset, the tree is traversed pre-order, the islands'
// top envelopes are re-exposed as contour nodes, and the bounding-box area is
// recomputed. Returns false on an empty tree.
//
// Pack is idempotent and is the authoritative cost evaluation. The
// incremental repacking performed inside perturbation operators reuses the
// existing contours and may over-estimate heights; callers needing exact
// cost must go through Pack.
func (t *HBTree) Pack() bool {
	if t.root == nil {
		return false
	}

	t.horizontal.Clear()
	t.vertical.Clear()
	t.packSubtree(t.root)
	t.recomputeArea()
	t.updateContourNodes()
	t.dirty = make(map[*HBNode]struct{})
	t.packed = true
	return true
}

// packSubtree places node and its descendants against the current contours.
func (t *HBTree) packSubtree(node *HBNode) {
	if node == nil {
		return
	}

	switch node.kind {
	case NodeKindModule:
		m := t.modules[node.name]
		if m == nil {
			return
		}
		x := t.childX(node)
		y := t.horizontal.Height(x, x+m.Width)
		m.X, m.Y = x, y
		t.horizontal.AddSegment(x, x+m.Width, y+m.Height)
		t.vertical.AddSegment(y, y+m.Height, x+m.Width)

	case NodeKindHierarchy:
		asf := node.asf
		if asf == nil {
			return
		}
		asf.Pack()
		xmin, ymin, xmax, ymax := asf.BoundingBox()
		w, h := xmax-xmin, ymax-ymin

		x := t.childX(node)
		y := t.horizontal.Height(x, x+w)

		asf.translate(x-xmin, y-ymin)
		node.islandX, node.islandY, node.islandW, node.islandH = x, y, w, h

		t.horizontal.AddSegment(x, x+w, y+h)
		t.vertical.AddSegment(y, y+h, x+w)

	case NodeKindContour:
		// Contour nodes carry no geometry of their own.
	}

	t.packSubtree(node.left)
	t.packSubtree(node.right)
}

// childX derives a node's x-coordinate from its parent per the outer B*-tree
// rules: a left child starts at the parent's rightmost extent, a right child
// at its leftmost.
func (t *HBTree) childX(node *HBNode) int {
	p := node.parent
	if p == nil {
		return 0
	}

	if node.IsLeftChild() {
		switch p.kind {
		case NodeKindModule:
			if pm := t.modules[p.name]; pm != nil {
				return pm.X + pm.Width
			}
		case NodeKindHierarchy:
			return p.islandX + p.islandW
		case NodeKindContour:
			return p.x2
		}
		return 0
	}

	switch p.kind {
	case NodeKindModule:
		if pm := t.modules[p.name]; pm != nil {
			return pm.X
		}
	case NodeKindHierarchy:
		return p.islandX
	case NodeKindContour:
		return p.x1
	}
	return 0
}

// recomputeArea updates the bounding-box area over all placed modules.
func (t *HBTree) recomputeArea() {
	maxX, maxY := 0, 0
	for _, m := range t.modules {
		maxX = max(maxX, m.X+m.Width)
		maxY = max(maxY, m.Y+m.Height)
	}
	t.area = maxX * maxY
}

// updateContourNodes rebuilds the contour-node chain under every hierarchy
// node from its island's current top envelope. Subtrees that hung off
// removed contour nodes are re-homed onto the nearest surviving contour
// node: as its right child when free, otherwise at the leftmost-skewed end
// of its existing right subtree.
func (t *HBTree) updateContourNodes() {
	for _, g := range t.groups {
		hier := t.groupNodes[g.Name]
		if hier == nil || hier.asf == nil {
			continue
		}

		// Collect the existing chain and every non-contour subtree
		// attached to it, remembering where each subtree used to sit so it
		// can return to the matching stretch of the new envelope.
		type orphan struct {
			node *HBNode
			atX  int
		}
		var oldChain []*HBNode
		var dangling []orphan
		for cur := hier.right; cur != nil && cur.kind == NodeKindContour; {
			oldChain = append(oldChain, cur)
			if cur.right != nil {
				dangling = append(dangling, orphan{cur.right, cur.x1})
			}
			next := cur.left
			if next != nil && next.kind != NodeKindContour {
				// Tail of the chain carries a regular subtree.
				dangling = append(dangling, orphan{next, cur.x2})
				next = nil
			}
			cur = next
		}
		for _, n := range oldChain {
			delete(t.nodes, n.name)
		}
		// A regular right child of the hierarchy node itself also dangles:
		// the new chain will take its slot.
		if hier.right != nil && hier.right.kind != NodeKindContour {
			dangling = append(dangling, orphan{hier.right, hier.islandX})
		}

		segments := hier.asf.TopContour().Segments()
		chain := make([]*HBNode, len(segments))
		for i, s := range segments {
			name := fmt.Sprintf("%s_contour_%d", g.Name, i)
			chain[i] = newContourNode(name, s.Start, s.Height, s.End, s.Height)
			t.nodes[name] = chain[i]
		}

		hier.right = nil
		if len(chain) > 0 {
			hier.setRight(chain[0])
			for i := 0; i+1 < len(chain); i++ {
				chain[i].setLeft(chain[i+1])
			}
		}

		for _, o := range dangling {
			t.rehomeDanglingSubtree(o.node, o.atX, chain)
		}
	}
}

// rehomeDanglingSubtree re-attaches a subtree orphaned by a contour-node
// reshuffle. The nearest surviving contour node (by x-coordinate within the
// rebuilt chain) adopts it as right child when that slot is free; otherwise
// the subtree descends to the leftmost-skewed end of the occupying right
// subtree. With no chain left, the subtree returns to the deepest left slot
// of the whole tree.
func (t *HBTree) rehomeDanglingSubtree(node *HBNode, atX int, chain []*HBNode) {
	if node == nil {
		return
	}
	host := nearestBySpan(chain, atX)
	if host == nil {
		cur := t.root
		if cur == nil || cur == node {
			return
		}
		for cur.left != nil {
			cur = cur.left
		}
		cur.setLeft(node)
		return
	}
	if host.right == nil {
		host.setRight(node)
		return
	}
	cur := host.right
	for cur.left != nil {
		cur = cur.left
	}
	cur.setLeft(node)
}

// nearestBySpan picks the contour node whose segment contains x, or failing
// that the one whose start is closest to x.
func nearestBySpan(chain []*HBNode, x int) *HBNode {
	var best *HBNode
	bestDist := 0
	for _, n := range chain {
		if n.x1 <= x && x < n.x2 {
			return n
		}
		dist := n.x1 - x
		if dist < 0 {
			dist = -dist
		}
		if best == nil || dist < bestDist {
			best, bestDist = n, dist
		}
	}
	return best
}

// markForRepack records node and all its ancestors as stale.
func (t *HBTree) markForRepack(node *HBNode) {
	for cur := node; cur != nil; cur = cur.parent {
		t.dirty[cur] = struct{}{}
	}
}

// repackAffected repacks only the stale portions of the tree: the topmost
// dirty nodes (those without a dirty ancestor), deepest first. The existing
// contours are reused, which can over-estimate heights when subtrees shift;
// the annealing driver re-evaluates cost through Pack before accepting a
// state.
func (t *HBTree) repackAffected() {
	if len(t.dirty) == 0 {
		return
	}

	var tops []*HBNode
	for node := range t.dirty {
		topmost := true
		for p := node.parent; p != nil; p = p.parent {
			if _, ok := t.dirty[p]; ok {
				topmost = false
				break
			}
		}
		if topmost {
			tops = append(tops, node)
		}
	}

	sort.Slice(tops, func(i, j int) bool {
		di, dj := tops[i].depth(), tops[j].depth()
		if di != dj {
			return di > dj
		}
		return tops[i].name < tops[j].name
	})

	for _, node := range tops {
		t.packSubtree(node)
	}
	t.recomputeArea()
	t.dirty = make(map[*HBNode]struct{})
}

// Net is one logical connection: the set of module names it spans.
type Net struct {
	Name string
	Pins []string
}

// WireLength returns the half-perimeter wirelength over the attached
// netlist, computed from module centers. Returns 0 when no netlist is set or
// the tree is not packed.
func (t *HBTree) WireLength() float64 {
	if !t.packed || len(t.nets) == 0 {
		return 0
	}
	total := 0.0
	for _, net := range t.nets {
		first := true
		var minX, maxX, minY, maxY float64
		for _, pin := range net.Pins {
			m, ok := t.modules[pin]
			if !ok {
				continue
			}
			cx, cy := m.CenterX(), m.CenterY()
			if first {
				minX, maxX, minY, maxY = cx, cx, cy, cy
				first = false
				continue
			}
			minX = min(minX, cx)
			maxX = max(maxX, cx)
			minY = min(minY, cy)
			maxY = max(maxY, cy)
		}
		if !first {
			total += (maxX - minX) + (maxY - minY)
		}
	}
	return total
}
