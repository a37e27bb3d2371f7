// Package treedot renders the structure of an HB*-tree as a Graphviz
// diagram. It is a debugging aid: the diagram shows node kinds, tree links,
// and each island's internal state at a glance.
package treedot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/symplace/pkg/place"
)

// ToDOT converts the tree structure to Graphviz DOT format. Hierarchy nodes
// are drawn as double octagons, contour nodes with dashed outlines, and left
// and right child edges are labeled so the B*-tree semantics stay readable.
func ToDOT(tree *place.HBTree) string {
	var buf bytes.Buffer
	buf.WriteString("digraph hbtree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"monospace\"];\n\n")

	var walk func(n *place.HBNode)
	walk = func(n *place.HBNode) {
		if n == nil {
			return
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name(), nodeAttrs(tree, n))
		if n.Left() != nil {
			fmt.Fprintf(&buf, "  %q -> %q [label=\"L\"];\n", n.Name(), n.Left().Name())
			walk(n.Left())
		}
		if n.Right() != nil {
			fmt.Fprintf(&buf, "  %q -> %q [label=\"R\", style=dashed];\n", n.Name(), n.Right().Name())
			walk(n.Right())
		}
	}
	walk(tree.Root())

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(tree *place.HBTree, n *place.HBNode) string {
	switch n.Kind() {
	case place.NodeKindHierarchy:
		label := n.Name()
		if asf := n.ASF(); asf != nil {
			label = fmt.Sprintf("%s\\n%s axis @ %.1f", n.Name(), asf.Group().Axis, asf.AxisPosition())
		}
		return fmt.Sprintf("label=%q, shape=doubleoctagon, fillcolor=\"#f4e3db\"", label)
	case place.NodeKindContour:
		x1, y1, x2, _ := n.ContourSpan()
		label := fmt.Sprintf("%s\\n[%d,%d) @ %d", n.Name(), x1, x2, y1)
		return fmt.Sprintf("label=%q, style=\"rounded,filled,dashed\", fillcolor=\"#eeeeee\"", label)
	default:
		label := n.Name()
		if m, ok := tree.Modules()[n.Name()]; ok {
			label = fmt.Sprintf("%s\\n%dx%d @ (%d,%d)", m.Name, m.Width, m.Height, m.X, m.Y)
		}
		return fmt.Sprintf("label=%q", label)
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
