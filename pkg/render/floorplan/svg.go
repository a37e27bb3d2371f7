// Package floorplan renders a packed placement as an SVG drawing.
//
// Free modules and symmetry-island members get distinct fills, and every
// symmetry axis is drawn as a dashed line across its island, which makes
// mirror violations visible at a glance.
package floorplan

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/matzehuels/symplace/pkg/place"
)

const (
	fillFree   = "#dbe9f4"
	fillIsland = "#f4e3db"
	stroke     = "#333333"
	axisColor  = "#c0392b"

	scale   = 20.0 // drawing units per placement unit
	padding = 12.0
	minFont = 4.0
)

// RenderSVG draws the current placement of a packed tree.
func RenderSVG(tree *place.HBTree) []byte {
	maxX, maxY := 0, 0
	for _, m := range tree.Modules() {
		maxX = max(maxX, m.X+m.Width)
		maxY = max(maxY, m.Y+m.Height)
	}
	width := float64(maxX)*scale + 2*padding
	height := float64(maxY)*scale + 2*padding

	inGroup := make(map[string]bool)
	for _, g := range tree.SymmetryGroups() {
		for _, name := range g.Members() {
			inGroup[name] = true
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="white"/>`+"\n")

	// SVG y grows downward; placement y grows upward.
	flipY := func(y, h int) float64 {
		return padding + (float64(maxY)-float64(y)-float64(h))*scale
	}

	names := make([]string, 0, len(tree.Modules()))
	for name := range tree.Modules() {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := tree.Modules()[name]
		fill := fillFree
		if inGroup[name] {
			fill = fillIsland
		}
		x := padding + float64(m.X)*scale
		y := flipY(m.Y, m.Height)
		w := float64(m.Width) * scale
		h := float64(m.Height) * scale
		fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
			x, y, w, h, fill, stroke)

		font := max(minFont, min(w, h)/3)
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" dominant-baseline="middle" font-family="monospace">%s</text>`+"\n",
			x+w/2, y+h/2, font, m.Name)
	}

	for _, g := range tree.SymmetryGroups() {
		node := tree.FindNode(g.Name)
		if node == nil || node.ASF() == nil {
			continue
		}
		at := node.ASF().AxisPosition()
		xmin, ymin, xmax, ymax := node.ASF().BoundingBox()
		if g.Axis == place.AxisVertical {
			x := padding + at*scale
			fmt.Fprintf(&buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1" stroke-dasharray="4,3"/>`+"\n",
				x, flipY(ymax, 0), x, flipY(ymin, 0), axisColor)
		} else {
			y := padding + (float64(maxY)-at)*scale
			fmt.Fprintf(&buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1" stroke-dasharray="4,3"/>`+"\n",
				padding+float64(xmin)*scale, y, padding+float64(xmax)*scale, y, axisColor)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
