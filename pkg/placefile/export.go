package placefile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/matzehuels/symplace/pkg/anneal"
	"github.com/matzehuels/symplace/pkg/errors"
	"github.com/matzehuels/symplace/pkg/place"
)

// Write emits the solution in the text output format: one line per module
// sorted by name, then the final AREA line.
func Write(w io.Writer, tree *place.HBTree) error {
	bw := bufio.NewWriter(w)

	names := make([]string, 0, len(tree.Modules()))
	for name := range tree.Modules() {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := tree.Modules()[name]
		rotated := 0
		if m.Rotated {
			rotated = 1
		}
		if _, err := fmt.Fprintf(bw, "%s %d %d %d\n", m.Name, m.X, m.Y, rotated); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write solution")
		}
	}
	if _, err := fmt.Fprintf(bw, "AREA %d\n", tree.Area()); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write solution")
	}
	return bw.Flush()
}

// Export writes the solution file at path.
func Export(path string, tree *place.HBTree) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	defer f.Close()
	return Write(f, tree)
}

// Result is the JSON solution document served by the HTTP API and written by
// tooling.
type Result struct {
	Modules []PlacedModule `json:"modules"`
	Groups  []GroupResult  `json:"groups,omitempty"`
	Area    int            `json:"area"`
	Stats   *anneal.Stats  `json:"stats,omitempty"`
}

// PlacedModule is one module's placement in the JSON document.
type PlacedModule struct {
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Rotated bool   `json:"rotated"`
}

// GroupResult reports a symmetry group's axis after packing.
type GroupResult struct {
	Name string  `json:"name"`
	Axis string  `json:"axis"`
	At   float64 `json:"at"`
}

// NewResult assembles the JSON document from a packed tree.
func NewResult(tree *place.HBTree, stats *anneal.Stats) Result {
	res := Result{Area: tree.Area(), Stats: stats}

	names := make([]string, 0, len(tree.Modules()))
	for name := range tree.Modules() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m := tree.Modules()[name]
		res.Modules = append(res.Modules, PlacedModule{
			Name: m.Name, X: m.X, Y: m.Y,
			Width: m.Width, Height: m.Height, Rotated: m.Rotated,
		})
	}

	for _, g := range tree.SymmetryGroups() {
		gr := GroupResult{Name: g.Name, Axis: g.Axis.String()}
		if node := tree.FindNode(g.Name); node != nil && node.ASF() != nil {
			gr.At = node.ASF().AxisPosition()
		}
		res.Groups = append(res.Groups, gr)
	}
	return res
}

// WriteJSON encodes the solution document to w with indentation.
func WriteJSON(w io.Writer, res Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode result")
	}
	return nil
}
