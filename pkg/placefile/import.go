// Package placefile reads and writes placement problem and solution files.
//
// The input format is line-oriented:
//
//	MODULE <name> <width> <height>
//	SYMMETRY <group> {PAIR <a> <b> | SELF <m>}... [AXIS VERTICAL|HORIZONTAL]
//	NET <name> <pin>...
//
// Blank lines and lines starting with '#' are ignored. The output format is
// one line per module, "<name> <x> <y> <rotated 0|1>", followed by a final
// "AREA <total>" line.
package placefile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/symplace/pkg/errors"
	"github.com/matzehuels/symplace/pkg/place"
)

// Problem bundles everything a placement run consumes.
type Problem struct {
	Modules []*place.Module
	Groups  []*place.SymmetryGroup
	Nets    []place.Net
}

// NewTree builds a fresh engine instance loaded with the problem.
func (p *Problem) NewTree() (*place.HBTree, error) {
	tree := place.NewHBTree()
	for _, m := range p.Modules {
		if err := tree.AddModule(m.Clone()); err != nil {
			return nil, err
		}
	}
	for _, g := range p.Groups {
		if err := tree.AddSymmetryGroup(g.Clone()); err != nil {
			return nil, err
		}
	}
	tree.SetNetlist(p.Nets)
	return tree, nil
}

// Read parses a problem from r.
func Read(r io.Reader) (*Problem, error) {
	problem := &Problem{}
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := splitFields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "MODULE":
			m, err := parseModule(fields[1:])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "line %d", lineNo)
			}
			if _, dup := seen[m.Name]; dup {
				return nil, errors.New(errors.ErrCodeDuplicateModule, "line %d: module %q already declared", lineNo, m.Name)
			}
			seen[m.Name] = struct{}{}
			problem.Modules = append(problem.Modules, m)

		case "SYMMETRY":
			g, err := parseSymmetry(fields[1:])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "line %d", lineNo)
			}
			problem.Groups = append(problem.Groups, g)

		case "NET":
			if len(fields) < 3 {
				return nil, errors.New(errors.ErrCodeParse, "line %d: NET needs a name and at least one pin", lineNo)
			}
			problem.Nets = append(problem.Nets, place.Net{Name: fields[1], Pins: fields[2:]})

		default:
			return nil, errors.New(errors.ErrCodeParse, "line %d: unknown record %q", lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read problem")
	}
	return problem, nil
}

// Import reads a problem file from disk.
func Import(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}

func parseModule(fields []string) (*place.Module, error) {
	if len(fields) != 3 {
		return nil, fmt.Errorf("MODULE needs name, width, and height")
	}
	width, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("invalid width %q", fields[1])
	}
	height, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("invalid height %q", fields[2])
	}
	m := &place.Module{Name: fields[0], Width: width, Height: height}
	if err := errors.ValidateName(m.Name); err != nil {
		return nil, err
	}
	if err := errors.ValidateDimensions(m.Name, width, height); err != nil {
		return nil, err
	}
	return m, nil
}

func parseSymmetry(fields []string) (*place.SymmetryGroup, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("SYMMETRY needs a group name")
	}
	g := &place.SymmetryGroup{Name: fields[0], Axis: place.AxisVertical}

	i := 1
	for i < len(fields) {
		switch fields[i] {
		case "PAIR":
			if i+2 >= len(fields) {
				return nil, fmt.Errorf("PAIR needs two module names")
			}
			g.Pairs = append(g.Pairs, place.Pair{A: fields[i+1], B: fields[i+2]})
			i += 3
		case "SELF":
			if i+1 >= len(fields) {
				return nil, fmt.Errorf("SELF needs a module name")
			}
			g.SelfSymmetric = append(g.SelfSymmetric, fields[i+1])
			i += 2
		case "AXIS":
			if i+1 >= len(fields) {
				return nil, fmt.Errorf("AXIS needs VERTICAL or HORIZONTAL")
			}
			switch fields[i+1] {
			case "VERTICAL":
				g.Axis = place.AxisVertical
			case "HORIZONTAL":
				g.Axis = place.AxisHorizontal
			default:
				return nil, fmt.Errorf("unknown axis %q", fields[i+1])
			}
			i += 2
		default:
			return nil, fmt.Errorf("unexpected token %q in SYMMETRY record", fields[i])
		}
	}
	return g, g.Validate()
}

// splitFields tokenizes a line, dropping comments and brace punctuation so
// both "SYMMETRY G { PAIR a b }" and "SYMMETRY G PAIR a b" parse.
func splitFields(line string) []string {
	var fields []string
	field := ""
	flush := func() {
		if field != "" {
			fields = append(fields, field)
			field = ""
		}
	}
	for _, r := range line {
		switch r {
		case '#':
			flush()
			return fields
		case ' ', '\t', '\r', '{', '}':
			flush()
		default:
			field += string(r)
		}
	}
	flush()
	return fields
}
