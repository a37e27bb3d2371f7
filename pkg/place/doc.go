// Package place implements a floorplan placement engine for analog designs
// with symmetry constraints.
//
// The engine places rectangular modules to minimize area (optionally weighted
// with wirelength) while keeping designated symmetry groups laid out as
// contiguous symmetry islands: every symmetry pair mirrors across a common
// axis and every self-symmetric module is centered on it.
//
// # Architecture
//
// Three data structures cooperate:
//
//   - Contour: a skyline over one axis supporting range-height queries and
//     range-top updates. One horizontal and one vertical contour track the
//     upper envelope of everything placed so far.
//   - ASFBTree: a symmetric-feasible B*-tree representing one symmetry
//     island. It stores only pair representatives; mirroring completes the
//     island at pack time.
//   - HBTree: the outer hierarchical B*-tree. Its nodes are free modules,
//     hierarchy nodes (one per symmetry island), or contour nodes that expose
//     an island's top envelope to the rest of the tree.
//
// # Usage
//
//	tree := place.NewHBTree()
//	tree.AddModule(&place.Module{Name: "amp1", Width: 4, Height: 3})
//	tree.AddModule(&place.Module{Name: "amp2", Width: 4, Height: 3})
//	tree.AddSymmetryGroup(&place.SymmetryGroup{
//	    Name:  "diff",
//	    Axis:  place.AxisVertical,
//	    Pairs: []place.Pair{{A: "amp1", B: "amp2"}},
//	})
//	if err := tree.ConstructInitialTree(); err != nil {
//	    return err
//	}
//	tree.Pack()
//	area := tree.Area()
//
// A simulated-annealing driver perturbs the tree through RotateModule,
// MoveNode, SwapNodes, ChangeRepresentative, and ConvertSymmetryType, reads
// the cost after packing, and rolls back via Clone. The engine is not safe
// for concurrent use.
package place
