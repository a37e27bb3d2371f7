package place

import (
	"testing"
)

// checkNoOverlap asserts that no two placed modules intersect.
func checkNoOverlap(t *testing.T, modules map[string]*Module) {
	t.Helper()
	var list []*Module
	for _, m := range modules {
		list = append(list, m)
	}
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			a, b := list[i], list[j]
			if a.X < b.X+b.Width && b.X < a.X+a.Width &&
				a.Y < b.Y+b.Height && b.Y < a.Y+a.Height {
				t.Errorf("modules %s and %s overlap: %s at (%d,%d) %dx%d, %s at (%d,%d) %dx%d",
					a.Name, b.Name, a.Name, a.X, a.Y, a.Width, a.Height,
					b.Name, b.X, b.Y, b.Width, b.Height)
			}
		}
	}
}

// checkSymmetry asserts the mirror equations for every group of a packed
// tree.
func checkSymmetry(t *testing.T, tree *HBTree) {
	t.Helper()
	for _, g := range tree.SymmetryGroups() {
		node := tree.FindNode(g.Name)
		if node == nil || node.ASF() == nil {
			t.Errorf("group %s has no hierarchy node", g.Name)
			continue
		}
		if !node.ASF().IsSymmetricFeasible() {
			t.Errorf("group %s is not symmetric-feasible after pack", g.Name)
		}
		axis := node.ASF().AxisPosition()
		for _, p := range g.Pairs {
			a, b := tree.Modules()[p.A], tree.Modules()[p.B]
			if g.Axis == AxisVertical {
				if a.CenterX()+b.CenterX() != 2*axis {
					t.Errorf("group %s pair (%s,%s): centerX sum %v != %v",
						g.Name, p.A, p.B, a.CenterX()+b.CenterX(), 2*axis)
				}
				if a.CenterY() != b.CenterY() {
					t.Errorf("group %s pair (%s,%s): centerY mismatch", g.Name, p.A, p.B)
				}
			} else {
				if a.CenterY()+b.CenterY() != 2*axis {
					t.Errorf("group %s pair (%s,%s): centerY sum %v != %v",
						g.Name, p.A, p.B, a.CenterY()+b.CenterY(), 2*axis)
				}
				if a.CenterX() != b.CenterX() {
					t.Errorf("group %s pair (%s,%s): centerX mismatch", g.Name, p.A, p.B)
				}
			}
		}
		for _, name := range g.SelfSymmetric {
			m := tree.Modules()[name]
			if g.Axis == AxisVertical && m.CenterX() != axis {
				t.Errorf("group %s: %s centerX %v not on axis %v", g.Name, name, m.CenterX(), axis)
			}
			if g.Axis == AxisHorizontal && m.CenterY() != axis {
				t.Errorf("group %s: %s centerY %v not on axis %v", g.Name, name, m.CenterY(), axis)
			}
		}
	}
}

// twoFreeModules builds the A/B fixture: A(4x3) root, B(2x5) as A's left
// child.
func twoFreeModules(t *testing.T) *HBTree {
	t.Helper()
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "A", Width: 4, Height: 3}))
	mustAdd(t, tree.AddModule(&Module{Name: "B", Width: 2, Height: 5}))
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatalf("ConstructInitialTree() error = %v", err)
	}
	return tree
}

func mustAdd(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("add: %v", err)
	}
}

func TestHBTree_PackEmpty(t *testing.T) {
	tree := NewHBTree()
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatalf("ConstructInitialTree() error = %v", err)
	}
	if tree.Pack() {
		t.Error("Pack() = true on empty tree")
	}
	if tree.Area() != 0 {
		t.Errorf("Area() = %d on empty tree, want 0", tree.Area())
	}
}

func TestHBTree_PackSingleModule(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "only", Width: 3, Height: 7}))
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatal(err)
	}
	if !tree.Pack() {
		t.Fatal("Pack() = false")
	}

	m := tree.Modules()["only"]
	if m.X != 0 || m.Y != 0 {
		t.Errorf("module at (%d,%d), want (0,0)", m.X, m.Y)
	}
	if got := tree.Area(); got != 21 {
		t.Errorf("Area() = %d, want 21", got)
	}
}

func TestHBTree_TwoFreeModules(t *testing.T) {
	tree := twoFreeModules(t)

	// Larger module becomes the root, the other its left child.
	if tree.Root().Name() != "A" {
		t.Fatalf("root = %s, want A", tree.Root().Name())
	}
	if tree.Root().Left() == nil || tree.Root().Left().Name() != "B" {
		t.Fatal("A.left is not B")
	}

	if !tree.Pack() {
		t.Fatal("Pack() = false")
	}
	A, B := tree.Modules()["A"], tree.Modules()["B"]
	if A.X != 0 || A.Y != 0 {
		t.Errorf("A at (%d,%d), want (0,0)", A.X, A.Y)
	}
	if B.X != 4 || B.Y != 0 {
		t.Errorf("B at (%d,%d), want (4,0)", B.X, B.Y)
	}
	if got := tree.Area(); got != 30 {
		t.Errorf("Area() = %d, want 30", got)
	}
	checkNoOverlap(t, tree.Modules())
}

func TestHBTree_SymmetryPairIsland(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "L", Width: 2, Height: 3}))
	mustAdd(t, tree.AddModule(&Module{Name: "R", Width: 2, Height: 3}))
	mustAdd(t, tree.AddSymmetryGroup(&SymmetryGroup{
		Name: "G", Axis: AxisVertical, Pairs: []Pair{{A: "L", B: "R"}},
	}))
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatal(err)
	}
	if !tree.Pack() {
		t.Fatal("Pack() = false")
	}

	L, R := tree.Modules()["L"], tree.Modules()["R"]
	if L.X != 0 || L.Y != 0 {
		t.Errorf("L at (%d,%d), want (0,0)", L.X, L.Y)
	}
	if R.X != 2 || R.Y != 0 {
		t.Errorf("R at (%d,%d), want (2,0)", R.X, R.Y)
	}
	node := tree.FindNode("G")
	if node == nil || node.ASF() == nil {
		t.Fatal("hierarchy node G missing")
	}
	if got := node.ASF().AxisPosition(); got != 2 {
		t.Errorf("axis = %v, want 2", got)
	}
	if got := tree.Area(); got != 12 {
		t.Errorf("Area() = %d, want 12", got)
	}
	checkSymmetry(t, tree)
}

func TestHBTree_SelfSymmetricIsland(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "M", Width: 4, Height: 2}))
	mustAdd(t, tree.AddSymmetryGroup(&SymmetryGroup{
		Name: "G", Axis: AxisVertical, SelfSymmetric: []string{"M"},
	}))
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatal(err)
	}
	if !tree.Pack() {
		t.Fatal("Pack() = false")
	}

	M := tree.Modules()["M"]
	if M.X != 0 || M.Y != 0 {
		t.Errorf("M at (%d,%d), want (0,0)", M.X, M.Y)
	}
	if got := tree.FindNode("G").ASF().AxisPosition(); got != 2 {
		t.Errorf("axis = %v, want 2", got)
	}
	if got := tree.Area(); got != 8 {
		t.Errorf("Area() = %d, want 8", got)
	}
	checkSymmetry(t, tree)
}

func TestHBTree_MixedIslandAndFree(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "F", Width: 3, Height: 3}))
	mustAdd(t, tree.AddModule(&Module{Name: "L", Width: 2, Height: 2}))
	mustAdd(t, tree.AddModule(&Module{Name: "R", Width: 2, Height: 2}))
	mustAdd(t, tree.AddSymmetryGroup(&SymmetryGroup{
		Name: "G", Axis: AxisVertical, Pairs: []Pair{{A: "L", B: "R"}},
	}))
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatal(err)
	}

	// Hierarchy node is the root; the free module hangs off its left spine.
	if tree.Root().Name() != "G" {
		t.Fatalf("root = %s, want G", tree.Root().Name())
	}
	if tree.Root().Left() == nil || tree.Root().Left().Name() != "F" {
		t.Fatal("G.left is not F")
	}

	if !tree.Pack() {
		t.Fatal("Pack() = false")
	}
	L, R, F := tree.Modules()["L"], tree.Modules()["R"], tree.Modules()["F"]
	if L.X != 0 || L.Y != 0 || R.X != 2 || R.Y != 0 {
		t.Errorf("island at L(%d,%d) R(%d,%d), want L(0,0) R(2,0)", L.X, L.Y, R.X, R.Y)
	}
	if F.X != 4 || F.Y != 0 {
		t.Errorf("F at (%d,%d), want (4,0)", F.X, F.Y)
	}
	if got := tree.Area(); got != 21 {
		t.Errorf("Area() = %d, want 21", got)
	}
	checkNoOverlap(t, tree.Modules())
	checkSymmetry(t, tree)
}

func TestHBTree_RotateAndRepack(t *testing.T) {
	tree := twoFreeModules(t)
	tree.Pack()

	if !tree.RotateModule("A") {
		t.Fatal("RotateModule(A) = false")
	}
	tree.Pack()

	A, B := tree.Modules()["A"], tree.Modules()["B"]
	if A.Width != 3 || A.Height != 4 {
		t.Errorf("A = %dx%d after rotate, want 3x4", A.Width, A.Height)
	}
	if A.X != 0 || A.Y != 0 || B.X != 3 || B.Y != 0 {
		t.Errorf("A(%d,%d) B(%d,%d), want A(0,0) B(3,0)", A.X, A.Y, B.X, B.Y)
	}
	if got := tree.Area(); got != 25 {
		t.Errorf("Area() = %d, want 25", got)
	}
}

func TestHBTree_RotateTwiceRestoresCoordinates(t *testing.T) {
	tree := twoFreeModules(t)
	tree.Pack()
	ax, ay := tree.Modules()["A"].X, tree.Modules()["A"].Y
	area := tree.Area()

	tree.RotateModule("A")
	tree.RotateModule("A")
	tree.Pack()

	if tree.Modules()["A"].X != ax || tree.Modules()["A"].Y != ay {
		t.Error("double rotate did not restore coordinates")
	}
	if tree.Area() != area {
		t.Errorf("double rotate changed area: %d != %d", tree.Area(), area)
	}
}

func TestHBTree_RotateUnknown(t *testing.T) {
	tree := twoFreeModules(t)
	if tree.RotateModule("nope") {
		t.Error("RotateModule(nope) = true")
	}
}

func TestHBTree_SwapNodes(t *testing.T) {
	tree := twoFreeModules(t)
	tree.Pack()

	if !tree.SwapNodes("A", "B") {
		t.Fatal("SwapNodes(A, B) = false")
	}
	if tree.Root().Name() != "B" {
		t.Fatalf("root = %s after swap, want B", tree.Root().Name())
	}
	if tree.Root().Left() == nil || tree.Root().Left().Name() != "A" {
		t.Fatal("B.left is not A after swap")
	}

	tree.Pack()
	A, B := tree.Modules()["A"], tree.Modules()["B"]
	if B.X != 0 || B.Y != 0 || A.X != 2 || A.Y != 0 {
		t.Errorf("B(%d,%d) A(%d,%d), want B(0,0) A(2,0)", B.X, B.Y, A.X, A.Y)
	}
	checkNoOverlap(t, tree.Modules())
}

func TestHBTree_SwapTwiceRestoresStructure(t *testing.T) {
	tree := twoFreeModules(t)

	tree.SwapNodes("A", "B")
	tree.SwapNodes("B", "A")

	if tree.Root().Name() != "A" {
		t.Fatalf("root = %s after double swap, want A", tree.Root().Name())
	}
	if tree.Root().Left() == nil || tree.Root().Left().Name() != "B" {
		t.Fatal("A.left is not B after double swap")
	}
}

func TestHBTree_SwapUnrelated(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "a", Width: 6, Height: 6}))
	mustAdd(t, tree.AddModule(&Module{Name: "b", Width: 5, Height: 5}))
	mustAdd(t, tree.AddModule(&Module{Name: "c", Width: 4, Height: 4}))
	mustAdd(t, tree.AddModule(&Module{Name: "d", Width: 3, Height: 3}))
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatal(err)
	}
	// Initial spine: a -> b -> c -> d. Swap b and d (not directly related).
	if !tree.SwapNodes("b", "d") {
		t.Fatal("SwapNodes(b, d) = false")
	}

	root := tree.Root()
	if root.Name() != "a" || root.Left().Name() != "d" ||
		root.Left().Left().Name() != "c" || root.Left().Left().Left().Name() != "b" {
		t.Error("swap of unrelated nodes did not exchange positions")
	}

	tree.SwapNodes("b", "d")
	if root.Left().Name() != "b" || root.Left().Left().Left().Name() != "d" {
		t.Error("double swap did not restore the spine")
	}
}

func TestHBTree_MoveNode(t *testing.T) {
	tree := twoFreeModules(t)
	tree.Pack()

	// Move B above A instead of beside it.
	if !tree.MoveNode("B", "A", false) {
		t.Fatal("MoveNode(B, A, right) = false")
	}
	tree.Pack()

	A, B := tree.Modules()["A"], tree.Modules()["B"]
	if B.X != A.X {
		t.Errorf("B.X = %d after move to right child, want %d", B.X, A.X)
	}
	if B.Y != A.Height {
		t.Errorf("B.Y = %d, want %d", B.Y, A.Height)
	}
	if got := tree.Area(); got != 4*8 {
		t.Errorf("Area() = %d, want 32", got)
	}
	checkNoOverlap(t, tree.Modules())
}

func TestHBTree_MoveNode_DisplacedChildRehomed(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "a", Width: 6, Height: 6}))
	mustAdd(t, tree.AddModule(&Module{Name: "b", Width: 5, Height: 5}))
	mustAdd(t, tree.AddModule(&Module{Name: "c", Width: 4, Height: 4}))
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatal(err)
	}
	// Spine a -> b -> c. Move c into b's slot; b must re-home under c.
	if !tree.MoveNode("c", "a", true) {
		t.Fatal("MoveNode(c, a, left) = false")
	}

	root := tree.Root()
	if root.Left() == nil || root.Left().Name() != "c" {
		t.Fatal("a.left is not c after move")
	}
	if c := root.Left(); c.Left() == nil || c.Left().Name() != "b" {
		t.Error("displaced b was not re-homed under c")
	}

	tree.Pack()
	checkNoOverlap(t, tree.Modules())
}

func TestHBTree_MoveRootRefused(t *testing.T) {
	tree := twoFreeModules(t)
	if tree.MoveNode("A", "B", true) {
		t.Error("MoveNode of the root succeeded; every new parent is inside its subtree")
	}
}

func TestHBTree_MoveUnknown(t *testing.T) {
	tree := twoFreeModules(t)
	if tree.MoveNode("nope", "A", true) {
		t.Error("MoveNode(nope, ...) = true")
	}
	if tree.MoveNode("B", "nope", true) {
		t.Error("MoveNode(..., nope) = true")
	}
}

func TestHBTree_PackIdempotent(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "F", Width: 3, Height: 3}))
	mustAdd(t, tree.AddModule(&Module{Name: "L", Width: 2, Height: 2}))
	mustAdd(t, tree.AddModule(&Module{Name: "R", Width: 2, Height: 2}))
	mustAdd(t, tree.AddSymmetryGroup(&SymmetryGroup{
		Name: "G", Axis: AxisVertical, Pairs: []Pair{{A: "L", B: "R"}},
	}))
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatal(err)
	}
	tree.Pack()

	coords := make(map[string][2]int)
	for name, m := range tree.Modules() {
		coords[name] = [2]int{m.X, m.Y}
	}
	area := tree.Area()

	tree.Pack()
	for name, m := range tree.Modules() {
		if coords[name] != [2]int{m.X, m.Y} {
			t.Errorf("module %s moved between packs: (%d,%d) != %v", name, m.X, m.Y, coords[name])
		}
	}
	if tree.Area() != area {
		t.Errorf("area changed between packs: %d != %d", tree.Area(), area)
	}
}

func TestHBTree_ContourNodesCreated(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "L", Width: 2, Height: 3}))
	mustAdd(t, tree.AddModule(&Module{Name: "R", Width: 2, Height: 3}))
	mustAdd(t, tree.AddSymmetryGroup(&SymmetryGroup{
		Name: "G", Axis: AxisVertical, Pairs: []Pair{{A: "L", B: "R"}},
	}))
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatal(err)
	}
	tree.Pack()

	hier := tree.FindNode("G")
	cn := hier.Right()
	if cn == nil || cn.Kind() != NodeKindContour {
		t.Fatal("hierarchy node has no contour child after pack")
	}
	x1, y1, x2, _ := cn.ContourSpan()
	if x1 != 0 || x2 != 4 || y1 != 3 {
		t.Errorf("contour span = [%d,%d) @ %d, want [0,4) @ 3", x1, x2, y1)
	}
	if tree.FindNode(cn.Name()) != cn {
		t.Error("contour node not registered in the name index")
	}
}

func TestHBTree_AttachToContourNode(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "L", Width: 2, Height: 3}))
	mustAdd(t, tree.AddModule(&Module{Name: "R", Width: 2, Height: 3}))
	mustAdd(t, tree.AddModule(&Module{Name: "top", Width: 2, Height: 1}))
	mustAdd(t, tree.AddSymmetryGroup(&SymmetryGroup{
		Name: "G", Axis: AxisVertical, Pairs: []Pair{{A: "L", B: "R"}},
	}))
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatal(err)
	}
	tree.Pack()

	cn := tree.FindNode("G").Right()
	if cn == nil {
		t.Fatal("no contour node")
	}
	// Support the free module on the island's top surface.
	if !tree.MoveNode("top", cn.Name(), false) {
		t.Fatal("MoveNode onto contour node = false")
	}
	tree.Pack()

	top := tree.Modules()["top"]
	if top.X != 0 || top.Y != 3 {
		t.Errorf("top at (%d,%d), want (0,3) on the island surface", top.X, top.Y)
	}
	checkNoOverlap(t, tree.Modules())
	checkSymmetry(t, tree)
}

func TestHBTree_CloneIndependent(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "F", Width: 3, Height: 3}))
	mustAdd(t, tree.AddModule(&Module{Name: "L", Width: 2, Height: 2}))
	mustAdd(t, tree.AddModule(&Module{Name: "R", Width: 2, Height: 2}))
	mustAdd(t, tree.AddSymmetryGroup(&SymmetryGroup{
		Name: "G", Axis: AxisVertical, Pairs: []Pair{{A: "L", B: "R"}},
	}))
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatal(err)
	}
	tree.Pack()

	clone := tree.Clone()

	// Clone is indistinguishable by public observation.
	if clone.Area() != tree.Area() {
		t.Errorf("clone area %d != %d", clone.Area(), tree.Area())
	}
	for name, m := range tree.Modules() {
		cm := clone.Modules()[name]
		if cm == nil {
			t.Fatalf("clone missing module %s", name)
		}
		if cm.X != m.X || cm.Y != m.Y || cm.Width != m.Width || cm.Height != m.Height {
			t.Errorf("clone module %s differs: (%d,%d) %dx%d vs (%d,%d) %dx%d",
				name, cm.X, cm.Y, cm.Width, cm.Height, m.X, m.Y, m.Width, m.Height)
		}
		if cm == m {
			t.Errorf("clone shares module instance %s", name)
		}
	}
	if clone.Root().Name() != tree.Root().Name() {
		t.Errorf("clone root %s != %s", clone.Root().Name(), tree.Root().Name())
	}

	// Mutating the clone must not affect the original.
	before := tree.Modules()["F"].X
	clone.RotateModule("F")
	clone.SwapNodes("G", "F")
	clone.Pack()

	if tree.Modules()["F"].X != before || tree.Modules()["F"].Width != 3 {
		t.Error("mutating the clone changed the original")
	}
	if tree.Root().Name() != "G" {
		t.Error("clone mutation changed the original root")
	}
}

func TestHBTree_IncrementalMatchesCleanPack(t *testing.T) {
	// A structural perturbation followed by a clean-slate pack must land in
	// the same coordinates as packing a freshly built tree with the same
	// structure.
	tree := twoFreeModules(t)
	tree.Pack()
	tree.SwapNodes("A", "B") // repacks incrementally

	tree.Pack() // clean slate
	afterIncremental := map[string][2]int{}
	for name, m := range tree.Modules() {
		afterIncremental[name] = [2]int{m.X, m.Y}
	}

	fresh := twoFreeModules(t)
	fresh.SwapNodes("A", "B")
	fresh.Pack()
	for name, m := range fresh.Modules() {
		if afterIncremental[name] != [2]int{m.X, m.Y} {
			t.Errorf("module %s: incremental-then-clean (%v) != fresh pack (%d,%d)",
				name, afterIncremental[name], m.X, m.Y)
		}
	}
}

func TestHBTree_ChangeRepresentativeDelegates(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "L", Width: 2, Height: 3}))
	mustAdd(t, tree.AddModule(&Module{Name: "R", Width: 2, Height: 3}))
	mustAdd(t, tree.AddSymmetryGroup(&SymmetryGroup{
		Name: "G", Axis: AxisVertical, Pairs: []Pair{{A: "L", B: "R"}},
	}))
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatal(err)
	}
	tree.Pack()

	if !tree.ChangeRepresentative("G", "L") {
		t.Fatal("ChangeRepresentative(G, L) = false")
	}
	tree.Pack()
	if tree.Modules()["R"].X != 0 {
		t.Errorf("R.X = %d after representative change, want 0", tree.Modules()["R"].X)
	}
	checkSymmetry(t, tree)

	if tree.ChangeRepresentative("nope", "L") {
		t.Error("ChangeRepresentative(nope, ...) = true")
	}
	if tree.ChangeRepresentative("G", "nope") {
		t.Error("ChangeRepresentative(..., nope) = true")
	}
}

func TestHBTree_ConvertSymmetryTypeDelegates(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "L", Width: 2, Height: 3}))
	mustAdd(t, tree.AddModule(&Module{Name: "R", Width: 2, Height: 3}))
	mustAdd(t, tree.AddSymmetryGroup(&SymmetryGroup{
		Name: "G", Axis: AxisVertical, Pairs: []Pair{{A: "L", B: "R"}},
	}))
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatal(err)
	}
	tree.Pack()

	if !tree.ConvertSymmetryType("G") {
		t.Fatal("ConvertSymmetryType(G) = false")
	}
	tree.Pack()
	checkSymmetry(t, tree)

	if tree.ConvertSymmetryType("nope") {
		t.Error("ConvertSymmetryType(nope) = true")
	}
}

func TestHBTree_AddModuleErrors(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "a", Width: 1, Height: 1}))

	if err := tree.AddModule(&Module{Name: "a", Width: 2, Height: 2}); err == nil {
		t.Error("duplicate AddModule succeeded")
	}
	if err := tree.AddModule(&Module{Name: "bad", Width: 0, Height: 2}); err == nil {
		t.Error("AddModule with zero width succeeded")
	}
	if err := tree.AddModule(nil); err == nil {
		t.Error("AddModule(nil) succeeded")
	}
}

func TestHBTree_AddSymmetryGroupErrors(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddSymmetryGroup(&SymmetryGroup{
		Name: "g1", Pairs: []Pair{{A: "a", B: "b"}},
	}))

	if err := tree.AddSymmetryGroup(&SymmetryGroup{
		Name: "g1", Pairs: []Pair{{A: "c", B: "d"}},
	}); err == nil {
		t.Error("duplicate group name succeeded")
	}
	if err := tree.AddSymmetryGroup(&SymmetryGroup{
		Name: "g2", Pairs: []Pair{{A: "a", B: "z"}},
	}); err == nil {
		t.Error("module in two groups succeeded")
	}
}

func TestHBTree_MixedScenarioInvariants(t *testing.T) {
	tree := NewHBTree()
	mustAdd(t, tree.AddModule(&Module{Name: "p1a", Width: 2, Height: 2}))
	mustAdd(t, tree.AddModule(&Module{Name: "p1b", Width: 2, Height: 2}))
	mustAdd(t, tree.AddModule(&Module{Name: "p2a", Width: 4, Height: 2}))
	mustAdd(t, tree.AddModule(&Module{Name: "p2b", Width: 4, Height: 2}))
	mustAdd(t, tree.AddModule(&Module{Name: "s1", Width: 4, Height: 4}))
	mustAdd(t, tree.AddModule(&Module{Name: "f1", Width: 5, Height: 5}))
	mustAdd(t, tree.AddModule(&Module{Name: "f2", Width: 3, Height: 3}))
	mustAdd(t, tree.AddSymmetryGroup(&SymmetryGroup{
		Name: "G", Axis: AxisVertical,
		Pairs:         []Pair{{A: "p1a", B: "p1b"}, {A: "p2a", B: "p2b"}},
		SelfSymmetric: []string{"s1"},
	}))
	if err := tree.ConstructInitialTree(); err != nil {
		t.Fatal(err)
	}
	if !tree.Pack() {
		t.Fatal("Pack() = false")
	}
	checkNoOverlap(t, tree.Modules())
	checkSymmetry(t, tree)

	// A few perturbations with clean repacks must preserve the invariants.
	ops := []func() bool{
		func() bool { return tree.RotateModule("f2") },
		func() bool { return tree.ChangeRepresentative("G", "p2a") },
		func() bool { return tree.SwapNodes("f1", "f2") },
		func() bool { return tree.RotateModule("p1a") },
	}
	for i, op := range ops {
		if !op() {
			t.Fatalf("perturbation %d failed", i)
		}
		tree.Pack()
		checkNoOverlap(t, tree.Modules())
		checkSymmetry(t, tree)
	}
	if err := tree.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
