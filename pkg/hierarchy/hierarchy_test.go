package hierarchy

import (
	"testing"
)

func TestBuildAggregation(t *testing.T) {
	tree := Build(
		[]string{"A", "A.1", "A.2", "A.1.1"},
		WithRoot("A"),
		WithValues(map[string]float64{"A.1.1": 10.0}),
	)

	wantValues := map[string]float64{
		"A":     10.0,
		"A.1":   10.0,
		"A.2":   0.0,
		"A.1.1": 10.0,
	}
	if tree.Len() != len(wantValues) {
		t.Fatalf("node count = %d, want %d", tree.Len(), len(wantValues))
	}
	for name, want := range wantValues {
		node := tree.Nodes[name]
		if node == nil {
			t.Fatalf("missing node %q", name)
		}
		if node.Value != want {
			t.Errorf("value(%s) = %g, want %g", name, node.Value, want)
		}
	}

	wantParents := map[string]string{
		"A.1":   "A",
		"A.2":   "A",
		"A.1.1": "A.1",
	}
	for name, want := range wantParents {
		if got := tree.ParentOf[name]; got != want {
			t.Errorf("parent(%s) = %q, want %q", name, got, want)
		}
	}
	if _, ok := tree.ParentOf["A"]; ok {
		t.Error("root should have no parent entry")
	}
}

func TestBuildNodeCount(t *testing.T) {
	// Distinct prefixes: x, x.a, x.a.b, x.c, y — plus a disjoint root.
	names := []string{"x.a.b", "x.c", "y"}
	tree := Build(names, WithRoot("top"))
	if tree.Len() != 6 {
		t.Errorf("node count = %d, want 6 (5 prefixes + root)", tree.Len())
	}

	// Without a root name, only the prefixes exist.
	forest := Build(names)
	if forest.Len() != 5 {
		t.Errorf("forest node count = %d, want 5", forest.Len())
	}
	if forest.Root != nil {
		t.Error("forest should have no explicit root")
	}
	if len(forest.Roots) != 2 {
		t.Errorf("forest tops = %d, want 2 (x and y)", len(forest.Roots))
	}
}

func TestRootValueEqualsSumOfExplicitValues(t *testing.T) {
	values := map[string]float64{
		"a.b":   1.5,
		"a.b.c": 2.0,
		"a.d":   3.0,
		"zzz":   100.0, // never appears as a prefix, must not contribute
	}
	tree := Build([]string{"a.b.c", "a.d"}, WithRoot("root"), WithValues(values))

	if got, want := tree.Root.Value, 6.5; got != want {
		t.Errorf("root value = %g, want %g", got, want)
	}
}

func TestDuplicateNamesNoDoubleCounting(t *testing.T) {
	tree := Build(
		[]string{"a.b", "a.b", "a.b"},
		WithValues(map[string]float64{"a.b": 5.0}),
	)
	if tree.Len() != 2 {
		t.Fatalf("node count = %d, want 2", tree.Len())
	}
	if got := tree.Nodes["a"].Value; got != 5.0 {
		t.Errorf("value(a) = %g, want 5.0 (no double counting)", got)
	}
}

func TestCreationOrderIsFirstSeen(t *testing.T) {
	tree := Build([]string{"b.x", "a", "b", "a.y"})
	chart := tree.Chart()

	want := []string{"b", "b.x", "a", "a.y"}
	if len(chart.Labels) != len(want) {
		t.Fatalf("labels = %v, want %v", chart.Labels, want)
	}
	for i := range want {
		if chart.Labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, chart.Labels[i], want[i])
		}
	}
}

func TestChartParallelSlices(t *testing.T) {
	tree := Build(
		[]string{"a.b", "c"},
		WithRoot("r"),
		WithValues(map[string]float64{"a.b": 2.0, "c": 3.0}),
	)
	chart := tree.Chart()

	if len(chart.Labels) != len(chart.Parents) || len(chart.Labels) != len(chart.Values) {
		t.Fatal("chart slices must have equal length")
	}
	if chart.Labels[0] != "r" || chart.Parents[0] != NoParent {
		t.Errorf("root entry = (%q, %q), want (r, no-parent)", chart.Labels[0], chart.Parents[0])
	}
	if chart.Values[0] != 5.0 {
		t.Errorf("root aggregated value = %g, want 5.0", chart.Values[0])
	}

	byLabel := map[string]int{}
	for i, l := range chart.Labels {
		byLabel[l] = i
	}
	if chart.Parents[byLabel["a.b"]] != "a" {
		t.Errorf("parent(a.b) = %q, want a", chart.Parents[byLabel["a.b"]])
	}
	if chart.Parents[byLabel["a"]] != "r" {
		t.Errorf("parent(a) = %q, want r", chart.Parents[byLabel["a"]])
	}
}

func TestBuildIdempotence(t *testing.T) {
	names := []string{"a.b.c", "a.d", "e"}
	values := map[string]float64{"a.b.c": 1, "e": 2}

	t1 := Build(names, WithRoot("r"), WithValues(values))
	t2 := Build(names, WithRoot("r"), WithValues(values))

	if t1.Len() != t2.Len() {
		t.Fatalf("lengths differ: %d vs %d", t1.Len(), t2.Len())
	}
	t1.Walk(func(n *Node) {
		other := t2.Nodes[n.Name]
		if other == nil {
			t.Fatalf("node %q missing from second build", n.Name)
		}
		if other.Value != n.Value {
			t.Errorf("value(%s) differs: %g vs %g", n.Name, n.Value, other.Value)
		}
		if other == n {
			t.Errorf("node %q shared between builds", n.Name)
		}
	})
}

func TestEmptySeparatorOneLevelTree(t *testing.T) {
	tree := Build([]string{"a.b.c", "d"}, WithSeparator(""))

	if tree.Len() != 2 {
		t.Fatalf("node count = %d, want 2 (no splitting)", tree.Len())
	}
	if tree.Nodes["a.b.c"] == nil {
		t.Error("full name should be a single node when separator is empty")
	}
	for _, n := range tree.Roots {
		if n.Parent != nil {
			t.Errorf("node %q should be parentless", n.Name)
		}
	}
}

func TestEmptyInputs(t *testing.T) {
	if tree := Build(nil); tree.Len() != 0 {
		t.Errorf("empty names, no root: count = %d, want 0", tree.Len())
	}

	tree := Build(nil, WithRoot("r"))
	if tree.Len() != 1 || tree.Root == nil {
		t.Errorf("empty names with root: count = %d, want root-only", tree.Len())
	}

	// Empty name strings are skipped.
	if tree := Build([]string{"", ""}); tree.Len() != 0 {
		t.Errorf("blank names: count = %d, want 0", tree.Len())
	}
}

func TestCustomSeparator(t *testing.T) {
	tree := Build([]string{"usr/local/bin"}, WithSeparator("/"))
	if tree.Len() != 3 {
		t.Fatalf("node count = %d, want 3", tree.Len())
	}
	if tree.ParentOf["usr/local/bin"] != "usr/local" {
		t.Errorf("parent = %q, want usr/local", tree.ParentOf["usr/local/bin"])
	}
	if got := tree.Nodes["usr/local/bin"].Label("/"); got != "bin" {
		t.Errorf("label = %q, want bin", got)
	}
}

func TestOpenDefaults(t *testing.T) {
	tree := Build([]string{"a.b", "c"}, WithRoot("r"))
	if !tree.Root.Open {
		t.Error("root should start open")
	}
	if tree.Nodes["a"].Open {
		t.Error("non-root nodes should start closed")
	}

	// Forest tops all count as roots and start open.
	forest := Build([]string{"a.b", "c"})
	for _, top := range forest.Roots {
		if !top.Open {
			t.Errorf("forest top %q should start open", top.Name)
		}
	}
	if forest.Nodes["a.b"].Open {
		t.Error("child should start closed")
	}
}

func TestSelectionHandler(t *testing.T) {
	tree := Build([]string{"a.b", "c"})

	var fired []string
	tree.OnSelect(func(n *Node) {
		fired = append(fired, n.Name)
	})

	tree.SetSelected("a.b", true)
	tree.SetSelected("a.b", true) // no flip, no event
	tree.ToggleSelected("a.b")    // flips back off
	tree.SetSelected("missing", true)

	want := []string{"a.b", "a.b"}
	if len(fired) != len(want) {
		t.Fatalf("events = %v, want %v", fired, want)
	}
	if tree.Nodes["a.b"].Selected {
		t.Error("node should be deselected after toggle")
	}

	// Removing the handler silences further events.
	tree.OnSelect(nil)
	tree.ToggleSelected("c")
	if len(fired) != 2 {
		t.Errorf("events after handler removal = %d, want 2", len(fired))
	}
}

func TestValuesMapMutationDoesNotRepropagate(t *testing.T) {
	values := map[string]float64{"a.b": 1.0}
	tree := Build([]string{"a.b"}, WithValues(values))

	values["a.b"] = 100.0
	if got := tree.Nodes["a"].Value; got != 1.0 {
		t.Errorf("value(a) = %g after map mutation, want 1.0 (one-shot build)", got)
	}
}
