package hierarchy

// NoParent is the explicit "no parent" marker used in chart output for
// parentless nodes.
const NoParent = ""

// Chart holds the flat parallel sequences consumed by hierarchical-chart
// renderers (treemap, sunburst, icicle): one entry per node in creation
// order, with Parents[i] naming the parent of Labels[i] or [NoParent].
type Chart struct {
	Labels  []string  `json:"labels"`
	Parents []string  `json:"parents"`
	Values  []float64 `json:"values"`
}

// Chart flattens the tree into parallel label/parent/value slices.
// Entries appear in node creation order, which is the first-seen order of
// prefixes in the original input.
func (t *Tree) Chart() Chart {
	c := Chart{
		Labels:  make([]string, 0, len(t.order)),
		Parents: make([]string, 0, len(t.order)),
		Values:  make([]float64, 0, len(t.order)),
	}
	for _, name := range t.order {
		node := t.Nodes[name]
		parent := NoParent
		if node.Parent != nil {
			parent = node.Parent.Name
		}
		c.Labels = append(c.Labels, name)
		c.Parents = append(c.Parents, parent)
		c.Values = append(c.Values, node.Value)
	}
	return c
}
