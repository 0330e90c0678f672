package hierarchy

import "strings"

// Node is one tree entry, identified by its fully-qualified delimited name.
// Nodes are created exactly once per distinct prefix and never removed;
// the only post-creation mutation is value propagation from descendants
// during the Build call, plus the Open/Selected display flags.
type Node struct {
	// Name is the fully-qualified delimited name, unique within the tree.
	Name string

	// Value is the aggregated value: the node's explicit value plus the
	// explicit values of all descendants created during the build.
	Value float64

	// Parent is a back-reference to the parent node, nil for forest tops.
	Parent *Node

	// Children holds child nodes in first-seen order.
	Children []*Node

	// Open reports whether the node is expanded in a display tree.
	// Parentless nodes start open.
	Open bool

	// Selected reports the node's selection state in a display tree.
	Selected bool
}

// Leaf reports whether the node has no children.
func (n *Node) Leaf() bool { return len(n.Children) == 0 }

// Label returns the last segment of the node's name, for display.
func (n *Node) Label(separator string) string {
	if separator == "" {
		return n.Name
	}
	if i := strings.LastIndex(n.Name, separator); i >= 0 {
		return n.Name[i+len(separator):]
	}
	return n.Name
}

// Tree is the result of one [Build] call: all nodes keyed by name, the
// parent relation, and the creation order that drives chart output.
type Tree struct {
	// Root is the explicitly named root node, nil when Build was called
	// with an empty root name (the tree is then a forest).
	Root *Node

	// Roots holds the parentless nodes in creation order. With a named
	// root it contains only that node.
	Roots []*Node

	// Nodes maps fully-qualified name to node.
	Nodes map[string]*Node

	// ParentOf maps a node name to its parent's name. Parentless nodes
	// are absent from the map.
	ParentOf map[string]string

	separator string
	order     []string
	onSelect  func(*Node)
}

// Separator returns the separator the tree was built with.
func (t *Tree) Separator() string { return t.separator }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.order) }

// Walk visits every node in creation order.
func (t *Tree) Walk(fn func(*Node)) {
	for _, name := range t.order {
		fn(t.Nodes[name])
	}
}

// Option configures a Build call.
type Option func(*builder)

// WithRoot names an explicit root node. All first-level prefixes are
// parented to it. An empty root name (the default) leaves the tree as an
// implicit forest of parentless top-level nodes.
func WithRoot(name string) Option {
	return func(b *builder) { b.rootName = name }
}

// WithSeparator sets the name delimiter (default "."). An empty separator
// disables splitting entirely: each name becomes a single part and the
// result is a one-level tree.
func WithSeparator(sep string) Option {
	return func(b *builder) { b.separator = sep }
}

// WithValues supplies explicit values by exact name. Names absent from
// the map default to 0. The map is read only during Build; mutating it
// afterwards does not re-propagate.
func WithValues(values map[string]float64) Option {
	return func(b *builder) { b.values = values }
}

// builder holds the state of one Build call. All lookup maps are locals
// of the call and end up owned by the returned Tree.
type builder struct {
	rootName  string
	separator string
	values    map[string]float64
	tree      *Tree
}

// Build constructs a tree from the given delimited names.
// Each call produces a fresh, independent tree: building twice with the
// same arguments yields value-identical trees of distinct nodes.
func Build(names []string, opts ...Option) *Tree {
	b := &builder{
		separator: ".",
		tree: &Tree{
			Nodes:    make(map[string]*Node),
			ParentOf: make(map[string]string),
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	b.tree.separator = b.separator

	var root *Node
	if b.rootName != "" {
		root = b.create(b.rootName, nil)
		b.tree.Root = root
	}

	for _, name := range names {
		if name == "" {
			continue
		}
		b.scan(name, root)
	}
	return b.tree
}

// scan rebuilds every prefix of name from the first part outward, creating
// missing nodes along the way.
func (b *builder) scan(name string, root *Node) {
	parts := b.split(name)
	prev := root
	prefix := ""
	for i, part := range parts {
		if i == 0 {
			prefix = part
		} else {
			prefix += b.separator + part
		}
		node, ok := b.tree.Nodes[prefix]
		if !ok {
			node = b.create(prefix, prev)
		}
		prev = node
	}
}

func (b *builder) split(name string) []string {
	if b.separator == "" {
		// No separator match: the whole name is a single part.
		return []string{name}
	}
	return strings.Split(name, b.separator)
}

// create makes the node for a first-seen prefix, records it in the lookup
// maps, and propagates its explicit value to every strict ancestor.
func (b *builder) create(name string, parent *Node) *Node {
	node := &Node{
		Name:   name,
		Value:  b.values[name],
		Parent: parent,
		Open:   parent == nil,
	}
	b.tree.Nodes[name] = node
	b.tree.order = append(b.tree.order, name)

	if parent != nil {
		parent.Children = append(parent.Children, node)
		b.tree.ParentOf[name] = parent.Name
	} else {
		b.tree.Roots = append(b.tree.Roots, node)
	}

	for a := parent; a != nil; a = a.Parent {
		a.Value += node.Value
	}
	return node
}
