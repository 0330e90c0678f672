package hierarchy

// OnSelect registers a tree-level selection handler invoked whenever a
// node's selection state flips. One handler serves the whole tree; there
// are no per-node observers. Passing nil removes the handler.
func (t *Tree) OnSelect(fn func(*Node)) {
	t.onSelect = fn
}

// SetSelected sets the selection state of the named node. The handler is
// invoked only when the state actually changes; setting the current state
// again is a no-op. Unknown names are ignored.
// Returns the node, or nil if the name is unknown.
func (t *Tree) SetSelected(name string, selected bool) *Node {
	node, ok := t.Nodes[name]
	if !ok {
		return nil
	}
	if node.Selected != selected {
		node.Selected = selected
		if t.onSelect != nil {
			t.onSelect(node)
		}
	}
	return node
}

// ToggleSelected flips the selection state of the named node and fires
// the selection handler. Unknown names are ignored.
func (t *Tree) ToggleSelected(name string) *Node {
	node, ok := t.Nodes[name]
	if !ok {
		return nil
	}
	return t.SetSelected(name, !node.Selected)
}

// SetOpen sets the expansion state of the named node.
// Returns the node, or nil if the name is unknown.
func (t *Tree) SetOpen(name string, open bool) *Node {
	node, ok := t.Nodes[name]
	if !ok {
		return nil
	}
	node.Open = open
	return node
}

// ToggleOpen flips the expansion state of the named node.
func (t *Tree) ToggleOpen(name string) *Node {
	node, ok := t.Nodes[name]
	if !ok {
		return nil
	}
	node.Open = !node.Open
	return node
}
