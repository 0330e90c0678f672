// Package hierarchy builds explicit trees from flat lists of delimited
// names such as "A.B.C", aggregating leaf values up to every ancestor.
//
// A single [Build] call scans the input names in order, creates one node
// per distinct dotted prefix (first-seen order is preserved), parents each
// new node to its previous prefix, and propagates the node's explicit
// value to every strict ancestor by addition. Propagation happens exactly
// once, at node creation: Build is a one-shot construction, and mutating
// the values map afterwards does not re-propagate.
//
// Two output shapes share the one aggregation core: the navigable [Tree]
// of live [Node]s (with open/selected display state and a tree-level
// selection handler), and the flat parallel slices of [Tree.Chart] shaped
// for hierarchical-chart renderers.
//
// Malformed input is never an error: an empty separator yields a one-level
// tree, duplicate names are no-ops, and empty name lists degrade to a
// root-only (or empty) tree.
package hierarchy
