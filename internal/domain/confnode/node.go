// Package confnode implements a nested configuration tree whose nodes
// materialize a default child the first time an unset key is read.
//
// Every node carries a Factory that builds its default children. Export
// drops the factories so the tree can be persisted as plain maps; Import
// re-attaches them. A Node is not safe for concurrent mutation. Because Get
// may write, code sharing a tree across goroutines must use Lookup or work on
// a Clone.
package confnode

import (
	"maps"
	"slices"
)

// Factory builds the default child for an unset key.
type Factory func() *Node

// Node is an insertion-ordered map of scalar values and child nodes.
// Read-only methods treat a nil *Node as empty; writes need a real node.
type Node struct {
	keys    []string
	values  map[string]any
	factory Factory
}

// New creates an empty node. A nil factory disables materialization: reads
// of unset keys return nil.
func New(factory Factory) *Node {
	return &Node{values: make(map[string]any), factory: factory}
}

// FromMap creates a node populated from m (keys in sorted order).
func FromMap(m map[string]any, factory Factory) *Node {
	n := New(factory)
	for _, k := range slices.Sorted(maps.Keys(m)) {
		n.Put(k, m[k])
	}
	return n
}

// Factory returns the default-child factory.
func (n *Node) Factory() Factory {
	if n == nil {
		return nil
	}
	return n.factory
}

// Len returns the number of keys. A nil node is empty.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.keys)
}

// Keys returns the keys in insertion order.
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	return slices.Clone(n.keys)
}

// Has reports whether key is set. It never materializes.
func (n *Node) Has(key string) bool {
	if n == nil {
		return false
	}
	_, ok := n.values[key]
	return ok
}

// Lookup returns the value at key without materializing a default.
func (n *Node) Lookup(key string) (any, bool) {
	if n == nil {
		return nil, false
	}
	v, ok := n.values[key]
	return v, ok
}

// Get returns the value at key. An unset key is materialized with a new
// default child, which is stored and returned.
func (n *Node) Get(key string) any {
	if v, ok := n.values[key]; ok {
		return v
	}
	if n.factory == nil {
		return nil
	}
	child := n.factory()
	n.set(key, child)
	return child
}

// AddKey materializes key without reading a value and returns its child
// node. It returns nil when key holds a scalar or no factory is set.
func (n *Node) AddKey(key string) *Node {
	child, _ := n.Get(key).(*Node)
	return child
}

// Put stores v at key. A map[string]any is wrapped in a new child built by
// the factory, recursively.
func (n *Node) Put(key string, v any) *Node {
	if m, ok := v.(map[string]any); ok {
		child := n.newChild()
		for _, k := range slices.Sorted(maps.Keys(m)) {
			child.Put(k, m[k])
		}
		v = child
	}
	n.set(key, v)
	return n
}

// Delete removes key.
func (n *Node) Delete(key string) {
	if _, ok := n.values[key]; !ok {
		return
	}
	delete(n.values, key)
	n.keys = slices.DeleteFunc(n.keys, func(k string) bool { return k == key })
}

// Clone returns a deep copy sharing the same factories.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		keys:    slices.Clone(n.keys),
		values:  make(map[string]any, len(n.values)),
		factory: n.factory,
	}
	for k, v := range n.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

// Merge returns a new node holding n's entries overridden by other's.
// Neither input is modified.
func (n *Node) Merge(other *Node) *Node {
	return n.Clone().MergeInPlace(other)
}

// MergeInPlace stores copies of other's entries over n's and returns n.
func (n *Node) MergeInPlace(other *Node) *Node {
	if other == nil {
		return n
	}
	for _, k := range other.keys {
		n.set(k, cloneValue(other.values[k]))
	}
	return n
}

// Export returns the tree as nested maps without factories.
func (n *Node) Export() map[string]any {
	if n == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(n.values))
	for k, v := range n.values {
		out[k] = exportValue(v)
	}
	return out
}

// Import rebuilds a tree exported by Export, restoring factory on the root
// and on every child it builds.
func Import(data map[string]any, factory Factory) *Node {
	return FromMap(data, factory)
}

func (n *Node) set(key string, v any) {
	if _, ok := n.values[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.values[key] = v
}

func (n *Node) newChild() *Node {
	if n.factory != nil {
		if c := n.factory(); c != nil {
			return c
		}
	}
	return New(nil)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Node:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}

func exportValue(v any) any {
	switch t := v.(type) {
	case *Node:
		return t.Export()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = exportValue(e)
		}
		return out
	}
	return v
}
