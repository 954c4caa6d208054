package graph

import (
	"fmt"
	"slices"

	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/typesys"
)

// Entry is a node together with its identifier and class information.
type Entry struct {
	Node     node.Node
	ID       int32
	TypeInfo node.TypeInfo
}

// Graph is a collection of nodes joined by data and sequence connections.
type Graph struct {
	entries    []*Entry
	data       []Connection
	sequence   []Connection
	nextID     int32
	converters *typesys.Converters
	onModified func(id int32)
}

// New creates an empty graph that checks types with the given registry.
func New(converters *typesys.Converters) *Graph {
	if converters == nil {
		converters = typesys.NewConverters()
	}
	return &Graph{converters: converters}
}

// Converters returns the type registry the graph validates with.
func (g *Graph) Converters() *typesys.Converters {
	return g.converters
}

// SetNodeModifiedHandler installs a callback fired after a node's pins
// change and the graph has re-validated its data connections.
func (g *Graph) SetNodeModifiedHandler(fn func(id int32)) {
	g.onModified = fn
}

// AddNode adds n under a fresh identifier, or under explicitID when given.
// It fails when the explicit identifier is already in use.
func (g *Graph) AddNode(n node.Node, info node.TypeInfo, explicitID *int32) (int32, error) {
	if n == nil {
		return node.Unassigned, ErrNilNode
	}
	if n.ID() != node.Unassigned {
		return node.Unassigned, fmt.Errorf("%w: %d", ErrNodeInGraph, n.ID())
	}

	id := g.nextID
	if explicitID != nil {
		id = *explicitID
		if id < 0 {
			return node.Unassigned, fmt.Errorf("invalid node identifier %d", id)
		}
		if _, exists := g.Entry(id); exists {
			return node.Unassigned, fmt.Errorf("%w: %d", ErrDuplicateID, id)
		}
	}
	g.nextID = max(g.nextID, id+1)

	g.entries = append(g.entries, &Entry{Node: n, ID: id, TypeInfo: info})
	n.SetGraphInfo(id, info)
	n.SetModifiedHandler(func() { g.nodeModified(id) })
	return id, nil
}

func (g *Graph) nodeModified(id int32) {
	g.ValidateDataConnections()
	if g.onModified != nil {
		g.onModified(id)
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.entries)
}

// Entry returns the entry for id.
func (g *Graph) Entry(id int32) (*Entry, bool) {
	for _, e := range g.entries {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// FindNode returns the node with the given identifier.
func (g *Graph) FindNode(id int32) (node.Node, bool) {
	e, ok := g.Entry(id)
	if !ok {
		return nil, false
	}
	return e.Node, true
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []node.Node {
	out := make([]node.Node, len(g.entries))
	for i, e := range g.entries {
		out[i] = e.Node
	}
	return out
}

// Entries returns copies of all entries in insertion order.
func (g *Graph) Entries() []Entry {
	out := make([]Entry, len(g.entries))
	for i, e := range g.entries {
		out[i] = *e
	}
	return out
}

// NodesOfType returns the nodes created from the given class name.
func (g *Graph) NodesOfType(typeName string) []node.Node {
	var out []node.Node
	for _, e := range g.entries {
		if e.TypeInfo.TypeName == typeName {
			out = append(out, e.Node)
		}
	}
	return out
}

// StartNode returns the first entry node in insertion order.
func (g *Graph) StartNode() (node.Node, bool) {
	for _, e := range g.entries {
		if node.IsEntry(e.Node) {
			return e.Node, true
		}
	}
	return nil, false
}

// RemoveNode removes every connection touching id and then the node. It
// returns false when no such node exists. A connection that cannot be
// removed is an internal invariant violation and panics.
func (g *Graph) RemoveNode(id int32) bool {
	idx := slices.IndexFunc(g.entries, func(e *Entry) bool { return e.ID == id })
	if idx < 0 {
		return false
	}

	for _, c := range g.connectionsTouching(g.data, id) {
		if !g.RemoveConnection(c) {
			panic(fmt.Sprintf("graph: failed to remove data connection %s of node %d", c, id))
		}
	}
	for _, c := range g.connectionsTouching(g.sequence, id) {
		if !g.RemoveSequenceConnection(c) {
			panic(fmt.Sprintf("graph: failed to remove sequence connection %s of node %d", c, id))
		}
	}
	if len(g.connectionsTouching(g.data, id)) > 0 || len(g.connectionsTouching(g.sequence, id)) > 0 {
		panic(fmt.Sprintf("graph: connections of node %d survived removal", id))
	}

	n := g.entries[idx].Node
	g.entries = slices.Delete(g.entries, idx, idx+1)
	n.SetModifiedHandler(nil)
	n.SetGraphInfo(node.Unassigned, node.TypeInfo{})
	return true
}

func (g *Graph) connectionsTouching(set []Connection, id int32) []Connection {
	var out []Connection
	for _, c := range set {
		if c.Touches(id) {
			out = append(out, c)
		}
	}
	return out
}
