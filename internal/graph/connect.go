package graph

import (
	"slices"

	"github.com/vk/nodegraph/internal/node"
)

// AddConnection appends a data connection from an output pin to an input
// pin. With checkTypes set, incompatible pin types are rejected. Exact
// duplicates are rejected; the one-connection-per-input rule is not
// enforced here (see TryAddNewConnection).
func (g *Graph) AddConnection(from int32, fromPin string, to int32, toPin string, checkTypes bool) bool {
	fromNode, ok := g.FindNode(from)
	if !ok {
		return false
	}
	toNode, ok := g.FindNode(to)
	if !ok {
		return false
	}
	out, ok := fromNode.Outputs().Get(fromPin)
	if !ok {
		return false
	}
	in, ok := toNode.Inputs().Get(toPin)
	if !ok {
		return false
	}
	if checkTypes && !g.converters.CanConnect(out.Type, in.Type) {
		return false
	}

	c := Connection{FromNode: from, FromOutput: fromPin, ToNode: to, ToInput: toPin}
	if slices.ContainsFunc(g.data, c.SameEndpoints) {
		return false
	}
	g.data = append(g.data, c)

	if l, ok := toNode.(node.ConnectionListener); ok {
		l.InputConnected(toPin, out.Type)
	}
	return true
}

// AddSequenceConnection appends a control-flow edge leaving the given path
// of from. Exact duplicates are rejected.
func (g *Graph) AddSequenceConnection(from int32, fromPath string, to int32, toPin string) bool {
	fromNode, ok := g.FindNode(from)
	if !ok {
		return false
	}
	if _, ok := g.FindNode(to); !ok {
		return false
	}
	if !node.HasPath(fromNode, fromPath) {
		return false
	}

	c := Connection{FromNode: from, FromOutput: fromPath, ToNode: to, ToInput: toPin}
	if slices.ContainsFunc(g.sequence, c.SameEndpoints) {
		return false
	}
	g.sequence = append(g.sequence, c)
	return true
}

// TryAddNewConnection is the validated entry point for edits. It rejects
// self-loops, a second data connection into one input, a data connection
// closing a cycle and a second sequence connection out of one path, then
// delegates to AddConnection or AddSequenceConnection.
func (g *Graph) TryAddNewConnection(info ConnectionInfo) bool {
	if info.FromNode == info.ToNode {
		return false
	}

	switch info.Kind {
	case Data:
		if _, taken := g.FindConnectionTo(info.ToNode, info.ToPin); taken {
			return false
		}
		if g.reachable(info.ToNode, info.FromNode) {
			return false
		}
		return g.AddConnection(info.FromNode, info.FromPin, info.ToNode, info.ToPin, info.CheckTypes)
	case Sequence:
		if len(g.SequenceConnectionsFrom(info.FromNode, info.FromPin)) > 0 {
			return false
		}
		return g.AddSequenceConnection(info.FromNode, info.FromPin, info.ToNode, info.ToPin)
	}
	return false
}

// RemoveConnection removes the data connection with the same endpoints as c.
func (g *Graph) RemoveConnection(c Connection) bool {
	idx := slices.IndexFunc(g.data, c.SameEndpoints)
	if idx < 0 {
		return false
	}
	g.data = slices.Delete(g.data, idx, idx+1)

	if toNode, ok := g.FindNode(c.ToNode); ok {
		if l, ok := toNode.(node.ConnectionListener); ok {
			l.InputDisconnected(c.ToInput)
		}
	}
	return true
}

// RemoveSequenceConnection removes the sequence connection with the same
// endpoints as c.
func (g *Graph) RemoveSequenceConnection(c Connection) bool {
	idx := slices.IndexFunc(g.sequence, c.SameEndpoints)
	if idx < 0 {
		return false
	}
	g.sequence = slices.Delete(g.sequence, idx, idx+1)
	return true
}

// DataConnections returns a copy of the data connections in insertion order.
func (g *Graph) DataConnections() []Connection {
	return slices.Clone(g.data)
}

// SequenceConnections returns a copy of the sequence connections in
// insertion order.
func (g *Graph) SequenceConnections() []Connection {
	return slices.Clone(g.sequence)
}

// FindConnectionTo returns the data connection feeding the given input.
func (g *Graph) FindConnectionTo(to int32, toInput string) (Connection, bool) {
	for _, c := range g.data {
		if c.ToNode == to && c.ToInput == toInput {
			return c, true
		}
	}
	return Connection{}, false
}

// FindConnectionsFrom returns the data connections leaving the given output.
func (g *Graph) FindConnectionsFrom(from int32, fromOutput string) []Connection {
	var out []Connection
	for _, c := range g.data {
		if c.FromNode == from && c.FromOutput == fromOutput {
			out = append(out, c)
		}
	}
	return out
}

// HasOutgoingData reports whether any data connection leaves the node.
func (g *Graph) HasOutgoingData(from int32) bool {
	for _, c := range g.data {
		if c.FromNode == from {
			return true
		}
	}
	return false
}

// SequenceConnectionsFrom returns the sequence connections leaving the
// given path of a node.
func (g *Graph) SequenceConnectionsFrom(from int32, path string) []Connection {
	var out []Connection
	for _, c := range g.sequence {
		if c.FromNode == from && c.FromOutput == path {
			out = append(out, c)
		}
	}
	return out
}

// SequenceConnectionsTo returns the sequence connections entering a node.
func (g *Graph) SequenceConnectionsTo(to int32) []Connection {
	var out []Connection
	for _, c := range g.sequence {
		if c.ToNode == to {
			out = append(out, c)
		}
	}
	return out
}
