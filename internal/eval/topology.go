package eval

import (
	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/typesys"
)

// topology is the read-only view of a graph the evaluators walk.
type topology interface {
	Converters() *typesys.Converters
	Entry(id int32) (*graph.Entry, bool)
	StartNode() (node.Node, bool)
	FindNode(id int32) (node.Node, bool)
	FindConnectionTo(to int32, toInput string) (graph.Connection, bool)
	SequenceConnectionsFrom(from int32, path string) []graph.Connection
	SequenceConnectionsTo(to int32) []graph.Connection
	HasOutgoingData(from int32) bool
}

var _ topology = (*graph.Graph)(nil)
