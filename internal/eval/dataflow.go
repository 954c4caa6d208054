package eval

import (
	"context"

	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// DataFlow evaluates outputs by pulling their inputs from upstream nodes.
// Nothing is memoized: a value feeding two consumers is computed twice.
type DataFlow struct {
	graph topology
}

// NewDataFlow creates a pull evaluator over g.
func NewDataFlow(g *graph.Graph) *DataFlow {
	return &DataFlow{graph: g}
}

// ComputeOutput evaluates n and returns the named output, or cty.NilVal when
// the node left it unpopulated. An empty output name runs a sink node for
// its side effect. Errors propagate unchanged to the caller.
func (d *DataFlow) ComputeOutput(ctx context.Context, n node.Node, output string) (cty.Value, error) {
	if n == nil {
		return cty.NilVal, &InvalidRequestError{Output: output, Reason: "nil node"}
	}
	if e, ok := d.graph.Entry(n.ID()); !ok || e.Node != n {
		return cty.NilVal, &InvalidRequestError{Node: n, Output: output, Reason: "node does not belong to the graph"}
	}
	return newPuller(d.graph, nil, false).computeOutput(ctx, n, output)
}
