package node

import (
	"context"

	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
)

// Category is the evaluator's dispatch class for a node.
type Category int

const (
	Standard Category = iota
	Sink
	ControlFlow
	Iteration
)

func (c Category) String() string {
	switch c {
	case Standard:
		return "standard"
	case Sink:
		return "sink"
	case ControlFlow:
		return "control_flow"
	case Iteration:
		return "iteration"
	}
	return "unknown"
}

// ControlFlowNode selects one of its named paths on every evaluation by
// writing the path name into the SelectedOutputPath slot.
type ControlFlowNode interface {
	Node
	// Paths lists the node's outgoing sequence paths.
	Paths() []string
}

// IterationNode is a ControlFlowNode the sequence evaluator re-evaluates
// until IsDone. InitializeIteration runs once per control-flow visit;
// Evaluate then writes ContinueIteration and the body path on each round,
// and Advance moves to the next round.
type IterationNode interface {
	ControlFlowNode
	InitializeIteration(ctx context.Context, inputs *valuemap.Map) error
	Advance()
	IsDone() bool
	// FinishedPath is the path taken once the iteration is done.
	FinishedPath() string
}

// CategoryOf returns the dispatch class of n.
func CategoryOf(n Node) Category {
	switch n.(type) {
	case IterationNode:
		return Iteration
	case ControlFlowNode:
		return ControlFlow
	}
	if n.Outputs().Len() == 0 {
		return Sink
	}
	return Standard
}

// SequencePaths returns the names of the sequence paths leaving n.
func SequencePaths(n Node) []string {
	if cf, ok := n.(ControlFlowNode); ok {
		return cf.Paths()
	}
	return []string{DefaultPath}
}

// HasPath reports whether n has a sequence path called name.
func HasPath(n Node, name string) bool {
	for _, p := range SequencePaths(n) {
		if p == name {
			return true
		}
	}
	return false
}

// Entry marks the node where a sequence pass starts.
type Entry interface {
	Node
	IsEntry() bool
}

// IsEntry reports whether n is a graph entry node.
func IsEntry(n Node) bool {
	e, ok := n.(Entry)
	return ok && e.IsEntry()
}

// CustomDataNode persists state that does not live in pins.
type CustomDataNode interface {
	Node
	CustomData() map[string]string
	RestoreCustomData(data map[string]string) error
}

// Pure is implemented by nodes that declare whether Evaluate has side
// effects. The flag is advisory; the engine does not enforce it.
type Pure interface {
	IsPure() bool
}

// IsPure reports a node's advisory purity. Nodes without the hook are
// assumed pure unless they are sinks.
func IsPure(n Node) bool {
	if p, ok := n.(Pure); ok {
		return p.IsPure()
	}
	return CategoryOf(n) != Sink
}

// DynamicOutputs is implemented by nodes whose declared outputs depend on
// how their inputs are wired. Loaders connect such nodes' inputs before
// wiring anything downstream of them.
type DynamicOutputs interface {
	HasDynamicOutputs() bool
}

// ConnectionListener is notified when data connections into the node
// change, so type-parameterized nodes can reshape their pins.
type ConnectionListener interface {
	InputConnected(input string, from typesys.DataType)
	InputDisconnected(input string)
}
