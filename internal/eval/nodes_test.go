package eval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

// Minimal node implementations shared by the evaluator tests.

type startNode struct{ node.Base }

func newStart() *startNode { return &startNode{} }

func (*startNode) IsEntry() bool { return true }

func (*startNode) Evaluate(context.Context, *valuemap.Map, *valuemap.Map) error { return nil }

type constNode struct {
	node.Base
	value cty.Value
	calls int
}

func newConst(v cty.Value) *constNode {
	n := &constNode{value: v}
	n.MustAddOutput("Value", node.Output{Type: typesys.Of(v.Type())})
	return n
}

func (n *constNode) Evaluate(_ context.Context, _ *valuemap.Map, out *valuemap.Map) error {
	n.calls++
	return out.SetChecked("Value", n.value)
}

type addNode struct {
	node.Base
	calls int
}

func newAdd() *addNode {
	n := &addNode{}
	n.MustAddInput("A", node.Input{Type: typesys.Of(cty.Number)})
	n.MustAddInput("B", node.Input{Type: typesys.Of(cty.Number), Constant: cty.NumberIntVal(0)})
	n.MustAddOutput("Value", node.Output{Type: typesys.Of(cty.Number)})
	return n
}

func (n *addNode) Evaluate(_ context.Context, in *valuemap.Map, out *valuemap.Map) error {
	n.calls++
	a, err := valuemap.GetStrict[cty.Value](in, "A")
	if err != nil {
		return err
	}
	b, err := valuemap.GetStrict[cty.Value](in, "B")
	if err != nil {
		return err
	}
	return out.SetChecked("Value", a.Add(b))
}

// recordNode is a sink that appends every received value to a log.
type recordNode struct {
	node.Base
	got []cty.Value
}

func newRecord(ty typesys.DataType) *recordNode {
	n := &recordNode{}
	n.MustAddInput("Value", node.Input{Type: ty})
	return n
}

func (n *recordNode) Evaluate(_ context.Context, in *valuemap.Map, _ *valuemap.Map) error {
	v, _ := in.Value("Value")
	n.got = append(n.got, v)
	return nil
}

type failNode struct{ node.Base }

func (*failNode) Evaluate(context.Context, *valuemap.Map, *valuemap.Map) error {
	return errors.New("boom")
}

type branchNode struct{ node.Base }

func newBranch() *branchNode {
	n := &branchNode{}
	n.MustAddInput("Condition", node.Input{Type: typesys.Of(cty.Bool)})
	return n
}

func (*branchNode) Paths() []string { return []string{"True", "False"} }

func (n *branchNode) Evaluate(_ context.Context, in *valuemap.Map, out *valuemap.Map) error {
	cond, err := valuemap.GetStrict[bool](in, "Condition")
	if err != nil {
		return err
	}
	path := "False"
	if cond {
		path = "True"
	}
	return out.SetChecked(node.SelectedOutputPath, cty.StringVal(path))
}

// loopNode counts from First up to Last, exclusive.
type loopNode struct {
	node.Base
	index, last int
	inits       int
	advances    int
}

func newLoop(first, last int) *loopNode {
	n := &loopNode{}
	n.MustAddInput("First", node.Input{Type: typesys.Of(cty.Number), Constant: cty.NumberIntVal(int64(first))})
	n.MustAddInput("Last", node.Input{Type: typesys.Of(cty.Number), Constant: cty.NumberIntVal(int64(last))})
	n.MustAddOutput("Index", node.Output{Type: typesys.Of(cty.Number)})
	return n
}

func (*loopNode) Paths() []string { return []string{"Body", "Finished"} }

func (*loopNode) FinishedPath() string { return "Finished" }

func (n *loopNode) InitializeIteration(_ context.Context, in *valuemap.Map) error {
	n.inits++
	first, err := valuemap.GetStrict[int](in, "First")
	if err != nil {
		return err
	}
	last, err := valuemap.GetStrict[int](in, "Last")
	if err != nil {
		return err
	}
	n.index, n.last = first, last
	return nil
}

func (n *loopNode) Advance() {
	n.advances++
	n.index++
}

func (n *loopNode) IsDone() bool { return n.index >= n.last }

func (n *loopNode) Evaluate(_ context.Context, _ *valuemap.Map, out *valuemap.Map) error {
	if err := out.SetChecked("Index", cty.NumberIntVal(int64(n.index))); err != nil {
		return err
	}
	if err := out.SetChecked(node.ContinueIteration, cty.BoolVal(!n.IsDone())); err != nil {
		return err
	}
	return out.SetChecked(node.SelectedOutputPath, cty.StringVal("Body"))
}

// testGraph wraps a graph with fail-fast helpers.
type testGraph struct {
	t *testing.T
	*graph.Graph
}

func newTestGraph(t *testing.T) *testGraph {
	t.Helper()
	return &testGraph{t: t, Graph: graph.New(nil)}
}

func (g *testGraph) add(n node.Node, typeName string) int32 {
	g.t.Helper()
	id, err := g.AddNode(n, node.TypeInfo{TypeName: typeName}, nil)
	require.NoError(g.t, err)
	return id
}

func (g *testGraph) data(from node.Node, out string, to node.Node, in string) {
	g.t.Helper()
	require.True(g.t, g.AddConnection(from.ID(), out, to.ID(), in, true), "data %d.%s -> %d.%s", from.ID(), out, to.ID(), in)
}

func (g *testGraph) seq(from node.Node, path string, to node.Node) {
	g.t.Helper()
	require.True(g.t, g.AddSequenceConnection(from.ID(), path, to.ID(), ""), "sequence %d.%q -> %d", from.ID(), path, to.ID())
}
