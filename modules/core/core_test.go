package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegraph/internal/eval"
	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/registry"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

// collector is a sink recording the values it receives.
type collector struct {
	node.Base
	got []cty.Value
}

func newCollector() *collector {
	n := &collector{}
	n.MustAddInput("Value", node.Input{Type: typesys.Any})
	return n
}

func (n *collector) Evaluate(_ context.Context, in, _ *valuemap.Map) error {
	v, _ := in.Value("Value")
	n.got = append(n.got, v)
	return nil
}

type harness struct {
	t *testing.T
	g *graph.Graph
}

func newHarness(t *testing.T) *harness {
	return &harness{t: t, g: graph.New(nil)}
}

func (h *harness) add(n node.Node, typeName, variant string) node.Node {
	h.t.Helper()
	_, err := h.g.AddNode(n, node.TypeInfo{TypeName: typeName, Variant: variant}, nil)
	require.NoError(h.t, err)
	return n
}

func (h *harness) data(from node.Node, out string, to node.Node, in string) {
	h.t.Helper()
	require.True(h.t, h.g.TryAddNewConnection(graph.ConnectionInfo{
		Kind: graph.Data, FromNode: from.ID(), FromPin: out, ToNode: to.ID(), ToPin: in, CheckTypes: true,
	}), "data %s -> %s", out, in)
}

func (h *harness) seq(from node.Node, path string, to node.Node) {
	h.t.Helper()
	require.True(h.t, h.g.TryAddNewConnection(graph.ConnectionInfo{
		Kind: graph.Sequence, FromNode: from.ID(), FromPin: path, ToNode: to.ID(),
	}))
}

func (h *harness) constant(t *testing.T, n node.Node, name string, v cty.Value) {
	t.Helper()
	in, ok := n.Inputs().Get(name)
	require.True(t, ok, name)
	in.Constant = v
}

func (h *harness) run() {
	h.t.Helper()
	var msg string
	ok := eval.NewSequence(h.g, eval.WithErrorReporter(func(m string, _ node.Node) { msg = m })).Run(context.Background())
	require.True(h.t, ok, msg)
}

func (h *harness) compute(n node.Node, output string) (cty.Value, error) {
	return eval.NewDataFlow(h.g).ComputeOutput(context.Background(), n, output)
}

func TestRegister(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Load(context.Background(), &Module{}))
	assert.Equal(t, []string{"bool", "number", "string"}, r.Variants("constant"))
	assert.Equal(t, []string{"eq", "ge", "gt", "le", "lt", "ne"}, r.Variants("compare"))

	for _, c := range r.Classes() {
		n := c.New()
		assert.Equal(t, node.Unassigned, n.ID(), c.Info.String())
	}
}

func TestArithmeticAndConstants(t *testing.T) {
	h := newHarness(t)
	five := h.add(NewConstant("number"), "constant", "number")
	seven := h.add(NewConstant("number"), "constant", "number")
	sum := h.add(NewArithmetic(Add), "add", "")
	product := h.add(NewArithmetic(Multiply), "multiply", "")
	h.constant(t, five, "Value", cty.NumberIntVal(5))
	h.constant(t, seven, "Value", cty.NumberIntVal(7))
	h.constant(t, product, "B", cty.NumberIntVal(3))

	h.data(five, "Value", sum, "A")
	h.data(seven, "Value", sum, "B")
	h.data(sum, "Value", product, "A")

	v, err := h.compute(sum, "Value")
	require.NoError(t, err)
	assert.True(t, v.RawEquals(cty.NumberIntVal(12)))

	v, err = h.compute(product, "Value")
	require.NoError(t, err)
	assert.True(t, v.RawEquals(cty.NumberIntVal(36)))
}

func TestCompare(t *testing.T) {
	testCases := []struct {
		op   CompareOperator
		a, b cty.Value
		want bool
	}{
		{Equal, cty.StringVal("x"), cty.StringVal("x"), true},
		{Equal, cty.NumberIntVal(1), cty.StringVal("1"), false},
		{NotEqual, cty.True, cty.False, true},
		{Less, cty.NumberIntVal(1), cty.NumberIntVal(2), true},
		{LessOrEqual, cty.NumberIntVal(2), cty.NumberIntVal(2), true},
		{Greater, cty.NumberIntVal(1), cty.NumberIntVal(2), false},
		{GreaterOrEqual, cty.NumberFloatVal(2.5), cty.NumberIntVal(2), true},
	}
	for _, tc := range testCases {
		t.Run(string(tc.op), func(t *testing.T) {
			h := newHarness(t)
			n := h.add(NewCompare(tc.op), "compare", string(tc.op))
			h.constant(t, n, "A", tc.a)
			h.constant(t, n, "B", tc.b)

			v, err := h.compute(n, "Result")
			require.NoError(t, err)
			assert.Equal(t, tc.want, v.True())
		})
	}
}

func TestBranch(t *testing.T) {
	for _, cond := range []bool{true, false} {
		h := newHarness(t)
		start := h.add(NewStart(), "start", "")
		br := h.add(NewBranch(), "branch", "")
		yes, no := newCollector(), newCollector()
		h.add(yes, "collector", "")
		h.add(no, "collector", "")
		h.constant(t, br, "Condition", cty.BoolVal(cond))
		h.constant(t, yes, "Value", cty.StringVal("yes"))
		h.constant(t, no, "Value", cty.StringVal("no"))

		h.seq(start, "", br)
		h.seq(br, PathTrue, yes)
		h.seq(br, PathFalse, no)
		h.run()

		if cond {
			assert.Len(t, yes.got, 1)
			assert.Empty(t, no.got)
		} else {
			assert.Empty(t, yes.got)
			assert.Len(t, no.got, 1)
		}
	}
}

func renderAll(values []cty.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = Render(v)
	}
	return out
}

func TestForLoop(t *testing.T) {
	testCases := []struct {
		name        string
		first, last int64
		inclusive   bool
		want        []string
	}{
		{"exclusive", 0, 3, false, []string{"0", "1", "2"}},
		{"inclusive", 1, 3, true, []string{"1", "2", "3"}},
		{"empty", 5, 5, false, []string{}},
		{"backwards", 5, 1, false, []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			start := h.add(NewStart(), "start", "")
			loop := h.add(NewForLoop(), "for_loop", "")
			body, done := newCollector(), newCollector()
			h.add(body, "collector", "")
			h.add(done, "collector", "")
			h.constant(t, loop, "First", cty.NumberIntVal(tc.first))
			h.constant(t, loop, "Last", cty.NumberIntVal(tc.last))
			h.constant(t, loop, "Inclusive", cty.BoolVal(tc.inclusive))
			h.constant(t, done, "Value", cty.StringVal("done"))

			h.seq(start, "", loop)
			h.seq(loop, PathBody, body)
			h.seq(loop, PathFinished, done)
			h.data(loop, "Index", body, "Value")
			h.run()

			assert.Equal(t, tc.want, renderAll(body.got))
			assert.Len(t, done.got, 1)
		})
	}
}

type listSource struct {
	node.Base
	value cty.Value
}

func newListSource(v cty.Value) *listSource {
	n := &listSource{value: v}
	n.MustAddOutput("List", node.Output{Type: typesys.Of(v.Type())})
	return n
}

func (n *listSource) Evaluate(_ context.Context, _, out *valuemap.Map) error {
	return setIfRequested(out, "List", n.value)
}

func TestForEach(t *testing.T) {
	h := newHarness(t)
	start := h.add(NewStart(), "start", "")
	src := h.add(newListSource(cty.ListVal([]cty.Value{cty.NumberIntVal(4), cty.NumberIntVal(8)})), "list", "")
	each := NewForEach()
	h.add(each, "for_each", "")
	elements, indexes := newCollector(), newCollector()
	h.add(elements, "collector", "")
	h.add(indexes, "collector", "")

	h.data(src, "List", each, "Collection")
	elem, ok := each.Outputs().Get("Element")
	require.True(t, ok)
	assert.True(t, elem.Type.Base.Equals(cty.Number), "element type follows the connected list")

	h.seq(start, "", each)
	h.seq(each, PathBody, elements)
	h.seq(elements, "", indexes)
	h.data(each, "Element", elements, "Value")
	h.data(each, "Index", indexes, "Value")
	h.run()

	assert.Equal(t, []string{"4", "8"}, renderAll(elements.got))
	assert.Equal(t, []string{"0", "1"}, renderAll(indexes.got))

	require.True(t, h.g.RemoveNode(src.ID()))
	elem, _ = each.Outputs().Get("Element")
	assert.True(t, elem.Type.Base.Equals(cty.DynamicPseudoType))
}

func TestForEach_RejectsScalars(t *testing.T) {
	each := NewForEach()
	in := valuemap.New(1)
	require.NoError(t, in.Set(0, "Collection", cty.StringVal("nope")))
	err := each.InitializeIteration(context.Background(), in)
	assert.ErrorContains(t, err, "cannot iterate over string")
}

func TestFormat(t *testing.T) {
	h := newHarness(t)
	f := h.add(NewFormat(), "format", "")
	h.constant(t, f, "Template", cty.StringVal("value={} again={}"))
	h.constant(t, f, "Value", cty.ListVal([]cty.Value{cty.StringVal("a")}))

	v, err := h.compute(f, "Text")
	require.NoError(t, err)
	assert.Equal(t, `value=["a"] again=["a"]`, v.AsString())
}

func TestRender(t *testing.T) {
	assert.Equal(t, "1.5", Render(cty.NumberFloatVal(1.5)))
	assert.Equal(t, "true", Render(cty.True))
	assert.Equal(t, "null", Render(cty.NullVal(cty.String)))
	assert.Equal(t, "<no value>", Render(cty.NilVal))
	assert.Equal(t, `{"a":1}`, Render(cty.ObjectVal(map[string]cty.Value{"a": cty.NumberIntVal(1)})))
	assert.Equal(t, "plain", Render(cty.StringVal("plain")))
}
