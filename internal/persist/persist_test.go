package persist

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/registry"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

type testNode struct{ node.Base }

func (*testNode) Evaluate(context.Context, *valuemap.Map, *valuemap.Map) error { return nil }

type entryNode struct{ testNode }

func (*entryNode) IsEntry() bool { return true }

type switchNode struct{ testNode }

func (*switchNode) Paths() []string { return []string{"True", "False"} }

// noteNode keeps free-form custom data.
type noteNode struct {
	testNode
	data map[string]string
}

func (n *noteNode) CustomData() map[string]string { return n.data }

func (n *noteNode) RestoreCustomData(data map[string]string) error {
	n.data = data
	return nil
}

// relayNode only grows its output once its input is connected.
type relayNode struct{ testNode }

func (*relayNode) HasDynamicOutputs() bool { return true }

func (n *relayNode) InputConnected(input string, from typesys.DataType) {
	if _, ok := n.Outputs().Get("Out"); !ok {
		n.MustAddOutput("Out", node.Output{Type: from})
	}
}

func (n *relayNode) InputDisconnected(string) {}

type testModule struct{}

func (testModule) Register(r *registry.Registry) {
	r.RegisterClass("start", "", "", func() node.Node { return &entryNode{} })
	r.RegisterClass("value", "number", "", func() node.Node {
		n := &testNode{}
		n.MustAddInput("Value", node.Input{Type: typesys.Of(cty.Number)})
		n.MustAddOutput("Value", node.Output{Type: typesys.Of(cty.Number)})
		return n
	})
	r.RegisterClass("tags", "", "", func() node.Node {
		n := &testNode{}
		n.MustAddInput("Tags", node.Input{Type: typesys.Of(cty.List(cty.String))})
		n.MustAddInput("Meta", node.Input{Type: typesys.Of(cty.Object(map[string]cty.Type{"a": cty.Number, "b": cty.Bool}))})
		return n
	})
	r.RegisterClass("switch", "", "", func() node.Node {
		n := &switchNode{}
		n.MustAddInput("Condition", node.Input{Type: typesys.Of(cty.Bool)})
		return n
	})
	r.RegisterClass("sink", "", "", func() node.Node {
		n := &testNode{}
		n.MustAddInput("Value", node.Input{Type: typesys.Any})
		return n
	})
	r.RegisterClass("note", "", "", func() node.Node { return &noteNode{} })
	r.RegisterClass("relay", "", "", func() node.Node {
		n := &relayNode{}
		n.MustAddInput("In", node.Input{Type: typesys.Any})
		return n
	})
}

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	require.NoError(t, r.Load(context.Background(), testModule{}))
	return r
}

// build adds a registered node with an explicit id.
func build(t *testing.T, r *registry.Registry, g *graph.Graph, id int32, typeName, variant string) node.Node {
	t.Helper()
	info := node.TypeInfo{TypeName: typeName, Variant: variant}
	n, err := r.NewNode(info)
	require.NoError(t, err)
	_, err = g.AddNode(n, info, &id)
	require.NoError(t, err)
	return n
}

func setConstant(t *testing.T, n node.Node, name string, v cty.Value) {
	t.Helper()
	in, ok := n.Inputs().Get(name)
	require.True(t, ok)
	in.Constant = v
}

var ctyCmp = cmp.Options{
	cmp.Comparer(func(a, b cty.Value) bool { return a.RawEquals(b) }),
	cmp.Comparer(func(a, b cty.Type) bool { return a.Equals(b) }),
}

func sampleGraph(t *testing.T, r *registry.Registry) (*graph.Graph, Layout) {
	t.Helper()
	g := graph.New(nil)
	start := build(t, r, g, 0, "start", "")
	val := build(t, r, g, 1, "value", "number")
	sw := build(t, r, g, 2, "switch", "")
	sink := build(t, r, g, 5, "sink", "")
	tags := build(t, r, g, 6, "tags", "")
	note := build(t, r, g, 7, "note", "").(*noteNode)

	setConstant(t, val, "Value", cty.NumberFloatVal(2.5))
	setConstant(t, sw, "Condition", cty.True)
	setConstant(t, tags, "Tags", cty.ListVal([]cty.Value{cty.StringVal("x"), cty.StringVal("y z")}))
	setConstant(t, tags, "Meta", cty.ObjectVal(map[string]cty.Value{"a": cty.NumberIntVal(1), "b": cty.False}))
	note.data = map[string]string{"text": "hello", "color": "red"}

	require.True(t, g.AddConnection(val.ID(), "Value", sink.ID(), "Value", true))
	require.True(t, g.AddSequenceConnection(start.ID(), "", sw.ID(), ""))
	require.True(t, g.AddSequenceConnection(sw.ID(), "True", sink.ID(), ""))

	return g, Layout{0: {X: 10, Y: 20}, 2: {X: -5.5, Y: 0}}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatHCL, FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			r := newRegistry(t)
			g, layout := sampleGraph(t, r)

			var buf bytes.Buffer
			require.NoError(t, Save(&buf, g, layout, format))

			loaded, err := Load(context.Background(), buf.Bytes(), "graph."+format.String(), format, r, nil)
			require.NoError(t, err)
			require.NoError(t, loaded.Problems)
			assert.Empty(t, loaded.Placeholders)

			if diff := cmp.Diff(Snapshot(g, layout), Snapshot(loaded.Graph, loaded.Layout), ctyCmp); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			// New nodes continue after the highest restored identifier.
			id, err := loaded.Graph.AddNode(&testNode{}, node.TypeInfo{TypeName: "x"}, nil)
			require.NoError(t, err)
			assert.Equal(t, int32(8), id)
		})
	}
}

func TestDecodeHCL(t *testing.T) {
	src := `
node "value" {
  id      = 3
  variant = "number"
  location {
    x = 1
    y = 2
  }
  input_constant "Value" {
    type  = "number"
    value = 42
  }
}

node "note" {
  id          = 4
  custom_data = { text = "hi" }
}

data_connection {
  from_node   = 3
  from_output = "Value"
  to_node     = 4
  to_input    = "In"
}
`
	doc, err := DecodeHCL(context.Background(), []byte(src), "test.hcl")
	require.NoError(t, err)

	want := &Document{
		Nodes: []NodeRecord{
			{
				ID: 3, Type: "value", Variant: "number", Location: Location{X: 1, Y: 2},
				Constants: []ConstantRecord{{Name: "Value", Type: cty.Number, Value: cty.NumberIntVal(42)}},
			},
			{ID: 4, Type: "note", CustomData: map[string]string{"text": "hi"}},
		},
		DataConnections: []ConnectionRecord{{FromNode: 3, FromOutput: "Value", ToNode: 4, ToInput: "In"}},
	}
	if diff := cmp.Diff(want, doc, ctyCmp); diff != "" {
		t.Errorf("decoded document mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	ctx := context.Background()

	_, err := DecodeHCL(ctx, []byte(`node "x" {`), "bad.hcl")
	assert.ErrorContains(t, err, "failed to parse HCL file bad.hcl")

	_, err = DecodeHCL(ctx, []byte(`node "x" { variant = "a" }`), "missing.hcl")
	assert.ErrorContains(t, err, "failed to decode HCL file missing.hcl")

	_, err = DecodeHCL(ctx, []byte(`node "x" {
  id = 1
  input_constant "A" {
    type  = "number"
    value = "not a number"
  }
}`), "typed.hcl")
	assert.ErrorContains(t, err, `input constant "A"`)

	_, err = DecodeJSON(ctx, []byte(`{"nodes": [{"identifier": 1, "type": "x", "input_constants": [{"name": "A", "type": "bogus(", "value": 1}]}]}`))
	assert.Error(t, err)
}

func TestRestore_UnknownClassBecomesPlaceholder(t *testing.T) {
	r := newRegistry(t)
	doc := &Document{
		Nodes: []NodeRecord{
			{ID: 0, Type: "start"},
			{ID: 1, Type: "value", Variant: "number", Constants: []ConstantRecord{{Name: "Value", Type: cty.Number, Value: cty.NumberIntVal(1)}}},
			{
				ID: 2, Type: "plugin_node", Variant: "v2",
				Constants:  []ConstantRecord{{Name: "Mode", Type: cty.String, Value: cty.StringVal("fast")}},
				CustomData: map[string]string{"k": "v"},
			},
			{ID: 3, Type: "sink"},
		},
		DataConnections: []ConnectionRecord{
			{FromNode: 1, FromOutput: "Value", ToNode: 2, ToInput: "Input"},
			{FromNode: 2, FromOutput: "Result", ToNode: 3, ToInput: "Value"},
		},
		SequenceConnections: []ConnectionRecord{
			{FromNode: 0, FromOutput: "", ToNode: 2, ToInput: ""},
			{FromNode: 2, FromOutput: "Done", ToNode: 3, ToInput: ""},
		},
	}

	loaded, err := Restore(context.Background(), doc, r, nil)
	require.NoError(t, err)
	require.NoError(t, loaded.Problems)
	assert.Equal(t, []int32{2}, loaded.Placeholders)

	n, ok := loaded.Graph.FindNode(2)
	require.True(t, ok)
	m, ok := n.(*node.Missing)
	require.True(t, ok)
	assert.Equal(t, []string{"Mode", "Input"}, m.Inputs().Names())
	assert.Equal(t, []string{"Result"}, m.Outputs().Names())
	assert.Equal(t, "plugin_node", loaded.Graph.NodesOfType("plugin_node")[0].TypeInfo().TypeName)
	assert.Len(t, loaded.Graph.DataConnections(), 2)
	assert.Len(t, loaded.Graph.SequenceConnections(), 2)

	// Saving again writes the original class back.
	if diff := cmp.Diff(doc, Snapshot(loaded.Graph, nil), ctyCmp); diff != "" {
		t.Errorf("resaved document mismatch (-want +got):\n%s", diff)
	}
}

func TestRestore_WiresDynamicOutputsFirst(t *testing.T) {
	r := newRegistry(t)
	// The connection out of the relay is listed before the one feeding it.
	doc := &Document{
		Nodes: []NodeRecord{
			{ID: 0, Type: "sink"},
			{ID: 1, Type: "relay"},
			{ID: 2, Type: "value", Variant: "number"},
		},
		DataConnections: []ConnectionRecord{
			{FromNode: 1, FromOutput: "Out", ToNode: 0, ToInput: "Value"},
			{FromNode: 2, FromOutput: "Value", ToNode: 1, ToInput: "In"},
		},
	}

	loaded, err := Restore(context.Background(), doc, r, nil)
	require.NoError(t, err)
	require.NoError(t, loaded.Problems)
	assert.Len(t, loaded.Graph.DataConnections(), 2)

	relay, _ := loaded.Graph.FindNode(1)
	out, ok := relay.Outputs().Get("Out")
	require.True(t, ok)
	assert.True(t, out.Type.Base.Equals(cty.Number))
}

func TestRestore_WiresDynamicOutputsFirstInCycle(t *testing.T) {
	r := newRegistry(t)
	// 2 -> 1 -> 3 -> 2 cannot be ordered, so wiring falls back to document
	// order, which lists the relay's consumer first.
	doc := &Document{
		Nodes: []NodeRecord{
			{ID: 3, Type: "value", Variant: "number"},
			{ID: 2, Type: "value", Variant: "number"},
			{ID: 1, Type: "relay"},
		},
		DataConnections: []ConnectionRecord{
			{FromNode: 1, FromOutput: "Out", ToNode: 3, ToInput: "Value"},
			{FromNode: 3, FromOutput: "Value", ToNode: 2, ToInput: "Value"},
			{FromNode: 2, FromOutput: "Value", ToNode: 1, ToInput: "In"},
		},
	}

	loaded, err := Restore(context.Background(), doc, r, nil)
	require.NoError(t, err)
	require.Error(t, loaded.Problems)
	assert.Contains(t, loaded.Problems.Error(), "cycle")
	assert.NotContains(t, loaded.Problems.Error(), "could not be restored")
	assert.Len(t, loaded.Graph.DataConnections(), 3)
}

func TestRoundTrip_TupleConstant(t *testing.T) {
	tuple := cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.StringVal("a")})
	for _, format := range []Format{FormatHCL, FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			r := newRegistry(t)
			g := graph.New(nil)
			sink := build(t, r, g, 0, "sink", "")
			setConstant(t, sink, "Value", tuple)

			var buf bytes.Buffer
			require.NoError(t, Save(&buf, g, nil, format))
			assert.Contains(t, buf.String(), "tuple([number,string])")

			loaded, err := Load(context.Background(), buf.Bytes(), "graph."+format.String(), format, r, nil)
			require.NoError(t, err)
			require.NoError(t, loaded.Problems)

			restored, ok := loaded.Graph.FindNode(0)
			require.True(t, ok)
			in, ok := restored.Inputs().Get("Value")
			require.True(t, ok)
			assert.True(t, in.Constant.RawEquals(tuple), "got %#v", in.Constant)
		})
	}
}

func TestRestore_CollectsProblems(t *testing.T) {
	r := newRegistry(t)
	doc := &Document{
		Nodes: []NodeRecord{
			{ID: 0, Type: "value", Variant: "number", Constants: []ConstantRecord{{Name: "Nope", Type: cty.Number, Value: cty.NumberIntVal(1)}}},
			{ID: 1, Type: "tags", CustomData: map[string]string{"a": "b"}},
			{ID: 2, Type: "sink"},
		},
		DataConnections: []ConnectionRecord{
			{FromNode: 0, FromOutput: "Missing", ToNode: 2, ToInput: "Value"},
			{FromNode: 0, FromOutput: "Value", ToNode: 1, ToInput: "Tags"},
		},
		SequenceConnections: []ConnectionRecord{
			{FromNode: 0, FromOutput: "Sideways", ToNode: 2},
		},
	}

	loaded, err := Restore(context.Background(), doc, r, nil)
	require.NoError(t, err, "problems never fail the load")
	require.Error(t, loaded.Problems)
	msg := loaded.Problems.Error()
	for _, want := range []string{
		`input constant "Nope"`,
		"node 1 (tags) does not accept custom data",
		"data connection 0.Missing -> 2.Value could not be restored",
		"sequence connection 0.Sideways -> 2. could not be restored",
		"is type_mismatch",
	} {
		assert.Contains(t, msg, want)
	}
	assert.Equal(t, 3, loaded.Graph.Len())
	assert.Len(t, loaded.Graph.DataConnections(), 1, "the mistyped connection is kept for diagnostics")
}

func TestRestore_DuplicateIdentifier(t *testing.T) {
	r := newRegistry(t)
	doc := &Document{Nodes: []NodeRecord{{ID: 1, Type: "sink"}, {ID: 1, Type: "sink"}}}
	_, err := Restore(context.Background(), doc, r, nil)
	assert.ErrorIs(t, err, graph.ErrDuplicateID)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("dir/graph.HCL")
	require.NoError(t, err)
	assert.Equal(t, FormatHCL, f)

	f, err = FormatFromPath("graph.json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = FormatFromPath("graph.yaml")
	assert.Error(t, err)
}
