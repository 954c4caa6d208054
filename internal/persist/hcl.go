package persist

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// hclRoot is the top-level structure of an HCL graph document.
type hclRoot struct {
	Nodes    []*hclNode       `hcl:"node,block"`
	Data     []*hclConnection `hcl:"data_connection,block"`
	Sequence []*hclConnection `hcl:"sequence_connection,block"`
}

type hclNode struct {
	Type       string            `hcl:"type,label"`
	ID         int32             `hcl:"id"`
	Variant    string            `hcl:"variant,optional"`
	Location   *hclLocation      `hcl:"location,block"`
	Constants  []*hclConstant    `hcl:"input_constant,block"`
	CustomData map[string]string `hcl:"custom_data,optional"`
}

type hclLocation struct {
	X float64 `hcl:"x"`
	Y float64 `hcl:"y"`
}

type hclConstant struct {
	Name  string         `hcl:"name,label"`
	Type  string         `hcl:"type"`
	Value hcl.Expression `hcl:"value"`
}

type hclConnection struct {
	FromNode   int32  `hcl:"from_node"`
	FromOutput string `hcl:"from_output"`
	ToNode     int32  `hcl:"to_node"`
	ToInput    string `hcl:"to_input"`
}

// DecodeHCL parses an HCL graph document. filename is only used in
// diagnostics.
func DecodeHCL(ctx context.Context, src []byte, filename string) (*Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding HCL graph document.", "file", filename)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	doc := &Document{}
	for _, n := range root.Nodes {
		rec := NodeRecord{ID: n.ID, Type: n.Type, Variant: n.Variant, CustomData: n.CustomData}
		if n.Location != nil {
			rec.Location = Location{X: n.Location.X, Y: n.Location.Y}
		}
		for _, c := range n.Constants {
			constant, err := decodeHCLConstant(ctx, c)
			if err != nil {
				return nil, fmt.Errorf("node %d (%s): %w", n.ID, n.Type, err)
			}
			rec.Constants = append(rec.Constants, constant)
		}
		doc.Nodes = append(doc.Nodes, rec)
	}
	for _, c := range root.Data {
		doc.DataConnections = append(doc.DataConnections, ConnectionRecord(*c))
	}
	for _, c := range root.Sequence {
		doc.SequenceConnections = append(doc.SequenceConnections, ConnectionRecord(*c))
	}

	logger.Debug("HCL graph document decoded.", "nodes", len(doc.Nodes), "data_connections", len(doc.DataConnections), "sequence_connections", len(doc.SequenceConnections))
	return doc, nil
}

func decodeHCLConstant(ctx context.Context, c *hclConstant) (ConstantRecord, error) {
	ty, err := typesys.ParseType(ctx, c.Type)
	if err != nil {
		return ConstantRecord{}, fmt.Errorf("input constant %q: %w", c.Name, err)
	}
	v, diags := c.Value.Value(nil)
	if diags.HasErrors() {
		return ConstantRecord{}, fmt.Errorf("input constant %q: %w", c.Name, diags)
	}
	v, err = convert.Convert(v, ty)
	if err != nil {
		return ConstantRecord{}, fmt.Errorf("input constant %q: value is not a %s: %w", c.Name, c.Type, err)
	}
	return ConstantRecord{Name: c.Name, Type: ty, Value: v}, nil
}

// EncodeHCL renders doc as an HCL document.
func EncodeHCL(doc *Document) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	for i, n := range doc.Nodes {
		if i > 0 {
			root.AppendNewline()
		}
		body := root.AppendNewBlock("node", []string{n.Type}).Body()
		body.SetAttributeValue("id", cty.NumberIntVal(int64(n.ID)))
		if n.Variant != "" {
			body.SetAttributeValue("variant", cty.StringVal(n.Variant))
		}
		if n.Location != (Location{}) {
			loc := body.AppendNewBlock("location", nil).Body()
			loc.SetAttributeValue("x", cty.NumberFloatVal(n.Location.X))
			loc.SetAttributeValue("y", cty.NumberFloatVal(n.Location.Y))
		}
		for _, c := range n.Constants {
			if err := writableValue(c.Value); err != nil {
				return nil, fmt.Errorf("node %d input constant %q: %w", n.ID, c.Name, err)
			}
			cb := body.AppendNewBlock("input_constant", []string{c.Name}).Body()
			cb.SetAttributeValue("type", cty.StringVal(typesys.TypeString(c.Type)))
			cb.SetAttributeValue("value", c.Value)
		}
		if len(n.CustomData) > 0 {
			attrs := make(map[string]cty.Value, len(n.CustomData))
			for _, k := range sortedKeys(n.CustomData) {
				attrs[k] = cty.StringVal(n.CustomData[k])
			}
			body.SetAttributeValue("custom_data", cty.ObjectVal(attrs))
		}
	}

	writeConnections(root, "data_connection", doc.DataConnections)
	writeConnections(root, "sequence_connection", doc.SequenceConnections)
	return f.Bytes(), nil
}

func writeConnections(root *hclwrite.Body, blockType string, conns []ConnectionRecord) {
	for _, c := range conns {
		root.AppendNewline()
		body := root.AppendNewBlock(blockType, nil).Body()
		body.SetAttributeValue("from_node", cty.NumberIntVal(int64(c.FromNode)))
		body.SetAttributeValue("from_output", cty.StringVal(c.FromOutput))
		body.SetAttributeValue("to_node", cty.NumberIntVal(int64(c.ToNode)))
		body.SetAttributeValue("to_input", cty.StringVal(c.ToInput))
	}
}

// writableValue rejects values hclwrite cannot render.
func writableValue(v cty.Value) error {
	if v.Type() == cty.NilType {
		return fmt.Errorf("no value")
	}
	if !v.IsWhollyKnown() {
		return fmt.Errorf("value is not known")
	}
	if v.Type().IsCapsuleType() {
		return fmt.Errorf("capsule values cannot be saved")
	}
	return nil
}
