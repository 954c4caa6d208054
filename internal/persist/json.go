package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/nodegraph/internal/typesys"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

type jsonDocument struct {
	Nodes               []jsonNode         `json:"nodes"`
	DataConnections     []ConnectionRecord `json:"data_connections"`
	SequenceConnections []ConnectionRecord `json:"sequence_connections"`
}

type jsonNode struct {
	Identifier     int32          `json:"identifier"`
	Type           string         `json:"type"`
	Variant        string         `json:"variant,omitempty"`
	Location       Location       `json:"location"`
	InputConstants []jsonConstant `json:"input_constants,omitempty"`
	CustomData     []jsonKeyValue `json:"custom_data,omitempty"`
}

type jsonConstant struct {
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type jsonKeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EncodeJSON renders doc as an indented JSON document.
func EncodeJSON(doc *Document) ([]byte, error) {
	out := jsonDocument{
		Nodes:               make([]jsonNode, 0, len(doc.Nodes)),
		DataConnections:     nonNil(doc.DataConnections),
		SequenceConnections: nonNil(doc.SequenceConnections),
	}
	for _, n := range doc.Nodes {
		jn := jsonNode{Identifier: n.ID, Type: n.Type, Variant: n.Variant, Location: n.Location}
		for _, c := range n.Constants {
			raw, err := ctyjson.Marshal(c.Value, c.Type)
			if err != nil {
				return nil, fmt.Errorf("node %d input constant %q: %w", n.ID, c.Name, err)
			}
			jn.InputConstants = append(jn.InputConstants, jsonConstant{Name: c.Name, Type: typesys.TypeString(c.Type), Value: raw})
		}
		for _, k := range sortedKeys(n.CustomData) {
			jn.CustomData = append(jn.CustomData, jsonKeyValue{Key: k, Value: n.CustomData[k]})
		}
		out.Nodes = append(out.Nodes, jn)
	}
	return json.MarshalIndent(out, "", "  ")
}

// DecodeJSON parses a JSON graph document.
func DecodeJSON(ctx context.Context, src []byte) (*Document, error) {
	var in jsonDocument
	if err := json.Unmarshal(src, &in); err != nil {
		return nil, fmt.Errorf("failed to decode JSON graph document: %w", err)
	}

	doc := &Document{DataConnections: in.DataConnections, SequenceConnections: in.SequenceConnections}
	for _, jn := range in.Nodes {
		rec := NodeRecord{ID: jn.Identifier, Type: jn.Type, Variant: jn.Variant, Location: jn.Location}
		for _, c := range jn.InputConstants {
			ty, err := typesys.ParseType(ctx, c.Type)
			if err != nil {
				return nil, fmt.Errorf("node %d input constant %q: %w", jn.Identifier, c.Name, err)
			}
			v, err := ctyjson.Unmarshal(c.Value, ty)
			if err != nil {
				return nil, fmt.Errorf("node %d input constant %q: %w", jn.Identifier, c.Name, err)
			}
			rec.Constants = append(rec.Constants, ConstantRecord{Name: c.Name, Type: ty, Value: v})
		}
		if len(jn.CustomData) > 0 {
			rec.CustomData = make(map[string]string, len(jn.CustomData))
			for _, kv := range jn.CustomData {
				rec.CustomData[kv.Key] = kv.Value
			}
		}
		doc.Nodes = append(doc.Nodes, rec)
	}
	return doc, nil
}

func nonNil(conns []ConnectionRecord) []ConnectionRecord {
	if conns == nil {
		return []ConnectionRecord{}
	}
	return conns
}
