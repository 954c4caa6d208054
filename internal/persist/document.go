package persist

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// Format selects a document encoding.
type Format int

const (
	FormatHCL Format = iota
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatHCL:
		return "hcl"
	case FormatJSON:
		return "json"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Extensions lists the file extensions FormatFromPath recognizes.
var Extensions = []string{".hcl", ".json"}

// FormatFromPath picks the format matching a file's extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return FormatHCL, nil
	case ".json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("unsupported graph file extension %q", filepath.Ext(path))
}

// Document is the encoding-independent form of a saved graph.
type Document struct {
	Nodes               []NodeRecord
	DataConnections     []ConnectionRecord
	SequenceConnections []ConnectionRecord
}

// NodeRecord describes one node.
type NodeRecord struct {
	ID         int32
	Type       string
	Variant    string
	Location   Location
	Constants  []ConstantRecord
	CustomData map[string]string
}

// Info returns the node's class.
func (r NodeRecord) Info() node.TypeInfo {
	return node.TypeInfo{TypeName: r.Type, Variant: r.Variant}
}

// Location is an editor position. The engine does not interpret it.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout maps node identifiers to their editor positions.
type Layout map[int32]Location

// ConstantRecord is the constant value of one input.
type ConstantRecord struct {
	Name  string
	Type  cty.Type
	Value cty.Value
}

// ConnectionRecord is a data or sequence connection. For sequence
// connections FromOutput names the path.
type ConnectionRecord struct {
	FromNode   int32  `json:"from_node"`
	FromOutput string `json:"from_output"`
	ToNode     int32  `json:"to_node"`
	ToInput    string `json:"to_input"`
}

func recordOf(c graph.Connection) ConnectionRecord {
	return ConnectionRecord{FromNode: c.FromNode, FromOutput: c.FromOutput, ToNode: c.ToNode, ToInput: c.ToInput}
}

func (r ConnectionRecord) String() string {
	return fmt.Sprintf("%d.%s -> %d.%s", r.FromNode, r.FromOutput, r.ToNode, r.ToInput)
}

// Snapshot captures g as a document. Placeholder nodes are written under
// their original class so nothing is lost by saving a partially resolved
// graph.
func Snapshot(g *graph.Graph, layout Layout) *Document {
	doc := &Document{}
	for _, e := range g.Entries() {
		rec := NodeRecord{
			ID:       e.ID,
			Type:     e.TypeInfo.TypeName,
			Variant:  e.TypeInfo.Variant,
			Location: layout[e.ID],
		}
		if m, ok := e.Node.(*node.Missing); ok {
			rec.Type, rec.Variant = m.Original.TypeName, m.Original.Variant
		}
		for _, name := range e.Node.Inputs().Names() {
			in, _ := e.Node.Inputs().Get(name)
			if !in.HasConstant() {
				continue
			}
			rec.Constants = append(rec.Constants, ConstantRecord{Name: name, Type: in.Constant.Type(), Value: in.Constant})
		}
		if cd, ok := e.Node.(node.CustomDataNode); ok {
			if data := cd.CustomData(); len(data) > 0 {
				rec.CustomData = maps.Clone(data)
			}
		}
		doc.Nodes = append(doc.Nodes, rec)
	}
	for _, c := range g.DataConnections() {
		doc.DataConnections = append(doc.DataConnections, recordOf(c))
	}
	for _, c := range g.SequenceConnections() {
		doc.SequenceConnections = append(doc.SequenceConnections, recordOf(c))
	}
	return doc
}

// sortedKeys returns the keys of m in order, for stable output.
func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
