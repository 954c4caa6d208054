package node

import (
	"context"
	"fmt"

	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
)

// Missing stands in for a node whose class could not be resolved when a
// graph was loaded. It keeps the original pin names so the connections
// that referenced them stay representable, and fails when evaluated.
type Missing struct {
	Base
	Original TypeInfo
	Data     map[string]string

	paths []string
}

// NewMissing creates a placeholder for the given class with "any" typed
// pins under the given names.
func NewMissing(original TypeInfo, inputs, outputs []string) *Missing {
	m := &Missing{Original: original}
	for _, name := range inputs {
		_ = m.AddInput(name, Input{Type: typesys.Any, Flags: Optional})
	}
	for _, name := range outputs {
		_ = m.AddOutput(name, Output{Type: typesys.Any})
	}
	return m
}

// SetPaths records the sequence paths the original node had, so that its
// outgoing sequence connections can be restored. Without it the placeholder
// only has the default path.
func (m *Missing) SetPaths(paths []string) {
	m.paths = paths
}

// Paths makes every placeholder a control-flow node. It never runs, so the
// category only matters for which sequence connections it can hold.
func (m *Missing) Paths() []string {
	if len(m.paths) == 0 {
		return []string{DefaultPath}
	}
	return m.paths
}

func (m *Missing) Evaluate(context.Context, *valuemap.Map, *valuemap.Map) error {
	return fmt.Errorf("node class %q is not available", m.Original.String())
}

// CustomData returns the data read for the original node so that saving
// the graph again loses nothing.
func (m *Missing) CustomData() map[string]string {
	return m.Data
}

func (m *Missing) RestoreCustomData(data map[string]string) error {
	m.Data = data
	return nil
}

// Replacement describes how an editor turns a placeholder into a concrete
// node once a connection resolves its generic pin's type.
type Replacement struct {
	Class     TypeInfo
	TargetPin string
	Init      func(Node) error
}

// ReplacementProvider is implemented by editor-side placeholder nodes. The
// evaluators never call it.
type ReplacementProvider interface {
	TryGetReplacement(pin string, incoming typesys.DataType) (Replacement, bool)
}
