package registry

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/vk/nodegraph/internal/node"
)

var ErrUnknownClass = errors.New("unknown node class")

// Module is the interface that all node libraries must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Factory builds a fresh, unattached node.
type Factory func() node.Node

// Class is a registered node constructor.
type Class struct {
	Info        node.TypeInfo
	Description string
	New         Factory
}

// Registry holds the node classes available to a single application
// instance.
type Registry struct {
	classes map[node.TypeInfo]*Class
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{classes: make(map[node.TypeInfo]*Class)}
}

// RegisterClass adds a constructor for (typeName, variant). Registering the
// same pair twice is a programming error and panics.
func (r *Registry) RegisterClass(typeName, variant, description string, fn Factory) {
	info := node.TypeInfo{TypeName: typeName, Variant: variant}
	if typeName == "" {
		panic("node class registered without a type name")
	}
	if fn == nil {
		panic(fmt.Sprintf("node class '%s' registered without a factory", info))
	}
	if _, exists := r.classes[info]; exists {
		panic(fmt.Sprintf("node class '%s' already registered", info))
	}
	slog.Debug("Registering node class.", "class", info.String())
	r.classes[info] = &Class{Info: info, Description: description, New: fn}
}

// Lookup returns the class registered for (typeName, variant).
func (r *Registry) Lookup(typeName, variant string) (*Class, bool) {
	c, ok := r.classes[node.TypeInfo{TypeName: typeName, Variant: variant}]
	return c, ok
}

// NewNode instantiates the class identified by info.
func (r *Registry) NewNode(info node.TypeInfo) (node.Node, error) {
	c, ok := r.classes[info]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, info)
	}
	return c.New(), nil
}

// Classes returns every registered class ordered by type name and variant.
func (r *Registry) Classes() []*Class {
	out := make([]*Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Class) int {
		return cmp.Or(cmp.Compare(a.Info.TypeName, b.Info.TypeName), cmp.Compare(a.Info.Variant, b.Info.Variant))
	})
	return out
}

// Variants returns the registered variants of typeName in order.
func (r *Registry) Variants(typeName string) []string {
	var out []string
	for _, c := range r.Classes() {
		if c.Info.TypeName == typeName {
			out = append(out, c.Info.Variant)
		}
	}
	return out
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	return len(r.classes)
}
