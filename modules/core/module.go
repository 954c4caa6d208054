// Package core provides the basic node classes: the entry node, constants,
// arithmetic and comparison, branching, loops and string formatting.
package core

import (
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node classes with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClass("start", "", "Entry point of a sequence pass.", func() node.Node { return NewStart() })

	for _, variant := range constantVariants() {
		r.RegisterClass("constant", variant, "A constant "+variant+" value.", func() node.Node { return NewConstant(variant) })
	}

	r.RegisterClass("add", "", "Sum of two numbers.", func() node.Node { return NewArithmetic(Add) })
	r.RegisterClass("multiply", "", "Product of two numbers.", func() node.Node { return NewArithmetic(Multiply) })

	for _, op := range compareOperators() {
		r.RegisterClass("compare", string(op), "Compares two values.", func() node.Node { return NewCompare(op) })
	}

	r.RegisterClass("branch", "", "Continues on the True or False path.", func() node.Node { return NewBranch() })
	r.RegisterClass("for_loop", "", "Runs its body once per index in a range.", func() node.Node { return NewForLoop() })
	r.RegisterClass("for_each", "", "Runs its body once per element of a collection.", func() node.Node { return NewForEach() })
	r.RegisterClass("format", "", "Substitutes a value into a template.", func() node.Node { return NewFormat() })
}
