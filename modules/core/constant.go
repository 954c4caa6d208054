package core

import (
	"context"
	"fmt"

	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

var constantTypes = map[string]cty.Value{
	"number": cty.NumberIntVal(0),
	"string": cty.StringVal(""),
	"bool":   cty.False,
}

func constantVariants() []string {
	return []string{"bool", "number", "string"}
}

// Constant outputs the value held in its node-constant input.
type Constant struct {
	node.Base
}

// NewConstant creates a constant of the given variant, one of "number",
// "string" or "bool". It panics on any other variant.
func NewConstant(variant string) *Constant {
	zero, ok := constantTypes[variant]
	if !ok {
		panic(fmt.Sprintf("unknown constant variant %q", variant))
	}
	c := &Constant{}
	c.MustAddInput("Value", node.Input{
		Type:     typesys.Of(zero.Type()),
		Flags:    node.NodeConstant | node.HiddenLabel,
		Constant: zero,
	})
	c.MustAddOutput("Value", node.Output{Type: typesys.Of(zero.Type())})
	return c
}

func (*Constant) IsPure() bool { return true }

func (c *Constant) Evaluate(_ context.Context, in, out *valuemap.Map) error {
	v, ok := in.Value("Value")
	if !ok {
		return node.Errorf(c, "constant has no value")
	}
	return setIfRequested(out, "Value", v)
}
