package core

import (
	"context"

	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

// Operator combines two numbers.
type Operator func(a, b cty.Value) cty.Value

var (
	Add      Operator = func(a, b cty.Value) cty.Value { return a.Add(b) }
	Multiply Operator = func(a, b cty.Value) cty.Value { return a.Multiply(b) }
)

// Arithmetic applies an Operator to inputs A and B.
type Arithmetic struct {
	node.Base
	op Operator
}

func NewArithmetic(op Operator) *Arithmetic {
	n := &Arithmetic{op: op}
	n.MustAddInput("A", node.Input{Type: typesys.Of(cty.Number), Constant: cty.NumberIntVal(0)})
	n.MustAddInput("B", node.Input{Type: typesys.Of(cty.Number), Constant: cty.NumberIntVal(0)})
	n.MustAddOutput("Value", node.Output{Type: typesys.Of(cty.Number)})
	return n
}

func (*Arithmetic) IsPure() bool { return true }

func (n *Arithmetic) Evaluate(_ context.Context, in, out *valuemap.Map) error {
	a, err := valuemap.GetStrict[cty.Value](in, "A")
	if err != nil {
		return node.Errorf(n, "input A: %w", err)
	}
	b, err := valuemap.GetStrict[cty.Value](in, "B")
	if err != nil {
		return node.Errorf(n, "input B: %w", err)
	}
	if !a.Type().Equals(cty.Number) || !b.Type().Equals(cty.Number) {
		return node.Errorf(n, "operands must be numbers, got %s and %s", a.Type().FriendlyName(), b.Type().FriendlyName())
	}
	return setIfRequested(out, "Value", n.op(a, b))
}
