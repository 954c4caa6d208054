package core

import (
	"context"

	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

// CompareOperator is the variant of a compare node.
type CompareOperator string

const (
	Equal          CompareOperator = "eq"
	NotEqual       CompareOperator = "ne"
	Less           CompareOperator = "lt"
	LessOrEqual    CompareOperator = "le"
	Greater        CompareOperator = "gt"
	GreaterOrEqual CompareOperator = "ge"
)

func compareOperators() []CompareOperator {
	return []CompareOperator{Equal, NotEqual, Less, LessOrEqual, Greater, GreaterOrEqual}
}

// Compare produces the boolean Result of comparing A with B. Equality
// accepts any values; ordering operators need numbers.
type Compare struct {
	node.Base
	op CompareOperator
}

func NewCompare(op CompareOperator) *Compare {
	n := &Compare{op: op}
	ty := typesys.Of(cty.Number)
	if op == Equal || op == NotEqual {
		ty = typesys.Any
	}
	n.MustAddInput("A", node.Input{Type: ty})
	n.MustAddInput("B", node.Input{Type: ty})
	n.MustAddOutput("Result", node.Output{Type: typesys.Of(cty.Bool)})
	return n
}

func (*Compare) IsPure() bool { return true }

func (n *Compare) Evaluate(_ context.Context, in, out *valuemap.Map) error {
	a, err := valuemap.GetStrict[cty.Value](in, "A")
	if err != nil {
		return node.Errorf(n, "input A: %w", err)
	}
	b, err := valuemap.GetStrict[cty.Value](in, "B")
	if err != nil {
		return node.Errorf(n, "input B: %w", err)
	}

	var result cty.Value
	switch n.op {
	case Equal:
		result = cty.BoolVal(a.RawEquals(b))
	case NotEqual:
		result = cty.BoolVal(!a.RawEquals(b))
	default:
		if !a.Type().Equals(cty.Number) || !b.Type().Equals(cty.Number) {
			return node.Errorf(n, "%s needs numbers, got %s and %s", n.op, a.Type().FriendlyName(), b.Type().FriendlyName())
		}
		switch n.op {
		case Less:
			result = a.LessThan(b)
		case LessOrEqual:
			result = a.LessThanOrEqualTo(b)
		case Greater:
			result = a.GreaterThan(b)
		case GreaterOrEqual:
			result = a.GreaterThanOrEqualTo(b)
		default:
			return node.Errorf(n, "unknown operator %q", n.op)
		}
	}
	return setIfRequested(out, "Result", result)
}
