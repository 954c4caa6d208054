package core

import (
	"context"

	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

const (
	PathTrue  = "True"
	PathFalse = "False"
)

// Branch continues on PathTrue or PathFalse depending on its Condition.
type Branch struct {
	node.Base
}

func NewBranch() *Branch {
	n := &Branch{}
	n.MustAddInput("Condition", node.Input{Type: typesys.Of(cty.Bool), Constant: cty.False})
	return n
}

func (*Branch) Paths() []string { return []string{PathTrue, PathFalse} }

func (n *Branch) Evaluate(_ context.Context, in, out *valuemap.Map) error {
	cond, err := valuemap.GetStrict[bool](in, "Condition")
	if err != nil {
		return node.Errorf(n, "input Condition: %w", err)
	}
	path := PathFalse
	if cond {
		path = PathTrue
	}
	return out.SetChecked(node.SelectedOutputPath, cty.StringVal(path))
}
