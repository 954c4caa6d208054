package core

import (
	"context"
	"fmt"

	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

const (
	PathBody     = "Body"
	PathFinished = "Finished"
)

// loopState is the bookkeeping shared by the iteration nodes.
type loopState struct {
	index int64
	end   int64
}

func (s *loopState) Advance()     { s.index++ }
func (s *loopState) IsDone() bool { return s.index >= s.end }

func (*loopState) Paths() []string      { return []string{PathBody, PathFinished} }
func (*loopState) FinishedPath() string { return PathFinished }

// writeRound fills the reserved outputs for the current round.
func (s *loopState) writeRound(out *valuemap.Map) error {
	if err := out.SetChecked(node.ContinueIteration, cty.BoolVal(!s.IsDone())); err != nil {
		return err
	}
	return out.SetChecked(node.SelectedOutputPath, cty.StringVal(PathBody))
}

// ForLoop runs its body once for every index from First up to Last.
// Last is excluded unless Inclusive is set.
type ForLoop struct {
	node.Base
	loopState
}

func NewForLoop() *ForLoop {
	n := &ForLoop{}
	n.MustAddInput("First", node.Input{Type: typesys.Of(cty.Number), Constant: cty.NumberIntVal(0)})
	n.MustAddInput("Last", node.Input{Type: typesys.Of(cty.Number), Constant: cty.NumberIntVal(10)})
	n.MustAddInput("Inclusive", node.Input{Type: typesys.Of(cty.Bool), Constant: cty.False, Flags: node.NodeConstant})
	n.MustAddOutput("Index", node.Output{Type: typesys.Of(cty.Number)})
	return n
}

func (n *ForLoop) InitializeIteration(_ context.Context, in *valuemap.Map) error {
	first, err := valuemap.GetStrict[int64](in, "First")
	if err != nil {
		return node.Errorf(n, "input First: %w", err)
	}
	last, err := valuemap.GetStrict[int64](in, "Last")
	if err != nil {
		return node.Errorf(n, "input Last: %w", err)
	}
	inclusive, _ := valuemap.TryGetStrict[bool](in, "Inclusive")
	if inclusive {
		last++
	}
	n.index, n.end = first, last
	return nil
}

func (n *ForLoop) Evaluate(_ context.Context, _ *valuemap.Map, out *valuemap.Map) error {
	if err := setIfRequested(out, "Index", cty.NumberIntVal(n.index)); err != nil {
		return err
	}
	return n.writeRound(out)
}

// ForEach runs its body once for every element of a list, set or tuple.
// Once its Collection input is connected, the Element output takes the
// source's element type.
type ForEach struct {
	node.Base
	loopState
	elements []cty.Value
}

func NewForEach() *ForEach {
	n := &ForEach{}
	n.MustAddInput("Collection", node.Input{Type: typesys.Dynamic(typesys.AnyList)})
	n.MustAddOutput("Element", node.Output{Type: typesys.Any})
	n.MustAddOutput("Index", node.Output{Type: typesys.Of(cty.Number)})
	return n
}

func (*ForEach) HasDynamicOutputs() bool { return true }

func (n *ForEach) InputConnected(input string, from typesys.DataType) {
	if input != "Collection" || from.Extended != nil {
		return
	}
	elem := cty.DynamicPseudoType
	switch ty := from.Base; {
	case ty.IsListType(), ty.IsSetType():
		elem = ty.ElementType()
	}
	_ = n.ReplaceOutput("Element", node.Output{Type: typesys.Of(elem)})
}

func (n *ForEach) InputDisconnected(input string) {
	if input == "Collection" {
		_ = n.ReplaceOutput("Element", node.Output{Type: typesys.Any})
	}
}

func (n *ForEach) InitializeIteration(_ context.Context, in *valuemap.Map) error {
	v, err := valuemap.GetStrict[cty.Value](in, "Collection")
	if err != nil {
		return node.Errorf(n, "input Collection: %w", err)
	}
	ty := v.Type()
	if !ty.IsListType() && !ty.IsSetType() && !ty.IsTupleType() {
		return node.Errorf(n, "cannot iterate over %s", ty.FriendlyName())
	}
	if !v.IsWhollyKnown() {
		return node.Errorf(n, "collection is not known")
	}

	n.elements = n.elements[:0]
	for it := v.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		n.elements = append(n.elements, elem)
	}
	n.index, n.end = 0, int64(len(n.elements))
	return nil
}

func (n *ForEach) Evaluate(_ context.Context, _ *valuemap.Map, out *valuemap.Map) error {
	if !n.IsDone() {
		if n.index < 0 || n.index >= int64(len(n.elements)) {
			return fmt.Errorf("element index %d out of range", n.index)
		}
		if err := setIfRequested(out, "Element", n.elements[n.index]); err != nil {
			return err
		}
		if err := setIfRequested(out, "Index", cty.NumberIntVal(n.index)); err != nil {
			return err
		}
	}
	return n.writeRound(out)
}
