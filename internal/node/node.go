package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

// Reserved output slots written by control-flow and iteration nodes. They
// are never declared as pins; the sequence evaluator adds them to the
// requested outputs.
const (
	SelectedOutputPath = "__path"
	ContinueIteration  = "__continue"
)

// DefaultPath is the path name of the single outgoing sequence edge of a
// plain (non control-flow) node.
const DefaultPath = ""

// Unassigned is the identifier of a node that does not belong to a graph.
const Unassigned int32 = -1

var (
	ErrDuplicatePin     = errors.New("pin already exists")
	ErrPinNotFound      = errors.New("pin not found")
	ErrMutationInFlight = errors.New("node cannot change shape while it is evaluating")
)

// TypeInfo identifies the registered class a node was created from.
type TypeInfo struct {
	TypeName string
	Variant  string
}

func (t TypeInfo) String() string {
	if t.Variant == "" {
		return t.TypeName
	}
	return t.TypeName + "/" + t.Variant
}

// Node is a single vertex in the graph: a named collection of typed input
// and output pins plus the computation that maps one onto the other.
type Node interface {
	// ID returns the identifier assigned by the owning graph, or Unassigned.
	ID() int32
	// TypeInfo returns the class the node was created from.
	TypeInfo() TypeInfo
	// SetGraphInfo is called by the owning graph when the node is added.
	SetGraphInfo(id int32, info TypeInfo)

	Inputs() *Pins[Input]
	Outputs() *Pins[Output]

	// CollectOutputRequirements returns the inputs that must be resolved
	// before the given outputs can be computed.
	CollectOutputRequirements(outputs []string) []string

	// Evaluate reads inputs and writes those slots of outputs it can
	// compute. It must not assume every declared output is requested.
	Evaluate(ctx context.Context, inputs, outputs *valuemap.Map) error

	// SetModifiedHandler installs the callback fired synchronously after
	// every structural change of the node's pins.
	SetModifiedHandler(fn func())
}

// Base implements the bookkeeping half of Node. Its zero value is ready to
// use; embed it and implement Evaluate.
type Base struct {
	id         int32
	assigned   bool
	info       TypeInfo
	inputs     Pins[Input]
	outputs    Pins[Output]
	onModified func()
	evaluating bool
}

func (b *Base) ID() int32 {
	if !b.assigned {
		return Unassigned
	}
	return b.id
}

func (b *Base) TypeInfo() TypeInfo { return b.info }

func (b *Base) SetGraphInfo(id int32, info TypeInfo) {
	b.id = id
	b.assigned = id != Unassigned
	b.info = info
}

func (b *Base) Inputs() *Pins[Input]   { return &b.inputs }
func (b *Base) Outputs() *Pins[Output] { return &b.outputs }

// CollectOutputRequirements treats every declared input as required.
func (b *Base) CollectOutputRequirements([]string) []string {
	return b.inputs.Names()
}

func (b *Base) SetModifiedHandler(fn func()) { b.onModified = fn }

func (b *Base) notify() {
	if b.onModified != nil {
		b.onModified()
	}
}

func (b *Base) setEvaluating(v bool) { b.evaluating = v }

func (b *Base) mutate(kind, name string, ok bool, failure error) error {
	if !ok {
		return fmt.Errorf("%s %q: %w", kind, name, failure)
	}
	b.notify()
	return nil
}

// AddInput appends an input pin.
func (b *Base) AddInput(name string, in Input) error {
	if b.evaluating {
		return ErrMutationInFlight
	}
	return b.mutate("input", name, b.inputs.add(name, in), ErrDuplicatePin)
}

// RemoveInput deletes an input pin.
func (b *Base) RemoveInput(name string) error {
	if b.evaluating {
		return ErrMutationInFlight
	}
	return b.mutate("input", name, b.inputs.remove(name), ErrPinNotFound)
}

// ReplaceInput swaps the definition of an existing input pin in place.
func (b *Base) ReplaceInput(name string, in Input) error {
	if b.evaluating {
		return ErrMutationInFlight
	}
	return b.mutate("input", name, b.inputs.replace(name, in), ErrPinNotFound)
}

// AddOutput appends an output pin.
func (b *Base) AddOutput(name string, out Output) error {
	if b.evaluating {
		return ErrMutationInFlight
	}
	return b.mutate("output", name, b.outputs.add(name, out), ErrDuplicatePin)
}

// RemoveOutput deletes an output pin.
func (b *Base) RemoveOutput(name string) error {
	if b.evaluating {
		return ErrMutationInFlight
	}
	return b.mutate("output", name, b.outputs.remove(name), ErrPinNotFound)
}

// ReplaceOutput swaps the definition of an existing output pin in place.
func (b *Base) ReplaceOutput(name string, out Output) error {
	if b.evaluating {
		return ErrMutationInFlight
	}
	return b.mutate("output", name, b.outputs.replace(name, out), ErrPinNotFound)
}

// MustAddInput is AddInput for constructors, where a duplicate name is a
// programming error.
func (b *Base) MustAddInput(name string, in Input) {
	if err := b.AddInput(name, in); err != nil {
		panic(err)
	}
}

// MustAddOutput is AddOutput for constructors.
func (b *Base) MustAddOutput(name string, out Output) {
	if err := b.AddOutput(name, out); err != nil {
		panic(err)
	}
}

// SetConstant changes the constant of an existing input. It is not a
// structural change and does not fire the modified handler.
func (b *Base) SetConstant(name string, v cty.Value) error {
	pin, ok := b.inputs.Get(name)
	if !ok {
		return fmt.Errorf("input %q: %w", name, ErrPinNotFound)
	}
	pin.Constant = v
	return nil
}

type evalGuard interface {
	setEvaluating(bool)
}

// Evaluate invokes n.Evaluate with the structural-mutation guard raised and
// converts a panic inside the node into an error.
func Evaluate(ctx context.Context, n Node, inputs, outputs *valuemap.Map) (err error) {
	if g, ok := n.(evalGuard); ok {
		g.setEvaluating(true)
		defer g.setEvaluating(false)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("node panicked: %v", r)
		}
	}()
	return n.Evaluate(ctx, inputs, outputs)
}
