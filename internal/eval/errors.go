package eval

import (
	"errors"
	"fmt"

	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/node"
)

var (
	ErrDataCycle     = errors.New("data cycle detected")
	ErrAmbiguousFlow = errors.New("more than one outgoing sequence connection")
	ErrIterationCap  = errors.New("iteration cap exceeded")
)

// MissingInputError reports a required input with neither a data connection
// nor a constant.
type MissingInputError struct {
	Node  node.Node
	Input string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("node %d (%s): input %q has no connection and no constant", e.Node.ID(), e.Node.TypeInfo(), e.Input)
}

// EvaluationAbortedError ends the current run. It wraps node failures,
// conversion failures and control-flow violations.
type EvaluationAbortedError struct {
	Node node.Node
	Err  error
}

func (e *EvaluationAbortedError) Error() string {
	if e.Node == nil {
		return fmt.Sprintf("evaluation aborted: %v", e.Err)
	}
	return fmt.Sprintf("evaluation aborted at node %d (%s): %v", e.Node.ID(), e.Node.TypeInfo(), e.Err)
}

func (e *EvaluationAbortedError) Unwrap() error {
	return e.Err
}

// GraphIntegrityError reports a connection pointing at a node that is not in
// the graph.
type GraphIntegrityError struct {
	NodeID     int32
	Connection graph.Connection
}

func (e *GraphIntegrityError) Error() string {
	return fmt.Sprintf("graph integrity: node %d referenced by %s does not exist", e.NodeID, e.Connection)
}

// InvalidRequestError is a caller contract violation such as asking for an
// output the node does not declare.
type InvalidRequestError struct {
	Node   node.Node
	Output string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	if e.Node == nil {
		return fmt.Sprintf("invalid request for output %q: %s", e.Output, e.Reason)
	}
	return fmt.Sprintf("invalid request for output %q of node %d (%s): %s", e.Output, e.Node.ID(), e.Node.TypeInfo(), e.Reason)
}

func aborted(n node.Node, err error) error {
	var ab *EvaluationAbortedError
	if errors.As(err, &ab) {
		return err
	}
	return &EvaluationAbortedError{Node: n, Err: err}
}

// OffendingNode returns the node an evaluation error is attributed to, or
// nil when the error names none.
func OffendingNode(err error) node.Node {
	var (
		ab  *EvaluationAbortedError
		mi  *MissingInputError
		ir  *InvalidRequestError
		nev *node.EvaluationError
	)
	switch {
	case errors.As(err, &ab) && ab.Node != nil:
		return ab.Node
	case errors.As(err, &mi):
		return mi.Node
	case errors.As(err, &ir):
		return ir.Node
	case errors.As(err, &nev):
		return nev.Node
	}
	return nil
}
