package node

import "fmt"

// EvaluationError is a failure raised by a node's own Evaluate.
type EvaluationError struct {
	Node Node
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("node %d (%s): %v", e.Node.ID(), e.Node.TypeInfo(), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Errorf builds an EvaluationError for n.
func Errorf(n Node, format string, args ...any) error {
	return &EvaluationError{Node: n, Err: fmt.Errorf(format, args...)}
}
