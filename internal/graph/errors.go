package graph

import "errors"

var (
	ErrDuplicateID = errors.New("node identifier already in use")
	ErrNodeInGraph = errors.New("node already belongs to a graph")
	ErrNilNode     = errors.New("node is nil")
)
