package graph

import "fmt"

// ConnectionState annotates whether a data connection is still valid for
// the current pin declarations of its endpoints.
type ConnectionState int

const (
	Ok ConnectionState = iota
	OutputMissing
	InputMissing
	TypeMismatch
	NotFound
)

func (s ConnectionState) String() string {
	switch s {
	case Ok:
		return "ok"
	case OutputMissing:
		return "output_missing"
	case InputMissing:
		return "input_missing"
	case TypeMismatch:
		return "type_mismatch"
	case NotFound:
		return "not_found"
	}
	return fmt.Sprintf("ConnectionState(%d)", int(s))
}

// Connection is an edge between two node pins. For sequence connections
// FromOutput names the path and ToInput is usually empty.
type Connection struct {
	FromNode   int32
	FromOutput string
	ToNode     int32
	ToInput    string
	State      ConnectionState
}

// SameEndpoints reports structural equality, ignoring State.
func (c Connection) SameEndpoints(o Connection) bool {
	return c.FromNode == o.FromNode && c.FromOutput == o.FromOutput &&
		c.ToNode == o.ToNode && c.ToInput == o.ToInput
}

// Touches reports whether either endpoint is the given node.
func (c Connection) Touches(id int32) bool {
	return c.FromNode == id || c.ToNode == id
}

func (c Connection) String() string {
	return fmt.Sprintf("%d.%s -> %d.%s", c.FromNode, c.FromOutput, c.ToNode, c.ToInput)
}

// Kind distinguishes the two edge sets.
type Kind int

const (
	Data Kind = iota
	Sequence
)

func (k Kind) String() string {
	if k == Sequence {
		return "sequence"
	}
	return "data"
}

// ConnectionInfo is the request passed to TryAddNewConnection.
type ConnectionInfo struct {
	Kind       Kind
	FromNode   int32
	FromPin    string
	ToNode     int32
	ToPin      string
	CheckTypes bool
}
