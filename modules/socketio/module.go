package socketio

import (
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node classes with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClass("socketio", "emit", "Emits an event to a socket.io server.", func() node.Node { return NewEmit() })
	r.RegisterClass("socketio", "request", "Emits an event and waits for a reply event.", func() node.Node { return NewRequest() })
}
