// Package http_client provides node classes that talk HTTP: a general
// request node and a pre-signed upload node. All nodes of one module share
// a single client so TCP connections are reused.
package http_client

import (
	"net/http"
	"time"

	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client is shared by every node the module creates. A client with a
	// 30 second timeout is used when it is nil.
	Client *http.Client
}

func (m *Module) client() *http.Client {
	if m.Client == nil {
		m.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return m.Client
}

// Register registers the node classes with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClass("http", "request", "Performs an HTTP request.", func() node.Node { return NewRequest(m.client()) })
	r.RegisterClass("http", "upload", "Uploads a local file to a pre-signed URL with PUT.", func() node.Node { return NewUpload(m.client()) })
}
