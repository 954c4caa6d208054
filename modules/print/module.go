package print

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/registry"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/vk/nodegraph/modules/core"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package. Output
// goes to Writer, or to standard output when it is nil.
type Module struct {
	Writer io.Writer
}

// Print writes its Value, optionally prefixed by a Label, as one line.
type Print struct {
	node.Base
	w io.Writer
}

func New(w io.Writer) *Print {
	if w == nil {
		w = os.Stdout
	}
	n := &Print{w: w}
	n.MustAddInput("Value", node.Input{Type: typesys.Any})
	n.MustAddInput("Label", node.Input{Type: typesys.Of(cty.String), Constant: cty.StringVal(""), Flags: node.NodeConstant})
	return n
}

func (n *Print) Evaluate(ctx context.Context, in, _ *valuemap.Map) error {
	v, _ := in.Value("Value")
	text := core.Render(v)
	if label, _ := valuemap.TryGetStrict[string](in, "Label"); label != "" {
		text = label + ": " + text
	}

	ctxlog.FromContext(ctx).Info("Printing input", "node_id", n.ID())
	if _, err := fmt.Fprintln(n.w, text); err != nil {
		return node.Errorf(n, "write: %w", err)
	}
	return nil
}

// Register registers the node class with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClass("print", "", "Prints a value.", func() node.Node { return New(m.Writer) })
}
