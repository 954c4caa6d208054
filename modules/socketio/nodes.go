package socketio

import (
	"context"
	"time"

	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

func addConnectionInputs(b *node.Base) {
	b.MustAddInput("URL", node.Input{Type: typesys.Of(cty.String)})
	b.MustAddInput("Namespace", node.Input{Type: typesys.Of(cty.String), Constant: cty.StringVal("/")})
	b.MustAddInput("Event", node.Input{Type: typesys.Of(cty.String)})
	b.MustAddInput("Data", node.Input{Type: typesys.Any, Flags: node.Optional})
	b.MustAddInput("Timeout", node.Input{Type: typesys.Of(cty.String), Constant: cty.StringVal("10s"), Flags: node.NodeConstant})
	b.MustAddInput("InsecureSkipVerify", node.Input{Type: typesys.Of(cty.Bool), Constant: cty.False, Flags: node.NodeConstant})
}

// readCall builds a call from the connection inputs.
func readCall(ctx context.Context, n node.Node, in *valuemap.Map) (call, error) {
	var c call
	var err error
	if c.URL, err = valuemap.GetStrict[string](in, "URL"); err != nil {
		return c, node.Errorf(n, "input URL: %w", err)
	}
	if c.EmitEvent, err = valuemap.GetStrict[string](in, "Event"); err != nil {
		return c, node.Errorf(n, "input Event: %w", err)
	}
	c.Namespace, _ = valuemap.TryGetStrict[string](in, "Namespace")
	c.InsecureSkipVerify, _ = valuemap.TryGetStrict[bool](in, "InsecureSkipVerify")

	if raw, ok := valuemap.TryGetStrict[string](in, "Timeout"); ok && raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			ctxlog.FromContext(ctx).Warn("Failed to parse timeout, using default 10s", "inputTimeout", raw, "error", err)
		}
		c.Timeout = timeout
	}

	if v, ok := in.Value("Data"); ok {
		if c.EmitData, err = toNative(v); err != nil {
			return c, node.Errorf(n, "input Data: %w", err)
		}
	}
	return c, nil
}

// Emit sends one event and does not wait for a reply.
type Emit struct {
	node.Base
}

func NewEmit() *Emit {
	n := &Emit{}
	addConnectionInputs(&n.Base)
	return n
}

func (n *Emit) Evaluate(ctx context.Context, in, _ *valuemap.Map) error {
	c, err := readCall(ctx, n, in)
	if err != nil {
		return err
	}
	if _, err := do(ctx, c); err != nil {
		return node.Errorf(n, "%w", err)
	}
	return nil
}

// Request sends one event and outputs the first payload of ReplyEvent.
type Request struct {
	node.Base
}

func NewRequest() *Request {
	n := &Request{}
	addConnectionInputs(&n.Base)
	n.MustAddInput("ReplyEvent", node.Input{Type: typesys.Of(cty.String)})
	n.MustAddOutput("Response", node.Output{Type: typesys.Any})
	return n
}

func (n *Request) IsPure() bool { return false }

func (n *Request) Evaluate(ctx context.Context, in, out *valuemap.Map) error {
	c, err := readCall(ctx, n, in)
	if err != nil {
		return err
	}
	if c.OnEvent, err = valuemap.GetStrict[string](in, "ReplyEvent"); err != nil {
		return node.Errorf(n, "input ReplyEvent: %w", err)
	}
	if c.OnEvent == "" {
		return node.Errorf(n, "input ReplyEvent must not be empty")
	}

	data, err := do(ctx, c)
	if err != nil {
		return node.Errorf(n, "%w", err)
	}
	v, err := fromNative(data)
	if err != nil {
		return node.Errorf(n, "decode response: %w", err)
	}
	if out.Has("Response") {
		return out.SetChecked("Response", v)
	}
	return nil
}
