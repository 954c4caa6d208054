package core

import (
	"context"
	"strings"

	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

// Placeholder is the marker Format replaces in its template.
const Placeholder = "{}"

// Format substitutes the rendered Value for every Placeholder in Template.
type Format struct {
	node.Base
}

func NewFormat() *Format {
	n := &Format{}
	n.MustAddInput("Template", node.Input{Type: typesys.Of(cty.String), Constant: cty.StringVal(Placeholder)})
	n.MustAddInput("Value", node.Input{Type: typesys.Dynamic(typesys.AnyValue), Flags: node.Optional})
	n.MustAddOutput("Text", node.Output{Type: typesys.Of(cty.String)})
	return n
}

func (*Format) IsPure() bool { return true }

func (n *Format) Evaluate(_ context.Context, in, out *valuemap.Map) error {
	tmpl, err := valuemap.GetStrict[string](in, "Template")
	if err != nil {
		return node.Errorf(n, "input Template: %w", err)
	}
	v, _ := in.Value("Value")
	return setIfRequested(out, "Text", cty.StringVal(strings.ReplaceAll(tmpl, Placeholder, Render(v))))
}
