package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/registry"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// LookupEnv replaces os.LookupEnv, for tests.
	LookupEnv func(string) (string, bool)
	// Environ replaces os.Environ, for tests.
	Environ func() []string
}

// Env reads one environment variable. Value falls back to Default when the
// variable is unset; Found reports whether it was set.
type Env struct {
	node.Base
	lookup func(string) (string, bool)
}

func NewEnv(lookup func(string) (string, bool)) *Env {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	n := &Env{lookup: lookup}
	n.MustAddInput("Name", node.Input{Type: typesys.Of(cty.String)})
	n.MustAddInput("Default", node.Input{Type: typesys.Of(cty.String), Constant: cty.StringVal("")})
	n.MustAddOutput("Value", node.Output{Type: typesys.Of(cty.String)})
	n.MustAddOutput("Found", node.Output{Type: typesys.Of(cty.Bool)})
	return n
}

func (*Env) IsPure() bool { return true }

// CollectOutputRequirements skips Default when only Found is requested.
func (n *Env) CollectOutputRequirements(outputs []string) []string {
	for _, o := range outputs {
		if o == "Value" {
			return []string{"Name", "Default"}
		}
	}
	return []string{"Name"}
}

func (n *Env) Evaluate(_ context.Context, in, out *valuemap.Map) error {
	name, err := valuemap.GetStrict[string](in, "Name")
	if err != nil {
		return node.Errorf(n, "input Name: %w", err)
	}
	value, found := n.lookup(name)

	if out.Has("Value") {
		if !found {
			value, _ = valuemap.TryGetStrict[string](in, "Default")
		}
		if err := out.SetChecked("Value", cty.StringVal(value)); err != nil {
			return err
		}
	}
	if out.Has("Found") {
		return out.SetChecked("Found", cty.BoolVal(found))
	}
	return nil
}

// All outputs the whole environment as a map.
type All struct {
	node.Base
	environ func() []string
}

func NewAll(environ func() []string) *All {
	if environ == nil {
		environ = os.Environ
	}
	n := &All{environ: environ}
	n.MustAddOutput("All", node.Output{Type: typesys.Of(cty.Map(cty.String))})
	return n
}

func (*All) IsPure() bool { return true }

func (n *All) Evaluate(_ context.Context, _, out *valuemap.Map) error {
	envMap := make(map[string]cty.Value)
	for _, e := range n.environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = cty.StringVal(pair[1])
		}
	}
	v := cty.MapValEmpty(cty.String)
	if len(envMap) > 0 {
		v = cty.MapVal(envMap)
	}
	if !out.Has("All") {
		return nil
	}
	return out.SetChecked("All", v)
}

// Register registers the node classes with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClass("env", "", "Reads an environment variable.", func() node.Node { return NewEnv(m.LookupEnv) })
	r.RegisterClass("env", "all", "Reads the whole environment.", func() node.Node { return NewAll(m.Environ) })
}
