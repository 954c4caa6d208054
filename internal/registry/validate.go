package registry

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// ValidateRegistry instantiates every class once and checks the node it
// builds: pins must carry a type, control-flow nodes must name their paths,
// and iteration nodes must finish on one of them. All problems are
// reported together.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var result *multierror.Error

	for _, c := range r.Classes() {
		n := c.New()
		if n == nil {
			result = multierror.Append(result, fmt.Errorf("class '%s': factory returned nil", c.Info))
			continue
		}
		if n.ID() != node.Unassigned {
			result = multierror.Append(result, fmt.Errorf("class '%s': factory returned a node already in a graph", c.Info))
		}

		for _, name := range n.Inputs().Names() {
			in, _ := n.Inputs().Get(name)
			if in.Type.Base == cty.NilType && in.Type.Extended == nil {
				result = multierror.Append(result, fmt.Errorf("class '%s', input '%s': no type declared", c.Info, name))
				continue
			}
			if in.Type.Extended == nil && in.Type.Base.Equals(cty.DynamicPseudoType) {
				logger.Debug("Node class has input with 'any' type, which disables connection type checking.", "class", c.Info.String(), "input", name)
			}
		}
		for _, name := range n.Outputs().Names() {
			out, _ := n.Outputs().Get(name)
			if out.Type.Base == cty.NilType && out.Type.Extended == nil {
				result = multierror.Append(result, fmt.Errorf("class '%s', output '%s': no type declared", c.Info, name))
			}
			if name == node.SelectedOutputPath || name == node.ContinueIteration {
				result = multierror.Append(result, fmt.Errorf("class '%s': output '%s' is reserved", c.Info, name))
			}
		}

		if cf, ok := n.(node.ControlFlowNode); ok {
			paths := cf.Paths()
			if len(paths) == 0 {
				result = multierror.Append(result, fmt.Errorf("class '%s': control flow node declares no paths", c.Info))
			}
			for i, p := range paths {
				if slices.Contains(paths[:i], p) {
					result = multierror.Append(result, fmt.Errorf("class '%s': duplicate path '%s'", c.Info, p))
				}
			}
			if it, ok := n.(node.IterationNode); ok && !slices.Contains(paths, it.FinishedPath()) {
				result = multierror.Append(result, fmt.Errorf("class '%s': finished path '%s' is not a declared path", c.Info, it.FinishedPath()))
			}
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	return nil
}
