package eval

import (
	"context"
	"fmt"

	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

// puller resolves node inputs by recursively evaluating upstream nodes. With
// a cache attached, values of cacheable nodes are read from and written
// through to it.
type puller struct {
	graph      topology
	converters *typesys.Converters
	cache      *pinCache

	// visiting holds the nodes on the current recursion stack.
	visiting map[int32]bool
	// wrapMissing turns MissingInputError into EvaluationAbortedError.
	wrapMissing bool
}

func newPuller(g topology, cache *pinCache, wrapMissing bool) *puller {
	return &puller{
		graph:       g,
		converters:  g.Converters(),
		cache:       cache,
		visiting:    make(map[int32]bool),
		wrapMissing: wrapMissing,
	}
}

// computeOutput evaluates n for a single output. An empty output name runs a
// sink for its side effect.
func (p *puller) computeOutput(ctx context.Context, n node.Node, output string) (cty.Value, error) {
	var outputs *valuemap.Map
	var requested []string
	if output == "" {
		if node.CategoryOf(n) != node.Sink {
			return cty.NilVal, &InvalidRequestError{Node: n, Output: output, Reason: "an empty output name is only valid for sink nodes"}
		}
		outputs = valuemap.New(0)
	} else {
		decl, ok := n.Outputs().Get(output)
		if !ok {
			return cty.NilVal, &InvalidRequestError{Node: n, Output: output, Reason: "no such output"}
		}
		outputs = valuemap.New(1)
		if err := outputs.Declare(0, output, decl.Type.Base); err != nil {
			return cty.NilVal, aborted(n, err)
		}
		requested = []string{output}
	}

	if err := p.evaluate(ctx, n, requested, outputs); err != nil {
		return cty.NilVal, err
	}
	if output == "" {
		return cty.NilVal, nil
	}
	v, _ := outputs.Value(output)
	return v, nil
}

// evaluate resolves the inputs n needs for the requested outputs and runs
// it, guarding against data cycles.
func (p *puller) evaluate(ctx context.Context, n node.Node, requested []string, outputs *valuemap.Map) error {
	if err := ctx.Err(); err != nil {
		return aborted(n, err)
	}
	id := n.ID()
	if p.visiting[id] {
		return aborted(n, ErrDataCycle)
	}
	p.visiting[id] = true
	defer delete(p.visiting, id)

	inputs, err := p.fetchInputs(ctx, n, n.CollectOutputRequirements(requested))
	if err != nil {
		return err
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Evaluating node.", "node_id", id, "type", n.TypeInfo().String(), "inputs", inputs)
	if err := node.Evaluate(ctx, n, inputs, outputs); err != nil {
		return aborted(n, err)
	}
	logger.Debug("Node evaluated.", "node_id", id, "outputs", outputs)
	p.cache.store(p.graph, n, outputs)
	return nil
}

// fetchInputs builds the input map for the named inputs of n.
func (p *puller) fetchInputs(ctx context.Context, n node.Node, names []string) (*valuemap.Map, error) {
	inputs := valuemap.New(len(names))
	for i, name := range names {
		decl, ok := n.Inputs().Get(name)
		if !ok {
			return nil, aborted(n, fmt.Errorf("required input %q is not declared", name))
		}

		v, err := p.resolveInput(ctx, n, name, decl)
		if err != nil {
			return nil, err
		}
		if valuemap.IsAbsent(v) {
			if err := inputs.Declare(i, name, decl.Type.Base); err != nil {
				return nil, aborted(n, err)
			}
			continue
		}

		converted, err := p.converters.Convert(v, decl.Type)
		if err != nil {
			return nil, aborted(n, fmt.Errorf("input %q: %w", name, err))
		}
		if err := inputs.Set(i, name, converted); err != nil {
			return nil, aborted(n, err)
		}
	}
	return inputs, nil
}

// resolveInput returns the value feeding one input: the upstream output when
// connected, the constant otherwise. Unconnected optional inputs without a
// constant resolve to cty.NilVal.
func (p *puller) resolveInput(ctx context.Context, n node.Node, name string, decl *node.Input) (cty.Value, error) {
	c, connected := p.graph.FindConnectionTo(n.ID(), name)
	if !connected {
		if decl.HasConstant() {
			return decl.Constant, nil
		}
		if decl.Flags.Has(node.Optional) {
			return cty.NilVal, nil
		}
		var err error = &MissingInputError{Node: n, Input: name}
		if p.wrapMissing {
			err = aborted(n, err)
		}
		return cty.NilVal, err
	}

	upstream, ok := p.graph.FindNode(c.FromNode)
	if !ok {
		return cty.NilVal, &GraphIntegrityError{NodeID: c.FromNode, Connection: c}
	}
	if v, hit := p.cache.get(c.FromNode, c.FromOutput); hit {
		return v, nil
	}
	return p.computeOutput(ctx, upstream, c.FromOutput)
}
