package persist

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/registry"
	"github.com/vk/nodegraph/internal/typesys"
)

// Loaded is the result of restoring a document.
type Loaded struct {
	Graph  *graph.Graph
	Layout Layout
	// Placeholders lists the identifiers of nodes whose class was not
	// registered.
	Placeholders []int32
	// Problems aggregates everything that could not be restored. It is nil
	// when the document was restored completely.
	Problems error
}

// Restore rebuilds a graph from doc. Unknown classes become placeholders and
// unrestorable constants or connections are collected into Problems; only a
// structurally invalid document, such as one reusing a node identifier, is
// an error.
func Restore(ctx context.Context, doc *Document, reg *registry.Registry, converters *typesys.Converters) (*Loaded, error) {
	logger := ctxlog.FromContext(ctx)
	g := graph.New(converters)
	out := &Loaded{Graph: g, Layout: make(Layout, len(doc.Nodes))}
	var problems *multierror.Error

	for _, rec := range doc.Nodes {
		n, err := reg.NewNode(rec.Info())
		if errors.Is(err, registry.ErrUnknownClass) {
			logger.Warn("Node class is not registered, using a placeholder.", "node_id", rec.ID, "class", rec.Info().String())
			ins, outs, paths := pinNames(doc, rec)
			m := node.NewMissing(rec.Info(), ins, outs)
			m.SetPaths(paths)
			n = m
			out.Placeholders = append(out.Placeholders, rec.ID)
		} else if err != nil {
			return nil, err
		}

		id := rec.ID
		if _, err := g.AddNode(n, rec.Info(), &id); err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", rec.ID, rec.Info(), err)
		}
		out.Layout[rec.ID] = rec.Location

		// Custom data can reshape pins, so it goes before the constants.
		if len(rec.CustomData) > 0 {
			if cd, ok := n.(node.CustomDataNode); ok {
				if err := cd.RestoreCustomData(rec.CustomData); err != nil {
					problems = multierror.Append(problems, fmt.Errorf("node %d custom data: %w", rec.ID, err))
				}
			} else {
				problems = multierror.Append(problems, fmt.Errorf("node %d (%s) does not accept custom data", rec.ID, rec.Info()))
			}
		}
		for _, c := range rec.Constants {
			if err := restoreConstant(g, n, c); err != nil {
				problems = multierror.Append(problems, fmt.Errorf("node %d: %w", rec.ID, err))
			}
		}
	}

	wireData(ctx, g, doc, &problems)
	for _, c := range doc.SequenceConnections {
		if !g.AddSequenceConnection(c.FromNode, c.FromOutput, c.ToNode, c.ToInput) {
			problems = multierror.Append(problems, fmt.Errorf("sequence connection %s could not be restored", c))
		}
	}
	for _, c := range g.ValidateDataConnections() {
		problems = multierror.Append(problems, fmt.Errorf("data connection %s is %s", c, c.State))
	}

	out.Problems = problems.ErrorOrNil()
	if out.Problems != nil {
		logger.Warn("Graph restored with problems.", "error", out.Problems)
	}
	logger.Debug("Graph restored.", "nodes", g.Len(), "placeholders", len(out.Placeholders))
	return out, nil
}

func restoreConstant(g *graph.Graph, n node.Node, c ConstantRecord) error {
	in, ok := n.Inputs().Get(c.Name)
	if !ok {
		return fmt.Errorf("input constant %q: %w", c.Name, node.ErrPinNotFound)
	}
	v, err := g.Converters().Convert(c.Value, in.Type)
	if err != nil {
		return fmt.Errorf("input constant %q: %w", c.Name, err)
	}
	in.Constant = v
	return nil
}

// wireData connects data edges target by target in dependency order, so a
// node's inputs are all wired before anything reads its outputs. Inputs of
// nodes with dynamic outputs go first, which keeps them ahead of their
// consumers even when the document has a data cycle.
func wireData(ctx context.Context, g *graph.Graph, doc *Document, problems **multierror.Error) {
	ids := make([]int32, len(doc.Nodes))
	for i, rec := range doc.Nodes {
		ids[i] = rec.ID
	}
	edges := make([]graph.Connection, len(doc.DataConnections))
	for i, c := range doc.DataConnections {
		edges[i] = graph.Connection{FromNode: c.FromNode, FromOutput: c.FromOutput, ToNode: c.ToNode, ToInput: c.ToInput}
	}

	order, err := graph.TopologicalSort(ids, edges)
	if err != nil {
		*problems = multierror.Append(*problems, err)
		for _, id := range ids {
			if !slices.Contains(order, id) {
				order = append(order, id)
			}
		}
	}

	dynamic := make([]int32, 0, len(order))
	static := make([]int32, 0, len(order))
	for _, id := range order {
		n, ok := g.FindNode(id)
		if d, isDynamic := n.(node.DynamicOutputs); ok && isDynamic && d.HasDynamicOutputs() {
			dynamic = append(dynamic, id)
		} else {
			static = append(static, id)
		}
	}

	logger := ctxlog.FromContext(ctx)
	for _, id := range append(dynamic, static...) {
		for _, c := range doc.DataConnections {
			if c.ToNode != id {
				continue
			}
			if g.AddConnection(c.FromNode, c.FromOutput, c.ToNode, c.ToInput, true) {
				continue
			}
			// Keep type mismatches so they stay visible; validation
			// reports them afterwards.
			if g.AddConnection(c.FromNode, c.FromOutput, c.ToNode, c.ToInput, false) {
				logger.Debug("Restored data connection without type check.", "connection", c.String())
				continue
			}
			*problems = multierror.Append(*problems, fmt.Errorf("data connection %s could not be restored", c))
		}
	}
}

// pinNames reconstructs a placeholder's pins and sequence paths from the
// constants and connections that reference the node.
func pinNames(doc *Document, rec NodeRecord) (inputs, outputs, paths []string) {
	add := func(list []string, name string) []string {
		if slices.Contains(list, name) {
			return list
		}
		return append(list, name)
	}
	for _, c := range rec.Constants {
		inputs = add(inputs, c.Name)
	}
	for _, c := range doc.DataConnections {
		if c.ToNode == rec.ID {
			inputs = add(inputs, c.ToInput)
		}
		if c.FromNode == rec.ID {
			outputs = add(outputs, c.FromOutput)
		}
	}
	for _, c := range doc.SequenceConnections {
		if c.FromNode == rec.ID {
			paths = add(paths, c.FromOutput)
		}
	}
	return inputs, outputs, paths
}
