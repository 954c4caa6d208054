package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/eval"
	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/persist"
	"github.com/vk/nodegraph/modules/core"
)

// Run loads the configured graph and executes it: a sequence pass by
// default, or a single data-flow computation when an output is configured.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	loaded, err := a.LoadGraph(ctx)
	if err != nil {
		return err
	}

	if a.config.SavePath != "" {
		if err := persist.SaveFile(a.config.SavePath, loaded.Graph, loaded.Layout); err != nil {
			return fmt.Errorf("failed to save graph: %w", err)
		}
		a.logger.Info("💾 Graph saved.", "path", a.config.SavePath)
	}

	if a.config.Output != "" {
		err = a.computeOutput(ctx, loaded.Graph)
	} else {
		err = a.runSequence(ctx, loaded.Graph)
	}
	if err != nil {
		return err
	}

	a.logger.Info("🏁 Execution finished.")
	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) computeOutput(ctx context.Context, g *graph.Graph) error {
	id, pin, err := ParseOutputTarget(a.config.Output)
	if err != nil {
		return err
	}
	n, ok := g.FindNode(id)
	if !ok {
		return fmt.Errorf("output %s: node %d not found", a.config.Output, id)
	}

	a.logger.Info("🚀 Computing output...", "node_id", id, "output", pin)
	v, err := eval.NewDataFlow(g).ComputeOutput(ctx, n, pin)
	if err != nil {
		return fmt.Errorf("computing %s failed: %w", a.config.Output, err)
	}
	_, err = fmt.Fprintln(a.outW, core.Render(v))
	return err
}

func (a *App) runSequence(ctx context.Context, g *graph.Graph) error {
	var failure error
	seq := eval.NewSequence(g,
		eval.WithIterationCap(a.config.IterationCap),
		eval.WithErrorReporter(func(message string, _ node.Node) {
			failure = errors.New(message)
		}),
	)

	if !seq.Run(ctx) {
		return fmt.Errorf("execution failed: %w", failure)
	}
	return nil
}
