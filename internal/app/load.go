package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/fsutil"
	"github.com/vk/nodegraph/internal/persist"
)

// resolveGraphPath returns path itself for a file. A directory must hold
// exactly one graph document.
func resolveGraphPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to open graph path: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	files, err := fsutil.FindFilesByExtension(path, persist.Extensions...)
	if err != nil {
		return "", fmt.Errorf("failed to search %s for graph files: %w", path, err)
	}
	switch len(files) {
	case 0:
		return "", fmt.Errorf("no graph file (%s) found in %s", strings.Join(persist.Extensions, ", "), path)
	case 1:
		return files[0], nil
	}
	return "", fmt.Errorf("directory %s holds %d graph files, pass one explicitly", path, len(files))
}

// LoadGraph reads and restores the configured graph. Problems that do not
// prevent loading are logged and left on the result.
func (a *App) LoadGraph(ctx context.Context) (*persist.Loaded, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading graph...", "graph_path", a.config.GraphPath)

	path, err := resolveGraphPath(a.config.GraphPath)
	if err != nil {
		return nil, err
	}
	loaded, err := persist.LoadFile(ctx, path, a.registry, a.converters)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}

	logger.Info("Graph loaded successfully.", "path", path, "nodes_found", loaded.Graph.Len(), "placeholders", len(loaded.Placeholders))
	return loaded, nil
}
