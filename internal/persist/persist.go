package persist

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/registry"
	"github.com/vk/nodegraph/internal/typesys"
)

// Encode renders doc in the given format.
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatHCL:
		return EncodeHCL(doc)
	case FormatJSON:
		return EncodeJSON(doc)
	}
	return nil, fmt.Errorf("unsupported format %s", format)
}

// Decode parses src in the given format. name identifies the source in
// diagnostics.
func Decode(ctx context.Context, src []byte, name string, format Format) (*Document, error) {
	switch format {
	case FormatHCL:
		return DecodeHCL(ctx, src, name)
	case FormatJSON:
		return DecodeJSON(ctx, src)
	}
	return nil, fmt.Errorf("unsupported format %s", format)
}

// Save writes g to w.
func Save(w io.Writer, g *graph.Graph, layout Layout, format Format) error {
	data, err := Encode(Snapshot(g, layout), format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Load decodes a document from src and restores it.
func Load(ctx context.Context, src []byte, name string, format Format, reg *registry.Registry, converters *typesys.Converters) (*Loaded, error) {
	doc, err := Decode(ctx, src, name, format)
	if err != nil {
		return nil, err
	}
	return Restore(ctx, doc, reg, converters)
}

// LoadFile loads the graph stored at path, choosing the format from the
// file extension.
func LoadFile(ctx context.Context, path string, reg *registry.Registry, converters *typesys.Converters) (*Loaded, error) {
	logger := ctxlog.FromContext(ctx)
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	logger.Debug("Loading graph from file.", "path", path, "format", format.String())
	return Load(ctx, src, path, format, reg, converters)
}

// SaveFile writes g to path, choosing the format from the file extension.
func SaveFile(path string, g *graph.Graph, layout Layout) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create graph file: %w", err)
	}
	if err := Save(f, g, layout, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
