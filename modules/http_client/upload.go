package http_client

import (
	"context"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

// Upload PUTs a local file to a pre-signed object storage URL, such as one
// issued by S3. Any status other than 200 fails the node.
type Upload struct {
	node.Base
	client *http.Client
}

func NewUpload(client *http.Client) *Upload {
	n := &Upload{client: client}
	n.MustAddInput("SourcePath", node.Input{Type: typesys.Of(cty.String)})
	n.MustAddInput("UploadURL", node.Input{Type: typesys.Of(cty.String)})
	n.MustAddOutput("Status", node.Output{Type: typesys.Of(cty.String)})
	return n
}

func (n *Upload) Evaluate(ctx context.Context, in, out *valuemap.Map) error {
	ctx, logger := ctxlog.With(ctx, "action", "upload", "node_id", n.ID())

	source, err := valuemap.GetStrict[string](in, "SourcePath")
	if err != nil {
		return node.Errorf(n, "input SourcePath: %w", err)
	}
	url, err := valuemap.GetStrict[string](in, "UploadURL")
	if err != nil {
		return node.Errorf(n, "input UploadURL: %w", err)
	}

	file, err := os.Open(source)
	if err != nil {
		return node.Errorf(n, "failed to open source file '%s': %w", source, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return node.Errorf(n, "failed to get file stats for '%s': %w", source, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, file)
	if err != nil {
		return node.Errorf(n, "failed to create upload request: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(source))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading file", "source", source, "size", stat.Size(), "contentType", contentType)
	resp, err := n.client.Do(req)
	if err != nil {
		return node.Errorf(n, "failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return node.Errorf(n, "upload failed with status: %s", resp.Status)
	}
	logger.Info("Successfully uploaded file", "status", resp.Status)

	return setIfRequested(out, "Status", cty.StringVal(resp.Status))
}
