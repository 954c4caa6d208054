package http_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

// Request performs one HTTP request per evaluation and exposes the
// response status, body and headers.
type Request struct {
	node.Base
	client *http.Client
}

func NewRequest(client *http.Client) *Request {
	n := &Request{client: client}
	n.MustAddInput("URL", node.Input{Type: typesys.Of(cty.String)})
	n.MustAddInput("Method", node.Input{Type: typesys.Of(cty.String), Constant: cty.StringVal(http.MethodGet), Flags: node.NodeConstant})
	n.MustAddInput("Body", node.Input{Type: typesys.Of(cty.String), Flags: node.Optional})
	n.MustAddInput("ContentType", node.Input{Type: typesys.Of(cty.String), Constant: cty.StringVal("")})
	n.MustAddOutput("StatusCode", node.Output{Type: typesys.Of(cty.Number)})
	n.MustAddOutput("Body", node.Output{Type: typesys.Of(cty.String)})
	n.MustAddOutput("Headers", node.Output{Type: typesys.Of(cty.Map(cty.String))})
	return n
}

func (n *Request) Evaluate(ctx context.Context, in, out *valuemap.Map) error {
	logger := ctxlog.FromContext(ctx)

	url, err := valuemap.GetStrict[string](in, "URL")
	if err != nil {
		return node.Errorf(n, "input URL: %w", err)
	}
	method, _ := valuemap.TryGetStrict[string](in, "Method")
	method = strings.ToUpper(method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if text, ok := valuemap.TryGetStrict[string](in, "Body"); ok {
		body = strings.NewReader(text)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return node.Errorf(n, "failed to create request: %w", err)
	}
	if ct, _ := valuemap.TryGetStrict[string](in, "ContentType"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	logger.Info("Making HTTP request", "method", method, "url", url, "node_id", n.ID())
	resp, err := n.client.Do(req)
	if err != nil {
		return node.Errorf(n, "failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return node.Errorf(n, "failed to read response body: %w", err)
	}
	logger.Debug("Received HTTP response.", "status", resp.Status, "bytes", len(bodyBytes))

	if err := setIfRequested(out, "StatusCode", cty.NumberIntVal(int64(resp.StatusCode))); err != nil {
		return err
	}
	if err := setIfRequested(out, "Body", cty.StringVal(string(bodyBytes))); err != nil {
		return err
	}
	return setIfRequested(out, "Headers", headerMap(resp.Header))
}

// headerMap flattens multi-valued headers with ", " as RFC 9110 allows.
func headerMap(h http.Header) cty.Value {
	if len(h) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	m := make(map[string]cty.Value, len(h))
	for k, vs := range h {
		m[k] = cty.StringVal(strings.Join(vs, ", "))
	}
	return cty.MapVal(m)
}

func setIfRequested(out *valuemap.Map, name string, v cty.Value) error {
	if !out.Has(name) {
		return nil
	}
	if err := out.SetChecked(name, v); err != nil {
		return fmt.Errorf("output %q: %w", name, err)
	}
	return nil
}
