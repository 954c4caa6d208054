package http_client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegraph/internal/eval"
	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

func newNode(t *testing.T, g *graph.Graph, variant string, server *httptest.Server) node.Node {
	t.Helper()
	r := registry.New()
	require.NoError(t, r.Load(context.Background(), &Module{Client: server.Client()}))

	info := node.TypeInfo{TypeName: "http", Variant: variant}
	n, err := r.NewNode(info)
	require.NoError(t, err)
	_, err = g.AddNode(n, info, nil)
	require.NoError(t, err)
	return n
}

func setConstant(t *testing.T, n node.Node, name string, v cty.Value) {
	t.Helper()
	in, ok := n.Inputs().Get(name)
	require.True(t, ok, name)
	in.Constant = v
}

func TestRequest(t *testing.T) {
	var gotMethod, gotBody, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("X-Trace", "abc")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer server.Close()

	g := graph.New(nil)
	n := newNode(t, g, "request", server)
	setConstant(t, n, "URL", cty.StringVal(server.URL+"/items"))
	setConstant(t, n, "Method", cty.StringVal("post"))
	setConstant(t, n, "Body", cty.StringVal("payload"))
	setConstant(t, n, "ContentType", cty.StringVal("text/plain"))

	df := eval.NewDataFlow(g)
	status, err := df.ComputeOutput(context.Background(), n, "StatusCode")
	require.NoError(t, err)
	assert.True(t, status.RawEquals(cty.NumberIntVal(201)))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "payload", gotBody)
	assert.Equal(t, "text/plain", gotType)

	body, err := df.ComputeOutput(context.Background(), n, "Body")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, body.AsString())

	headers, err := df.ComputeOutput(context.Background(), n, "Headers")
	require.NoError(t, err)
	assert.Equal(t, "abc", headers.Index(cty.StringVal("X-Trace")).AsString())
}

func TestRequest_Failure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	g := graph.New(nil)
	n := newNode(t, g, "request", server)
	setConstant(t, n, "URL", cty.StringVal(server.URL))

	_, err := eval.NewDataFlow(g).ComputeOutput(context.Background(), n, "StatusCode")
	var evalErr *node.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Contains(t, err.Error(), "failed to execute request")
}

func TestUpload(t *testing.T) {
	var gotBody, gotType string
	var gotLength int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gotType = r.Header.Get("Content-Type")
		gotLength = r.ContentLength
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))
	defer server.Close()

	source := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(source, []byte(`{"a":1}`), 0o600))

	g := graph.New(nil)
	n := newNode(t, g, "upload", server)
	setConstant(t, n, "SourcePath", cty.StringVal(source))
	setConstant(t, n, "UploadURL", cty.StringVal(server.URL+"/bucket/report.json?sig=x"))

	status, err := eval.NewDataFlow(g).ComputeOutput(context.Background(), n, "Status")
	require.NoError(t, err)
	assert.Equal(t, "200 OK", status.AsString())
	assert.Equal(t, `{"a":1}`, gotBody)
	assert.Equal(t, int64(7), gotLength)
	assert.Equal(t, "application/json", gotType)
}

func TestUpload_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	source := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(source, []byte("x"), 0o600))

	testCases := []struct {
		name    string
		source  string
		wantErr string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope"), "failed to open source file"},
		{"rejected", source, "upload failed with status: 403 Forbidden"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := graph.New(nil)
			n := newNode(t, g, "upload", server)
			setConstant(t, n, "SourcePath", cty.StringVal(tc.source))
			setConstant(t, n, "UploadURL", cty.StringVal(server.URL))

			_, err := eval.NewDataFlow(g).ComputeOutput(context.Background(), n, "Status")
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
