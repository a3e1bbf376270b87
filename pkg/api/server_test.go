package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/errors"
	"github.com/matzehuels/slidekit/pkg/observability"
	"github.com/matzehuels/slidekit/pkg/pipeline"
	"github.com/matzehuels/slidekit/pkg/qc"
	"github.com/matzehuels/slidekit/pkg/render/sink"
)

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	runner.SetCapabilities(sink.Capabilities{Formats: sink.Formats()})
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	srv := httptest.NewServer(New(runner, opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func pipelineSpec() diagram.Spec {
	return diagram.Spec{
		Title: "Deploy pipeline",
		Shapes: []diagram.ShapeSpec{
			{ID: "build", Text: "Build"},
			{ID: "test", Text: "Test"},
			{ID: "ship", Text: "Ship", Style: "accent"},
		},
		Connections: []diagram.ConnectionSpec{
			{From: "build", To: "test"},
			{From: "test", To: "ship", Label: "green"},
		},
	}
}

func post(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	resp, err := http.Post(srv.URL+path, "application/json", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var h HealthResponse
	decodeBody(t, resp, &h)
	assert.Equal(t, "ok", h.Status)
	assert.NotEmpty(t, h.Version)
	assert.ElementsMatch(t, sink.Formats(), h.Capabilities.Formats)
}

func TestLayout(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/v1/layout", Request{Diagram: pipelineSpec()})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got struct {
		RunID   string                `json:"run_id"`
		Layout  *diagram.LayoutResult `json:"layout"`
		Reports pipeline.Reports      `json:"reports"`
		Stats   pipeline.Stats        `json:"stats"`
	}
	decodeBody(t, resp, &got)
	assert.NotEmpty(t, got.RunID)
	require.NotNil(t, got.Layout)
	assert.Equal(t, diagram.StrategyFlow, got.Layout.Strategy)
	assert.Len(t, got.Layout.Shapes, 3)
	assert.Len(t, got.Layout.Connectors, 2)
	require.NotNil(t, got.Reports.Definition)
	require.NotNil(t, got.Reports.Layout)
	assert.Equal(t, qc.GateLayout, got.Reports.Layout.Gate)
	assert.Equal(t, 3, got.Stats.ShapeCount)
}

func TestLayoutOverrides(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/v1/layout", Request{
		Diagram: pipelineSpec(),
		Options: pipeline.Options{Strategy: "hierarchy", Palette: "forest-green"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Layout *diagram.LayoutResult `json:"layout"`
	}
	decodeBody(t, resp, &got)
	require.NotNil(t, got.Layout)
	assert.Equal(t, diagram.StrategyHierarchy, got.Layout.Strategy)
	assert.EqualValues(t, "forest-green", got.Layout.Palette)
}

func TestLayoutDefinitionFatal(t *testing.T) {
	spec := pipelineSpec()
	spec.Shapes = append(spec.Shapes, diagram.ShapeSpec{ID: "test", Text: "Test twice"})

	srv := newTestServer(t)
	resp := post(t, srv, "/v1/layout", Request{Diagram: spec})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var got ErrorResponse
	decodeBody(t, resp, &got)
	assert.Equal(t, errors.ErrCodeDuplicateID, got.Error.Code)
	assert.NotEmpty(t, got.Error.Message)
	assert.NotEmpty(t, got.RunID)
	require.NotNil(t, got.Reports)
	require.NotNil(t, got.Reports.Definition)
	assert.NotEmpty(t, got.Reports.Definition.Fatal)
	assert.Nil(t, got.Reports.Layout)
}

func TestLayoutBadStrategy(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/v1/layout", Request{Diagram: pipelineSpec(), Options: pipeline.Options{Strategy: "radial"}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var got ErrorResponse
	decodeBody(t, resp, &got)
	assert.Equal(t, errors.ErrCodeInvalidStrategy, got.Error.Code)
	assert.Nil(t, got.Reports)
}

func TestValidate(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv, "/v1/validate", Request{Diagram: pipelineSpec()})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ok ValidateResponse
	decodeBody(t, resp, &ok)
	assert.True(t, ok.Valid)
	assert.Nil(t, ok.Error)
	assert.NotNil(t, ok.Reports.Layout)

	spec := pipelineSpec()
	spec.Connections = append(spec.Connections, diagram.ConnectionSpec{From: "ship", To: "nowhere"})
	resp = post(t, srv, "/v1/validate", Request{Diagram: spec})
	require.Equal(t, http.StatusOK, resp.StatusCode, "findings are not request errors")
	var bad ValidateResponse
	decodeBody(t, resp, &bad)
	assert.False(t, bad.Valid)
	require.NotNil(t, bad.Error)
	assert.Equal(t, errors.ErrCodeDanglingReference, bad.Error.Code)
}

func TestRender(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		format string
		prefix string
	}{
		{"svg", "<svg"},
		{"pdf", "%PDF"},
		{"xlsx", "PK"},
		{"json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp := post(t, srv, "/v1/render/"+tt.format, Request{Diagram: pipelineSpec()})
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, sink.Format(tt.format).ContentType(), resp.Header.Get("Content-Type"))
			assert.NotEmpty(t, resp.Header.Get(HeaderRunID))
			_, err := strconv.Atoi(resp.Header.Get(HeaderWarnings))
			assert.NoError(t, err)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.NotEmpty(t, body)
			assert.True(t, bytes.HasPrefix(bytes.TrimSpace(body), []byte(tt.prefix)), "body starts %q", body[:min(len(body), 16)])
		})
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/v1/render/png", Request{Diagram: pipelineSpec()})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var got ErrorResponse
	decodeBody(t, resp, &got)
	assert.Equal(t, errors.ErrCodeInvalidFormat, got.Error.Code)
}

func TestRenderUnsupportedFormat(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	runner.SetCapabilities(sink.Capabilities{Formats: []sink.Format{sink.FormatSVG}})
	srv := httptest.NewServer(New(runner, WithLogger(log.New(io.Discard))).Handler())
	defer srv.Close()

	resp := post(t, srv, "/v1/render/pdf", Request{Diagram: pipelineSpec()})
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestStrictDefault(t *testing.T) {
	spec := pipelineSpec()
	spec.Shapes[0].Preset = "hexagon"

	srv := newTestServer(t)
	resp := post(t, srv, "/v1/render/svg", Request{Diagram: spec})
	require.Equal(t, http.StatusOK, resp.StatusCode, "warnings alone pass")
	assert.NotEqual(t, "0", resp.Header.Get(HeaderWarnings))

	strict := newTestServer(t, WithDefaults(pipeline.Options{Strict: true}))
	resp = post(t, strict, "/v1/render/svg", Request{Diagram: spec})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var got ErrorResponse
	decodeBody(t, resp, &got)
	assert.Equal(t, errors.ErrCodeQualityGate, got.Error.Code)
}

func TestBadRequestBody(t *testing.T) {
	srv := newTestServer(t)
	for name, body := range map[string]string{
		"malformed":     `{"diagram":`,
		"unknown field": `{"diagram":{"shapes":[]},"colour":"red"}`,
		"empty":         ``,
	} {
		t.Run(name, func(t *testing.T) {
			resp := post(t, srv, "/v1/layout", body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var got ErrorResponse
			decodeBody(t, resp, &got)
			assert.Equal(t, errors.ErrCodeInvalidInput, got.Error.Code)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/layout")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestDOT(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/v1/dot?detailed=1", Request{Diagram: pipelineSpec()})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/vnd.graphviz")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "digraph G {")
	assert.Contains(t, string(body), `"build" -> "test"`)
}

func TestDOTSVGWithoutGraphviz(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/v1/dot?svg=true", Request{Diagram: pipelineSpec()})
	require.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	var got ErrorResponse
	decodeBody(t, resp, &got)
	assert.Equal(t, errors.ErrCodeUnsupported, got.Error.Code)
}

type recordingServerHooks struct {
	observability.NoopServerHooks
	mu     sync.Mutex
	routes []string
	status []int
}

func (h *recordingServerHooks) OnResponse(_ context.Context, _, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, route)
	h.status = append(h.status, status)
}

func TestServerHooks(t *testing.T) {
	hooks := &recordingServerHooks{}
	observability.SetServerHooks(hooks)
	t.Cleanup(observability.Reset)

	srv := newTestServer(t)
	resp := post(t, srv, "/v1/render/json", Request{Diagram: pipelineSpec()})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, _ = io.ReadAll(resp.Body)

	// the hook fires after the body is flushed
	require.Eventually(t, func() bool {
		hooks.mu.Lock()
		defer hooks.mu.Unlock()
		return len(hooks.routes) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	assert.Equal(t, "/v1/render/{format}", hooks.routes[0])
	assert.Equal(t, http.StatusOK, hooks.status[0])
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	s := New(runner, WithLogger(log.New(io.Discard)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
