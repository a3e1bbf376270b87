package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/slidekit/pkg/buildinfo"
	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/errors"
	"github.com/matzehuels/slidekit/pkg/pipeline"
	"github.com/matzehuels/slidekit/pkg/render/nodelink"
	"github.com/matzehuels/slidekit/pkg/render/sink"
)

// Response headers set on rendered artifacts.
const (
	HeaderRunID    = "X-Slidekit-Run-Id"
	HeaderWarnings = "X-Slidekit-Warnings"
	HeaderCache    = "X-Slidekit-Cache"
)

// Request is the body of every POST route.
type Request struct {
	Diagram diagram.Spec     `json:"diagram"`
	Options pipeline.Options `json:"options"`
}

// ErrorBody describes a failure.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// ErrorResponse is written for every failed request.
type ErrorResponse struct {
	Error   ErrorBody         `json:"error"`
	RunID   string            `json:"run_id,omitempty"`
	Reports *pipeline.Reports `json:"reports,omitempty"`
}

// ValidateResponse is the answer of /v1/validate.
type ValidateResponse struct {
	Valid   bool             `json:"valid"`
	RunID   string           `json:"run_id"`
	Reports pipeline.Reports `json:"reports"`
	Error   *ErrorBody       `json:"error,omitempty"`
}

// HealthResponse is the answer of /healthz.
type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Capabilities sink.Capabilities `json:"capabilities"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		Version:      buildinfo.Version,
		Capabilities: s.runner.Capabilities(r.Context()),
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Layout(r.Context(), req.Diagram, s.options(req.Options))
	if res == nil {
		// nothing was checked
		s.writeError(w, err, nil)
		return
	}
	resp := ValidateResponse{Valid: err == nil, RunID: res.RunID, Reports: res.Reports}
	if err != nil {
		resp.Error = errorBody(err)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Layout(r.Context(), req.Diagram, s.options(req.Options))
	if err != nil {
		s.writeError(w, err, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	f, err := sink.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	opts := s.options(req.Options)
	opts.Formats = []string{string(f)}

	res, err := s.runner.Execute(r.Context(), req.Diagram, opts)
	if err != nil {
		s.writeError(w, err, res)
		return
	}

	cacheState := "miss"
	if res.CacheInfo.RenderHit {
		cacheState = "hit"
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set(HeaderRunID, res.RunID)
	w.Header().Set(HeaderWarnings, strconv.Itoa(res.Stats.Warnings))
	w.Header().Set(HeaderCache, cacheState)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[string(f)])
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	d, err := pipeline.Build(req.Diagram, s.options(req.Options))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	dot := nodelink.ToDOT(d, nodelink.Options{Detailed: flag(r, "detailed")})

	if !flag(r, "svg") {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = w.Write([]byte(dot))
		return
	}
	if !s.runner.Capabilities(r.Context()).Graphviz {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "graphviz is not available"), nil)
		return
	}
	svg, err := nodelink.RenderSVG(r.Context(), dot)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeRenderFailed, err, "render dot"), nil)
		return
	}
	w.Header().Set("Content-Type", sink.FormatSVG.ContentType())
	_, _ = w.Write(svg)
}

// decode reads the request body, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (Request, bool) {
	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"), nil)
		return Request{}, false
	}
	return req, true
}

// options fills fields the request left empty from the server defaults.
func (s *Server) options(o pipeline.Options) pipeline.Options {
	if o.Palette == "" {
		o.Palette = s.defaults.Palette
	}
	if len(o.Formats) == 0 {
		o.Formats = s.defaults.Formats
	}
	o.Strict = o.Strict || s.defaults.Strict
	o.Logger = s.logger
	return o
}

func (s *Server) writeError(w http.ResponseWriter, err error, res *pipeline.Result) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	resp := ErrorResponse{Error: *errorBody(err)}
	if res != nil {
		resp.RunID = res.RunID
		resp.Reports = &res.Reports
	}
	writeJSON(w, status, resp)
}

func errorBody(err error) *ErrorBody {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return &ErrorBody{Code: code, Message: errors.UserMessage(err)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func flag(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}
