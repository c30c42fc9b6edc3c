package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/orthoflow/pkg/cache"
	"github.com/matzehuels/orthoflow/pkg/graph"
	"github.com/matzehuels/orthoflow/pkg/pipeline"
)

const layoutBody = `{
  "graph": {
    "direction": "TD",
    "nodes": [{"id": "api"}, {"id": "db", "shape": "cylinder"}],
    "edges": [{"source": "api", "target": "db"}]
  },
  "options": {"engine": "simple", "measure": "cells"}
}`

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(c, nil, logger)
	t.Cleanup(func() { runner.Close() })
	return New(runner, cfg, logger)
}

func do(s *Server, method, target, contentType, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body %q does not decode: %v", rec.Body.String(), err)
	}
	return body.Error.Code
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Config{})
	rec := do(s, http.MethodGet, "/healthz", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["version"] == "" {
		t.Errorf("body = %v", body)
	}
	if _, err := uuid.Parse(rec.Header().Get(HeaderRequestID)); err != nil {
		t.Errorf("X-Request-ID = %q, want a UUID", rec.Header().Get(HeaderRequestID))
	}
}

func TestRequestIDPropagates(t *testing.T) {
	s := newTestServer(t, Config{})
	id := uuid.NewString()
	rec := do(s, http.MethodGet, "/healthz", "", "", http.Header{HeaderRequestID: {id}})
	if got := rec.Header().Get(HeaderRequestID); got != id {
		t.Errorf("X-Request-ID = %q, want %q", got, id)
	}

	rec = do(s, http.MethodGet, "/healthz", "", "", http.Header{HeaderRequestID: {"not a uuid"}})
	if got := rec.Header().Get(HeaderRequestID); got == "not a uuid" {
		t.Error("malformed request id was echoed")
	}
}

func TestLayoutJSON(t *testing.T) {
	s := newTestServer(t, Config{})

	rec := do(s, http.MethodPost, "/v1/layout", "application/json", layoutBody, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != contentJSON {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := rec.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("X-Cache = %q, want miss", got)
	}
	l, err := graph.UnmarshalLayout(rec.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Nodes) != 2 || len(l.Edges) != 1 {
		t.Errorf("layout has %d nodes, %d edges", len(l.Nodes), len(l.Edges))
	}

	again := do(s, http.MethodPost, "/v1/layout", "application/json", layoutBody, nil)
	if got := again.Header().Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
	if !bytes.Equal(again.Body.Bytes(), rec.Body.Bytes()) {
		t.Error("cached response differs")
	}
}

func TestLayoutMsgpack(t *testing.T) {
	s := newTestServer(t, Config{})
	rec := do(s, http.MethodPost, "/v1/layout", "application/json", layoutBody,
		http.Header{"Accept": {"application/msgpack"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != contentMsgpack {
		t.Errorf("Content-Type = %q", ct)
	}
	l, err := graph.DecodeLayout(rec.Body.Bytes(), graph.FormatMsgpack)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Nodes) != 2 {
		t.Errorf("layout has %d nodes", len(l.Nodes))
	}
}

func TestLayoutYAML(t *testing.T) {
	s := newTestServer(t, Config{})
	body := "nodes:\n  - id: a\n  - id: b\nedges:\n  - source: a\n    target: b\n"
	rec := do(s, http.MethodPost, "/v1/layout?direction=LR&engine=simple&measure=cells", "application/yaml", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	l, err := graph.UnmarshalLayout(rec.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if l.Direction != graph.DirectionLR {
		t.Errorf("Direction = %q, want LR", l.Direction)
	}
	a, _ := l.Node("a")
	b, _ := l.Node("b")
	if a == nil || b == nil || !(a.X+a.Width <= b.X) {
		t.Errorf("LR layout should place a left of b: %+v %+v", a, b)
	}
}

func TestLayoutErrors(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		target      string
		contentType string
		body        string
		status      int
		code        string
	}{
		{"malformed json", http.MethodPost, "/v1/layout", "application/json", "{", 400, "INVALID_INPUT"},
		{"unknown field", http.MethodPost, "/v1/layout", "application/json", `{"graf": {}}`, 400, "INVALID_INPUT"},
		{"no graph", http.MethodPost, "/v1/layout", "application/json", `{"options": {}}`, 400, "INVALID_INPUT"},
		{"duplicate node", http.MethodPost, "/v1/layout", "application/json",
			`{"graph": {"nodes": [{"id": "a"}, {"id": "a"}]}}`, 400, "INVALID_INPUT"},
		{"bad shape", http.MethodPost, "/v1/layout", "application/json",
			`{"graph": {"nodes": [{"id": "a", "shape": "blob"}]}}`, 400, "INVALID_SHAPE"},
		{"bad direction", http.MethodPost, "/v1/layout", "application/json",
			`{"graph": {"nodes": [{"id": "a"}]}, "options": {"direction": "up"}}`, 400, "INVALID_DIRECTION"},
		{"bad engine", http.MethodPost, "/v1/layout", "application/json",
			`{"graph": {"nodes": [{"id": "a"}]}, "options": {"engine": "elk"}}`, 400, "INVALID_OPTIONS"},
		{"font path", http.MethodPost, "/v1/layout", "application/json",
			`{"graph": {"nodes": [{"id": "a"}]}, "options": {"font": "/etc/passwd"}}`, 400, "INVALID_OPTIONS"},
		{"yaml output", http.MethodPost, "/v1/layout", "application/json",
			`{"graph": {"nodes": [{"id": "a"}]}, "options": {"format": "yaml"}}`, 400, "INVALID_FORMAT"},
		{"bad query", http.MethodPost, "/v1/layout?padding=wide", "application/yaml", "nodes: [{id: a}]", 400, "INVALID_OPTIONS"},
		{"content type", http.MethodPost, "/v1/layout", "text/plain", "a -> b", 400, "UNSUPPORTED"},
		{"unknown route", http.MethodGet, "/v2/layout", "", "", 404, "NOT_FOUND"},
		{"wrong method", http.MethodGet, "/v1/layout", "", "", 405, "METHOD_NOT_ALLOWED"},
	}
	s := newTestServer(t, Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, tt.method, tt.target, tt.contentType, tt.body, nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if code := errorCode(t, rec); code != tt.code {
				t.Errorf("code = %q, want %q", code, tt.code)
			}
		})
	}
}

func TestLayoutNodeLimit(t *testing.T) {
	s := newTestServer(t, Config{MaxNodes: 2})
	threeNodes := `{"graph": {"nodes": [{"id": "a"}, {"id": "b"}, {"id": "c"}]}, "options": {"engine": "simple", "measure": "cells"%s}}`

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"within limit", layoutBody, 200, ""},
		{"over limit", fmt.Sprintf(threeNodes, ""), 400, "INVALID_INPUT"},
		{"client raises limit", fmt.Sprintf(threeNodes, `, "max_nodes": 1000000`), 400, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/v1/layout", "application/json", tt.body, nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.code != "" {
				if code := errorCode(t, rec); code != tt.code {
					t.Errorf("code = %q, want %q", code, tt.code)
				}
			}
		})
	}
}

func TestConfigDefaultNodeLimit(t *testing.T) {
	s := newTestServer(t, Config{})
	if s.cfg.MaxNodes != pipeline.DefaultMaxNodes {
		t.Errorf("MaxNodes = %d, want %d", s.cfg.MaxNodes, pipeline.DefaultMaxNodes)
	}
}

func TestLayoutBodyTooLarge(t *testing.T) {
	s := newTestServer(t, Config{MaxBodyBytes: 32})
	rec := do(s, http.MethodPost, "/v1/layout", "application/json", layoutBody, nil)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestErrorBodyCarriesRequestID(t *testing.T) {
	s := newTestServer(t, Config{})
	id := uuid.NewString()
	rec := do(s, http.MethodPost, "/v1/layout", "application/json", "{", http.Header{HeaderRequestID: {id}})
	var body struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error.RequestID != id {
		t.Errorf("request_id = %q, want %q", body.Error.RequestID, id)
	}
}

func TestToAPIErrorHidesInternalErrors(t *testing.T) {
	apiErr := toAPIError(io.ErrUnexpectedEOF)
	if apiErr.Status != http.StatusInternalServerError || apiErr.Code != "INTERNAL_ERROR" {
		t.Errorf("toAPIError() = %+v", apiErr)
	}
	if strings.Contains(apiErr.Message, "EOF") {
		t.Errorf("internal error text leaked: %q", apiErr.Message)
	}
}

func TestServeShutsDown(t *testing.T) {
	s := newTestServer(t, Config{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
