package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/orthoflow/pkg/buildinfo"
	"github.com/matzehuels/orthoflow/pkg/errors"
	"github.com/matzehuels/orthoflow/pkg/graph"
	"github.com/matzehuels/orthoflow/pkg/layout"
	"github.com/matzehuels/orthoflow/pkg/pipeline"
)

// Content types understood by the API.
const (
	contentJSON    = "application/json"
	contentYAML    = "application/yaml"
	contentMsgpack = "application/msgpack"
)

// LayoutRequest is the JSON body of POST /v1/layout.
type LayoutRequest struct {
	Graph   *graph.Graph     `json:"graph"`
	Options pipeline.Options `json:"options"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleLayout lays out a graph. The body is either a LayoutRequest or,
// with a YAML content type, a bare graph whose options come from the
// query string.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	g, opts, err := s.decodeLayoutRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := checkFont(opts.Font); err != nil {
		s.writeError(w, r, err)
		return
	}
	if acceptsMsgpack(r) {
		opts.Format = string(graph.FormatMsgpack)
	} else if opts.Format == "" {
		opts.Format = string(graph.FormatJSON)
	}
	opts.Timeout = s.cfg.LayoutTimeout
	opts.MaxNodes = s.cfg.MaxNodes
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))

	res, err := s.runner.Execute(r.Context(), g, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ct := contentJSON
	if res.Format == graph.FormatMsgpack {
		ct = contentMsgpack
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("X-Cache", cacheHeader(res.CacheHit))
	w.Header().Set("X-Graph-Hash", res.GraphHash)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Output)
}

func (s *Server) decodeLayoutRequest(r *http.Request) (*graph.Graph, pipeline.Options, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case contentYAML, "application/x-yaml", "text/yaml":
		g, err := graph.ReadGraph(r.Body, graph.FormatYAML)
		if err != nil {
			return nil, pipeline.Options{}, err
		}
		opts, err := queryOptions(r)
		return g, opts, err
	case contentJSON, "":
		var req LayoutRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
		}
		if req.Graph == nil {
			return nil, pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "request has no graph")
		}
		if err := req.Graph.Validate(); err != nil {
			return nil, pipeline.Options{}, err
		}
		return req.Graph, req.Options, nil
	}
	return nil, pipeline.Options{}, errors.New(errors.ErrCodeUnsupported, "unsupported content type %q", mt)
}

// queryOptions reads layout options from the URL query.
func queryOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Direction: q.Get("direction"),
		Engine:    q.Get("engine"),
		Measure:   q.Get("measure"),
		Format:    q.Get("format"),
	}
	if v := q.Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidOptions, "invalid refresh: %q", v)
		}
		opts.Refresh = b
	}
	for name, dst := range map[string]*float64{
		"padding":       &opts.Padding,
		"node_spacing":  &opts.NodeSpacing,
		"layer_spacing": &opts.LayerSpacing,
		"wrap_width":    &opts.WrapWidth,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidOptions, "invalid %s: %q", name, v)
		}
		*dst = f
	}
	return opts, nil
}

// checkFont keeps API clients from naming font files on the server.
func checkFont(font string) error {
	if font != "" && font != layout.DefaultFont {
		return errors.New(errors.ErrCodeInvalidOptions, "font %q is not available (only %q)", font, layout.DefaultFont)
	}
	return nil
}

func acceptsMsgpack(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, _ := mime.ParseMediaType(strings.TrimSpace(part))
		if mt == contentMsgpack || mt == "application/x-msgpack" {
			return true
		}
	}
	return false
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
