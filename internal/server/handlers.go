package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/pretree/pkg/basic"
	"github.com/matzehuels/pretree/pkg/cache"
	"github.com/matzehuels/pretree/pkg/encoding/bsondoc"
	"github.com/matzehuels/pretree/pkg/encoding/jsondoc"
	"github.com/matzehuels/pretree/pkg/engine"
	apperrors "github.com/matzehuels/pretree/pkg/errors"
	"github.com/matzehuels/pretree/pkg/render/refgraph"
)

// statsBody mirrors engine.Stats in the response JSON.
type statsBody struct {
	Nodes     int `json:"nodes"`
	Sequences int `json:"sequences"`
	Mappings  int `json:"mappings"`
	Refs      int `json:"refs"`
	MaxDepth  int `json:"max_depth"`
}

func toStatsBody(s engine.Stats) statsBody {
	return statsBody{
		Nodes:     s.Nodes,
		Sequences: s.Sequences,
		Mappings:  s.Mappings,
		Refs:      s.Refs,
		MaxDepth:  s.MaxDepth,
	}
}

// readDocument reads and parses the request body as a JSON document.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (basic.Value, []byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read body")
	}
	tree, err := jsondoc.Unmarshal(data)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrCodeMalformedTree, err, "parse document")
	}
	return tree, data, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCheck decodes the document against the registry and reports its
// shape. A 200 means every type resolves and every reference lands.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	tree, _, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := engine.Depreserialize(tree, s.reg); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		OK    bool      `json:"ok"`
		Stats statsBody `json:"stats"`
	}{OK: true, Stats: toStatsBody(engine.Stat(tree))})
}

// handleNormalize decodes and re-encodes the document, which collapses
// duplicated substructure into references and orders the tag keys
// first. Results are cached by content hash.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	tree, data, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	key := "norm:" + cache.Hash(data)
	if cached, hit, _ := s.docs.Get(r.Context(), key); hit {
		writeRawJSON(w, http.StatusOK, cached)
		return
	}

	obj, err := engine.Depreserialize(tree, s.reg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	normalized, err := engine.Preserialize(obj, s.reg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out, err := jsondoc.Marshal(normalized)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.docs.Set(r.Context(), key, out, 0); err != nil {
		s.logger.Warn("cache normalized document", "err", err)
	}
	writeRawJSON(w, http.StatusOK, out)
}

// handleGraph renders the document's reference graph as DOT or SVG.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "dot"
	}
	if format != "dot" && format != "svg" {
		s.writeError(w, apperrors.New(apperrors.ErrCodeInvalidFormat, "unknown graph format %q (want dot or svg)", format))
		return
	}

	tree, _, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	detailed := r.URL.Query().Get("detailed") == "true"
	dot := refgraph.ToDOT(tree, refgraph.Options{Detailed: detailed})

	if format == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(dot))
		return
	}
	svg, err := refgraph.RenderSVG(dot)
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// handleCreateDocument validates the document and stores it under a
// fresh ID.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	tree, data, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := engine.Depreserialize(tree, s.reg); err != nil {
		s.writeError(w, err)
		return
	}

	id := uuid.NewString()
	if err := s.docs.Set(r.Context(), docKey(id), data, 0); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "store document"))
		return
	}
	s.writeJSON(w, http.StatusCreated, struct {
		ID    string    `json:"id"`
		Stats statsBody `json:"stats"`
	}{ID: id, Stats: toStatsBody(engine.Stat(tree))})
}

// handleGetDocument returns a stored document, as JSON or re-encoded
// as BSON.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateDocumentID(id); err != nil {
		s.writeError(w, err)
		return
	}
	data, hit, err := s.docs.Get(r.Context(), docKey(id))
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "load document"))
		return
	}
	if !hit {
		s.writeError(w, apperrors.New(apperrors.ErrCodeDocumentNotFound, "no document %s", id))
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}
	if err := apperrors.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	if format == "json" {
		writeRawJSON(w, http.StatusOK, data)
		return
	}

	tree, err := jsondoc.Unmarshal(data)
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "stored document unreadable"))
		return
	}
	out, err := bsondoc.Marshal(tree)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/bson")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// handleResolveDocument resolves a pointer expression against a stored
// document and returns the addressed subtree.
func (s *Server) handleResolveDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateDocumentID(id); err != nil {
		s.writeError(w, err)
		return
	}
	expr := r.URL.Query().Get("pointer")
	if err := apperrors.ValidatePointerExpr(expr); err != nil {
		s.writeError(w, err)
		return
	}

	data, hit, err := s.docs.Get(r.Context(), docKey(id))
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "load document"))
		return
	}
	if !hit {
		s.writeError(w, apperrors.New(apperrors.ErrCodeDocumentNotFound, "no document %s", id))
		return
	}

	tree, err := jsondoc.Unmarshal(data)
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "stored document unreadable"))
		return
	}
	path, err := basic.ParsePointer(expr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	target, err := basic.Resolve(tree, path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out, err := jsondoc.Marshal(target)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateDocumentID(id); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.docs.Delete(r.Context(), docKey(id)); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "delete document"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func docKey(id string) string { return "docs:" + id }
