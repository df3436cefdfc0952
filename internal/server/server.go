// Package server exposes the preserialization engines over HTTP.
//
// The API works on JSON documents in the tagged-tree format: clients can
// check a document against a registry, normalize it (decode and
// re-encode, collapsing duplicated substructure into references),
// render its reference graph, and store documents under server-assigned
// IDs. All responses are JSON; errors carry a machine-readable code.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pretree/pkg/cache"
	apperrors "github.com/matzehuels/pretree/pkg/errors"
	"github.com/matzehuels/pretree/pkg/registry"
)

// maxBodyBytes caps document uploads.
const maxBodyBytes = 10 << 20

// Server holds the shared state behind the HTTP handlers.
type Server struct {
	reg    *registry.Registry
	docs   cache.Cache
	logger *log.Logger
}

// Config configures a Server.
type Config struct {
	// Registry supplies the type vocabulary used to check and decode
	// documents. Required.
	Registry *registry.Registry

	// Store holds uploaded documents. Defaults to an in-memory store.
	Store cache.Cache

	// Logger receives request and error logs. Defaults to log.Default().
	Logger *log.Logger
}

// New creates a Server.
func New(cfg Config) *Server {
	s := &Server{
		reg:    cfg.Registry,
		docs:   cfg.Store,
		logger: cfg.Logger,
	}
	if s.docs == nil {
		s.docs = cache.NewMemoryCache()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/check", s.handleCheck)
		r.Post("/normalize", s.handleNormalize)
		r.Post("/graph", s.handleGraph)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.handleCreateDocument)
			r.Get("/{id}", s.handleGetDocument)
			r.Get("/{id}/resolve", s.handleResolveDocument)
			r.Delete("/{id}", s.handleDeleteDocument)
		})
	})
	return r
}

// requestLogger logs one line per request with status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

// writeJSON responds with a JSON body and status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write response", "err", err)
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeError classifies err and responds with its code and HTTP status.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	coded := apperrors.FromCore(err)
	status := apperrors.HTTPStatus(coded.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", coded.Code, "err", err)
	}
	var body errorBody
	body.Error.Code = string(coded.Code)
	body.Error.Message = coded.Message
	s.writeJSON(w, status, body)
}
