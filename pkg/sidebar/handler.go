package sidebar

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/enclava/sidebars/pkg/metric"
)

const (
	routeRegistry  = "registry"
	routeSidebar   = "sidebar"
	routeDocs      = "docs"
	routeNeighbors = "neighbors"
)

// NeighborsResponse is the body of GET /sidebars/{name}/neighbors.
type NeighborsResponse struct {
	Sidebar  string `json:"sidebar"`
	Doc      string `json:"doc"`
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
}

type handler struct {
	provider Provider
	requests metric.IncrementalCounter
}

// HandlerOption configures the handler returned by Handler.
type HandlerOption func(*handler)

// WithRequestCounter counts served requests by route and status code.
func WithRequestCounter(c metric.IncrementalCounter) HandlerOption {
	return func(h *handler) { h.requests = c }
}

// Handler returns an HTTP handler that exports the registry as JSON:
//
//	GET /sidebars                      all sidebars keyed by name
//	GET /sidebars/{name}               one sidebar
//	GET /sidebars/{name}/docs          document ids in reading order
//	GET /sidebars/{name}/neighbors?doc previous and next document
//
// The registry is fetched from p on every request, so a reloading provider
// is picked up without restarting.
func Handler(p Provider, opts ...HandlerOption) http.Handler {
	h := &handler{provider: p, requests: metric.Nop{}}
	for _, opt := range opts {
		opt(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /sidebars", h.registry)
	mux.HandleFunc("GET /sidebars/{name}", h.sidebar)
	mux.HandleFunc("GET /sidebars/{name}/docs", h.docs)
	mux.HandleFunc("GET /sidebars/{name}/neighbors", h.neighbors)
	return mux
}

func (h *handler) registry(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, routeRegistry, http.StatusOK, h.provider.Registry())
}

func (h *handler) sidebar(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	entries, ok := h.provider.Registry().Sidebar(name)
	if !ok {
		h.writeError(w, r, routeSidebar, http.StatusNotFound, "sidebar not found")
		return
	}
	h.writeJSON(w, r, routeSidebar, http.StatusOK, entries)
}

func (h *handler) docs(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	entries, ok := h.provider.Registry().Sidebar(name)
	if !ok {
		h.writeError(w, r, routeDocs, http.StatusNotFound, "sidebar not found")
		return
	}
	h.writeJSON(w, r, routeDocs, http.StatusOK, DocIDs(entries))
}

func (h *handler) neighbors(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	doc := r.URL.Query().Get("doc")
	if doc == "" {
		h.writeError(w, r, routeNeighbors, http.StatusBadRequest, "missing doc query parameter")
		return
	}

	prev, next, err := h.provider.Registry().Neighbors(name, doc)
	if errors.Is(err, ErrNotFound) {
		h.writeError(w, r, routeNeighbors, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.writeError(w, r, routeNeighbors, http.StatusInternalServerError, "error, see logs for details")
		return
	}

	h.writeJSON(w, r, routeNeighbors, http.StatusOK, NeighborsResponse{
		Sidebar:  name,
		Doc:      doc,
		Previous: prev,
		Next:     next,
	})
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, route string, status int, message string) {
	slog.Warn("sidebar request failed",
		"method", r.Method,
		"url", r.URL.Path,
		"status", status,
		"message", message,
	)
	h.requests.Increment(route, strconv.Itoa(status))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, route string, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to encode sidebar response", "url", r.URL.Path, "error", err)
		h.writeError(w, r, route, http.StatusInternalServerError, "error, see logs for details")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write sidebar response", "url", r.URL.Path, "error", err)
		return
	}

	h.requests.Increment(route, strconv.Itoa(status))
	slog.Debug("sidebar response sent",
		"method", r.Method,
		"url", r.URL.Path,
		"status", status,
	)
}
