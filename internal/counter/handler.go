package counter

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"hit-counter/internal/httpx/response"
	"hit-counter/internal/logger"
	"hit-counter/internal/observability"
)

const (
	ServiceName    = "Hit Counter Service"
	ServiceVersion = "1.0.0"

	// ListPath is where the handler's Routes are mounted.
	ListPath = "/counters"
)

var log = logger.WithComponent("COUNTERS")

// Handler exposes a Registry over HTTP.
type Handler struct {
	registry      *Registry
	metrics       *observability.Metrics
	baseURL       string
	maxNameLength int
}

// NewHandler creates a counter handler. baseURL may be empty, in which case
// absolute URLs are derived from each request.
func NewHandler(registry *Registry, metrics *observability.Metrics, baseURL string, maxNameLength int) *Handler {
	return &Handler{
		registry:      registry,
		metrics:       metrics,
		baseURL:       strings.TrimRight(baseURL, "/"),
		maxNameLength: maxNameLength,
	}
}

// IndexResponse is the service metadata payload served at /.
type IndexResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
	URL     string `json:"url"`
}

// Routes returns the /counters sub-router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/{name}", h.Create)
	r.Get("/{name}", h.Read)
	r.Put("/{name}", h.Update)
	r.Delete("/{name}", h.Delete)
	return r
}

// Index handles GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	log.Info("Request for Base URL")
	response.JSON(w, http.StatusOK, IndexResponse{
		Status:  http.StatusOK,
		Message: ServiceName,
		Version: ServiceVersion,
		URL:     h.absoluteURL(r, ListPath),
	})
}

// List handles GET /counters
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Info("Request to list all counters...")
	counters := h.registry.List()
	h.metrics.ObserveOperation("list", observability.ResultOK)
	response.JSON(w, http.StatusOK, counters)
}

// Create handles POST /counters/{name}
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	name, ok := h.counterName(w, r, "create")
	if !ok {
		return
	}
	log.Info("Request to Create counter: %s...", name)

	c, err := h.registry.Create(name)
	if err != nil {
		h.writeError(w, "create", name, err)
		return
	}
	h.metrics.ObserveOperation("create", observability.ResultOK)

	w.Header().Set("Location", h.absoluteURL(r, ListPath+"/"+url.PathEscape(name)))
	response.JSON(w, http.StatusCreated, c)
}

// Read handles GET /counters/{name}
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	name, ok := h.counterName(w, r, "read")
	if !ok {
		return
	}
	log.Info("Request to Read counter: %s...", name)

	c, err := h.registry.Get(name)
	if err != nil {
		h.writeError(w, "read", name, err)
		return
	}
	h.metrics.ObserveOperation("read", observability.ResultOK)
	response.JSON(w, http.StatusOK, c)
}

// Update handles PUT /counters/{name}; it increments the counter by one.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	name, ok := h.counterName(w, r, "increment")
	if !ok {
		return
	}
	log.Info("Request to Update counter: %s...", name)

	c, err := h.registry.Increment(name)
	if err != nil {
		h.writeError(w, "increment", name, err)
		return
	}
	h.metrics.ObserveOperation("increment", observability.ResultOK)
	response.JSON(w, http.StatusOK, c)
}

// Delete handles DELETE /counters/{name}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := h.counterName(w, r, "delete")
	if !ok {
		return
	}
	log.Info("Request to Delete counter: %s...", name)

	if !h.registry.Delete(name) {
		log.Debug("Counter %s was not present", name)
	}
	h.metrics.ObserveOperation("delete", observability.ResultOK)
	response.NoContent(w)
}

// counterName validates the {name} path segment. chi matches against the
// escaped path when one is present, so the segment is decoded in that case.
// Names must be valid UTF-8 so that they survive a JSON round trip unchanged.
func (h *Handler) counterName(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	name := chi.URLParam(r, "name")
	var err error
	if r.URL.RawPath != "" {
		name, err = url.PathUnescape(name)
	}
	if err != nil || name == "" || !utf8.ValidString(name) || (h.maxNameLength > 0 && len(name) > h.maxNameLength) {
		h.metrics.ObserveOperation(op, observability.ResultInvalid)
		response.BadRequest(w, "Invalid counter name")
		return "", false
	}
	return name, true
}

func (h *Handler) writeError(w http.ResponseWriter, op, name string, err error) {
	switch {
	case errors.Is(err, ErrConflict):
		h.metrics.ObserveOperation(op, observability.ResultConflict)
		response.Conflict(w, fmt.Sprintf("Counter %s already exists", name))
	case errors.Is(err, ErrNotFound):
		h.metrics.ObserveOperation(op, observability.ResultNotFound)
		response.NotFound(w, fmt.Sprintf("Counter %s does not exist", name))
	default:
		log.Error("%s counter %s failed: %v", op, name, err)
		response.InternalServerError(w)
	}
}

func (h *Handler) absoluteURL(r *http.Request, path string) string {
	if h.baseURL != "" {
		return h.baseURL + path
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + r.Host + path
}
