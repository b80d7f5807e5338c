// Package handler provides the HTTP handlers for the Whiskers API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/stevemurr/whiskers-api/health"
	"github.com/stevemurr/whiskers-api/logging"
	"github.com/stevemurr/whiskers-api/resource"
	"github.com/stevemurr/whiskers-api/schema"
	"github.com/stevemurr/whiskers-api/store"
)

// Default page sizes for list endpoints.
const (
	DefaultDevlogLimit    = 20
	DefaultMilestoneLimit = 50
)

const defaultMaxBodyBytes = 1 << 20

// Options configures a Handler. The zero value is usable.
type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	MaxBodyBytes   int64
	ProbeTimeout   time.Duration
	// DatabaseURLSet is reported by /test; the URL itself never is.
	DatabaseURLSet bool
}

// Handler holds the server dependencies and registers routes.
type Handler struct {
	store  store.Store // nil when no database is configured
	opts   Options
	logger *slog.Logger
	mux    *http.ServeMux
	chain  http.Handler
}

// New creates a Handler and wires up all routes. s may be nil, in which
// case reads and writes answer 503 and /test reports the database as
// unavailable.
func New(s store.Store, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscardLogger()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	h := &Handler{store: s, opts: opts, logger: opts.Logger, mux: http.NewServeMux()}
	h.routes()
	h.chain = withRequestID(withAccessLog(withCORS(h.mux, opts.AllowedOrigins), h.logger))
	return h
}

// ServeHTTP makes Handler an http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.chain.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	// Health / status
	h.mux.HandleFunc("GET /{$}", h.root)
	h.mux.HandleFunc("GET /health", h.health)
	h.mux.HandleFunc("GET /test", h.status)

	h.mux.HandleFunc("POST /api/devlog", h.create(resource.Devlog))
	h.mux.HandleFunc("GET /api/devlog", list(h, resource.Devlog, DefaultDevlogLimit, resource.NewDevlogPostView))
	h.mux.HandleFunc("POST /api/milestones", h.create(resource.Milestones))
	h.mux.HandleFunc("GET /api/milestones", list(h, resource.Milestones, DefaultMilestoneLimit, resource.NewMilestoneView))
	h.mux.HandleFunc("POST /api/feedback", h.create(resource.Feedbacks))

	// --- Schema endpoints ---
	h.mux.HandleFunc("GET /api/schemas", h.listSchemas)
	h.mux.HandleFunc("GET /api/schemas/{collection}", h.getSchema)
}

// ---------- helpers ----------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeValidation answers 422 with one detail entry per violation, each
// loc prefixed with where the value came from ("body" or "query").
func writeValidation(w http.ResponseWriter, source string, verr *schema.ValidationError) {
	detail := make([]schema.FieldError, len(verr.Errors))
	for i, fe := range verr.Errors {
		fe.Loc = append([]string{source}, fe.Loc...)
		detail[i] = fe
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": detail})
}

var errTrailingData = errors.New("unexpected data after top-level value")

// readJSON decodes exactly one JSON value from the body. An empty body
// yields io.EOF.
func readJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errTrailingData
	}
}

// bodyError answers a body that could not be decoded.
func bodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	fe := schema.FieldError{Msg: "JSON decode error: " + err.Error(), Type: "json_invalid"}
	if errors.Is(err, io.EOF) {
		fe = schema.FieldError{Msg: "field required", Type: "missing"}
	}
	writeValidation(w, "body", &schema.ValidationError{Errors: []schema.FieldError{fe}})
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", RequestIDFrom(r.Context()))
}

// storeError maps store failures onto HTTP status codes. Details go to the
// log, not to the client.
func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, collection string, err error) {
	var (
		werr *store.WriteError
		qerr *store.QueryError
	)
	switch {
	case errors.Is(err, store.ErrUnavailable):
		h.log(r).Warn("store unavailable", "collection", collection, "err", err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
	case errors.As(err, &werr):
		h.log(r).Error("insert failed", "collection", collection, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to write document")
	case errors.As(err, &qerr):
		h.log(r).Error("query failed", "collection", collection, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to query documents")
	default:
		h.log(r).Error("store error", "collection", collection, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseLimit reads the limit query parameter, falling back to def.
func parseLimit(r *http.Request, def int) (int, *schema.ValidationError) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &schema.ValidationError{Errors: []schema.FieldError{{
			Loc: []string{"limit"}, Msg: "value is not a valid integer", Type: "type_error.integer",
		}}}
	}
	if n < 0 {
		return 0, &schema.ValidationError{Errors: []schema.FieldError{{
			Loc: []string{"limit"}, Msg: "ensure this value is greater than or equal to 0", Type: "minimum",
		}}}
	}
	return n, nil
}

// ---------- status endpoints ----------

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Whiskers API running"})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	report := health.Probe(r.Context(), h.store, health.Options{
		DatabaseURLSet: h.opts.DatabaseURLSet,
		Timeout:        h.opts.ProbeTimeout,
	})
	if report.Error != "" {
		h.log(r).Warn("status probe degraded", "database", report.Database, "err", report.Error)
	}
	writeJSON(w, http.StatusOK, report)
}

// ---------- resources ----------

func (h *Handler) create(kind resource.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body any
		if err := readJSON(w, r, h.opts.MaxBodyBytes, &body); err != nil {
			bodyError(w, err)
			return
		}

		doc, err := kind.Validate(body)
		if err != nil {
			var verr *schema.ValidationError
			if errors.As(err, &verr) {
				writeValidation(w, "body", verr)
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if h.store == nil {
			h.storeError(w, r, kind.Collection, store.ErrUnavailable)
			return
		}
		id, err := h.store.Insert(r.Context(), kind.Collection, doc)
		if err != nil {
			h.storeError(w, r, kind.Collection, err)
			return
		}
		h.log(r).Info("document created", "collection", kind.Collection, "id", id)
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	}
}

// list serves up to limit documents of a collection in store order,
// each shaped by view.
func list[V any](h *Handler, kind resource.Kind, defaultLimit int, view func(store.Document) V) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, verr := parseLimit(r, defaultLimit)
		if verr != nil {
			writeValidation(w, "query", verr)
			return
		}
		if h.store == nil {
			h.storeError(w, r, kind.Collection, store.ErrUnavailable)
			return
		}
		docs, err := h.store.Query(r.Context(), kind.Collection, nil, limit)
		if err != nil {
			h.storeError(w, r, kind.Collection, err)
			return
		}
		out := make([]V, 0, len(docs))
		for _, doc := range docs {
			out = append(out, view(doc))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ---------- schema endpoints ----------

func (h *Handler) listSchemas(w http.ResponseWriter, r *http.Request) {
	schemas := make(map[string]map[string]any)
	for _, k := range resource.Kinds() {
		schemas[k.Collection] = k.Schema
	}
	writeJSON(w, http.StatusOK, schemas)
}

func (h *Handler) getSchema(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")
	k, ok := resource.Lookup(collection)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no schema for collection %q", collection))
		return
	}
	writeJSON(w, http.StatusOK, k.Schema)
}
