// Package api serves a read-only JSON view of stored scrape runs.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/planner-contacts/internal/model"
	"github.com/sells-group/planner-contacts/internal/store"
)

// RunReader is the subset of store.Store the API reads from.
type RunReader interface {
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error)
	ListRecords(ctx context.Context, runID string) ([]model.PlannerRecord, error)
}

// Options configures the router.
type Options struct {
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
}

// NewRouter builds the status API routes.
func NewRouter(runs RunReader, opts Options) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h := &handler{runs: runs}
	r.Get("/health", h.health)
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", h.listRuns)
		r.Get("/{id}", h.getRun)
		r.Get("/{id}/records", h.listRecords)
	})
	return r
}

type handler struct {
	runs RunReader
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{Status: model.RunStatus(r.URL.Query().Get("status"))}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	runs, err := h.runs.ListRuns(r.Context(), filter)
	if err != nil {
		h.internal(w, "list runs", err)
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *handler) getRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := h.runs.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		h.internal(w, "get run", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *handler) listRecords(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.runs.GetRun(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		h.internal(w, "get run", err)
		return
	}

	records, err := h.runs.ListRecords(r.Context(), id)
	if err != nil {
		h.internal(w, "list records", err)
		return
	}
	if records == nil {
		records = []model.PlannerRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handler) internal(w http.ResponseWriter, action string, err error) {
	zap.L().Error("api: "+action, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
