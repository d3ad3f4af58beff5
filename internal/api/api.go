// Package api serves a read-only HTTP view of the ledger.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/kopolinfo/budget/internal/ledger"
	"github.com/kopolinfo/budget/internal/metrics"
	"github.com/kopolinfo/budget/internal/model"
	"github.com/kopolinfo/budget/internal/store"
)

// RunLister lists import runs.
type RunLister interface {
	ListImportRuns(ctx context.Context, accountID string) ([]store.ImportRun, error)
}

// Previewer describes a single import run.
type Previewer interface {
	Preview(ctx context.Context, importID int64) (ledger.Preview, error)
}

// Handler serves the import endpoints.
type Handler struct {
	runs    RunLister
	preview Previewer
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewHandler creates a Handler.
func NewHandler(runs RunLister, preview Previewer, m *metrics.Metrics, log zerolog.Logger) *Handler {
	return &Handler{runs: runs, preview: preview, metrics: m, log: log}
}

// NewRouter wires the health, metrics and import routes.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/imports", h.ListImports).Methods(http.MethodGet)
	v1.HandleFunc("/imports/{id}", h.GetImport).Methods(http.MethodGet)
	return r
}

type importRunJSON struct {
	ID         int64     `json:"id"`
	AccountID  string    `json:"account_id"`
	ImportedAt time.Time `json:"imported_at"`
	FileName   string    `json:"file_name"`
	Payments   int       `json:"payments"`
}

type paymentJSON struct {
	ID          int64  `json:"id"`
	BookingDate string `json:"booking_date"`
	Amount      string `json:"amount"`
	PartnerName string `json:"partner_name"`
	Description string `json:"description"`
}

type importDetailJSON struct {
	importRunJSON
	Entries []paymentJSON `json:"entries"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "/health", http.StatusOK, map[string]string{"status": "ok"})
}

// ListImports lists import runs, optionally filtered by ?account=.
func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	const route = "/api/v1/imports"
	runs, err := h.runs.ListImportRuns(r.Context(), r.URL.Query().Get("account"))
	if err != nil {
		h.log.Error().Err(err).Msg("listing import runs")
		h.respondError(w, r, route, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	out := make([]importRunJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunJSON(run.ImportLog, run.Payments))
	}
	h.respond(w, r, route, http.StatusOK, out)
}

// GetImport returns one import run with its payments.
func (h *Handler) GetImport(w http.ResponseWriter, r *http.Request) {
	const route = "/api/v1/imports/{id}"
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, r, route, http.StatusBadRequest, "Invalid import id")
		return
	}

	p, err := h.preview.Preview(r.Context(), id)
	switch {
	case errors.Is(err, ledger.ErrImportNotFound):
		h.respondError(w, r, route, http.StatusNotFound, "Import not found")
		return
	case err != nil:
		h.log.Error().Err(err).Int64("import_id", id).Msg("loading import run")
		h.respondError(w, r, route, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	detail := importDetailJSON{
		importRunJSON: toRunJSON(p.Log, len(p.Payments)),
		Entries:       make([]paymentJSON, 0, len(p.Payments)),
	}
	for _, pay := range p.Payments {
		detail.Entries = append(detail.Entries, paymentJSON{
			ID:          pay.ID,
			BookingDate: pay.BookingDate.Format(model.DateFormat),
			Amount:      pay.Amount.StringFixed(2),
			PartnerName: pay.PartnerName,
			Description: pay.Description,
		})
	}
	h.respond(w, r, route, http.StatusOK, detail)
}

func toRunJSON(l model.ImportLog, payments int) importRunJSON {
	return importRunJSON{
		ID:         l.ID,
		AccountID:  l.AccountID,
		ImportedAt: l.ImportedAt,
		FileName:   l.FileName,
		Payments:   payments,
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, route string, code int, message string) {
	h.respond(w, r, route, code, map[string]string{"error": message})
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, route string, code int, payload any) {
	h.metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.log.Warn().Err(err).Str("route", route).Msg("writing response")
		}
	}
}
