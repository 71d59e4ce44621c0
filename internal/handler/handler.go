// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Renessey/Solaris/internal/blocks"
	"github.com/Renessey/Solaris/internal/metrics"
	"github.com/Renessey/Solaris/internal/model"
	"github.com/Renessey/Solaris/internal/service"
	"github.com/Renessey/Solaris/internal/store"
)

// RegistrationHandler holds all HTTP handlers for the registry API.
type RegistrationHandler struct {
	svc *service.Service
	mtr *metrics.Metrics
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(svc *service.Service, mtr *metrics.Metrics) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, mtr: mtr}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps service/store errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	var terr *store.TransportError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "registration not found")
	case errors.As(err, &terr):
		writeError(w, http.StatusBadGateway, "record store unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// submitResponse is the envelope returned by Submit.
type submitResponse struct {
	Result       service.Outcome     `json:"result"`
	Registration *model.Registration `json:"registration"`
}

// Submit handles POST /registrations
// Dedup-upserts a check-in: 201 when a fresh row was created, 200 when an
// existing row for the same document was reopened.
func (h *RegistrationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	outcome, reg, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if outcome == service.OutcomeCreated {
		h.mtr.SubmissionsCreated.Inc()
		status = http.StatusCreated
	} else {
		h.mtr.SubmissionsUpdated.Inc()
	}
	writeJSON(w, status, submitResponse{Result: outcome, Registration: reg})
}

func activeFilterFromQuery(r *http.Request) (service.ActiveFilter, error) {
	f := service.ActiveFilter{
		Name:   r.URL.Query().Get("name"),
		Block:  r.URL.Query().Get("block"),
		Marker: r.URL.Query().Get("marker"),
	}
	if raw := r.URL.Query().Get("lot"); raw != "" {
		lot, err := strconv.Atoi(raw)
		if err != nil {
			return f, errors.New("lot must be an integer")
		}
		f.Lot = &lot
	}
	return f, nil
}

// ListActive handles GET /registrations/active
// Returns today's still-present registrations, newest first.
func (h *RegistrationHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	f, err := activeFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	regs, err := h.svc.ListActive(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// CountActive handles GET /registrations/active/count
func (h *RegistrationHandler) CountActive(w http.ResponseWriter, r *http.Request) {
	f, err := activeFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := h.svc.CountActive(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// Suggestions handles GET /registrations/suggestions?q=
// Advisory lookup: failures degrade to an empty list instead of an error.
func (h *RegistrationHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	matches, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil || matches == nil {
		matches = []model.Suggestion{}
	}
	writeJSON(w, http.StatusOK, matches)
}

// Get handles GET /registrations/{id}
// Returns the full record, used to prefill the form from a suggestion.
func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	reg, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// CheckOut handles POST /registrations/{id}/checkout
// Stamps the departure time; repeat calls just re-stamp it.
func (h *RegistrationHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CheckOut(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	h.mtr.Checkouts.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /registrations?q=
// The full historical log, newest first.
func (h *RegistrationHandler) History(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.History(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// Purge handles DELETE /registrations/{id}
func (h *RegistrationHandler) Purge(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Purge(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	h.mtr.Purges.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// ─── Block table ──────────────────────────────────────────────────────────────

type blockInfo struct {
	Code string `json:"code"`
	Lots int    `json:"lots"`
}

// ListBlocks handles GET /blocks
// The fixed block table, for building the block dropdown.
func ListBlocks(w http.ResponseWriter, r *http.Request) {
	out := make([]blockInfo, 0, len(blocks.Codes()))
	for _, code := range blocks.Codes() {
		out = append(out, blockInfo{Code: code, Lots: blocks.Capacity(code)})
	}
	writeJSON(w, http.StatusOK, out)
}

// ListLots handles GET /blocks/{code}/lots
// The 1..N lot range for one block; unknown codes yield an empty list.
func ListLots(w http.ResponseWriter, r *http.Request) {
	lots := blocks.Lots(chi.URLParam(r, "code"))
	if lots == nil {
		lots = []int{}
	}
	writeJSON(w, http.StatusOK, lots)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
