package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// entryHandlers serves one record store. The same handlers back both the
// expense and transaction routes; the service's variant decides categories
// and wallet handling.
type entryHandlers struct {
	svc *services.EntryService
	srv *Server
}

// entryPayload carries a create or update body. Pointer fields distinguish
// "absent" from "zero" so updates can merge onto the stored row.
type entryPayload struct {
	Description *string     `json:"description"`
	Amount      *core.Money `json:"amount"`
	Category    *string     `json:"category"`
	Kind        *core.Kind  `json:"kind"`
	Date        *core.Date  `json:"entry_date"`
	CreatedBy   *string     `json:"created_by"`
	Wallet      *string     `json:"wallet"`
}

func (p entryPayload) toEntry() core.Entry {
	var e core.Entry
	p.applyTo(&e)
	return e
}

func (p entryPayload) applyTo(e *core.Entry) {
	if p.Description != nil {
		e.Description = strings.TrimSpace(*p.Description)
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Kind != nil {
		e.Kind = *p.Kind
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.CreatedBy != nil {
		e.CreatedBy = strings.TrimSpace(*p.CreatedBy)
	}
	if p.Wallet != nil {
		e.Wallet = strings.TrimSpace(*p.Wallet)
	}
}

func (h *entryHandlers) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.svc.List(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "List entries failed",
			applog.FieldStore, h.svc.Variant().Table, applog.FieldError, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch records")
		return
	}
	if entries == nil {
		entries = []core.Entry{}
	}

	respondList(w, len(entries), entries)
}

func (h *entryHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	entry, err := h.svc.Get(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Get entry failed",
			applog.FieldStore, h.svc.Variant().Table, applog.FieldEntryID, id, applog.FieldError, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch record")
		return
	}
	if entry == nil {
		respondError(w, http.StatusNotFound, h.label()+" not found")
		return
	}

	respondData(w, http.StatusOK, entry)
}

func (h *entryHandlers) create(w http.ResponseWriter, r *http.Request) {
	var payload entryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, decodeMessage(err))
		return
	}

	created, err := h.svc.Create(r.Context(), payload.toEntry())
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Create entry failed",
			applog.FieldStore, h.svc.Variant().Table, applog.FieldError, err)
		respondError(w, http.StatusInternalServerError, "Failed to create record")
		return
	}

	h.srv.invalidateReports(h.svc.Variant().Name)
	respondMessage(w, http.StatusCreated, h.label()+" created successfully", created)
}

func (h *entryHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var payload entryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, decodeMessage(err))
		return
	}

	existing, err := h.svc.Get(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Get entry failed",
			applog.FieldStore, h.svc.Variant().Table, applog.FieldEntryID, id, applog.FieldError, err)
		respondError(w, http.StatusInternalServerError, "Failed to update record")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, h.label()+" not found")
		return
	}

	merged := *existing
	payload.applyTo(&merged)

	updated, err := h.svc.Update(r.Context(), id, merged)
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Update entry failed",
			applog.FieldStore, h.svc.Variant().Table, applog.FieldEntryID, id, applog.FieldError, err)
		respondError(w, http.StatusInternalServerError, "Failed to update record")
		return
	}
	if !updated {
		respondError(w, http.StatusNotFound, h.label()+" not found")
		return
	}

	h.srv.invalidateReports(h.svc.Variant().Name)

	fresh, err := h.svc.Get(r.Context(), id)
	if err != nil || fresh == nil {
		respondMessage(w, http.StatusOK, h.label()+" updated successfully", nil)
		return
	}
	respondMessage(w, http.StatusOK, h.label()+" updated successfully", fresh)
}

func (h *entryHandlers) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete entry failed",
			applog.FieldStore, h.svc.Variant().Table, applog.FieldEntryID, id, applog.FieldError, err)
		respondError(w, http.StatusInternalServerError, "Failed to delete record")
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, h.label()+" not found")
		return
	}

	h.srv.invalidateReports(h.svc.Variant().Name)
	respondMessage(w, http.StatusOK, h.label()+" deleted successfully", map[string]int64{"id": id})
}

func (h *entryHandlers) report(w http.ResponseWriter, r *http.Request) {
	key := h.svc.Variant().Name
	if cached, found := h.srv.reportCache.Get(key); found {
		slog.DebugContext(r.Context(), "Report cache hit", applog.FieldStore, h.svc.Variant().Table)
		respondData(w, http.StatusOK, cached)
		return
	}

	report, err := h.svc.Report(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Report failed",
			applog.FieldStore, h.svc.Variant().Table, applog.FieldError, err)
		respondError(w, http.StatusInternalServerError, "Failed to build summary")
		return
	}

	h.srv.reportCache.Set(key, report)
	respondData(w, http.StatusOK, report)
}

func (h *entryHandlers) categories(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.CategoryBreakdown(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Category breakdown failed",
			applog.FieldStore, h.svc.Variant().Table, applog.FieldError, err)
		respondError(w, http.StatusInternalServerError, "Failed to build category breakdown")
		return
	}
	if stats == nil {
		stats = []core.CategoryStat{}
	}
	respondData(w, http.StatusOK, stats)
}

// label gives the capitalized variant name for user-facing messages.
func (h *entryHandlers) label() string {
	name := h.svc.Variant().Name
	if name == "" {
		return "Record"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func (s *Server) invalidateReports(variantName string) {
	s.reportCache.Delete(variantName)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusBadRequest, "Invalid record id")
		return 0, false
	}
	return id, true
}

func parseFilter(r *http.Request) (storage.Filter, error) {
	q := r.URL.Query()
	f := storage.Filter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	}

	if v := strings.TrimSpace(q.Get("startDate")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return storage.Filter{}, errors.New("startDate must be YYYY-MM-DD")
		}
		f.StartDate = d
	}
	if v := strings.TrimSpace(q.Get("endDate")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return storage.Filter{}, errors.New("endDate must be YYYY-MM-DD")
		}
		f.EndDate = d
	}

	return f, nil
}

// decodeMessage keeps domain validation failures raised during JSON
// decoding (bad amounts, bad dates) out of the generic bad-body bucket.
func decodeMessage(err error) string {
	if isValidationError(err) {
		return err.Error()
	}
	return "Invalid request body"
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidCategory,
		core.ErrInvalidDate,
		core.ErrInvalidKind,
		core.ErrInvalidDescription,
		core.ErrInvalidWallet,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
