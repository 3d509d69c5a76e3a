// File: internal/handlers/health_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/healthadvisor/advisor-server/internal/domain"
	"github.com/healthadvisor/advisor-server/internal/middleware"
	"github.com/healthadvisor/advisor-server/internal/services"
)

type HealthRecordHandler struct {
	HealthService *services.HealthService
}

func NewHealthRecordHandler(hs *services.HealthService) *HealthRecordHandler {
	return &HealthRecordHandler{HealthService: hs}
}

// AddRecord logs a single health record. Exactly one of meal, lab_result or
// symptom must be set, matching the category field.
func (h *HealthRecordHandler) AddRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Category   domain.RecordCategory `json:"category"`
		RecordedAt time.Time             `json:"recorded_at"`
		Meal       *domain.Meal          `json:"meal"`
		LabResult  *domain.LabResult     `json:"lab_result"`
		Symptom    *domain.Symptom       `json:"symptom"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	recordedAt := req.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	record := &domain.HealthRecord{
		UserID:     userID,
		Category:   req.Category,
		RecordedAt: recordedAt,
		Meal:       req.Meal,
		LabResult:  req.LabResult,
		Symptom:    req.Symptom,
	}

	created, err := h.HealthService.AddRecord(r.Context(), record)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListRecords returns the user's health records, newest first. A category
// query parameter narrows the listing to one record kind.
func (h *HealthRecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if category := r.URL.Query().Get("category"); category != "" {
		items, err := h.HealthService.ListRecentByCategory(r.Context(), userID, domain.RecordCategory(category), queryInt(r, "limit"))
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
		return
	}

	items, total, page, err := h.HealthService.ListRecords(r.Context(), userID, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
		"page":  page,
	})
}
