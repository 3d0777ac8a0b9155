package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"playabot-backend/internal/models"
	"playabot-backend/internal/services"
	"playabot-backend/pkg/httputil"
)

// LeadHandlers handles contact-form submissions.
type LeadHandlers struct {
	leadService *services.LeadService
}

// NewLeadHandlers creates a new LeadHandlers instance.
func NewLeadHandlers(leadService *services.LeadService) *LeadHandlers {
	return &LeadHandlers{leadService: leadService}
}

// HandleSubmitLead validates and stores one submission. Backend failures
// surface only a generic localized message; detail stays in the server log.
func (h *LeadHandlers) HandleSubmitLead(w http.ResponseWriter, r *http.Request) {
	var req models.LeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lead, err := h.leadService.SubmitLead(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrLeadValidation) {
			httputil.RespondError(w, http.StatusBadRequest, "이름 또는 연락처가 필요합니다")
			return
		}
		httputil.RespondError(w, http.StatusInternalServerError, "저장 중 오류가 발생했습니다")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.LeadResponse{Success: true, ID: lead.ID})
}
