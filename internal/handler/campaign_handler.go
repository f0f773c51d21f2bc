// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/waveleap/broadcast-backend/internal/errors"
	"github.com/waveleap/broadcast-backend/internal/service"
)

// CampaignHandler holds the dependencies for campaign read endpoints.
type CampaignHandler struct {
	Service *service.CampaignService
}

// GetCampaignWithStats returns the campaign plus live sent/failed counts.
// Always reflects the latest committed state, including mid-dispatch.
func (h *CampaignHandler) GetCampaignWithStats(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	details, err := h.Service.GetCampaignDetailsWithStats(id)
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(details)
}

// ListDeliveries returns the per-recipient delivery attempt log.
func (h *CampaignHandler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	attempts, err := h.Service.ListDeliveries(id)
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign_id": id,
		"deliveries":  attempts,
	})
}
