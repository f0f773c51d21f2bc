// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/waveleap/broadcast-backend/internal/errors"
	"github.com/waveleap/broadcast-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

// InitiateCampaign validates and starts a bulk send. The response comes back
// as soon as the template is submitted; approval and delivery happen
// asynchronously and are visible via the campaign status endpoints.
func (c *CampaignController) InitiateCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.InitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignService.Initiate(body)
	if err != nil {
		var validation *appErrors.ValidationError
		var noRecipients *appErrors.NoEligibleRecipientsError
		var balance *appErrors.InsufficientBalanceError
		var templateCreate *appErrors.TemplateCreateError

		switch {
		case errors.As(err, &validation), errors.As(err, &noRecipients):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.As(err, &balance):
			http.Error(w, err.Error(), http.StatusPaymentRequired)
		case errors.As(err, &templateCreate):
			// the campaign row exists and is terminal; report it so the
			// caller can inspect the failure
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"campaign_id": campaign.ID,
				"status":      campaign.Status,
				"error":       err.Error(),
			})
		default:
			log.Println("initiate failed:", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign_id": campaign.ID,
		"status":      campaign.Status,
	})
}

func (c *CampaignController) CancelCampaign(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignService.Cancel(id)
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign_id": campaign.ID,
		"status":      campaign.Status,
	})
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	campaigns, pagination, err := c.CampaignService.ListCampaigns(page, pageSize, status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}
