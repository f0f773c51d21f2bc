// internal/service/campaign_service.go
package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/waveleap/broadcast-backend/internal/config"
	appErrors "github.com/waveleap/broadcast-backend/internal/errors"
	"github.com/waveleap/broadcast-backend/internal/model"
	"github.com/waveleap/broadcast-backend/internal/phone"
	"github.com/waveleap/broadcast-backend/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	BillingRepo  repository.BillingRepositoryInterface
	DeliveryRepo repository.DeliveryRepositoryInterface
	Provisioner  *TemplateService
	Cfg          config.Config
}

// InitiateRequest is the inbound send request.
type InitiateRequest struct {
	OwnerID      int     `json:"owner_id"`
	CampaignName string  `json:"campaign_name"`
	Message      string  `json:"message"`
	MediaRef     string  `json:"media_ref,omitempty"`
	MediaType    string  `json:"media_type,omitempty"`
	RecipientIDs []int64 `json:"recipient_ids"`
}

type CampaignDetails struct {
	ID           int                  `json:"id"`
	Name         string               `json:"name"`
	Channel      string               `json:"channel"`
	Status       model.CampaignStatus `json:"status"`
	FailReason   model.FailureReason  `json:"fail_reason,omitempty"`
	ReservedCost decimal.Decimal      `json:"reserved_cost"`
	ActualCost   decimal.Decimal      `json:"actual_cost"`
	CreatedAt    time.Time            `json:"created_at"`
	StartedAt    *time.Time           `json:"started_at,omitempty"`
	CompletedAt  *time.Time           `json:"completed_at,omitempty"`
	Stats        map[string]int       `json:"stats"`
}

// Initiate validates a send request, reserves the estimated cost against the
// owner's balance, creates the campaign, and hands off to the template
// provisioner. No campaign row exists unless validation, recipient resolution,
// and the balance check all pass.
func (s *CampaignService) Initiate(req InitiateRequest) (*model.Campaign, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, appErrors.NewValidation("message", "must not be empty")
	}
	if len(req.RecipientIDs) == 0 {
		return nil, appErrors.NewValidation("recipient_ids", "must not be empty")
	}

	resolved, err := s.ResolveRecipients(req.OwnerID, req.RecipientIDs)
	if err != nil {
		return nil, err
	}

	reserved := s.estimateCost(len(resolved), req.MediaRef != "")

	balance, err := s.BillingRepo.GetBalance(req.OwnerID)
	if err != nil {
		return nil, appErrors.NewPersistence("read balance", err)
	}
	if balance.LessThan(reserved) {
		return nil, appErrors.NewInsufficientBalance(req.OwnerID, balance.String(), reserved.String())
	}

	ids := make(pq.Int64Array, len(resolved))
	for i, c := range resolved {
		ids[i] = int64(c.ID)
	}

	campaign := &model.Campaign{
		OwnerID:      req.OwnerID,
		Name:         req.CampaignName,
		Channel:      "whatsapp",
		MessageBody:  req.Message,
		MediaRef:     req.MediaRef,
		MediaType:    req.MediaType,
		RecipientIDs: ids,
		Status:       model.CampaignCreatingTemplate,
		ReservedCost: reserved,
	}
	if err := s.CampaignRepo.Create(campaign); err != nil {
		return nil, appErrors.NewPersistence("create campaign", err)
	}

	// Template submission is a single fast network call, so it runs inside
	// the initiating request. The approval wait that follows does not.
	if err := s.Provisioner.Provision(campaign); err != nil {
		return campaign, err
	}

	return campaign, nil
}

// ResolveRecipients filters the requested ids down to contacts owned by the
// caller that are not soft-deleted and whose phone normalizes to at least one
// plausible candidate.
func (s *CampaignService) ResolveRecipients(ownerID int, ids []int64) ([]model.Contact, error) {
	contacts, err := s.ContactRepo.FindAddressable(ownerID, ids)
	if err != nil {
		return nil, appErrors.NewPersistence("resolve recipients", err)
	}

	eligible := []model.Contact{}
	for _, c := range contacts {
		if phone.IsPlausible(c.Phone) {
			eligible = append(eligible, c)
		}
	}

	if len(eligible) == 0 {
		return nil, appErrors.NewNoEligibleRecipients(len(ids))
	}
	return eligible, nil
}

func (s *CampaignService) estimateCost(recipients int, hasMedia bool) decimal.Decimal {
	n := decimal.NewFromInt(int64(recipients))
	cost := s.Cfg.UnitRate.Mul(n)
	if hasMedia {
		// Reservation assumes every recipient receives the media surcharge;
		// the actual bill later counts only successful sends.
		cost = cost.Add(s.Cfg.MediaRate.Mul(n))
	}
	return cost
}

// Cancel moves a non-terminal campaign to cancelled. The dispatcher checks for
// this between recipients, the approval scheduler before polling an entry.
func (s *CampaignService) Cancel(campaignID int) (*model.Campaign, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status.IsTerminal() {
		return nil, fmt.Errorf("campaign %d is already %s", campaignID, campaign.Status)
	}

	ok, err := s.CampaignRepo.Transition(campaignID, campaign.Status, model.CampaignCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		// raced with a lifecycle transition; report the fresh state
		return s.CampaignRepo.GetByID(campaignID)
	}

	log.Println("Campaign cancelled:", campaignID)
	return s.CampaignRepo.GetByID(campaignID)
}

func (s *CampaignService) GetCampaignDetails(id int) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(id)
}

func (s *CampaignService) GetCampaignDetailsWithStats(campaignID int) (*CampaignDetails, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	stats, err := s.DeliveryRepo.CountByStatus(campaignID)
	if err != nil {
		return nil, err
	}
	stats["total"] = len(campaign.RecipientIDs)

	return &CampaignDetails{
		ID:           campaign.ID,
		Name:         campaign.Name,
		Channel:      campaign.Channel,
		Status:       campaign.Status,
		FailReason:   campaign.FailReason,
		ReservedCost: campaign.ReservedCost,
		ActualCost:   campaign.ActualCost,
		CreatedAt:    campaign.CreatedAt,
		StartedAt:    campaign.StartedAt,
		CompletedAt:  campaign.CompletedAt,
		Stats:        stats,
	}, nil
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(page, pageSize int, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

func (s *CampaignService) ListDeliveries(campaignID int) ([]*model.DeliveryAttempt, error) {
	if _, err := s.CampaignRepo.GetByID(campaignID); err != nil {
		return nil, err
	}
	return s.DeliveryRepo.ListByCampaign(campaignID)
}
