// internal/service/dispatch_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/waveleap/broadcast-backend/internal/config"
	appErrors "github.com/waveleap/broadcast-backend/internal/errors"
	"github.com/waveleap/broadcast-backend/internal/gateway"
	"github.com/waveleap/broadcast-backend/internal/model"
	"github.com/waveleap/broadcast-backend/internal/phone"
	"github.com/waveleap/broadcast-backend/internal/repository"
)

type DispatchService struct {
	Gateway      gateway.Gateway
	CampaignRepo repository.CampaignRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	DeliveryRepo repository.DeliveryRepositoryInterface
	TemplateRepo repository.TemplateRepositoryInterface
	Billing      *BillingService
	Cfg          config.Config

	// Sleep is swappable in tests; defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Dispatch delivers the approved template to every resolved recipient,
// strictly sequentially to respect the gateway's per-sender rate limit, then
// hands the campaign to billing regardless of outcome.
func (s *DispatchService) Dispatch(campaignID int) error {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return err
	}
	if campaign.Status != model.CampaignSending {
		// duplicate or late job; the sending transition already guarded
		// exactly-once, so there is nothing to do
		log.Println("dispatch skipped, campaign", campaignID, "is", campaign.Status)
		return nil
	}

	template, err := s.TemplateRepo.GetByID(campaign.TemplateID)
	if err != nil {
		return appErrors.NewPersistence("load template", err)
	}
	if template == nil {
		return fmt.Errorf("campaign %d has no template row", campaignID)
	}

	cancelled := false
	for i, recipientID := range campaign.RecipientIDs {
		if i > 0 {
			s.sleep(s.Cfg.RecipientDelay)
		}

		// cancellation is checked between recipients; messages already sent
		// stay sent and stay billed
		fresh, err := s.CampaignRepo.GetByID(campaignID)
		if err != nil {
			return appErrors.NewPersistence("refresh campaign", err)
		}
		if fresh.Status == model.CampaignCancelled {
			cancelled = true
			log.Println("dispatch stopped, campaign cancelled:", campaignID)
			break
		}

		if err := s.deliverOne(campaign, template, int(recipientID)); err != nil {
			return err
		}
	}

	stats, err := s.DeliveryRepo.CountByStatus(campaignID)
	if err != nil {
		return appErrors.NewPersistence("count deliveries", err)
	}
	sent, failed := stats["sent"], stats["failed"]

	finalStatus := model.CampaignCompleted
	var reason model.FailureReason
	switch {
	case cancelled:
		finalStatus = model.CampaignCancelled
	case failed == 0:
		finalStatus = model.CampaignCompleted
	case sent > 0:
		finalStatus = model.CampaignPartiallyCompleted
	default:
		finalStatus = model.CampaignFailed
		reason = model.ReasonAllDeliveriesFailed
	}

	return s.Billing.Reconcile(campaign, sent, finalStatus, reason)
}

// deliverOne tries each candidate address format in order and records exactly
// one DeliveryAttempt for the recipient. Per-recipient failure never aborts
// the rest of the campaign.
func (s *DispatchService) deliverOne(campaign *model.Campaign, template *model.Template, contactID int) error {
	// one attempt row per (campaign, recipient), ever; a resumed dispatch
	// must not re-send to someone already handled
	exists, err := s.DeliveryRepo.Exists(campaign.ID, contactID)
	if err != nil {
		return appErrors.NewPersistence("check delivery attempt", err)
	}
	if exists {
		return nil
	}

	contact, err := s.ContactRepo.GetByID(contactID)
	if err != nil {
		return appErrors.NewPersistence("load contact", err)
	}
	if contact == nil || contact.Deleted {
		return s.recordFailure(campaign, contactID, nil, fmt.Errorf("contact %d no longer available", contactID))
	}

	candidates := phone.Candidates(contact.Phone)
	vars := map[string]string{"name": contact.Name}

	var lastErr error
	for _, candidate := range candidates {
		msgID, err := s.Gateway.SendTemplateMessage(context.Background(), candidate, template.LocalName, vars, campaign.MediaRef)
		if err != nil {
			lastErr = err
			continue
		}
		return s.recordSuccess(campaign, contactID, candidates, candidate, msgID)
	}

	return s.recordFailure(campaign, contactID, candidates,
		appErrors.NewRecipientFormatExhausted(contactID, len(candidates), lastErr))
}

func (s *DispatchService) recordSuccess(campaign *model.Campaign, contactID int, tried []string, chosen, msgID string) error {
	created, err := s.DeliveryRepo.Create(&model.DeliveryAttempt{
		CampaignID:       campaign.ID,
		ContactID:        contactID,
		FormatsTried:     tried,
		ChosenFormat:     chosen,
		GatewayMessageID: msgID,
		Status:           model.DeliverySent,
	})
	if err != nil {
		return appErrors.NewPersistence("record delivery", err)
	}
	if created {
		if err := s.CampaignRepo.IncrementSent(campaign.ID); err != nil {
			return appErrors.NewPersistence("increment sent", err)
		}
	}
	return nil
}

func (s *DispatchService) recordFailure(campaign *model.Campaign, contactID int, tried []string, cause error) error {
	log.Println("delivery failed for contact", contactID, "in campaign", campaign.ID, ":", cause)
	created, err := s.DeliveryRepo.Create(&model.DeliveryAttempt{
		CampaignID:   campaign.ID,
		ContactID:    contactID,
		FormatsTried: tried,
		Status:       model.DeliveryFailed,
		LastError:    cause.Error(),
	})
	if err != nil {
		return appErrors.NewPersistence("record delivery", err)
	}
	if created {
		if err := s.CampaignRepo.IncrementFailed(campaign.ID); err != nil {
			return appErrors.NewPersistence("increment failed", err)
		}
	}
	return nil
}

func (s *DispatchService) sleep(d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}
