// internal/service/billing_service.go
package service

import (
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/waveleap/broadcast-backend/internal/config"
	appErrors "github.com/waveleap/broadcast-backend/internal/errors"
	"github.com/waveleap/broadcast-backend/internal/model"
	"github.com/waveleap/broadcast-backend/internal/repository"
)

type BillingService struct {
	BillingRepo  repository.BillingRepositoryInterface
	CampaignRepo repository.CampaignRepositoryInterface
	Cfg          config.Config
}

// Reconcile computes the actual cost from real delivery outcomes, debits the
// owner, writes the ledger row, and finalizes the campaign. Messages are
// already out, so a short balance never blocks finalizing; the debit clamps
// and the anomaly is logged.
func (s *BillingService) Reconcile(campaign *model.Campaign, sentCount int, finalStatus model.CampaignStatus, reason model.FailureReason) error {
	actual := s.ActualCost(sentCount, campaign.HasMedia())

	before, after, debited, err := s.BillingRepo.Debit(campaign.OwnerID, actual)
	if err != nil {
		return appErrors.NewPersistence("debit balance", err)
	}
	if debited.LessThan(actual) {
		log.Printf("⚠️ owner %d balance short at reconcile: wanted %s, debited %s (campaign %d)\n",
			campaign.OwnerID, actual.String(), debited.String(), campaign.ID)
	}

	if err := s.BillingRepo.InsertTransaction(&model.Transaction{
		OwnerID:       campaign.OwnerID,
		CampaignID:    campaign.ID,
		Amount:        debited,
		BalanceBefore: before,
		BalanceAfter:  after,
	}); err != nil {
		return appErrors.NewPersistence("write transaction", err)
	}

	if err := s.CampaignRepo.Finalize(campaign.ID, finalStatus, reason, actual, time.Now()); err != nil {
		return appErrors.NewPersistence("finalize campaign", err)
	}

	log.Println("Campaign finalized:", campaign.ID, "status:", finalStatus, "billed:", actual.String())
	return nil
}

// ActualCost bills only successful sends; the media surcharge likewise applies
// per delivered message, not per resolved recipient.
func (s *BillingService) ActualCost(sentCount int, hasMedia bool) decimal.Decimal {
	n := decimal.NewFromInt(int64(sentCount))
	cost := s.Cfg.UnitRate.Mul(n)
	if hasMedia {
		cost = cost.Add(s.Cfg.MediaRate.Mul(n))
	}
	return cost
}
