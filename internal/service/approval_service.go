// internal/service/approval_service.go
package service

import (
	"context"
	"log"
	"time"

	"github.com/waveleap/broadcast-backend/internal/config"
	"github.com/waveleap/broadcast-backend/internal/gateway"
	"github.com/waveleap/broadcast-backend/internal/model"
	"github.com/waveleap/broadcast-backend/internal/queue"
	"github.com/waveleap/broadcast-backend/internal/repository"
)

// claimLease is how far a claim pushes next_check_at before the entry is
// processed. Long enough to cover the status call timeout; a crashed run's
// entries become due again afterwards.
const claimLease = 2 * time.Minute

type ApprovalService struct {
	Gateway      gateway.Gateway
	QueueRepo    repository.ApprovalQueueRepositoryInterface
	TemplateRepo repository.TemplateRepositoryInterface
	CampaignRepo repository.CampaignRepositoryInterface
	Dispatch     queue.Queue
	Cfg          config.Config

	// Sleep is swappable in tests; defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Run processes one batch of due approval entries. Safe under overlapping
// invocations: ClaimDue advances next_check_at atomically, so two concurrent
// runs never poll the same entry.
func (s *ApprovalService) Run(batchLimit int) error {
	now := time.Now()

	entries, err := s.QueueRepo.ClaimDue(now, batchLimit, s.Cfg.MaxChecks, claimLease)
	if err != nil {
		return err
	}

	for i, entry := range entries {
		if i > 0 {
			s.sleep(s.Cfg.EntryDelay) // gateway rate limit
		}
		s.processEntry(entry)
	}

	// Best-effort GC of stale entries each run.
	retention := time.Duration(s.Cfg.RetentionDays) * 24 * time.Hour
	if n, err := s.QueueRepo.RemoveStale(now.Add(-retention), s.Cfg.MaxChecks); err != nil {
		log.Println("approval GC failed:", err)
	} else if n > 0 {
		log.Println("approval GC removed", n, "stale entries")
	}

	return nil
}

func (s *ApprovalService) processEntry(entry *model.ApprovalEntry) {
	campaign, err := s.CampaignRepo.GetByID(entry.CampaignID)
	if err != nil {
		log.Println("approval poll: campaign lookup failed:", err)
		return
	}
	if campaign.Status != model.CampaignWaitingApproval {
		// cancelled or otherwise finished while waiting; drop the entry and
		// close out the pending template
		s.abandon(entry)
		return
	}

	state, err := s.Gateway.GetTemplateStatus(context.Background(), entry.TemplateID)
	if err != nil {
		s.retrySameInterval(entry, err)
		return
	}

	switch state {
	case gateway.StateApproved:
		s.approve(entry)
	case gateway.StateRejected:
		s.reject(entry)
	default:
		s.stillPending(entry)
	}
}

func (s *ApprovalService) approve(entry *model.ApprovalEntry) {
	now := time.Now()
	if err := s.TemplateRepo.MarkDecided(entry.TemplateID, model.TemplateApproved, now); err != nil {
		log.Println("approval poll: mark approved failed:", err)
		return
	}
	if err := s.QueueRepo.Remove(entry.ID); err != nil {
		log.Println("approval poll: remove entry failed:", err)
		return
	}

	// The conditional waiting_approval -> sending update is the exactly-once
	// guard for the dispatch job.
	ok, err := s.CampaignRepo.MarkSending(entry.CampaignID, now)
	if err != nil {
		log.Println("approval poll: mark sending failed:", err)
		return
	}
	if !ok {
		return
	}

	if err := s.Dispatch.Publish(queue.TopicDispatch, entry.CampaignID); err != nil {
		log.Println("approval poll: dispatch publish failed for campaign", entry.CampaignID, ":", err)
		return
	}
	log.Println("✅ Template approved, campaign queued for dispatch:", entry.CampaignID)
}

func (s *ApprovalService) reject(entry *model.ApprovalEntry) {
	now := time.Now()
	if err := s.TemplateRepo.MarkDecided(entry.TemplateID, model.TemplateRejected, now); err != nil {
		log.Println("approval poll: mark rejected failed:", err)
		return
	}
	if err := s.QueueRepo.Remove(entry.ID); err != nil {
		log.Println("approval poll: remove entry failed:", err)
		return
	}
	if _, err := s.CampaignRepo.MarkFailed(entry.CampaignID, model.CampaignWaitingApproval, model.ReasonTemplateRejected); err != nil {
		log.Println("approval poll: mark failed failed:", err)
	}
	log.Println("Template rejected, campaign failed:", entry.CampaignID)
}

func (s *ApprovalService) stillPending(entry *model.ApprovalEntry) {
	newCount := entry.CheckCount + 1
	if err := s.TemplateRepo.IncrementCheckCount(entry.TemplateID); err != nil {
		log.Println("approval poll: increment check count failed:", err)
	}

	if newCount >= s.Cfg.MaxChecks {
		s.timeout(entry)
		return
	}

	nextInterval := entry.CheckIntervalMs * 3 / 2
	if nextInterval > s.Cfg.MaxIntervalMs {
		nextInterval = s.Cfg.MaxIntervalMs
	}

	next := time.Now().Add(time.Duration(nextInterval) * time.Millisecond)
	if err := s.QueueRepo.Reschedule(entry.ID, next, nextInterval, newCount, ""); err != nil {
		log.Println("approval poll: reschedule failed:", err)
	}
}

// retrySameInterval handles a gateway/network error: no backoff growth, but
// the attempt still counts toward the cap so total retries stay bounded.
func (s *ApprovalService) retrySameInterval(entry *model.ApprovalEntry, cause error) {
	newCount := entry.CheckCount + 1
	if newCount >= s.Cfg.MaxChecks {
		s.timeout(entry)
		return
	}

	next := time.Now().Add(time.Duration(entry.CheckIntervalMs) * time.Millisecond)
	if err := s.QueueRepo.Reschedule(entry.ID, next, entry.CheckIntervalMs, newCount, cause.Error()); err != nil {
		log.Println("approval poll: reschedule after error failed:", err)
	}
}

func (s *ApprovalService) timeout(entry *model.ApprovalEntry) {
	now := time.Now()
	if err := s.TemplateRepo.MarkDecided(entry.TemplateID, model.TemplateAbandoned, now); err != nil {
		log.Println("approval poll: mark abandoned failed:", err)
	}
	if err := s.QueueRepo.Remove(entry.ID); err != nil {
		log.Println("approval poll: remove entry failed:", err)
		return
	}
	if _, err := s.CampaignRepo.MarkFailed(entry.CampaignID, model.CampaignWaitingApproval, model.ReasonApprovalTimeout); err != nil {
		log.Println("approval poll: mark failed failed:", err)
	}
	log.Println("Approval wait exhausted, campaign failed:", entry.CampaignID)
}

// abandon drops an entry whose campaign is no longer waiting.
func (s *ApprovalService) abandon(entry *model.ApprovalEntry) {
	if err := s.TemplateRepo.MarkDecided(entry.TemplateID, model.TemplateAbandoned, time.Now()); err != nil {
		log.Println("approval poll: mark abandoned failed:", err)
	}
	if err := s.QueueRepo.Remove(entry.ID); err != nil {
		log.Println("approval poll: remove entry failed:", err)
	}
}

func (s *ApprovalService) sleep(d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}
