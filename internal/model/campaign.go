// internal/model/campaign.go
package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// CampaignStatus is the campaign lifecycle state.
type CampaignStatus string

const (
	CampaignCreatingTemplate   CampaignStatus = "creating_template"
	CampaignWaitingApproval    CampaignStatus = "waiting_approval"
	CampaignSending            CampaignStatus = "sending"
	CampaignCompleted          CampaignStatus = "completed"
	CampaignPartiallyCompleted CampaignStatus = "partially_completed"
	CampaignFailed             CampaignStatus = "failed"
	CampaignCancelled          CampaignStatus = "cancelled"
)

// FailureReason is stored alongside a failed campaign.
type FailureReason string

const (
	ReasonTemplateCreateError FailureReason = "template_create_error"
	ReasonTemplateRejected    FailureReason = "template_rejected"
	ReasonApprovalTimeout     FailureReason = "approval_timeout"
	ReasonAllDeliveriesFailed FailureReason = "all_deliveries_failed"
)

// campaignTransitions is the exhaustive transition table. Terminal states have no entry.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignCreatingTemplate: {CampaignWaitingApproval, CampaignFailed, CampaignCancelled},
	CampaignWaitingApproval:  {CampaignSending, CampaignFailed, CampaignCancelled},
	CampaignSending:          {CampaignCompleted, CampaignPartiallyCompleted, CampaignFailed, CampaignCancelled},
}

// CanTransition reports whether moving from s to next is a legal lifecycle step.
func (s CampaignStatus) CanTransition(next CampaignStatus) bool {
	for _, allowed := range campaignTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status change is allowed.
func (s CampaignStatus) IsTerminal() bool {
	return len(campaignTransitions[s]) == 0
}

type Campaign struct {
	ID           int             `db:"id" json:"id"`
	OwnerID      int             `db:"owner_id" json:"owner_id"`
	Name         string          `db:"name" json:"name"`
	Channel      string          `db:"channel" json:"channel"`
	MessageBody  string          `db:"message_body" json:"message_body"`
	MediaRef     string          `db:"media_ref" json:"media_ref,omitempty"`
	MediaType    string          `db:"media_type" json:"media_type,omitempty"`
	RecipientIDs pq.Int64Array   `db:"recipient_ids" json:"recipient_ids"`
	Status       CampaignStatus  `db:"status" json:"status"`
	FailReason   FailureReason   `db:"fail_reason" json:"fail_reason,omitempty"`
	ReservedCost decimal.Decimal `db:"reserved_cost" json:"reserved_cost"`
	ActualCost   decimal.Decimal `db:"actual_cost" json:"actual_cost"`
	SentCount    int             `db:"sent_count" json:"sent_count"`
	FailedCount  int             `db:"failed_count" json:"failed_count"`
	TemplateID   string          `db:"template_id" json:"template_id,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	StartedAt    *time.Time      `db:"started_at" json:"started_at,omitempty"`
	CompletedAt  *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}

// HasMedia reports whether the campaign carries a media attachment.
func (c *Campaign) HasMedia() bool {
	return c.MediaRef != ""
}
