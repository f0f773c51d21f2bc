// internal/model/template.go
package model

import "time"

// TemplateStatus is the gateway moderation outcome for a message template.
type TemplateStatus string

const (
	TemplatePending  TemplateStatus = "pending"
	TemplateApproved TemplateStatus = "approved"
	TemplateRejected TemplateStatus = "rejected"
	// TemplateAbandoned marks templates whose approval wait hit the check cap,
	// so no pending row outlives its queue entry.
	TemplateAbandoned TemplateStatus = "abandoned"
)

// IsDecided reports whether the gateway reached a terminal moderation outcome.
func (s TemplateStatus) IsDecided() bool {
	return s == TemplateApproved || s == TemplateRejected || s == TemplateAbandoned
}

// Template is one gateway-registered message template, 1:1 with a campaign's
// active attempt.
type Template struct {
	ID         string         `db:"id" json:"id"` // gateway-assigned
	CampaignID int            `db:"campaign_id" json:"campaign_id"`
	LocalName  string         `db:"local_name" json:"local_name"`
	BodyText   string         `db:"body_text" json:"body_text"`
	MediaRef   string         `db:"media_ref" json:"media_ref,omitempty"`
	Status     TemplateStatus `db:"status" json:"status"`
	CheckCount int            `db:"check_count" json:"check_count"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	DecidedAt  *time.Time     `db:"decided_at" json:"decided_at,omitempty"`
}
