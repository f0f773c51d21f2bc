// internal/model/approval_entry.go
package model

import "time"

// ApprovalEntry is a pending poll task for one template's moderation outcome.
// At most one live entry exists per template; it is removed exactly once, when
// the template reaches a terminal status or the check-count cap is exceeded.
type ApprovalEntry struct {
	ID              int       `db:"id" json:"id"`
	TemplateID      string    `db:"template_id" json:"template_id"`
	CampaignID      int       `db:"campaign_id" json:"campaign_id"`
	NextCheckAt     time.Time `db:"next_check_at" json:"next_check_at"`
	CheckIntervalMs int64     `db:"check_interval_ms" json:"check_interval_ms"`
	CheckCount      int       `db:"check_count" json:"check_count"`
	LastError       string    `db:"last_error" json:"last_error,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
