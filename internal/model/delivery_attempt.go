// internal/model/delivery_attempt.go
package model

import (
	"time"

	"github.com/lib/pq"
)

// DeliveryStatus is the outcome of one recipient's delivery.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// DeliveryAttempt records the outcome for one recipient in one campaign.
// Exactly one row exists per (campaign_id, contact_id) once the dispatcher has
// finished that recipient.
type DeliveryAttempt struct {
	ID               int            `db:"id" json:"id"`
	CampaignID       int            `db:"campaign_id" json:"campaign_id"`
	ContactID        int            `db:"contact_id" json:"contact_id"`
	FormatsTried     pq.StringArray `db:"formats_tried" json:"formats_tried"`
	ChosenFormat     string         `db:"chosen_format" json:"chosen_format,omitempty"`
	GatewayMessageID string         `db:"gateway_message_id" json:"gateway_message_id,omitempty"`
	Status           DeliveryStatus `db:"status" json:"status"`
	LastError        string         `db:"last_error" json:"last_error,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}
