package repository

import (
	"database/sql"
	"time"

	"github.com/waveleap/broadcast-backend/internal/model"
)

type DeliveryRepositoryInterface interface {
	// Create inserts the attempt unless one already exists for the same
	// (campaign, contact) pair. Reports whether a row was written.
	Create(a *model.DeliveryAttempt) (bool, error)
	Exists(campaignID, contactID int) (bool, error)
	ListByCampaign(campaignID int) ([]*model.DeliveryAttempt, error)
	CountByStatus(campaignID int) (map[string]int, error)
}

type DeliveryRepository struct {
	DB *sql.DB
}

func (r *DeliveryRepository) Create(a *model.DeliveryAttempt) (bool, error) {
	a.CreatedAt = time.Now()
	query := `
        INSERT INTO delivery_attempts
            (campaign_id, contact_id, formats_tried, chosen_format, gateway_message_id, status, last_error, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (campaign_id, contact_id) DO NOTHING
        RETURNING id
    `
	err := r.DB.QueryRow(query,
		a.CampaignID, a.ContactID, a.FormatsTried, a.ChosenFormat,
		a.GatewayMessageID, a.Status, a.LastError, a.CreatedAt,
	).Scan(&a.ID)
	if err == sql.ErrNoRows {
		return false, nil // attempt already recorded for this recipient
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *DeliveryRepository) Exists(campaignID, contactID int) (bool, error) {
	var tmp int
	err := r.DB.QueryRow(
		`SELECT 1 FROM delivery_attempts WHERE campaign_id=$1 AND contact_id=$2 LIMIT 1`,
		campaignID, contactID,
	).Scan(&tmp)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *DeliveryRepository) ListByCampaign(campaignID int) ([]*model.DeliveryAttempt, error) {
	query := `
        SELECT id, campaign_id, contact_id, formats_tried, chosen_format, gateway_message_id, status, last_error, created_at
        FROM delivery_attempts
        WHERE campaign_id=$1
        ORDER BY id
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := []*model.DeliveryAttempt{}
	for rows.Next() {
		var a model.DeliveryAttempt
		var chosen, msgID, lastErr sql.NullString
		if err := rows.Scan(&a.ID, &a.CampaignID, &a.ContactID, &a.FormatsTried,
			&chosen, &msgID, &a.Status, &lastErr, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.ChosenFormat = chosen.String
		a.GatewayMessageID = msgID.String
		a.LastError = lastErr.String
		attempts = append(attempts, &a)
	}
	return attempts, rows.Err()
}

func (r *DeliveryRepository) CountByStatus(campaignID int) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM delivery_attempts WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"sent": 0, "failed": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

var _ DeliveryRepositoryInterface = (*DeliveryRepository)(nil)
