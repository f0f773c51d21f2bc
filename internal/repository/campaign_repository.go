package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	appErrors "github.com/waveleap/broadcast-backend/internal/errors"
	"github.com/waveleap/broadcast-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id int) (*model.Campaign, error)
	ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error)

	// Status transitions. Each one is a conditional update: it succeeds only
	// if the row is still in the expected source state, so two concurrent
	// workers can never both advance the same campaign.
	Transition(campaignID int, from, to model.CampaignStatus) (bool, error)
	MarkFailed(campaignID int, from model.CampaignStatus, reason model.FailureReason) (bool, error)
	MarkSending(campaignID int, startedAt time.Time) (bool, error)

	SetTemplate(campaignID int, templateID string) error
	IncrementSent(campaignID int) error
	IncrementFailed(campaignID int) error
	Finalize(campaignID int, status model.CampaignStatus, reason model.FailureReason, actualCost decimal.Decimal, completedAt time.Time) error
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, owner_id, name, channel, message_body, media_ref, media_type,
	recipient_ids, status, fail_reason, reserved_cost, actual_cost,
	sent_count, failed_count, template_id, created_at, started_at, completed_at`

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignCreatingTemplate
	}
	query := `
        INSERT INTO campaigns
            (owner_id, name, channel, message_body, media_ref, media_type,
             recipient_ids, status, reserved_cost, actual_cost, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		c.OwnerID, c.Name, c.Channel, c.MessageBody, c.MediaRef, c.MediaType,
		c.RecipientIDs, c.Status, c.ReservedCost, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	argsCount := []interface{}{}
	if status != "" {
		countQuery += " AND status=$1"
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

func (r *CampaignRepository) Transition(campaignID int, from, to model.CampaignStatus) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("illegal campaign transition %s -> %s", from, to)
	}
	res, err := r.DB.Exec(
		`UPDATE campaigns SET status=$1 WHERE id=$2 AND status=$3`,
		to, campaignID, from,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *CampaignRepository) MarkFailed(campaignID int, from model.CampaignStatus, reason model.FailureReason) (bool, error) {
	res, err := r.DB.Exec(
		`UPDATE campaigns SET status=$1, fail_reason=$2, completed_at=NOW() WHERE id=$3 AND status=$4`,
		model.CampaignFailed, reason, campaignID, from,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *CampaignRepository) MarkSending(campaignID int, startedAt time.Time) (bool, error) {
	res, err := r.DB.Exec(
		`UPDATE campaigns SET status=$1, started_at=$2 WHERE id=$3 AND status=$4`,
		model.CampaignSending, startedAt, campaignID, model.CampaignWaitingApproval,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *CampaignRepository) SetTemplate(campaignID int, templateID string) error {
	_, err := r.DB.Exec(`UPDATE campaigns SET template_id=$1 WHERE id=$2`, templateID, campaignID)
	return err
}

func (r *CampaignRepository) IncrementSent(campaignID int) error {
	_, err := r.DB.Exec(`UPDATE campaigns SET sent_count=sent_count+1 WHERE id=$1`, campaignID)
	return err
}

func (r *CampaignRepository) IncrementFailed(campaignID int) error {
	_, err := r.DB.Exec(`UPDATE campaigns SET failed_count=failed_count+1 WHERE id=$1`, campaignID)
	return err
}

func (r *CampaignRepository) Finalize(campaignID int, status model.CampaignStatus, reason model.FailureReason, actualCost decimal.Decimal, completedAt time.Time) error {
	_, err := r.DB.Exec(
		`UPDATE campaigns SET status=$1, fail_reason=$2, actual_cost=$3, completed_at=$4 WHERE id=$5`,
		status, reason, actualCost, completedAt, campaignID,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	var mediaRef, mediaType, failReason, templateID sql.NullString
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Channel, &c.MessageBody, &mediaRef, &mediaType,
		&c.RecipientIDs, &c.Status, &failReason, &c.ReservedCost, &c.ActualCost,
		&c.SentCount, &c.FailedCount, &templateID, &c.CreatedAt, &c.StartedAt, &c.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	c.MediaRef = mediaRef.String
	c.MediaType = mediaType.String
	c.FailReason = model.FailureReason(failReason.String)
	c.TemplateID = templateID.String
	return &c, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
