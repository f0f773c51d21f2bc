package repository

import (
	"database/sql"
	"time"

	"github.com/waveleap/broadcast-backend/internal/model"
)

type TemplateRepositoryInterface interface {
	Create(t *model.Template) error
	GetByID(id string) (*model.Template, error)
	MarkDecided(id string, status model.TemplateStatus, decidedAt time.Time) error
	IncrementCheckCount(id string) error
}

type TemplateRepository struct {
	DB *sql.DB
}

func (r *TemplateRepository) Create(t *model.Template) error {
	t.CreatedAt = time.Now()
	if t.Status == "" {
		t.Status = model.TemplatePending
	}
	query := `
        INSERT INTO templates (id, campaign_id, local_name, body_text, media_ref, status, check_count, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, 0, $7)
    `
	_, err := r.DB.Exec(query, t.ID, t.CampaignID, t.LocalName, t.BodyText, t.MediaRef, t.Status, t.CreatedAt)
	return err
}

func (r *TemplateRepository) GetByID(id string) (*model.Template, error) {
	query := `
        SELECT id, campaign_id, local_name, body_text, media_ref, status, check_count, created_at, decided_at
        FROM templates WHERE id=$1
    `
	var t model.Template
	var mediaRef sql.NullString
	err := r.DB.QueryRow(query, id).Scan(
		&t.ID, &t.CampaignID, &t.LocalName, &t.BodyText, &mediaRef,
		&t.Status, &t.CheckCount, &t.CreatedAt, &t.DecidedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t.MediaRef = mediaRef.String
	return &t, nil
}

// MarkDecided records a terminal moderation outcome. Only a pending template
// can be decided, so a late duplicate poll is a no-op.
func (r *TemplateRepository) MarkDecided(id string, status model.TemplateStatus, decidedAt time.Time) error {
	_, err := r.DB.Exec(
		`UPDATE templates SET status=$1, decided_at=$2 WHERE id=$3 AND status=$4`,
		status, decidedAt, id, model.TemplatePending,
	)
	return err
}

func (r *TemplateRepository) IncrementCheckCount(id string) error {
	_, err := r.DB.Exec(`UPDATE templates SET check_count=check_count+1 WHERE id=$1`, id)
	return err
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
