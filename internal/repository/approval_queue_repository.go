package repository

import (
	"database/sql"
	"time"

	"github.com/waveleap/broadcast-backend/internal/model"
)

type ApprovalQueueRepositoryInterface interface {
	Enqueue(e *model.ApprovalEntry) error
	// ClaimDue atomically claims up to limit entries whose next_check_at has
	// passed, advancing next_check_at by one lease so an overlapping scheduler
	// run cannot pick up the same entries.
	ClaimDue(now time.Time, limit, maxChecks int, lease time.Duration) ([]*model.ApprovalEntry, error)
	Reschedule(id int, nextCheckAt time.Time, intervalMs int64, checkCount int, lastError string) error
	Remove(id int) error
	// RemoveStale garbage-collects entries past the retention window or at the
	// check cap. Returns how many rows went away.
	RemoveStale(olderThan time.Time, maxChecks int) (int, error)
}

type ApprovalQueueRepository struct {
	DB *sql.DB
}

func (r *ApprovalQueueRepository) Enqueue(e *model.ApprovalEntry) error {
	e.CreatedAt = time.Now()
	query := `
        INSERT INTO approval_entries (template_id, campaign_id, next_check_at, check_interval_ms, check_count, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (template_id) DO NOTHING
        RETURNING id
    `
	err := r.DB.QueryRow(query, e.TemplateID, e.CampaignID, e.NextCheckAt, e.CheckIntervalMs, e.CheckCount, e.CreatedAt).Scan(&e.ID)
	if err == sql.ErrNoRows {
		// an entry for this template already exists; at most one is live
		return nil
	}
	return err
}

func (r *ApprovalQueueRepository) ClaimDue(now time.Time, limit, maxChecks int, lease time.Duration) ([]*model.ApprovalEntry, error) {
	query := `
        UPDATE approval_entries
        SET next_check_at = $1
        WHERE id IN (
            SELECT id FROM approval_entries
            WHERE next_check_at <= $2 AND check_count < $3
            ORDER BY next_check_at
            LIMIT $4
            FOR UPDATE SKIP LOCKED
        )
        RETURNING id, template_id, campaign_id, next_check_at, check_interval_ms, check_count, last_error, created_at
    `
	rows, err := r.DB.Query(query, now.Add(lease), now, maxChecks, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*model.ApprovalEntry{}
	for rows.Next() {
		var e model.ApprovalEntry
		var lastError sql.NullString
		if err := rows.Scan(&e.ID, &e.TemplateID, &e.CampaignID, &e.NextCheckAt,
			&e.CheckIntervalMs, &e.CheckCount, &lastError, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.LastError = lastError.String
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *ApprovalQueueRepository) Reschedule(id int, nextCheckAt time.Time, intervalMs int64, checkCount int, lastError string) error {
	query := `
        UPDATE approval_entries
        SET next_check_at=$1, check_interval_ms=$2, check_count=$3, last_error=$4
        WHERE id=$5
    `
	_, err := r.DB.Exec(query, nextCheckAt, intervalMs, checkCount, lastError, id)
	return err
}

func (r *ApprovalQueueRepository) Remove(id int) error {
	_, err := r.DB.Exec(`DELETE FROM approval_entries WHERE id=$1`, id)
	return err
}

func (r *ApprovalQueueRepository) RemoveStale(olderThan time.Time, maxChecks int) (int, error) {
	res, err := r.DB.Exec(
		`DELETE FROM approval_entries WHERE created_at < $1 OR check_count >= $2`,
		olderThan, maxChecks,
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

var _ ApprovalQueueRepositoryInterface = (*ApprovalQueueRepository)(nil)
