package repository

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/waveleap/broadcast-backend/internal/model"
)

// ContactRepositoryInterface defines methods used by recipient resolution.
type ContactRepositoryInterface interface {
	// FindAddressable returns the owner's contacts among ids that are not
	// soft-deleted and carry a non-empty phone. Plausibility of the phone is
	// checked by the caller, not in SQL.
	FindAddressable(ownerID int, ids []int64) ([]model.Contact, error)
	GetByID(id int) (*model.Contact, error)
}

type ContactRepository struct {
	DB *sql.DB
}

func (r *ContactRepository) FindAddressable(ownerID int, ids []int64) ([]model.Contact, error) {
	query := `
        SELECT id, owner_id, name, phone, deleted
        FROM contacts
        WHERE owner_id = $1 AND id = ANY($2) AND deleted = FALSE AND phone <> ''
        ORDER BY id
    `
	rows, err := r.DB.Query(query, ownerID, pq.Int64Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.Deleted); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *ContactRepository) GetByID(id int) (*model.Contact, error) {
	query := `SELECT id, owner_id, name, phone, deleted FROM contacts WHERE id = $1`
	var c model.Contact
	if err := r.DB.QueryRow(query, id).Scan(&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.Deleted); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &c, nil
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
