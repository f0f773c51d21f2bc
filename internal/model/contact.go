// internal/model/contact.go
package model

// Contact is an addressable entry in the owner's contact store.
type Contact struct {
	ID      int    `db:"id" json:"id"`
	OwnerID int    `db:"owner_id" json:"owner_id"`
	Name    string `db:"name" json:"name"`
	Phone   string `db:"phone" json:"phone"`
	Deleted bool   `db:"deleted" json:"deleted"`
}
