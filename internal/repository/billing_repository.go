package repository

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/waveleap/broadcast-backend/internal/model"
)

type BillingRepositoryInterface interface {
	GetBalance(ownerID int) (decimal.Decimal, error)
	// Debit atomically subtracts amount from the owner's balance, clamping to
	// the available balance. Returns balance before, balance after, and the
	// amount actually debited.
	Debit(ownerID int, amount decimal.Decimal) (before, after, debited decimal.Decimal, err error)
	InsertTransaction(t *model.Transaction) error
}

type BillingRepository struct {
	DB *sql.DB
}

func (r *BillingRepository) GetBalance(ownerID int) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.DB.QueryRow(`SELECT balance FROM accounts WHERE owner_id=$1`, ownerID).Scan(&balance)
	return balance, err
}

func (r *BillingRepository) Debit(ownerID int, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	// Single statement so concurrent campaigns for one owner cannot lose
	// updates. LEAST clamps the debit to the available balance.
	query := `
        WITH prev AS (
            SELECT balance FROM accounts WHERE owner_id = $1 FOR UPDATE
        )
        UPDATE accounts
        SET balance = accounts.balance - LEAST($2::numeric, accounts.balance)
        FROM prev
        WHERE accounts.owner_id = $1
        RETURNING prev.balance, accounts.balance
    `
	var before, after decimal.Decimal
	if err := r.DB.QueryRow(query, ownerID, amount).Scan(&before, &after); err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	return before, after, before.Sub(after), nil
}

func (r *BillingRepository) InsertTransaction(t *model.Transaction) error {
	t.CreatedAt = time.Now()
	query := `
        INSERT INTO transactions (owner_id, campaign_id, amount, balance_before, balance_after, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	return r.DB.QueryRow(query, t.OwnerID, t.CampaignID, t.Amount, t.BalanceBefore, t.BalanceAfter, t.CreatedAt).Scan(&t.ID)
}

var _ BillingRepositoryInterface = (*BillingRepository)(nil)
