// internal/model/transaction.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds an owner's spendable balance.
type Account struct {
	OwnerID int             `db:"owner_id" json:"owner_id"`
	Balance decimal.Decimal `db:"balance" json:"balance"`
}

// Transaction is an immutable ledger record of a campaign debit.
type Transaction struct {
	ID            int             `db:"id" json:"id"`
	OwnerID       int             `db:"owner_id" json:"owner_id"`
	CampaignID    int             `db:"campaign_id" json:"campaign_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before" json:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after" json:"balance_after"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
