package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet transaction types.
const (
	TxEarning    = "earning"
	TxWithdrawal = "withdrawal"
	TxRefund     = "refund"
)

// Withdrawal statuses.
const (
	WithdrawalPending   = "pending"
	WithdrawalCompleted = "completed"
	WithdrawalFailed    = "failed"
)

// Earning hold statuses.
const (
	HoldHeld     = "held"
	HoldReleased = "released"
	HoldVoided   = "voided"
)

// WalletSnapshot is the ledger's view of a user's funds. Any field may be missing
// (no wallet row yet, or a NULL column); readers decide how to display that.
type WalletSnapshot struct {
	UserID        uuid.UUID           `json:"user_id"`
	Balance       decimal.NullDecimal `json:"balance"`
	TotalEarned   decimal.NullDecimal `json:"total_earned"`
	PendingAmount decimal.NullDecimal `json:"pending_amount"`
}

type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	JobID       *uuid.UUID      `json:"job_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type WithdrawalRecord struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Destination string          `json:"destination"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}

// EarningHold is money promised to a finder for a confirmed engagement and not yet released.
type EarningHold struct {
	ID           uuid.UUID       `json:"id"`
	JobID        uuid.UUID       `json:"job_id"`
	FinderID     uuid.UUID       `json:"finder_id"`
	EngagementID uuid.UUID       `json:"engagement_id"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}
