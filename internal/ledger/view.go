package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gigfinder/backend/internal/models"
)

// View is a user's wallet as displayed: every missing figure reads as zero, and lists keep
// the order the ledger returned.
type View struct {
	Balance       decimal.Decimal
	TotalEarned   decimal.Decimal
	PendingAmount decimal.Decimal
	Transactions  []models.Transaction
	Withdrawals   []models.WithdrawalRecord
}

// BuildView aggregates ledger reads. w may be nil.
func BuildView(w *models.WalletSnapshot, txs []models.Transaction, withdrawals []models.WithdrawalRecord) View {
	v := View{
		Balance:       decimal.Zero,
		TotalEarned:   decimal.Zero,
		PendingAmount: decimal.Zero,
		Transactions:  txs,
		Withdrawals:   withdrawals,
	}
	if w != nil {
		v.Balance = orZero(w.Balance)
		v.TotalEarned = orZero(w.TotalEarned)
		v.PendingAmount = orZero(w.PendingAmount)
	}
	if v.Transactions == nil {
		v.Transactions = []models.Transaction{}
	}
	if v.Withdrawals == nil {
		v.Withdrawals = []models.WithdrawalRecord{}
	}
	return v
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// Format renders an amount with two decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Reader is the part of the ledger the view consumes.
type Reader interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.WalletSnapshot, error)
	GetTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	GetWithdrawalHistory(ctx context.Context, userID uuid.UUID) ([]models.WithdrawalRecord, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, destination string) (*models.WithdrawalRecord, error)
}

// Viewer loads wallet views and runs withdrawals followed by a full re-read.
type Viewer struct {
	ledger Reader
}

func NewViewer(ledger Reader) *Viewer {
	return &Viewer{ledger: ledger}
}

// Load reads the wallet, then transactions, then withdrawals.
func (v *Viewer) Load(ctx context.Context, userID uuid.UUID) (View, error) {
	w, err := v.ledger.GetWallet(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("get wallet: %w", err)
	}
	txs, err := v.ledger.GetTransactions(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("get transactions: %w", err)
	}
	withdrawals, err := v.ledger.GetWithdrawalHistory(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("get withdrawal history: %w", err)
	}
	return BuildView(w, txs, withdrawals), nil
}

// Withdraw delegates to the ledger and, only on success, reloads the whole view.
func (v *Viewer) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, destination string) (*models.WithdrawalRecord, View, error) {
	rec, err := v.ledger.Withdraw(ctx, userID, amount, destination)
	if err != nil {
		return nil, View{}, err
	}
	view, err := v.Load(ctx, userID)
	if err != nil {
		return rec, View{}, err
	}
	return rec, view, nil
}
