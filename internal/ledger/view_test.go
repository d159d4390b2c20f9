package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gigfinder/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

// mockReader is an in-memory ledger that records the order of calls.
type mockReader struct {
	mu          sync.Mutex
	calls       []string
	wallet      *models.WalletSnapshot
	txs         []models.Transaction
	withdrawals []models.WithdrawalRecord
	walletErr   error
	txErr       error
	withdrawErr error
}

func (m *mockReader) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockReader) GetWallet(context.Context, uuid.UUID) (*models.WalletSnapshot, error) {
	m.record("wallet")
	return m.wallet, m.walletErr
}

func (m *mockReader) GetTransactions(context.Context, uuid.UUID) ([]models.Transaction, error) {
	m.record("transactions")
	return m.txs, m.txErr
}

func (m *mockReader) GetWithdrawalHistory(context.Context, uuid.UUID) ([]models.WithdrawalRecord, error) {
	m.record("withdrawals")
	return m.withdrawals, nil
}

func (m *mockReader) Withdraw(_ context.Context, userID uuid.UUID, amount decimal.Decimal, dest string) (*models.WithdrawalRecord, error) {
	m.record("withdraw")
	if m.withdrawErr != nil {
		return nil, m.withdrawErr
	}
	rec := models.WithdrawalRecord{ID: uuid.New(), UserID: userID, Amount: amount, Destination: dest,
		Status: models.WithdrawalPending, CreatedAt: time.Now()}
	m.mu.Lock()
	m.withdrawals = append([]models.WithdrawalRecord{rec}, m.withdrawals...)
	bal := m.wallet.Balance.Decimal.Sub(amount)
	m.wallet.Balance = decimal.NewNullDecimal(bal)
	m.mu.Unlock()
	return &rec, nil
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestBuildView_MissingFiguresReadZero(t *testing.T) {
	v := BuildView(&models.WalletSnapshot{TotalEarned: nd("120.5")}, nil, nil)

	if got := Format(v.Balance); got != "0.00" {
		t.Errorf("balance = %q, want 0.00", got)
	}
	if got := Format(v.TotalEarned); got != "120.50" {
		t.Errorf("total earned = %q, want 120.50", got)
	}
	if got := Format(v.PendingAmount); got != "0.00" {
		t.Errorf("pending = %q, want 0.00", got)
	}
	if v.Transactions == nil || v.Withdrawals == nil {
		t.Error("lists must be empty, not nil")
	}
}

func TestBuildView_NilSnapshot(t *testing.T) {
	v := BuildView(nil, nil, nil)
	if !v.Balance.IsZero() || !v.TotalEarned.IsZero() || !v.PendingAmount.IsZero() {
		t.Errorf("expected zero view, got %+v", v)
	}
}

func TestBuildView_KeepsOrder(t *testing.T) {
	txs := []models.Transaction{
		{ID: uuid.New(), Amount: decimal.NewFromInt(3)},
		{ID: uuid.New(), Amount: decimal.NewFromInt(1)},
		{ID: uuid.New(), Amount: decimal.NewFromInt(2)},
	}
	v := BuildView(&models.WalletSnapshot{}, txs, nil)
	for i := range txs {
		if v.Transactions[i].ID != txs[i].ID {
			t.Fatalf("transaction %d reordered", i)
		}
	}
}

func TestViewer_LoadReadsInOrder(t *testing.T) {
	m := &mockReader{wallet: &models.WalletSnapshot{Balance: nd("10")}}
	v, err := NewViewer(m).Load(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"wallet", "transactions", "withdrawals"}
	if len(m.calls) != len(want) {
		t.Fatalf("calls = %v", m.calls)
	}
	for i := range want {
		if m.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", m.calls, want)
		}
	}
	if Format(v.Balance) != "10.00" {
		t.Errorf("balance = %s", Format(v.Balance))
	}
}

func TestViewer_LoadPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	m := &mockReader{txErr: boom, wallet: &models.WalletSnapshot{}}
	if _, err := NewViewer(m).Load(context.Background(), uuid.New()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if len(m.calls) != 2 {
		t.Errorf("withdrawals must not be read after a failure, calls = %v", m.calls)
	}
}

func TestViewer_WithdrawReloadsEverything(t *testing.T) {
	m := &mockReader{wallet: &models.WalletSnapshot{Balance: nd("100")}}
	rec, v, err := NewViewer(m).Withdraw(context.Background(), uuid.New(), decimal.NewFromInt(40), "bank")
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	want := []string{"withdraw", "wallet", "transactions", "withdrawals"}
	if len(m.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", m.calls, want)
	}
	if Format(v.Balance) != "60.00" {
		t.Errorf("balance after withdraw = %s", Format(v.Balance))
	}
	if len(v.Withdrawals) != 1 || v.Withdrawals[0].ID != rec.ID {
		t.Errorf("reloaded withdrawals = %+v", v.Withdrawals)
	}
}

func TestViewer_WithdrawFailureSkipsReload(t *testing.T) {
	m := &mockReader{withdrawErr: ErrInsufficientFunds}
	_, _, err := NewViewer(m).Withdraw(context.Background(), uuid.New(), decimal.NewFromInt(40), "bank")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if len(m.calls) != 1 {
		t.Errorf("no reads expected after a failed withdrawal, calls = %v", m.calls)
	}
}
