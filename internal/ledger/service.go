package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gigfinder/backend/internal/models"
)

// Store is the persistence the ledger service runs on.
type Store interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.WalletSnapshot, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	ListWithdrawals(ctx context.Context, userID uuid.UUID) ([]models.WithdrawalRecord, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, destination string) (*models.WithdrawalRecord, error)
	PlaceEarningHold(ctx context.Context, tx pgx.Tx, h *models.EarningHold) error
	ReleaseEarnings(ctx context.Context, jobID uuid.UUID) (int, error)
	VoidEarnings(ctx context.Context, jobID uuid.UUID) (int, error)
}

type Service interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.WalletSnapshot, error)
	GetTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	GetWithdrawalHistory(ctx context.Context, userID uuid.UUID) ([]models.WithdrawalRecord, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, destination string) (*models.WithdrawalRecord, error)
	PlaceEarningHold(ctx context.Context, tx pgx.Tx, h *models.EarningHold) error
	ReleaseEarnings(ctx context.Context, jobID uuid.UUID) (int, error)
	VoidEarnings(ctx context.Context, jobID uuid.UUID) (int, error)
}

type service struct {
	repo          Store
	minWithdrawal decimal.Decimal
}

// NewService returns a ledger service. Withdrawals below minWithdrawal are refused.
func NewService(repo Store, minWithdrawal decimal.Decimal) Service {
	return &service{repo: repo, minWithdrawal: minWithdrawal}
}

var _ Service = (*service)(nil)

func (s *service) GetWallet(ctx context.Context, userID uuid.UUID) (*models.WalletSnapshot, error) {
	return s.repo.GetWallet(ctx, userID)
}

func (s *service) GetTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	return s.repo.ListTransactions(ctx, userID)
}

func (s *service) GetWithdrawalHistory(ctx context.Context, userID uuid.UUID) ([]models.WithdrawalRecord, error) {
	return s.repo.ListWithdrawals(ctx, userID)
}

func (s *service) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, destination string) (*models.WithdrawalRecord, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	if amount.LessThan(s.minWithdrawal) {
		return nil, fmt.Errorf("%w: minimum withdrawal is %s", ErrInvalidAmount, s.minWithdrawal.StringFixed(2))
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, fmt.Errorf("%w: at most two decimal places", ErrInvalidAmount)
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, ErrMissingDestination
	}
	return s.repo.Withdraw(ctx, userID, amount, destination)
}

func (s *service) PlaceEarningHold(ctx context.Context, tx pgx.Tx, h *models.EarningHold) error {
	if !h.Amount.IsPositive() {
		return fmt.Errorf("%w: hold amount must be greater than zero", ErrInvalidAmount)
	}
	return s.repo.PlaceEarningHold(ctx, tx, h)
}

func (s *service) ReleaseEarnings(ctx context.Context, jobID uuid.UUID) (int, error) {
	return s.repo.ReleaseEarnings(ctx, jobID)
}

func (s *service) VoidEarnings(ctx context.Context, jobID uuid.UUID) (int, error) {
	return s.repo.VoidEarnings(ctx, jobID)
}

var (
	// ErrInsufficientFunds is returned when the balance is too low for a withdrawal.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAmount is returned for non-positive amounts, amounts below the minimum, and
	// fractions of a cent.
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrMissingDestination = errors.New("withdrawal destination is required")
)
