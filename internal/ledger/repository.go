package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gigfinder/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

// GetWallet returns an empty snapshot (every field missing) when the user has no wallet row yet.
func (r *Repository) GetWallet(ctx context.Context, userID uuid.UUID) (*models.WalletSnapshot, error) {
	w := models.WalletSnapshot{UserID: userID}
	err := r.pool.QueryRow(ctx, `
		SELECT balance, total_earned, pending_amount FROM wallets WHERE user_id = $1
	`, userID).Scan(&w.Balance, &w.TotalEarned, &w.PendingAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return &w, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, tx_type, amount, description, job_id, created_at
		FROM wallet_transactions WHERE user_id = $1 ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Description, &t.JobID, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *Repository) ListWithdrawals(ctx context.Context, userID uuid.UUID) ([]models.WithdrawalRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, amount, destination, status, created_at, processed_at
		FROM withdrawals WHERE user_id = $1 ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.WithdrawalRecord{}
	for rows.Next() {
		var w models.WithdrawalRecord
		if err := rows.Scan(&w.ID, &w.UserID, &w.Amount, &w.Destination, &w.Status, &w.CreatedAt, &w.ProcessedAt); err != nil {
			return nil, err
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

// Withdraw runs in its own transaction. It:
// a) deducts balance only if balance >= amount (atomic conditional UPDATE)
// b) inserts a pending withdrawal record
// c) appends a withdrawal transaction
func (r *Repository) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, destination string) (*models.WithdrawalRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE wallets SET balance = balance - $1, updated_at = now()
		WHERE user_id = $2 AND balance >= $1
	`, amount, userID)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, ErrInsufficientFunds
	}
	w := models.WithdrawalRecord{UserID: userID, Amount: amount, Destination: destination}
	err = tx.QueryRow(ctx, `
		INSERT INTO withdrawals (user_id, amount, destination, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id, status, created_at
	`, userID, amount, destination).Scan(&w.ID, &w.Status, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO wallet_transactions (user_id, tx_type, amount, description)
		VALUES ($1, 'withdrawal', $2, $3)
	`, userID, amount, "Withdrawal to "+destination)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &w, nil
}

// PlaceEarningHold runs inside the caller's transaction. It adds the amount to the finder's
// pending_amount (creating the wallet on first use) and records the hold against the job.
func (r *Repository) PlaceEarningHold(ctx context.Context, tx pgx.Tx, h *models.EarningHold) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO wallets (user_id, pending_amount) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET pending_amount = wallets.pending_amount + EXCLUDED.pending_amount, updated_at = now()
	`, h.FinderID, h.Amount)
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx, `
		INSERT INTO earning_holds (job_id, finder_id, engagement_id, amount, status)
		VALUES ($1, $2, $3, $4, 'held')
		RETURNING id, status, created_at
	`, h.JobID, h.FinderID, h.EngagementID, h.Amount).Scan(&h.ID, &h.Status, &h.CreatedAt)
}

// ReleaseEarnings pays every held amount for the job: pending moves to balance and
// total_earned, and an earning transaction is appended per hold. Released holds are
// skipped, so retries are safe.
func (r *Repository) ReleaseEarnings(ctx context.Context, jobID uuid.UUID) (int, error) {
	return r.settleHolds(ctx, jobID, models.HoldReleased, func(tx pgx.Tx, h models.EarningHold) error {
		_, err := tx.Exec(ctx, `
			UPDATE wallets
			SET pending_amount = pending_amount - $1, balance = balance + $1,
				total_earned = total_earned + $1, updated_at = now()
			WHERE user_id = $2
		`, h.Amount, h.FinderID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO wallet_transactions (user_id, tx_type, amount, description, job_id)
			VALUES ($1, 'earning', $2, $3, $4)
		`, h.FinderID, h.Amount, "Payment for completed job", h.JobID)
		return err
	})
}

// VoidEarnings drops every held amount for the job from the finders' pending_amount.
func (r *Repository) VoidEarnings(ctx context.Context, jobID uuid.UUID) (int, error) {
	return r.settleHolds(ctx, jobID, models.HoldVoided, func(tx pgx.Tx, h models.EarningHold) error {
		_, err := tx.Exec(ctx, `
			UPDATE wallets SET pending_amount = pending_amount - $1, updated_at = now() WHERE user_id = $2
		`, h.Amount, h.FinderID)
		return err
	})
}

func (r *Repository) settleHolds(ctx context.Context, jobID uuid.UUID, final string, apply func(pgx.Tx, models.EarningHold) error) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, job_id, finder_id, engagement_id, amount, status, created_at
		FROM earning_holds WHERE job_id = $1 AND status = 'held'
		ORDER BY finder_id
		FOR UPDATE
	`, jobID)
	if err != nil {
		return 0, err
	}
	var holds []models.EarningHold
	for rows.Next() {
		var h models.EarningHold
		if err := rows.Scan(&h.ID, &h.JobID, &h.FinderID, &h.EngagementID, &h.Amount, &h.Status, &h.CreatedAt); err != nil {
			rows.Close()
			return 0, err
		}
		holds = append(holds, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, h := range holds {
		if err := apply(tx, h); err != nil {
			return 0, fmt.Errorf("settle hold %s: %w", h.ID, err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE earning_holds SET status = $1, settled_at = now() WHERE id = $2
		`, final, h.ID); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(holds), nil
}
