package jobs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gigfinder/backend/internal/models"
	"github.com/gigfinder/backend/internal/store"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// CreateParams are the poster-supplied fields of a new posting.
type CreateParams struct {
	Title            string
	Description      string
	Budget           decimal.Decimal
	Category         string
	Responsibilities *string
	StartDate        *string
	EndDate          *string
	StartTime        *string
	EndTime          *string
}

func (r *Repository) Create(ctx context.Context, posterID uuid.UUID, posterName string, p CreateParams) (*models.JobPosting, error) {
	var j models.JobPosting
	err := r.pool.QueryRow(ctx, `
		INSERT INTO job_postings (title, description, budget, poster_id, poster_name, category, status,
			roles_responsibilities, start_date, end_date, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, 'active', $7, $8, $9, $10, $11)
		RETURNING `+store.PostingColumns("")+`
	`, p.Title, p.Description, p.Budget, posterID, posterName, p.Category,
		p.Responsibilities, p.StartDate, p.EndDate, p.StartTime, p.EndTime).Scan(store.PostingDest(&j)...)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repository) GetByID(ctx context.Context, jobID uuid.UUID) (*models.JobPosting, error) {
	var j models.JobPosting
	err := r.pool.QueryRow(ctx, `
		SELECT `+store.PostingColumns("")+` FROM job_postings WHERE id = $1
	`, jobID).Scan(store.PostingDest(&j)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// GetByIDForUpdate locks the posting row. Call within a transaction.
func (r *Repository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) (*models.JobPosting, error) {
	var j models.JobPosting
	err := tx.QueryRow(ctx, `
		SELECT `+store.PostingColumns("")+` FROM job_postings WHERE id = $1 FOR UPDATE
	`, jobID).Scan(store.PostingDest(&j)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repository) ListByPoster(ctx context.Context, posterID uuid.UUID) ([]models.JobPosting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+store.PostingColumns("")+`
		FROM job_postings WHERE poster_id = $1 ORDER BY created_at DESC, id
	`, posterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.JobPosting{}
	for rows.Next() {
		var j models.JobPosting
		if err := rows.Scan(store.PostingDest(&j)...); err != nil {
			return nil, err
		}
		list = append(list, j)
	}
	return list, rows.Err()
}

// UpdateStatus moves the posting from one status to another. It reports false when the
// posting was no longer in the expected status.
func (r *Repository) UpdateStatus(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, from, to models.PostingStatus) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE job_postings SET status = $1, updated_at = now() WHERE id = $2 AND status = $3
	`, to, jobID, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RejectPending rejects every still-pending application and negotiation on the posting.
func (r *Repository) RejectPending(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) (int64, error) {
	apps, err := tx.Exec(ctx, `
		UPDATE applications SET status = 'rejected', updated_at = now() WHERE job_id = $1 AND status = 'pending'
	`, jobID)
	if err != nil {
		return 0, err
	}
	negs, err := tx.Exec(ctx, `
		UPDATE negotiations SET status = 'rejected', updated_at = now() WHERE job_id = $1 AND status = 'pending'
	`, jobID)
	if err != nil {
		return 0, err
	}
	return apps.RowsAffected() + negs.RowsAffected(), nil
}

// GetApplicationForUpdate locks the application row and joins its posting.
func (r *Repository) GetApplicationForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Application, error) {
	var a models.Application
	err := tx.QueryRow(ctx, `
		SELECT `+store.ApplicationColumns+`, `+store.PostingColumns("j")+`
		FROM applications a JOIN job_postings j ON j.id = a.job_id
		WHERE a.id = $1
		FOR UPDATE OF a
	`, id).Scan(store.ApplicationDest(&a)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetNegotiationForUpdate locks the negotiation row and joins its posting.
func (r *Repository) GetNegotiationForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Negotiation, error) {
	var n models.Negotiation
	err := tx.QueryRow(ctx, `
		SELECT `+store.NegotiationColumns+`, `+store.PostingColumns("j")+`
		FROM negotiations n JOIN job_postings j ON j.id = n.job_id
		WHERE n.id = $1
		FOR UPDATE OF n
	`, id).Scan(store.NegotiationDest(&n)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *Repository) SetApplicationStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status models.ApplicationStatus) error {
	_, err := tx.Exec(ctx, `UPDATE applications SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

func (r *Repository) SetNegotiationStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status models.NegotiationStatus) error {
	_, err := tx.Exec(ctx, `UPDATE negotiations SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

func (r *Repository) ListApplicationsForPosting(ctx context.Context, jobID uuid.UUID) ([]models.Application, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+store.ApplicationColumns+`, `+store.PostingColumns("j")+`
		FROM applications a JOIN job_postings j ON j.id = a.job_id
		WHERE a.job_id = $1 ORDER BY a.applied_at DESC, a.id
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Application{}
	for rows.Next() {
		var a models.Application
		if err := rows.Scan(store.ApplicationDest(&a)...); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *Repository) ListNegotiationsForPosting(ctx context.Context, jobID uuid.UUID) ([]models.Negotiation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+store.NegotiationColumns+`, `+store.PostingColumns("j")+`
		FROM negotiations n JOIN job_postings j ON j.id = n.job_id
		WHERE n.job_id = $1 ORDER BY n.created_at DESC, n.id
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Negotiation{}
	for rows.Next() {
		var n models.Negotiation
		if err := rows.Scan(store.NegotiationDest(&n)...); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}
