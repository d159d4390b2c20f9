package engagement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

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

// ListActivePostings returns every active posting, newest first.
func (r *Repository) ListActivePostings(ctx context.Context) ([]models.JobPosting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+store.PostingColumns("")+`
		FROM job_postings WHERE status = 'active' ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.JobPosting{}
	for rows.Next() {
		var p models.JobPosting
		if err := rows.Scan(store.PostingDest(&p)...); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// GetPosting returns nil when the posting does not exist.
func (r *Repository) GetPosting(ctx context.Context, jobID uuid.UUID) (*models.JobPosting, error) {
	var p models.JobPosting
	err := r.pool.QueryRow(ctx, `
		SELECT `+store.PostingColumns("")+` FROM job_postings WHERE id = $1
	`, jobID).Scan(store.PostingDest(&p)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// HasEngagement reports whether the finder has an application or a negotiation on the job.
func (r *Repository) HasEngagement(ctx context.Context, finderID, jobID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM applications WHERE finder_id = $1 AND job_id = $2)
			OR EXISTS (SELECT 1 FROM negotiations WHERE finder_id = $1 AND job_id = $2)
	`, finderID, jobID).Scan(&exists)
	return exists, err
}

func (r *Repository) ListApplicationsForFinder(ctx context.Context, finderID uuid.UUID) ([]models.Application, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+store.ApplicationColumns+`, `+store.PostingColumns("j")+`
		FROM applications a
		JOIN job_postings j ON j.id = a.job_id
		WHERE a.finder_id = $1
		ORDER BY a.applied_at DESC, a.id
	`, finderID)
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

func (r *Repository) ListNegotiationsForFinder(ctx context.Context, finderID uuid.UUID) ([]models.Negotiation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+store.NegotiationColumns+`, `+store.PostingColumns("j")+`
		FROM negotiations n
		JOIN job_postings j ON j.id = n.job_id
		WHERE n.finder_id = $1
		ORDER BY n.created_at DESC, n.id
	`, finderID)
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

func (r *Repository) InsertApplication(ctx context.Context, a *models.Application) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO applications (id, job_id, finder_id, finder_name, status, message,
			contact_email, contact_phone, distance, time_to_reach)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING applied_at
	`, a.ID, a.JobID, a.FinderID, a.FinderName, a.Status, a.Message,
		a.Contact.Email, a.Contact.Phone, a.Contact.Distance, a.Contact.TimeToReach).Scan(&a.AppliedAt)
}

func (r *Repository) InsertNegotiation(ctx context.Context, n *models.Negotiation) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO negotiations (id, job_id, finder_id, finder_name, proposed_amount, status, message,
			contact_email, contact_phone, distance, time_to_reach)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`, n.ID, n.JobID, n.FinderID, n.FinderName, n.ProposedAmount, n.Status, n.Message,
		n.Contact.Email, n.Contact.Phone, n.Contact.Distance, n.Contact.TimeToReach).Scan(&n.CreatedAt)
}
