package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gigfinder/backend/internal/browse"
	"github.com/gigfinder/backend/internal/execution"
	"github.com/gigfinder/backend/internal/ledger"
	"github.com/gigfinder/backend/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("not the poster of this job")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
)

// Store is the persistence the poster surface runs on.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Create(ctx context.Context, posterID uuid.UUID, posterName string, p CreateParams) (*models.JobPosting, error)
	GetByID(ctx context.Context, jobID uuid.UUID) (*models.JobPosting, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) (*models.JobPosting, error)
	ListByPoster(ctx context.Context, posterID uuid.UUID) ([]models.JobPosting, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, from, to models.PostingStatus) (bool, error)
	RejectPending(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) (int64, error)
	GetApplicationForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Application, error)
	GetNegotiationForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Negotiation, error)
	SetApplicationStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status models.ApplicationStatus) error
	SetNegotiationStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status models.NegotiationStatus) error
	ListApplicationsForPosting(ctx context.Context, jobID uuid.UUID) ([]models.Application, error)
	ListNegotiationsForPosting(ctx context.Context, jobID uuid.UUID) ([]models.Negotiation, error)
}

// HoldPlacer records an earning hold inside the caller's transaction.
type HoldPlacer interface {
	PlaceEarningHold(ctx context.Context, tx pgx.Tx, h *models.EarningHold) error
}

// Poster identifies the authenticated poster.
type Poster struct {
	ID   uuid.UUID
	Name string
}

// PostingEngagements is everything finders have submitted on one posting.
type PostingEngagements struct {
	Applications []models.Application
	Negotiations []models.Negotiation
}

type Service interface {
	CreatePosting(ctx context.Context, poster Poster, p CreateParams) (*models.JobPosting, error)
	ListByPoster(ctx context.Context, posterID uuid.UUID) ([]models.JobPosting, error)
	ListEngagements(ctx context.Context, posterID, jobID uuid.UUID) (*PostingEngagements, error)
	DecideApplication(ctx context.Context, posterID, applicationID uuid.UUID, approve bool) (*models.Application, error)
	DecideNegotiation(ctx context.Context, posterID, negotiationID uuid.UUID, accept bool) (*models.Negotiation, error)
	CompletePosting(ctx context.Context, posterID, jobID uuid.UUID) (*models.JobPosting, error)
	CancelPosting(ctx context.Context, posterID, jobID uuid.UUID) (*models.JobPosting, error)
}

// InsertSettlementTxFunc enqueues a settlement job within the given transaction. Provided by main using river.Client.InsertTx.
type InsertSettlementTxFunc func(ctx context.Context, tx pgx.Tx, args execution.SettlePostingArgs) error

type service struct {
	repo             Store
	holds            HoldPlacer
	insertSettlement InsertSettlementTxFunc
}

// NewService creates the poster service. insertSettlement is typically a closure over river.Client.InsertTx.
func NewService(repo Store, holds HoldPlacer, insertSettlement InsertSettlementTxFunc) Service {
	return &service{repo: repo, holds: holds, insertSettlement: insertSettlement}
}

var _ Service = (*service)(nil)

func (s *service) CreatePosting(ctx context.Context, poster Poster, p CreateParams) (*models.JobPosting, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	switch {
	case p.Title == "":
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	case p.Description == "":
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	case !p.Budget.IsPositive():
		return nil, fmt.Errorf("%w: budget must be greater than zero", ErrValidation)
	case !p.Budget.Equal(p.Budget.Round(2)):
		return nil, fmt.Errorf("%w: budget has more than two decimal places", ErrValidation)
	case p.Budget.GreaterThan(models.MaxAmount):
		return nil, fmt.Errorf("%w: budget exceeds %s", ErrValidation, models.MaxAmount.StringFixed(2))
	case p.Category == models.CategoryAll || !browse.IsKnownCategory(p.Category):
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, p.Category)
	}
	return s.repo.Create(ctx, poster.ID, poster.Name, p)
}

func (s *service) ListByPoster(ctx context.Context, posterID uuid.UUID) ([]models.JobPosting, error) {
	return s.repo.ListByPoster(ctx, posterID)
}

func (s *service) ListEngagements(ctx context.Context, posterID, jobID uuid.UUID) (*PostingEngagements, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.PosterID != posterID {
		return nil, ErrForbidden
	}
	apps, err := s.repo.ListApplicationsForPosting(ctx, jobID)
	if err != nil {
		return nil, err
	}
	negs, err := s.repo.ListNegotiationsForPosting(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &PostingEngagements{Applications: apps, Negotiations: negs}, nil
}

func (s *service) DecideApplication(ctx context.Context, posterID, applicationID uuid.UUID, approve bool) (*models.Application, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	app, err := s.repo.GetApplicationForUpdate(ctx, tx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := checkDecision(posterID, app.Job, app.Status == models.ApplicationPending); err != nil {
		return nil, err
	}
	next := models.ApplicationRejected
	if approve {
		next = models.ApplicationApproved
	}
	if err := s.repo.SetApplicationStatus(ctx, tx, app.ID, next); err != nil {
		return nil, err
	}
	app.Status = next
	if approve {
		if err := s.placeHold(ctx, tx, models.FromApplication(*app)); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *service) DecideNegotiation(ctx context.Context, posterID, negotiationID uuid.UUID, accept bool) (*models.Negotiation, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	neg, err := s.repo.GetNegotiationForUpdate(ctx, tx, negotiationID)
	if err != nil {
		return nil, err
	}
	if err := checkDecision(posterID, neg.Job, neg.Status == models.NegotiationPending); err != nil {
		return nil, err
	}
	next := models.NegotiationRejected
	if accept {
		next = models.NegotiationAccepted
	}
	if err := s.repo.SetNegotiationStatus(ctx, tx, neg.ID, next); err != nil {
		return nil, err
	}
	neg.Status = next
	if accept {
		if err := s.placeHold(ctx, tx, models.FromNegotiation(*neg)); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return neg, nil
}

// checkDecision guards every poster decision: own posting, posting still active, engagement still pending.
func checkDecision(posterID uuid.UUID, job models.JobPosting, pending bool) error {
	if job.PosterID != posterID {
		return ErrForbidden
	}
	if job.Status != models.PostingActive {
		return fmt.Errorf("%w: job is %s", ErrInvalidTransition, job.Status)
	}
	if !pending {
		return fmt.Errorf("%w: already decided", ErrInvalidTransition)
	}
	return nil
}

func (s *service) placeHold(ctx context.Context, tx pgx.Tx, e models.Engagement) error {
	amount, ok := e.SettlementAmount()
	if !ok {
		return fmt.Errorf("engagement %s has no settlement amount", e.ID())
	}
	return s.holds.PlaceEarningHold(ctx, tx, &models.EarningHold{
		JobID:        e.Job().ID,
		FinderID:     e.FinderID(),
		EngagementID: e.ID(),
		Amount:       amount,
	})
}

func (s *service) CompletePosting(ctx context.Context, posterID, jobID uuid.UUID) (*models.JobPosting, error) {
	return s.closePosting(ctx, posterID, jobID, models.PostingCompleted, execution.OutcomeRelease)
}

func (s *service) CancelPosting(ctx context.Context, posterID, jobID uuid.UUID) (*models.JobPosting, error) {
	return s.closePosting(ctx, posterID, jobID, models.PostingCancelled, execution.OutcomeVoid)
}

// closePosting moves an active posting to a terminal status, rejects engagements still
// pending on it and enqueues settlement of its earning holds, all in one transaction.
func (s *service) closePosting(ctx context.Context, posterID, jobID uuid.UUID, to models.PostingStatus, outcome string) (*models.JobPosting, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	job, err := s.repo.GetByIDForUpdate(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}
	if job.PosterID != posterID {
		return nil, ErrForbidden
	}
	if !models.CanTransitionPosting(job.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, to)
	}
	ok, err := s.repo.UpdateStatus(ctx, tx, jobID, job.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: job changed concurrently", ErrInvalidTransition)
	}
	if _, err := s.repo.RejectPending(ctx, tx, jobID); err != nil {
		return nil, err
	}
	if err := s.insertSettlement(ctx, tx, execution.SettlePostingArgs{JobID: jobID, Outcome: outcome}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	job.Status = to
	return job, nil
}

// ledger.Service is the usual HoldPlacer.
var _ HoldPlacer = ledger.Service(nil)
