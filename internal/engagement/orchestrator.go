package engagement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/gigfinder/backend/internal/models"
)

// Store is what the orchestrator needs from the engagement repository. Implementations
// join each application and negotiation with its posting.
type Store interface {
	GetPosting(ctx context.Context, jobID uuid.UUID) (*models.JobPosting, error)
	HasEngagement(ctx context.Context, finderID, jobID uuid.UUID) (bool, error)
	ListApplicationsForFinder(ctx context.Context, finderID uuid.UUID) ([]models.Application, error)
	ListNegotiationsForFinder(ctx context.Context, finderID uuid.UUID) ([]models.Negotiation, error)
	InsertApplication(ctx context.Context, a *models.Application) error
	InsertNegotiation(ctx context.Context, n *models.Negotiation) error
}

// Finder identifies the acting job seeker. It is passed to every call, never read from
// shared state.
type Finder struct {
	ID   uuid.UUID
	Name string
}

type ApplicationCommand struct {
	JobID   uuid.UUID
	Message string
	Contact models.ContactDetails
}

type NegotiationCommand struct {
	JobID uuid.UUID
	// ProposedAmount is the raw amount as typed by the finder.
	ProposedAmount string
	Message        string
	Contact        models.ContactDetails
}

// Orchestrator submits engagements and re-classifies after every successful write.
type Orchestrator struct {
	store Store
}

func NewOrchestrator(store Store) *Orchestrator {
	return &Orchestrator{store: store}
}

// Refresh re-reads the finder's applications and negotiations and classifies them.
func (o *Orchestrator) Refresh(ctx context.Context, finderID uuid.UUID) (Buckets, error) {
	apps, err := o.store.ListApplicationsForFinder(ctx, finderID)
	if err != nil {
		return Buckets{}, fmt.Errorf("%w: list applications: %w", ErrPersistence, err)
	}
	negs, err := o.store.ListNegotiationsForFinder(ctx, finderID)
	if err != nil {
		return Buckets{}, fmt.Errorf("%w: list negotiations: %w", ErrPersistence, err)
	}
	return Classify(apps, negs), nil
}

// SubmitApplication records a pending application at the posting's budget.
func (o *Orchestrator) SubmitApplication(ctx context.Context, finder Finder, cmd ApplicationCommand) (Buckets, error) {
	if err := requireMessage(cmd.Message); err != nil {
		return Buckets{}, err
	}
	if err := o.checkOpen(ctx, finder.ID, cmd.JobID); err != nil {
		return Buckets{}, err
	}
	app := &models.Application{
		ID:         uuid.New(),
		JobID:      cmd.JobID,
		FinderID:   finder.ID,
		FinderName: finder.Name,
		Status:     models.ApplicationPending,
		Message:    cmd.Message,
		Contact:    cmd.Contact.WithDefaults(),
	}
	if err := o.store.InsertApplication(ctx, app); err != nil {
		return Buckets{}, insertError("insert application", err)
	}
	return o.refreshAfterWrite(ctx, finder.ID)
}

// SubmitNegotiation records a pending counter-offer.
func (o *Orchestrator) SubmitNegotiation(ctx context.Context, finder Finder, cmd NegotiationCommand) (Buckets, error) {
	amount, err := ParseAmount(cmd.ProposedAmount)
	if err != nil {
		return Buckets{}, err
	}
	if err := requireMessage(cmd.Message); err != nil {
		return Buckets{}, err
	}
	if err := o.checkOpen(ctx, finder.ID, cmd.JobID); err != nil {
		return Buckets{}, err
	}
	neg := &models.Negotiation{
		ID:             uuid.New(),
		JobID:          cmd.JobID,
		FinderID:       finder.ID,
		FinderName:     finder.Name,
		ProposedAmount: amount,
		Status:         models.NegotiationPending,
		Message:        cmd.Message,
		Contact:        cmd.Contact.WithDefaults(),
	}
	if err := o.store.InsertNegotiation(ctx, neg); err != nil {
		return Buckets{}, insertError("insert negotiation", err)
	}
	return o.refreshAfterWrite(ctx, finder.ID)
}

// checkOpen verifies the posting accepts engagements and the finder has none on it yet.
func (o *Orchestrator) checkOpen(ctx context.Context, finderID, jobID uuid.UUID) error {
	job, err := o.store.GetPosting(ctx, jobID)
	if err != nil {
		return fmt.Errorf("%w: get posting: %w", ErrPersistence, err)
	}
	if job == nil || job.Status != models.PostingActive {
		return ErrJobNotActive
	}
	engaged, err := o.store.HasEngagement(ctx, finderID, jobID)
	if err != nil {
		return fmt.Errorf("%w: check engagement: %w", ErrPersistence, err)
	}
	if engaged {
		return ErrAlreadyEngaged
	}
	return nil
}

func (o *Orchestrator) refreshAfterWrite(ctx context.Context, finderID uuid.UUID) (Buckets, error) {
	b, err := o.Refresh(ctx, finderID)
	if err != nil {
		return Buckets{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return b, nil
}

func requireMessage(msg string) error {
	if strings.TrimSpace(msg) == "" {
		return fmt.Errorf("%w: message is required", ErrValidation)
	}
	return nil
}

// ParseAmount parses a user-typed monetary amount: a number greater than zero, at most
// models.MaxAmount, with no more than two decimal places.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: proposed amount is required", ErrValidation)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: proposed amount %q is not a number", ErrValidation, raw)
	}
	switch {
	case !amount.IsPositive():
		return decimal.Zero, fmt.Errorf("%w: proposed amount must be greater than zero", ErrValidation)
	case !amount.Equal(amount.Round(2)):
		return decimal.Zero, fmt.Errorf("%w: proposed amount has more than two decimal places", ErrValidation)
	case amount.GreaterThan(models.MaxAmount):
		return decimal.Zero, fmt.Errorf("%w: proposed amount exceeds %s", ErrValidation, models.MaxAmount.StringFixed(2))
	}
	return amount, nil
}

// insertError maps a unique violation on (job_id, finder_id) to ErrAlreadyEngaged.
func insertError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyEngaged
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
