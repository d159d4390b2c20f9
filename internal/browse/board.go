package browse

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gigfinder/backend/internal/models"
)

// Source is the read side of the engagement repository.
type Source interface {
	ListActivePostings(ctx context.Context) ([]models.JobPosting, error)
	ListApplicationsForFinder(ctx context.Context, finderID uuid.UUID) ([]models.Application, error)
	ListNegotiationsForFinder(ctx context.Context, finderID uuid.UUID) ([]models.Negotiation, error)
}

// Board serves the job board to one finder at a time.
type Board struct {
	src Source
}

func NewBoard(src Source) *Board {
	return &Board{src: src}
}

// List returns active postings matching q, newest first, annotated with the finder's engagements.
func (b *Board) List(ctx context.Context, finderID uuid.UUID, q Query) ([]Listing, error) {
	postings, err := b.src.ListActivePostings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active postings: %w", err)
	}
	apps, err := b.src.ListApplicationsForFinder(ctx, finderID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	negs, err := b.src.ListNegotiationsForFinder(ctx, finderID)
	if err != nil {
		return nil, fmt.Errorf("list negotiations: %w", err)
	}
	return Annotate(Filter(postings, q), apps, negs), nil
}
