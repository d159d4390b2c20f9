package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigfinder/backend/internal/models"
)

// Connect opens a pool and verifies the server is reachable.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

var postingFields = []string{
	"id", "title", "description", "budget", "poster_id", "poster_name", "category", "status",
	"roles_responsibilities", "start_date", "end_date", "start_time", "end_time", "created_at",
}

// PostingColumns lists the job_postings columns in the order PostingDest expects,
// qualified with alias when one is given.
func PostingColumns(alias string) string {
	if alias == "" {
		return strings.Join(postingFields, ", ")
	}
	cols := make([]string, len(postingFields))
	for i, f := range postingFields {
		cols[i] = alias + "." + f
	}
	return strings.Join(cols, ", ")
}

// PostingDest returns scan targets matching PostingColumns.
func PostingDest(p *models.JobPosting) []any {
	return []any{
		&p.ID, &p.Title, &p.Description, &p.Budget, &p.PosterID, &p.PosterName, &p.Category, &p.Status,
		&p.Responsibilities, &p.StartDate, &p.EndDate, &p.StartTime, &p.EndTime, &p.CreatedAt,
	}
}
