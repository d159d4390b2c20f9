package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostingStatus is the lifecycle state of a job posting.
type PostingStatus string

const (
	PostingActive    PostingStatus = "active"
	PostingCompleted PostingStatus = "completed"
	PostingCancelled PostingStatus = "cancelled"
)

// MaxAmount is the largest budget or counter-offer a NUMERIC(12, 2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// CategoryAll disables category filtering in the job browser.
const CategoryAll = "all"

// Categories offered by posters.
var Categories = []string{
	"tutor",
	"reception",
	"catering",
	"marketing",
	"hotel-care",
	"customer-service",
	"admin",
	"events",
	"photography",
	"delivery",
}

// JobPosting is a short-term job created by a poster.
type JobPosting struct {
	ID               uuid.UUID       `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Budget           decimal.Decimal `json:"budget"`
	PosterID         uuid.UUID       `json:"posted_by"`
	PosterName       string          `json:"poster_name"`
	Category         string          `json:"category"`
	Status           PostingStatus   `json:"status"`
	Responsibilities *string         `json:"roles_responsibilities,omitempty"`
	StartDate        *string         `json:"start_date,omitempty"`
	EndDate          *string         `json:"end_date,omitempty"`
	StartTime        *string         `json:"start_time,omitempty"`
	EndTime          *string         `json:"end_time,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

var postingTransitions = map[PostingStatus]map[PostingStatus]struct{}{
	PostingActive: {PostingCompleted: {}, PostingCancelled: {}},
}

// CanTransitionPosting reports whether a posting may move from one status to another.
// Completed and cancelled are terminal.
func CanTransitionPosting(from, to PostingStatus) bool {
	next, ok := postingTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}
