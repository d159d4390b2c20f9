// Package browse filters the active job board and marks postings the finder already engaged on.
package browse

import (
	"strings"

	"github.com/google/uuid"

	"github.com/gigfinder/backend/internal/models"
)

// Query is the finder's search box and category selector.
type Query struct {
	Text     string
	Category string
}

// Listing is a posting as shown to one finder.
type Listing struct {
	models.JobPosting
	HasApplied    bool `json:"has_applied"`
	HasNegotiated bool `json:"has_negotiated"`
	// CanEngage is false once the finder applied or negotiated on the posting.
	CanEngage bool `json:"can_engage"`
}

// Matches reports whether a posting satisfies the query: the text is a case-insensitive
// substring of the title or description, and the category is "all" (or unset) or equal.
func (q Query) Matches(p models.JobPosting) bool {
	if q.Category != "" && q.Category != models.CategoryAll && q.Category != p.Category {
		return false
	}
	text := strings.ToLower(q.Text)
	return strings.Contains(strings.ToLower(p.Title), text) ||
		strings.Contains(strings.ToLower(p.Description), text)
}

// Filter returns the postings matching q in input order.
func Filter(postings []models.JobPosting, q Query) []models.JobPosting {
	out := make([]models.JobPosting, 0, len(postings))
	for _, p := range postings {
		if q.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Annotate marks each posting with the finder's existing engagements on it, whatever their status.
func Annotate(postings []models.JobPosting, apps []models.Application, negs []models.Negotiation) []Listing {
	applied := make(map[uuid.UUID]bool, len(apps))
	for _, a := range apps {
		applied[a.JobID] = true
	}
	negotiated := make(map[uuid.UUID]bool, len(negs))
	for _, n := range negs {
		negotiated[n.JobID] = true
	}
	out := make([]Listing, 0, len(postings))
	for _, p := range postings {
		l := Listing{JobPosting: p, HasApplied: applied[p.ID], HasNegotiated: negotiated[p.ID]}
		l.CanEngage = !l.HasApplied && !l.HasNegotiated
		out = append(out, l)
	}
	return out
}

// IsKnownCategory reports whether c is one of models.Categories.
func IsKnownCategory(c string) bool {
	for _, known := range models.Categories {
		if known == c {
			return true
		}
	}
	return false
}
