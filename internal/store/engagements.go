package store

import "github.com/gigfinder/backend/internal/models"

// ApplicationColumns selects an application aliased "a". Queries follow it with
// PostingColumns("j") for the joined posting; ApplicationDest scans both.
const ApplicationColumns = `a.id, a.job_id, a.finder_id, a.finder_name, a.status, a.message,
	a.contact_email, a.contact_phone, a.distance, a.time_to_reach, a.applied_at`

// NegotiationColumns selects a negotiation aliased "n", followed by PostingColumns("j").
const NegotiationColumns = `n.id, n.job_id, n.finder_id, n.finder_name, n.proposed_amount, n.status, n.message,
	n.contact_email, n.contact_phone, n.distance, n.time_to_reach, n.created_at`

// ApplicationDest returns scan targets for ApplicationColumns plus the joined posting.
func ApplicationDest(a *models.Application) []any {
	dest := []any{&a.ID, &a.JobID, &a.FinderID, &a.FinderName, &a.Status, &a.Message,
		&a.Contact.Email, &a.Contact.Phone, &a.Contact.Distance, &a.Contact.TimeToReach, &a.AppliedAt}
	return append(dest, PostingDest(&a.Job)...)
}

// NegotiationDest returns scan targets for NegotiationColumns plus the joined posting.
func NegotiationDest(n *models.Negotiation) []any {
	dest := []any{&n.ID, &n.JobID, &n.FinderID, &n.FinderName, &n.ProposedAmount, &n.Status, &n.Message,
		&n.Contact.Email, &n.Contact.Phone, &n.Contact.Distance, &n.Contact.TimeToReach, &n.CreatedAt}
	return append(dest, PostingDest(&n.Job)...)
}
