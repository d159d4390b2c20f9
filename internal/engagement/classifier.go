package engagement

import (
	"github.com/gigfinder/backend/internal/models"
)

// Buckets is a finder's engagements partitioned for display. The views are disjoint and
// together hold every input engagement exactly once.
type Buckets struct {
	PendingApplications []models.Application
	PendingNegotiations []models.Negotiation
	// Confirmed holds accepted engagements whose posting is still active.
	Confirmed []models.Engagement
	// Past holds accepted engagements whose posting is completed.
	Past []models.Engagement
	// Closed holds rejected engagements and anything on a cancelled posting.
	Closed []models.Engagement
}

// Classify partitions applications and negotiations. It does not sort: order within each
// view is the order the repository returned, applications before negotiations in the
// mixed views.
func Classify(apps []models.Application, negs []models.Negotiation) Buckets {
	b := Buckets{
		PendingApplications: []models.Application{},
		PendingNegotiations: []models.Negotiation{},
		Confirmed:           []models.Engagement{},
		Past:                []models.Engagement{},
		Closed:              []models.Engagement{},
	}
	for _, a := range apps {
		if a.Status == models.ApplicationPending && a.Job.Status != models.PostingCancelled {
			b.PendingApplications = append(b.PendingApplications, a)
			continue
		}
		b.place(models.FromApplication(a))
	}
	for _, n := range negs {
		if n.Status == models.NegotiationPending && n.Job.Status != models.PostingCancelled {
			b.PendingNegotiations = append(b.PendingNegotiations, n)
			continue
		}
		b.place(models.FromNegotiation(n))
	}
	return b
}

// place routes a non-pending (or cancelled) engagement.
func (b *Buckets) place(e models.Engagement) {
	if !e.Accepted() {
		b.Closed = append(b.Closed, e)
		return
	}
	switch e.Job().Status {
	case models.PostingCompleted:
		b.Past = append(b.Past, e)
	case models.PostingCancelled:
		b.Closed = append(b.Closed, e)
	default:
		b.Confirmed = append(b.Confirmed, e)
	}
}
