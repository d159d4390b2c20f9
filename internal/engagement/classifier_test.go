package engagement

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gigfinder/backend/internal/models"
)

func posting(status models.PostingStatus, budget int64) models.JobPosting {
	return models.JobPosting{ID: uuid.New(), Title: "Job", Budget: decimal.NewFromInt(budget), Status: status, Category: "tutor"}
}

func app(job models.JobPosting, status models.ApplicationStatus) models.Application {
	return models.Application{ID: uuid.New(), JobID: job.ID, Job: job, FinderID: uuid.New(), Status: status, AppliedAt: time.Now()}
}

func neg(job models.JobPosting, amount int64, status models.NegotiationStatus) models.Negotiation {
	return models.Negotiation{ID: uuid.New(), JobID: job.ID, Job: job, FinderID: uuid.New(),
		ProposedAmount: decimal.NewFromInt(amount), Status: status, CreatedAt: time.Now()}
}

func ids(list []models.Engagement) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID())
	}
	return out
}

func contains(list []models.Engagement, id uuid.UUID) bool {
	for _, e := range list {
		if e.ID() == id {
			return true
		}
	}
	return false
}

func TestClassify_ApprovedOnActiveJobIsConfirmedOnly(t *testing.T) {
	a := app(posting(models.PostingActive, 5000), models.ApplicationApproved)
	b := Classify([]models.Application{a}, nil)

	if !contains(b.Confirmed, a.ID) {
		t.Fatal("approved application missing from confirmed")
	}
	if contains(b.Past, a.ID) || len(b.PendingApplications) != 0 || len(b.PendingNegotiations) != 0 || len(b.Closed) != 0 {
		t.Fatalf("approved application leaked into another view: %+v", b)
	}
	amt, ok := b.Confirmed[0].SettlementAmount()
	if !ok || !amt.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("application settlement = %s (ok=%v), want the budget", amt, ok)
	}
}

func TestClassify_AcceptedNegotiationOnCompletedJobIsPastAtProposedAmount(t *testing.T) {
	n := neg(posting(models.PostingCompleted, 5000), 4000, models.NegotiationAccepted)
	b := Classify(nil, []models.Negotiation{n})

	if len(b.Past) != 1 || b.Past[0].ID() != n.ID {
		t.Fatalf("expected negotiation in past, got %+v", b)
	}
	if len(b.Confirmed) != 0 {
		t.Fatal("completed job must not be confirmed")
	}
	amt, ok := b.Past[0].SettlementAmount()
	if !ok || !amt.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("settlement = %s, want proposed amount 4000 not budget", amt)
	}
}

func TestClassify_PendingOnlyInPendingViews(t *testing.T) {
	a := app(posting(models.PostingActive, 100), models.ApplicationPending)
	n := neg(posting(models.PostingCompleted, 100), 50, models.NegotiationPending)
	b := Classify([]models.Application{a}, []models.Negotiation{n})

	if len(b.PendingApplications) != 1 || b.PendingApplications[0].ID != a.ID {
		t.Fatalf("pending application misplaced: %+v", b)
	}
	if len(b.PendingNegotiations) != 1 || b.PendingNegotiations[0].ID != n.ID {
		t.Fatalf("pending negotiation misplaced: %+v", b)
	}
	if len(b.Confirmed)+len(b.Past)+len(b.Closed) != 0 {
		t.Fatalf("pending engagements leaked: %+v", b)
	}
	if _, ok := models.FromApplication(a).SettlementAmount(); ok {
		t.Error("pending application must not have a settlement amount")
	}
}

func TestClassify_CancelledJobNeverPendingOrConfirmed(t *testing.T) {
	cancelled := posting(models.PostingCancelled, 100)
	pa := app(cancelled, models.ApplicationPending)
	aa := app(cancelled, models.ApplicationApproved)
	pn := neg(cancelled, 80, models.NegotiationPending)
	b := Classify([]models.Application{pa, aa}, []models.Negotiation{pn})

	if len(b.PendingApplications)+len(b.PendingNegotiations)+len(b.Confirmed)+len(b.Past) != 0 {
		t.Fatalf("cancelled job leaked into an active view: %+v", b)
	}
	want := []uuid.UUID{pa.ID, aa.ID, pn.ID}
	if got := ids(b.Closed); !reflect.DeepEqual(got, want) {
		t.Fatalf("closed = %v, want %v", got, want)
	}
}

func TestClassify_RejectedIsClosed(t *testing.T) {
	a := app(posting(models.PostingActive, 100), models.ApplicationRejected)
	n := neg(posting(models.PostingCompleted, 100), 90, models.NegotiationRejected)
	b := Classify([]models.Application{a}, []models.Negotiation{n})
	if got := ids(b.Closed); !reflect.DeepEqual(got, []uuid.UUID{a.ID, n.ID}) {
		t.Fatalf("closed = %v", got)
	}
}

func TestClassify_PartitionAndOrder(t *testing.T) {
	active := posting(models.PostingActive, 300)
	done := posting(models.PostingCompleted, 300)
	apps := []models.Application{
		app(active, models.ApplicationApproved),
		app(done, models.ApplicationApproved),
		app(active, models.ApplicationApproved),
		app(active, models.ApplicationPending),
	}
	negs := []models.Negotiation{
		neg(active, 10, models.NegotiationAccepted),
		neg(done, 20, models.NegotiationAccepted),
	}
	b := Classify(apps, negs)

	total := len(b.PendingApplications) + len(b.PendingNegotiations) + len(b.Confirmed) + len(b.Past) + len(b.Closed)
	if total != len(apps)+len(negs) {
		t.Fatalf("views hold %d engagements, want %d", total, len(apps)+len(negs))
	}
	// Read order is kept, applications before negotiations.
	wantConfirmed := []uuid.UUID{apps[0].ID, apps[2].ID, negs[0].ID}
	if got := ids(b.Confirmed); !reflect.DeepEqual(got, wantConfirmed) {
		t.Errorf("confirmed = %v, want %v", got, wantConfirmed)
	}
	wantPast := []uuid.UUID{apps[1].ID, negs[1].ID}
	if got := ids(b.Past); !reflect.DeepEqual(got, wantPast) {
		t.Errorf("past = %v, want %v", got, wantPast)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	active := posting(models.PostingActive, 300)
	apps := []models.Application{app(active, models.ApplicationApproved), app(active, models.ApplicationPending)}
	negs := []models.Negotiation{neg(active, 10, models.NegotiationRejected)}

	first := Classify(apps, negs)
	second := Classify(apps, negs)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("classification is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestClassify_EmptyInputGivesEmptyViews(t *testing.T) {
	b := Classify(nil, nil)
	if b.PendingApplications == nil || b.PendingNegotiations == nil || b.Confirmed == nil || b.Past == nil || b.Closed == nil {
		t.Fatal("views must be empty slices, not nil")
	}
}
