package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplicationStatus is the state of a finder's application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// NegotiationStatus is the state of a finder's counter-offer.
type NegotiationStatus string

const (
	NegotiationPending  NegotiationStatus = "pending"
	NegotiationAccepted NegotiationStatus = "accepted"
	NegotiationRejected NegotiationStatus = "rejected"
)

// Contact defaults used when the finder leaves the selectors untouched.
const (
	DefaultDistance    = "5 km"
	DefaultTimeToReach = "30 mins"
)

// ContactDetails is what a finder shares with the poster when engaging.
type ContactDetails struct {
	Email       string `json:"email"`
	Phone       string `json:"contact"`
	Distance    string `json:"distance"`
	TimeToReach string `json:"time_to_reach"`
}

// WithDefaults fills the selector fields the same way the submission form does.
func (c ContactDetails) WithDefaults() ContactDetails {
	if c.Distance == "" {
		c.Distance = DefaultDistance
	}
	if c.TimeToReach == "" {
		c.TimeToReach = DefaultTimeToReach
	}
	return c
}

// Application is a finder applying at the posting's budget. Job is joined by the repository.
type Application struct {
	ID         uuid.UUID         `json:"id"`
	JobID      uuid.UUID         `json:"job_id"`
	Job        JobPosting        `json:"job"`
	FinderID   uuid.UUID         `json:"finder_id"`
	FinderName string            `json:"finder_name"`
	Status     ApplicationStatus `json:"status"`
	Message    string            `json:"message,omitempty"`
	Contact    ContactDetails    `json:"contact"`
	AppliedAt  time.Time         `json:"applied_at"`
}

// Negotiation is a finder's counter-offer on a posting. Job is joined by the repository.
type Negotiation struct {
	ID             uuid.UUID         `json:"id"`
	JobID          uuid.UUID         `json:"job_id"`
	Job            JobPosting        `json:"job"`
	FinderID       uuid.UUID         `json:"finder_id"`
	FinderName     string            `json:"finder_name"`
	ProposedAmount decimal.Decimal   `json:"proposed_amount"`
	Status         NegotiationStatus `json:"status"`
	Message        string            `json:"message"`
	Contact        ContactDetails    `json:"contact"`
	CreatedAt      time.Time         `json:"created_at"`
}

// EngagementKind discriminates the Engagement variant.
type EngagementKind string

const (
	KindApplication EngagementKind = "application"
	KindNegotiation EngagementKind = "negotiation"
)

// Engagement is either an Application or a Negotiation. Exactly one payload is set, matching Kind.
type Engagement struct {
	Kind        EngagementKind `json:"kind"`
	Application *Application   `json:"application,omitempty"`
	Negotiation *Negotiation   `json:"negotiation,omitempty"`
}

// FromApplication wraps an application.
func FromApplication(a Application) Engagement {
	return Engagement{Kind: KindApplication, Application: &a}
}

// FromNegotiation wraps a negotiation.
func FromNegotiation(n Negotiation) Engagement {
	return Engagement{Kind: KindNegotiation, Negotiation: &n}
}

func (e Engagement) ID() uuid.UUID {
	switch e.Kind {
	case KindApplication:
		return e.Application.ID
	case KindNegotiation:
		return e.Negotiation.ID
	}
	panic(fmt.Sprintf("unknown engagement kind %q", e.Kind))
}

func (e Engagement) JobID() uuid.UUID {
	switch e.Kind {
	case KindApplication:
		return e.Application.JobID
	case KindNegotiation:
		return e.Negotiation.JobID
	}
	panic(fmt.Sprintf("unknown engagement kind %q", e.Kind))
}

func (e Engagement) Job() JobPosting {
	switch e.Kind {
	case KindApplication:
		return e.Application.Job
	case KindNegotiation:
		return e.Negotiation.Job
	}
	panic(fmt.Sprintf("unknown engagement kind %q", e.Kind))
}

func (e Engagement) FinderID() uuid.UUID {
	switch e.Kind {
	case KindApplication:
		return e.Application.FinderID
	case KindNegotiation:
		return e.Negotiation.FinderID
	}
	panic(fmt.Sprintf("unknown engagement kind %q", e.Kind))
}

func (e Engagement) SubmittedAt() time.Time {
	switch e.Kind {
	case KindApplication:
		return e.Application.AppliedAt
	case KindNegotiation:
		return e.Negotiation.CreatedAt
	}
	panic(fmt.Sprintf("unknown engagement kind %q", e.Kind))
}

// Status returns the engagement's own status as a plain string.
func (e Engagement) Status() string {
	switch e.Kind {
	case KindApplication:
		return string(e.Application.Status)
	case KindNegotiation:
		return string(e.Negotiation.Status)
	}
	panic(fmt.Sprintf("unknown engagement kind %q", e.Kind))
}

// Accepted reports whether the engagement reached its terminal-positive status
// (approved application, accepted negotiation).
func (e Engagement) Accepted() bool {
	switch e.Kind {
	case KindApplication:
		return e.Application.Status == ApplicationApproved
	case KindNegotiation:
		return e.Negotiation.Status == NegotiationAccepted
	}
	panic(fmt.Sprintf("unknown engagement kind %q", e.Kind))
}

// SettlementAmount is the amount owed for an accepted engagement: the counter-offer for a
// negotiation, the posting's budget for an application. ok is false for engagements that
// are not accepted.
func (e Engagement) SettlementAmount() (amount decimal.Decimal, ok bool) {
	if !e.Accepted() {
		return decimal.Zero, false
	}
	switch e.Kind {
	case KindApplication:
		return e.Application.Job.Budget, true
	case KindNegotiation:
		return e.Negotiation.ProposedAmount, true
	}
	panic(fmt.Sprintf("unknown engagement kind %q", e.Kind))
}
