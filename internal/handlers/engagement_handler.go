package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gigfinder/backend/internal/auth"
	"github.com/gigfinder/backend/internal/browse"
	"github.com/gigfinder/backend/internal/engagement"
	"github.com/gigfinder/backend/internal/httpx"
	"github.com/gigfinder/backend/internal/jobs"
	"github.com/gigfinder/backend/internal/middleware"
	"github.com/gigfinder/backend/internal/models"
)

// Request/response structs (snake_case JSON). Contact fields mirror what the finder's
// profile supplies; blanks fall back to the defaults in models.ContactDetails.

type contactFields struct {
	Email       string `json:"email"`
	Contact     string `json:"contact"`
	Distance    string `json:"distance"`
	TimeToReach string `json:"time_to_reach"`
}

func (c contactFields) details() models.ContactDetails {
	return models.ContactDetails{Email: c.Email, Phone: c.Contact, Distance: c.Distance, TimeToReach: c.TimeToReach}
}

type applyRequest struct {
	Message string `json:"message"`
	contactFields
}

type negotiateRequest struct {
	Message        string          `json:"message"`
	ProposedAmount json.RawMessage `json:"proposed_amount"`
	contactFields
}

type SettledEngagement struct {
	jobs.EngagementResponse
	Job              jobs.PostingResponse `json:"job"`
	SettlementAmount string               `json:"settlement_amount"`
}

type PendingEngagement struct {
	jobs.EngagementResponse
	Job jobs.PostingResponse `json:"job"`
}

type BucketsResponse struct {
	PendingApplications []PendingEngagement `json:"pending_applications"`
	PendingNegotiations []PendingEngagement `json:"pending_negotiations"`
	Confirmed           []SettledEngagement `json:"confirmed"`
	Past                []SettledEngagement `json:"past"`
	Closed              []PendingEngagement `json:"closed"`
}

type ListingResponse struct {
	jobs.PostingResponse
	HasApplied    bool `json:"has_applied"`
	HasNegotiated bool `json:"has_negotiated"`
	CanEngage     bool `json:"can_engage"`
}

// Submitter is the engagement orchestrator.
type Submitter interface {
	Refresh(ctx context.Context, finderID uuid.UUID) (engagement.Buckets, error)
	SubmitApplication(ctx context.Context, finder engagement.Finder, cmd engagement.ApplicationCommand) (engagement.Buckets, error)
	SubmitNegotiation(ctx context.Context, finder engagement.Finder, cmd engagement.NegotiationCommand) (engagement.Buckets, error)
}

// Lister is the job board.
type Lister interface {
	List(ctx context.Context, finderID uuid.UUID, q browse.Query) ([]browse.Listing, error)
}

type SchemaValidator interface {
	Validate(schema string, body []byte) error
}

// SubmissionObserver is told the outcome of every submission. May be nil.
type SubmissionObserver func(kind models.EngagementKind, result string)

// EngagementHandler serves the finder's side of the engagement lifecycle.
type EngagementHandler struct {
	Orchestrator Submitter
	Board        Lister
	Validator    SchemaValidator
	Observe      SubmissionObserver
	Logger       *slog.Logger
}

func (h *EngagementHandler) log() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// GET /api/v1/jobs?q=&category=
func (h *EngagementHandler) Browse(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	q := browse.Query{Text: r.URL.Query().Get("q"), Category: r.URL.Query().Get("category")}
	listings, err := h.Board.List(r.Context(), id.UserID, q)
	if err != nil {
		h.log().Error("browse jobs", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load jobs")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ListingsToResponse(listings))
}

// GET /api/v1/engagements
func (h *EngagementHandler) List(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	b, err := h.Orchestrator.Refresh(r.Context(), id.UserID)
	if err != nil {
		h.log().Error("list engagements", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load engagements")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, BucketsToResponse(b))
}

// POST /api/v1/jobs/{id}/applications
func (h *EngagementHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	jobID, ok := jobIDParam(w, r)
	if !ok {
		return
	}
	var req applyRequest
	if !h.decode(w, r, "application", &req) {
		return
	}
	b, err := h.Orchestrator.SubmitApplication(r.Context(), finderOf(id), engagement.ApplicationCommand{
		JobID:   jobID,
		Message: req.Message,
		Contact: req.details(),
	})
	h.respondSubmission(w, models.KindApplication, b, err)
}

// POST /api/v1/jobs/{id}/negotiations
func (h *EngagementHandler) Negotiate(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	jobID, ok := jobIDParam(w, r)
	if !ok {
		return
	}
	var req negotiateRequest
	if !h.decode(w, r, "negotiation", &req) {
		return
	}
	b, err := h.Orchestrator.SubmitNegotiation(r.Context(), finderOf(id), engagement.NegotiationCommand{
		JobID:          jobID,
		ProposedAmount: httpx.NumberText(req.ProposedAmount),
		Message:        req.Message,
		Contact:        req.details(),
	})
	h.respondSubmission(w, models.KindNegotiation, b, err)
}

func (h *EngagementHandler) respondSubmission(w http.ResponseWriter, kind models.EngagementKind, b engagement.Buckets, err error) {
	result := submissionResult(err)
	if h.Observe != nil {
		h.Observe(kind, result)
	}
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusCreated, BucketsToResponse(b))
	case errors.Is(err, engagement.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engagement.ErrJobNotActive):
		httpx.WriteError(w, http.StatusConflict, "job is no longer accepting engagements")
	case errors.Is(err, engagement.ErrAlreadyEngaged):
		httpx.WriteError(w, http.StatusConflict, "you already applied or negotiated on this job")
	case errors.Is(err, engagement.ErrRefreshFailed):
		h.log().Error("refresh after "+string(kind), "error", err)
		httpx.WriteJSON(w, http.StatusBadGateway, map[string]any{
			"error":    "submitted, but your engagements could not be reloaded",
			"recorded": true,
		})
	default:
		h.log().Error("submit "+string(kind), "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to submit")
	}
}

func submissionResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, engagement.ErrValidation):
		return "invalid"
	case errors.Is(err, engagement.ErrJobNotActive):
		return "not_active"
	case errors.Is(err, engagement.ErrAlreadyEngaged):
		return "duplicate"
	case errors.Is(err, engagement.ErrRefreshFailed):
		return "refresh_failed"
	default:
		return "error"
	}
}

func (h *EngagementHandler) decode(w http.ResponseWriter, r *http.Request, schema string, dst any) bool {
	body, err := httpx.ReadBody(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "failed to read body")
		return false
	}
	if h.Validator != nil {
		if err := h.Validator.Validate(schema, body); err != nil {
			httpx.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return false
		}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func finderOf(id *auth.Identity) engagement.Finder {
	return engagement.Finder{ID: id.UserID, Name: id.Name}
}

func jobIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid job id")
		return uuid.Nil, false
	}
	return id, true
}

// BucketsToResponse renders the classifier's five views. Only confirmed and past items
// carry a settlement amount.
func BucketsToResponse(b engagement.Buckets) BucketsResponse {
	out := BucketsResponse{
		PendingApplications: make([]PendingEngagement, 0, len(b.PendingApplications)),
		PendingNegotiations: make([]PendingEngagement, 0, len(b.PendingNegotiations)),
		Confirmed:           settled(b.Confirmed),
		Past:                settled(b.Past),
		Closed:              make([]PendingEngagement, 0, len(b.Closed)),
	}
	for _, a := range b.PendingApplications {
		out.PendingApplications = append(out.PendingApplications, pending(models.FromApplication(a)))
	}
	for _, n := range b.PendingNegotiations {
		out.PendingNegotiations = append(out.PendingNegotiations, pending(models.FromNegotiation(n)))
	}
	for _, e := range b.Closed {
		out.Closed = append(out.Closed, pending(e))
	}
	return out
}

func pending(e models.Engagement) PendingEngagement {
	job := e.Job()
	return PendingEngagement{EngagementResponse: jobs.EngagementToResponse(e), Job: jobs.PostingToResponse(&job)}
}

func settled(list []models.Engagement) []SettledEngagement {
	out := make([]SettledEngagement, 0, len(list))
	for _, e := range list {
		job := e.Job()
		se := SettledEngagement{EngagementResponse: jobs.EngagementToResponse(e), Job: jobs.PostingToResponse(&job)}
		if amt, ok := e.SettlementAmount(); ok {
			se.SettlementAmount = amt.StringFixed(2)
		}
		out = append(out, se)
	}
	return out
}

func ListingsToResponse(listings []browse.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		l := listings[i]
		out = append(out, ListingResponse{
			PostingResponse: jobs.PostingToResponse(&l.JobPosting),
			HasApplied:      l.HasApplied,
			HasNegotiated:   l.HasNegotiated,
			CanEngage:       l.CanEngage,
		})
	}
	return out
}
