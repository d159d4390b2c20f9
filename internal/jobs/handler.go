package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gigfinder/backend/internal/httpx"
	"github.com/gigfinder/backend/internal/middleware"
	"github.com/gigfinder/backend/internal/models"
)

type CreatePostingRequest struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Budget           json.RawMessage `json:"budget"`
	Category         string          `json:"category"`
	Responsibilities *string         `json:"roles_responsibilities"`
	StartDate        *string         `json:"start_date"`
	EndDate          *string         `json:"end_date"`
	StartTime        *string         `json:"start_time"`
	EndTime          *string         `json:"end_time"`
}

type DecisionRequest struct {
	Approve bool `json:"approve"`
}

type PostingResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Budget           string    `json:"budget"`
	Category         string    `json:"category"`
	Status           string    `json:"status"`
	PostedBy         string    `json:"posted_by"`
	PosterName       string    `json:"poster_name"`
	Responsibilities *string   `json:"roles_responsibilities,omitempty"`
	StartDate        *string   `json:"start_date,omitempty"`
	EndDate          *string   `json:"end_date,omitempty"`
	StartTime        *string   `json:"start_time,omitempty"`
	EndTime          *string   `json:"end_time,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type EngagementResponse struct {
	ID             string                `json:"id"`
	Kind           models.EngagementKind `json:"kind"`
	JobID          string                `json:"job_id"`
	FinderID       string                `json:"finder_id"`
	FinderName     string                `json:"finder_name"`
	Status         string                `json:"status"`
	Message        string                `json:"message"`
	Contact        models.ContactDetails `json:"contact_details"`
	ProposedAmount *string               `json:"proposed_amount,omitempty"`
	SubmittedAt    time.Time             `json:"submitted_at"`
}

// SchemaValidator checks a raw request body against a named schema.
type SchemaValidator interface {
	Validate(schema string, body []byte) error
}

// DecisionObserver is told about every poster decision. May be nil.
type DecisionObserver func(kind models.EngagementKind, accepted bool)

type Handler struct {
	svc       Service
	validator SchemaValidator
	observe   DecisionObserver
	log       *slog.Logger
}

func NewHandler(svc Service, validator SchemaValidator, observe DecisionObserver, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, validator: validator, observe: observe, log: log}
}

// POST /api/v1/jobs
func (h *Handler) CreatePosting(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	var req CreatePostingRequest
	if !h.decode(w, r, "posting", &req) {
		return
	}
	budget, err := decimal.NewFromString(httpx.NumberText(req.Budget))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "budget must be a number")
		return
	}
	job, err := h.svc.CreatePosting(r.Context(), Poster{ID: id.UserID, Name: id.Name}, CreateParams{
		Title:            req.Title,
		Description:      req.Description,
		Budget:           budget,
		Category:         req.Category,
		Responsibilities: req.Responsibilities,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
	})
	if err != nil {
		h.writeServiceError(w, "create posting", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, PostingToResponse(job))
}

// GET /api/v1/jobs/mine
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	list, err := h.svc.ListByPoster(r.Context(), id.UserID)
	if err != nil {
		h.writeServiceError(w, "list postings", err)
		return
	}
	resp := make([]PostingResponse, 0, len(list))
	for i := range list {
		resp = append(resp, PostingToResponse(&list[i]))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// GET /api/v1/jobs/{id}/engagements
func (h *Handler) ListEngagements(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	jobID, ok := pathID(w, r)
	if !ok {
		return
	}
	pe, err := h.svc.ListEngagements(r.Context(), id.UserID, jobID)
	if err != nil {
		h.writeServiceError(w, "list engagements", err)
		return
	}
	resp := make([]EngagementResponse, 0, len(pe.Applications)+len(pe.Negotiations))
	for _, a := range pe.Applications {
		resp = append(resp, EngagementToResponse(models.FromApplication(a)))
	}
	for _, n := range pe.Negotiations {
		resp = append(resp, EngagementToResponse(models.FromNegotiation(n)))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// POST /api/v1/applications/{id}/decision
func (h *Handler) DecideApplication(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	appID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req DecisionRequest
	if !h.decode(w, r, "decision", &req) {
		return
	}
	app, err := h.svc.DecideApplication(r.Context(), id.UserID, appID, req.Approve)
	if err != nil {
		h.writeServiceError(w, "decide application", err)
		return
	}
	h.observeDecision(models.KindApplication, req.Approve)
	httpx.WriteJSON(w, http.StatusOK, EngagementToResponse(models.FromApplication(*app)))
}

// POST /api/v1/negotiations/{id}/decision
func (h *Handler) DecideNegotiation(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	negID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req DecisionRequest
	if !h.decode(w, r, "decision", &req) {
		return
	}
	neg, err := h.svc.DecideNegotiation(r.Context(), id.UserID, negID, req.Approve)
	if err != nil {
		h.writeServiceError(w, "decide negotiation", err)
		return
	}
	h.observeDecision(models.KindNegotiation, req.Approve)
	httpx.WriteJSON(w, http.StatusOK, EngagementToResponse(models.FromNegotiation(*neg)))
}

// POST /api/v1/jobs/{id}/complete
func (h *Handler) CompletePosting(w http.ResponseWriter, r *http.Request) {
	h.closePosting(w, r, "complete posting", h.svc.CompletePosting)
}

// POST /api/v1/jobs/{id}/cancel
func (h *Handler) CancelPosting(w http.ResponseWriter, r *http.Request) {
	h.closePosting(w, r, "cancel posting", h.svc.CancelPosting)
}

func (h *Handler) closePosting(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, posterID, jobID uuid.UUID) (*models.JobPosting, error)) {
	id := middleware.IdentityFromCtx(r.Context())
	jobID, ok := pathID(w, r)
	if !ok {
		return
	}
	job, err := fn(r.Context(), id.UserID, jobID)
	if err != nil {
		h.writeServiceError(w, op, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, PostingToResponse(job))
}

func (h *Handler) observeDecision(kind models.EngagementKind, accepted bool) {
	if h.observe != nil {
		h.observe(kind, accepted)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, schema string, dst any) bool {
	body, err := httpx.ReadBody(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "failed to read body")
		return false
	}
	if h.validator != nil {
		if err := h.validator.Validate(schema, body); err != nil {
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

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error(op+" failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, op+" failed")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func PostingToResponse(j *models.JobPosting) PostingResponse {
	return PostingResponse{
		ID:               j.ID.String(),
		Title:            j.Title,
		Description:      j.Description,
		Budget:           j.Budget.StringFixed(2),
		Category:         j.Category,
		Status:           string(j.Status),
		PostedBy:         j.PosterID.String(),
		PosterName:       j.PosterName,
		Responsibilities: j.Responsibilities,
		StartDate:        j.StartDate,
		EndDate:          j.EndDate,
		StartTime:        j.StartTime,
		EndTime:          j.EndTime,
		CreatedAt:        j.CreatedAt,
	}
}

// EngagementToResponse flattens either engagement kind into one wire shape.
func EngagementToResponse(e models.Engagement) EngagementResponse {
	out := EngagementResponse{
		ID:          e.ID().String(),
		Kind:        e.Kind,
		JobID:       e.JobID().String(),
		FinderID:    e.FinderID().String(),
		Status:      e.Status(),
		SubmittedAt: e.SubmittedAt(),
	}
	switch e.Kind {
	case models.KindApplication:
		out.FinderName = e.Application.FinderName
		out.Message = e.Application.Message
		out.Contact = e.Application.Contact
	case models.KindNegotiation:
		out.FinderName = e.Negotiation.FinderName
		out.Message = e.Negotiation.Message
		out.Contact = e.Negotiation.Contact
		amt := e.Negotiation.ProposedAmount.StringFixed(2)
		out.ProposedAmount = &amt
	}
	return out
}
