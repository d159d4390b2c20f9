package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gigfinder/backend/internal/httpx"
	"github.com/gigfinder/backend/internal/middleware"
	"github.com/gigfinder/backend/internal/models"
)

type WithdrawRequest struct {
	Amount      json.RawMessage `json:"amount"`
	Destination string          `json:"destination"`
}

type TransactionResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
	JobID       *string   `json:"job_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type WithdrawalResponse struct {
	ID          string     `json:"id"`
	Amount      string     `json:"amount"`
	Destination string     `json:"destination"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// WalletResponse renders every figure with two decimals; missing figures read "0.00".
type WalletResponse struct {
	Balance       string                `json:"balance"`
	TotalEarned   string                `json:"total_earned"`
	PendingAmount string                `json:"pending_amount"`
	Transactions  []TransactionResponse `json:"transactions"`
	Withdrawals   []WithdrawalResponse  `json:"withdrawals"`
}

type SchemaValidator interface {
	Validate(schema string, body []byte) error
}

// WithdrawalObserver is told the result of every withdrawal request. May be nil.
type WithdrawalObserver func(result string)

type Handler struct {
	viewer    *Viewer
	validator SchemaValidator
	observe   WithdrawalObserver
	log       *slog.Logger
}

func NewHandler(viewer *Viewer, validator SchemaValidator, observe WithdrawalObserver, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{viewer: viewer, validator: validator, observe: observe, log: log}
}

// GET /api/v1/wallet
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	v, err := h.viewer.Load(r.Context(), id.UserID)
	if err != nil {
		h.log.Error("load wallet failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load wallet")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ViewToResponse(v))
}

// POST /api/v1/wallet/withdrawals
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	body, err := httpx.ReadBody(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if h.validator != nil {
		if err := h.validator.Validate("withdrawal", body); err != nil {
			httpx.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	var req WithdrawRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	amount, err := decimal.NewFromString(httpx.NumberText(req.Amount))
	if err != nil {
		h.result("invalid")
		httpx.WriteError(w, http.StatusBadRequest, "amount must be a number")
		return
	}
	rec, v, err := h.viewer.Withdraw(r.Context(), id.UserID, amount, req.Destination)
	switch {
	case err == nil:
		h.result("ok")
		httpx.WriteJSON(w, http.StatusCreated, map[string]any{
			"withdrawal": withdrawalToResponse(*rec),
			"wallet":     ViewToResponse(v),
		})
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrMissingDestination):
		h.result("invalid")
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInsufficientFunds):
		h.result("insufficient_funds")
		httpx.WriteError(w, http.StatusConflict, "insufficient funds")
	case rec != nil:
		// The withdrawal is recorded; only the reload failed.
		h.result("ok")
		h.log.Error("reload wallet after withdrawal failed", "error", err)
		httpx.WriteJSON(w, http.StatusBadGateway, map[string]any{
			"error":      "withdrawal recorded, but the wallet could not be reloaded",
			"withdrawal": withdrawalToResponse(*rec),
		})
	default:
		h.result("error")
		h.log.Error("withdraw failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "withdrawal failed")
	}
}

func (h *Handler) result(res string) {
	if h.observe != nil {
		h.observe(res)
	}
}

func ViewToResponse(v View) WalletResponse {
	out := WalletResponse{
		Balance:       Format(v.Balance),
		TotalEarned:   Format(v.TotalEarned),
		PendingAmount: Format(v.PendingAmount),
		Transactions:  make([]TransactionResponse, 0, len(v.Transactions)),
		Withdrawals:   make([]WithdrawalResponse, 0, len(v.Withdrawals)),
	}
	for _, t := range v.Transactions {
		tr := TransactionResponse{
			ID:          t.ID.String(),
			Type:        t.Type,
			Amount:      Format(t.Amount),
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		}
		if t.JobID != nil {
			s := t.JobID.String()
			tr.JobID = &s
		}
		out.Transactions = append(out.Transactions, tr)
	}
	for _, wd := range v.Withdrawals {
		out.Withdrawals = append(out.Withdrawals, withdrawalToResponse(wd))
	}
	return out
}

func withdrawalToResponse(w models.WithdrawalRecord) WithdrawalResponse {
	return WithdrawalResponse{
		ID:          w.ID.String(),
		Amount:      Format(w.Amount),
		Destination: w.Destination,
		Status:      w.Status,
		CreatedAt:   w.CreatedAt,
		ProcessedAt: w.ProcessedAt,
	}
}
