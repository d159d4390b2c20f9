// Package dashboard serves composite read views built from the engagement and ledger packages.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/gigfinder/backend/internal/browse"
	"github.com/gigfinder/backend/internal/engagement"
	"github.com/gigfinder/backend/internal/handlers"
	"github.com/gigfinder/backend/internal/httpx"
	"github.com/gigfinder/backend/internal/ledger"
	"github.com/gigfinder/backend/internal/middleware"
)

type Refresher interface {
	Refresh(ctx context.Context, finderID uuid.UUID) (engagement.Buckets, error)
}

type WalletLoader interface {
	Load(ctx context.Context, userID uuid.UUID) (ledger.View, error)
}

type Handler struct {
	engagements Refresher
	board       handlers.Lister
	wallet      WalletLoader
	log         *slog.Logger
}

func NewHandler(engagements Refresher, board handlers.Lister, wallet WalletLoader, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{engagements: engagements, board: board, wallet: wallet, log: log}
}

type MeResponse struct {
	ID            string `json:"id"`
	Role          string `json:"role"`
	DisplayName   string `json:"display_name"`
	Balance       string `json:"balance"`
	TotalEarned   string `json:"total_earned"`
	PendingAmount string `json:"pending_amount"`
}

type FinderDashboard struct {
	Engagements handlers.BucketsResponse  `json:"engagements"`
	Jobs        []handlers.ListingResponse `json:"jobs"`
	Wallet      ledger.WalletResponse      `json:"wallet"`
}

// GET /api/v1/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	v, err := h.wallet.Load(r.Context(), id.UserID)
	if err != nil {
		h.log.Error("load wallet failed", "error", err, "user_id", id.UserID)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, MeResponse{
		ID:            id.UserID.String(),
		Role:          id.Role,
		DisplayName:   id.Name,
		Balance:       ledger.Format(v.Balance),
		TotalEarned:   ledger.Format(v.TotalEarned),
		PendingAmount: ledger.Format(v.PendingAmount),
	})
}

// GET /api/v1/dashboard?q=&category=
//
// Reads run one after another; any failure fails the whole page rather than rendering
// a partial dashboard.
func (h *Handler) GetFinderDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := middleware.IdentityFromCtx(ctx)

	b, err := h.engagements.Refresh(ctx, id.UserID)
	if err != nil {
		h.log.Error("dashboard engagements failed", "error", err, "user_id", id.UserID)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load engagements")
		return
	}
	q := browse.Query{Text: r.URL.Query().Get("q"), Category: r.URL.Query().Get("category")}
	listings, err := h.board.List(ctx, id.UserID, q)
	if err != nil {
		h.log.Error("dashboard jobs failed", "error", err, "user_id", id.UserID)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load jobs")
		return
	}
	v, err := h.wallet.Load(ctx, id.UserID)
	if err != nil {
		h.log.Error("dashboard wallet failed", "error", err, "user_id", id.UserID)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load wallet")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, FinderDashboard{
		Engagements: handlers.BucketsToResponse(b),
		Jobs:        handlers.ListingsToResponse(listings),
		Wallet:      ledger.ViewToResponse(v),
	})
}
