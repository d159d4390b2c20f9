package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gigfinder/backend/internal/auth"
	"github.com/gigfinder/backend/internal/browse"
	"github.com/gigfinder/backend/internal/engagement"
	"github.com/gigfinder/backend/internal/ledger"
	"github.com/gigfinder/backend/internal/middleware"
	"github.com/gigfinder/backend/internal/models"
)

type stubRefresher struct {
	b   engagement.Buckets
	err error
}

func (s stubRefresher) Refresh(context.Context, uuid.UUID) (engagement.Buckets, error) {
	return s.b, s.err
}

type stubBoard struct {
	listings []browse.Listing
	lastQ    browse.Query
}

func (s *stubBoard) List(_ context.Context, _ uuid.UUID, q browse.Query) ([]browse.Listing, error) {
	s.lastQ = q
	return s.listings, nil
}

type stubWallet struct {
	v   ledger.View
	err error
}

func (s stubWallet) Load(context.Context, uuid.UUID) (ledger.View, error) {
	return s.v, s.err
}

func asFinder(r *http.Request) *http.Request {
	id := &auth.Identity{UserID: uuid.New(), Role: models.RoleFinder, Name: "Ana"}
	return r.WithContext(middleware.WithIdentity(r.Context(), id))
}

func TestGetFinderDashboard(t *testing.T) {
	job := models.JobPosting{ID: uuid.New(), Title: "Tutor", Budget: decimal.NewFromInt(5000), Status: models.PostingActive, Category: "tutor"}
	neg := models.Negotiation{ID: uuid.New(), JobID: job.ID, Job: job, ProposedAmount: decimal.NewFromInt(4000), Status: models.NegotiationAccepted}
	board := &stubBoard{listings: []browse.Listing{{JobPosting: job, HasNegotiated: true}}}
	h := NewHandler(
		stubRefresher{b: engagement.Classify(nil, []models.Negotiation{neg})},
		board,
		stubWallet{v: ledger.BuildView(nil, nil, nil)},
		nil,
	)

	rec := httptest.NewRecorder()
	h.GetFinderDashboard(rec, asFinder(httptest.NewRequest(http.MethodGet, "/dashboard?category=tutor", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if board.lastQ.Category != "tutor" {
		t.Errorf("query not forwarded: %+v", board.lastQ)
	}

	var got struct {
		Engagements struct {
			Confirmed []struct {
				SettlementAmount string `json:"settlement_amount"`
			} `json:"confirmed"`
		} `json:"engagements"`
		Jobs []struct {
			CanEngage bool `json:"can_engage"`
		} `json:"jobs"`
		Wallet struct {
			Balance string `json:"balance"`
		} `json:"wallet"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Engagements.Confirmed) != 1 || got.Engagements.Confirmed[0].SettlementAmount != "4000.00" {
		t.Errorf("confirmed = %+v", got.Engagements.Confirmed)
	}
	if len(got.Jobs) != 1 || got.Jobs[0].CanEngage {
		t.Errorf("jobs = %+v", got.Jobs)
	}
	if got.Wallet.Balance != "0.00" {
		t.Errorf("missing balance must render 0.00, got %q", got.Wallet.Balance)
	}
}

func TestGetFinderDashboard_FailsWhole(t *testing.T) {
	h := NewHandler(stubRefresher{}, &stubBoard{}, stubWallet{err: errors.New("db down")}, nil)
	rec := httptest.NewRecorder()
	h.GetFinderDashboard(rec, asFinder(httptest.NewRequest(http.MethodGet, "/dashboard", nil)))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestGetMe(t *testing.T) {
	v := ledger.BuildView(&models.WalletSnapshot{Balance: decimal.NewNullDecimal(decimal.RequireFromString("12.5"))}, nil, nil)
	h := NewHandler(stubRefresher{}, &stubBoard{}, stubWallet{v: v}, nil)
	rec := httptest.NewRecorder()
	h.GetMe(rec, asFinder(httptest.NewRequest(http.MethodGet, "/me", nil)))

	var me MeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.Role != models.RoleFinder || me.DisplayName != "Ana" || me.Balance != "12.50" || me.PendingAmount != "0.00" {
		t.Errorf("unexpected %+v", me)
	}
}
