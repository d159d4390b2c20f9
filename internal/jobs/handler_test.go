package jobs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gigfinder/backend/internal/auth"
	"github.com/gigfinder/backend/internal/execution"
	"github.com/gigfinder/backend/internal/middleware"
	"github.com/gigfinder/backend/internal/models"
	"github.com/gigfinder/backend/internal/validation"
)

func newTestRouter(t *testing.T, f *fixture) (http.Handler, *[]bool) {
	t.Helper()
	v, err := validation.New()
	if err != nil {
		t.Fatalf("validation.New: %v", err)
	}
	var decisions []bool
	h := NewHandler(f.svc, v, func(_ models.EngagementKind, accepted bool) {
		decisions = append(decisions, accepted)
	}, nil)

	r := chi.NewRouter()
	r.Post("/jobs", h.CreatePosting)
	r.Get("/jobs/mine", h.ListMine)
	r.Get("/jobs/{id}/engagements", h.ListEngagements)
	r.Post("/jobs/{id}/complete", h.CompletePosting)
	r.Post("/jobs/{id}/cancel", h.CancelPosting)
	r.Post("/applications/{id}/decision", h.DecideApplication)
	r.Post("/negotiations/{id}/decision", h.DecideNegotiation)
	return r, &decisions
}

func as(p Poster, method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	id := &auth.Identity{UserID: p.ID, Role: models.RolePoster, Name: p.Name}
	return req.WithContext(middleware.WithIdentity(req.Context(), id))
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreatePosting(t *testing.T) {
	f := newFixture(t)
	h, _ := newTestRouter(t, f)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"string budget", `{"title":"Barista","description":"Morning shift","budget":"1200.50","category":"catering"}`, http.StatusCreated},
		{"number budget", `{"title":"Usher","description":"Concert","budget":300,"category":"events","start_date":"2026-11-01"}`, http.StatusCreated},
		{"non-numeric budget", `{"title":"Usher","description":"Concert","budget":"lots","category":"events"}`, http.StatusBadRequest},
		{"zero budget", `{"title":"Usher","description":"Concert","budget":0,"category":"events"}`, http.StatusBadRequest},
		{"unknown category", `{"title":"Usher","description":"Concert","budget":10,"category":"astronaut"}`, http.StatusBadRequest},
		{"missing title", `{"description":"Concert","budget":10,"category":"events"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, as(f.poster, http.MethodPost, "/jobs", tt.body))
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}

	rec := serve(h, as(f.poster, http.MethodGet, "/jobs/mine", ""))
	var mine []PostingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &mine); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// fixture posting plus the two created above
	if len(mine) != 3 {
		t.Fatalf("expected 3 postings, got %d", len(mine))
	}
}

func TestHandler_DecideNegotiationThenComplete(t *testing.T) {
	f := newFixture(t)
	h, decisions := newTestRouter(t, f)
	n := f.addNegotiation(4000, models.NegotiationPending)

	rec := serve(h, as(f.poster, http.MethodPost, "/negotiations/"+n.ID.String()+"/decision", `{"approve":true}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("decide: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got EngagementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "accepted" || got.ProposedAmount == nil || *got.ProposedAmount != "4000.00" || got.JobID != f.posting.ID.String() {
		t.Errorf("unexpected response %+v", got)
	}
	if len(f.holds.holds) != 1 || len(*decisions) != 1 || !(*decisions)[0] {
		t.Fatalf("expected one hold and one accepted decision, got %d holds %v", len(f.holds.holds), *decisions)
	}

	rec = serve(h, as(f.poster, http.MethodPost, "/negotiations/"+n.ID.String()+"/decision", `{"approve":false}`))
	if rec.Code != http.StatusConflict {
		t.Errorf("second decision: expected 409, got %d", rec.Code)
	}

	stranger := Poster{ID: uuid.New(), Name: "Other"}
	rec = serve(h, as(stranger, http.MethodPost, "/jobs/"+f.posting.ID.String()+"/complete", ""))
	if rec.Code != http.StatusForbidden {
		t.Errorf("stranger complete: expected 403, got %d", rec.Code)
	}

	rec = serve(h, as(f.poster, http.MethodPost, "/jobs/"+f.posting.ID.String()+"/complete", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(f.queue.args) != 1 || f.queue.args[0].Outcome != execution.OutcomeRelease {
		t.Errorf("expected one release settlement, got %+v", f.queue.args)
	}

	rec = serve(h, as(f.poster, http.MethodPost, "/jobs/"+f.posting.ID.String()+"/cancel", ""))
	if rec.Code != http.StatusConflict {
		t.Errorf("cancel after complete: expected 409, got %d", rec.Code)
	}
}

func TestHandler_PathAndBodyErrors(t *testing.T) {
	f := newFixture(t)
	h, _ := newTestRouter(t, f)

	if rec := serve(h, as(f.poster, http.MethodPost, "/jobs/not-a-uuid/complete", "")); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d", rec.Code)
	}
	if rec := serve(h, as(f.poster, http.MethodPost, "/applications/"+uuid.NewString()+"/decision", `{"approve":"yes"}`)); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad body: expected 422, got %d", rec.Code)
	}
	if rec := serve(h, as(f.poster, http.MethodPost, "/applications/"+uuid.NewString()+"/decision", `{"approve":true}`)); rec.Code != http.StatusNotFound {
		t.Errorf("missing application: expected 404, got %d", rec.Code)
	}
	if rec := serve(h, as(f.poster, http.MethodGet, "/jobs/"+uuid.NewString()+"/engagements", "")); rec.Code != http.StatusNotFound {
		t.Errorf("missing posting: expected 404, got %d", rec.Code)
	}
}
