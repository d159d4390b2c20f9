package execution

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

type mockSettler struct {
	mu       sync.Mutex
	released []uuid.UUID
	voided   []uuid.UUID
	holds    int
	err      error
}

func (m *mockSettler) ReleaseEarnings(_ context.Context, jobID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.released = append(m.released, jobID)
	return m.holds, nil
}

func (m *mockSettler) VoidEarnings(_ context.Context, jobID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.voided = append(m.voided, jobID)
	return m.holds, nil
}

func settleJob(jobID uuid.UUID, outcome string) *river.Job[SettlePostingArgs] {
	return &river.Job[SettlePostingArgs]{Args: SettlePostingArgs{JobID: jobID, Outcome: outcome}}
}

func TestSettlePostingWorker_Release(t *testing.T) {
	s := &mockSettler{holds: 2}
	var gotOutcome string
	var gotHolds int
	w := NewSettlePostingWorker(s, func(outcome string, holds int) {
		gotOutcome, gotHolds = outcome, holds
	}, nil)

	jobID := uuid.New()
	if err := w.Work(context.Background(), settleJob(jobID, OutcomeRelease)); err != nil {
		t.Fatalf("Work: %v", err)
	}
	if len(s.released) != 1 || s.released[0] != jobID || len(s.voided) != 0 {
		t.Fatalf("expected one release for %s, got released=%v voided=%v", jobID, s.released, s.voided)
	}
	if gotOutcome != OutcomeRelease || gotHolds != 2 {
		t.Errorf("observer got (%q, %d)", gotOutcome, gotHolds)
	}
}

func TestSettlePostingWorker_Void(t *testing.T) {
	s := &mockSettler{}
	w := NewSettlePostingWorker(s, nil, nil)
	if err := w.Work(context.Background(), settleJob(uuid.New(), OutcomeVoid)); err != nil {
		t.Fatalf("Work: %v", err)
	}
	if len(s.voided) != 1 || len(s.released) != 0 {
		t.Fatalf("expected one void, got released=%v voided=%v", s.released, s.voided)
	}
}

func TestSettlePostingWorker_LedgerErrorIsRetried(t *testing.T) {
	boom := errors.New("deadlock detected")
	called := false
	w := NewSettlePostingWorker(&mockSettler{err: boom}, func(string, int) { called = true }, nil)

	err := w.Work(context.Background(), settleJob(uuid.New(), OutcomeRelease))
	if !errors.Is(err, boom) {
		t.Fatalf("expected ledger error, got %v", err)
	}
	if called {
		t.Error("observer must not fire on failure")
	}
}

func TestSettlePostingWorker_UnknownOutcomeCancels(t *testing.T) {
	s := &mockSettler{}
	err := NewSettlePostingWorker(s, nil, nil).Work(context.Background(), settleJob(uuid.New(), "refund"))
	if err == nil || !strings.Contains(err.Error(), `unknown settlement outcome "refund"`) {
		t.Fatalf("expected cancellation for unknown outcome, got %v", err)
	}
	if len(s.released)+len(s.voided) != 0 {
		t.Fatal("ledger must not be touched")
	}
}

func TestSettlePostingArgsKind(t *testing.T) {
	if got := (SettlePostingArgs{}).Kind(); got != "settle_posting" {
		t.Errorf("Kind() = %q", got)
	}
}
