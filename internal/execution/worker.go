package execution

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// Settlement outcomes carried on SettlePostingArgs.
const (
	OutcomeRelease = "release"
	OutcomeVoid    = "void"
)

type SettlePostingArgs struct {
	JobID   uuid.UUID `json:"job_id"`
	Outcome string    `json:"outcome"`
}

func (SettlePostingArgs) Kind() string { return "settle_posting" }

// Settler moves a posting's earning holds to their final state.
type Settler interface {
	ReleaseEarnings(ctx context.Context, jobID uuid.UUID) (int, error)
	VoidEarnings(ctx context.Context, jobID uuid.UUID) (int, error)
}

// SettlementObserver is notified after each settled posting. May be nil.
type SettlementObserver func(outcome string, holds int)

type SettlePostingWorker struct {
	river.WorkerDefaults[SettlePostingArgs]
	settler Settler
	observe SettlementObserver
	log     *slog.Logger
}

func NewSettlePostingWorker(s Settler, observe SettlementObserver, log *slog.Logger) *SettlePostingWorker {
	if log == nil {
		log = slog.Default()
	}
	return &SettlePostingWorker{settler: s, observe: observe, log: log}
}

// Work is safe to retry: holds already settled are skipped by the ledger.
func (w *SettlePostingWorker) Work(ctx context.Context, job *river.Job[SettlePostingArgs]) error {
	args := job.Args
	var (
		n   int
		err error
	)
	switch args.Outcome {
	case OutcomeRelease:
		n, err = w.settler.ReleaseEarnings(ctx, args.JobID)
	case OutcomeVoid:
		n, err = w.settler.VoidEarnings(ctx, args.JobID)
	default:
		return river.JobCancel(fmt.Errorf("unknown settlement outcome %q", args.Outcome))
	}
	if err != nil {
		return fmt.Errorf("settle posting %s (%s): %w", args.JobID, args.Outcome, err)
	}
	w.log.Info("posting settled", "job_id", args.JobID, "outcome", args.Outcome, "holds", n)
	if w.observe != nil {
		w.observe(args.Outcome, n)
	}
	return nil
}
