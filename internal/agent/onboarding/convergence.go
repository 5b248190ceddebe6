package onboarding

import (
	"context"
	"time"

	"habitsync/internal/logging"
)

// Outcome is the terminal result of a convergence attempt: either the data
// became complete (Ready with the summary that satisfied the predicate), or
// the retry budget ran out.
type Outcome struct {
	Ready   bool
	Summary DataSummary
}

// Waiter polls local data until the completeness predicate holds or a retry
// budget is exhausted. It is used only on the returning-user welcome path,
// after the UI has already become interactive, so its cumulative budget may
// span minutes.
type Waiter struct {
	remote RemoteFlags
	data   DataProbe
	logger logging.Logger

	// retryUnit is the linear backoff unit: attempt n sleeps n+1 units.
	retryUnit time.Duration
	// syncWait bounds the per-attempt SynchronizeAndWait call.
	syncWait time.Duration
}

func NewWaiter(remote RemoteFlags, data DataProbe, retryUnit, syncWait time.Duration, logger logging.Logger) *Waiter {
	return &Waiter{
		remote:    remote,
		data:      data,
		retryUnit: retryUnit,
		syncWait:  syncWait,
		logger:    logger.With("module", "convergence_waiter"),
	}
}

// AwaitCompleteData probes at most maxRetries+1 times. Cancellation is
// checked immediately before and after every suspension point; a cancelled
// attempt returns ctx.Err() and performs no further side effects.
func (w *Waiter) AwaitCompleteData(ctx context.Context, maxRetries int) (Outcome, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		w.remote.SynchronizeAndWait(ctx, w.syncWait)

		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		summary, err := w.data.Summary(ctx)
		if err != nil {
			w.logger.Warn(ctx, "data probe failed, retrying", "attempt", attempt, "error", err)
			summary = DataSummary{}
		}

		if summary.IsComplete() {
			w.logger.Info(ctx, "data converged", "attempt", attempt, "habits", summary.HabitsCount)
			return Outcome{Ready: true, Summary: summary}, nil
		}

		if attempt >= maxRetries {
			w.logger.Info(ctx, "convergence budget exhausted", "retries", maxRetries)
			return Outcome{}, nil
		}

		delay := time.Duration(attempt+1) * w.retryUnit
		select {
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		case <-time.After(delay):
		}
	}
}
