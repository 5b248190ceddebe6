package onboarding

import (
	"context"
	"sync"

	"habitsync/internal/logging"
)

// Gate sits between convergence outcomes and the presenter. While a blocking
// modal (onboarding flow, first-run assistant) covers the screen, outcomes
// are deferred rather than dropped, so a welcome never renders invisibly
// behind a full-screen cover.
type Gate struct {
	presenter Presenter
	logger    logging.Logger

	mu       sync.Mutex
	deferred *Outcome
}

func NewGate(presenter Presenter, logger logging.Logger) *Gate {
	return &Gate{
		presenter: presenter,
		logger:    logger.With("module", "presentation_gate"),
	}
}

// Deliver presents the outcome now, or parks it until the active modal is
// dismissed. A later outcome replaces a parked one: only the most recent
// attempt's result may surface.
func (g *Gate) Deliver(ctx context.Context, o Outcome) {
	g.mu.Lock()
	if g.presenter.IsModalActive() {
		g.deferred = &o
		g.mu.Unlock()
		g.logger.Info(ctx, "modal active, deferring presentation", "ready", o.Ready)
		return
	}
	g.deferred = nil
	g.mu.Unlock()

	g.present(ctx, o)
}

// OnModalDismissed drains the deferred slot exactly once.
func (g *Gate) OnModalDismissed(ctx context.Context) {
	g.mu.Lock()
	o := g.deferred
	g.deferred = nil
	g.mu.Unlock()

	if o == nil {
		return
	}
	g.present(ctx, *o)
}

func (g *Gate) present(ctx context.Context, o Outcome) {
	if o.Ready {
		g.presenter.ShowWelcome(ctx, o.Summary)
		return
	}
	g.presenter.ShowStillSyncing(ctx)
}
