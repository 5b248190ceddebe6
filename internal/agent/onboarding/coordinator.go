package onboarding

import (
	"context"
	"sync"

	"habitsync/internal/logging"
)

// Options carries the retry budgets for the convergence loop. The welcome
// budget is large (multi-minute cumulative) because profile demographics may
// lag well behind the habit list; the toast budget is small, for the
// lightweight first-sync notice.
type Options struct {
	WelcomeMaxRetries int
	ToastMaxRetries   int
}

func (o Options) withDefaults() Options {
	if o.WelcomeMaxRetries <= 0 {
		o.WelcomeMaxRetries = 30
	}
	if o.ToastMaxRetries <= 0 {
		o.ToastMaxRetries = 3
	}
	return o
}

// Coordinator is the single logical owner of all reconciliation and
// convergence work. Concurrency only enters through external triggers; the
// coalescer serializes them, so no mutation here needs a lock beyond the
// welcome bookkeeping.
type Coordinator struct {
	engine    *Engine
	waiter    *Waiter
	coalescer *Coalescer
	gate      *Gate
	local     LocalFlags
	opts      Options
	logger    logging.Logger

	mu             sync.Mutex
	welcomeShown   bool
	welcomePending bool
}

func NewCoordinator(base context.Context, engine *Engine, waiter *Waiter, gate *Gate, local LocalFlags, opts Options, logger logging.Logger) *Coordinator {
	return &Coordinator{
		engine:    engine,
		waiter:    waiter,
		coalescer: NewCoalescer(base),
		gate:      gate,
		local:     local,
		opts:      opts.withDefaults(),
		logger:    logger.With("module", "onboarding"),
	}
}

// CheckOnboardingStatus runs one reconciliation pass and returns its
// decision. Call once at launch. A PendingReturningWelcome decision starts
// the convergence loop in the background; the returned decision tells the
// app shell only what to present right now.
func (c *Coordinator) CheckOnboardingStatus(ctx context.Context) Decision {
	attemptCtx := c.coalescer.Swap()

	decision, err := c.engine.Decide(attemptCtx)
	if err != nil {
		c.logger.Debug(ctx, "launch pass superseded", "error", err)
		return SkipSilently
	}
	c.logger.Info(ctx, "onboarding decision", "trigger", TriggerLaunch, "decision", decision)

	if decision == PendingReturningWelcome {
		c.setWelcomePending(true)
		go c.converge(attemptCtx, c.opts.WelcomeMaxRetries)
	}
	return decision
}

// OnDataMightHaveChanged re-enters reconciliation on foreground or
// remote-change events. Overlapping calls coalesce: a new trigger cancels
// the in-flight waiter before its own pass begins.
func (c *Coordinator) OnDataMightHaveChanged(trigger Trigger) {
	attemptCtx := c.coalescer.Swap()

	go func() {
		decision, err := c.engine.Decide(attemptCtx)
		if err != nil {
			return
		}
		c.logger.Info(attemptCtx, "onboarding decision", "trigger", trigger, "decision", decision)

		if decision != PendingReturningWelcome {
			return
		}
		c.setWelcomePending(true)

		// Remote-change bursts get the small toast budget; a welcome owed
		// since launch keeps the full budget.
		budget := c.opts.WelcomeMaxRetries
		if trigger == TriggerRemoteChange && c.welcomeWasShown() {
			budget = c.opts.ToastMaxRetries
		}
		c.converge(attemptCtx, budget)
	}()
}

// OnWelcomeDismissed closes the loop: only now does the device record its own
// completion, so a crash mid-welcome re-surfaces it on relaunch.
func (c *Coordinator) OnWelcomeDismissed(ctx context.Context) error {
	return c.local.MarkOnboardingCompleted(ctx)
}

// OnModalDismissed re-attempts any presentation deferred while a blocking
// modal was on screen.
func (c *Coordinator) OnModalDismissed(ctx context.Context) {
	c.gate.OnModalDismissed(ctx)
}

// Close cancels the in-flight attempt, if any.
func (c *Coordinator) Close() {
	c.coalescer.Close()
}

func (c *Coordinator) converge(ctx context.Context, maxRetries int) {
	outcome, err := c.waiter.AwaitCompleteData(ctx, maxRetries)
	if err != nil {
		// Superseded or shut down: no further side effects.
		return
	}
	if ctx.Err() != nil {
		return
	}

	if outcome.Ready {
		c.mu.Lock()
		if c.welcomeShown {
			c.mu.Unlock()
			return
		}
		c.welcomeShown = true
		c.welcomePending = false
		c.mu.Unlock()
	} else {
		c.setWelcomePending(false)
	}

	c.gate.Deliver(ctx, outcome)
}

func (c *Coordinator) setWelcomePending(v bool) {
	c.mu.Lock()
	c.welcomePending = v
	c.mu.Unlock()
}

// WelcomePending reports whether a returning-user welcome is still owed.
func (c *Coordinator) WelcomePending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.welcomePending
}

func (c *Coordinator) welcomeWasShown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.welcomeShown
}
