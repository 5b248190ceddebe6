package onboarding

import (
	"context"

	"habitsync/internal/logging"
)

// Engine reconciles the four onboarding signals into one Decision. Steps run
// strictly in order and each one short-circuits; later steps observe the side
// effects of earlier ones within the same pass.
type Engine struct {
	local  LocalFlags
	remote RemoteFlags
	probe  AccountProbe
	data   DataProbe
	logger logging.Logger
}

func NewEngine(local LocalFlags, remote RemoteFlags, probe AccountProbe, data DataProbe, logger logging.Logger) *Engine {
	return &Engine{
		local:  local,
		remote: remote,
		probe:  probe,
		data:   data,
		logger: logger.With("module", "onboarding_engine"),
	}
}

// Decide runs one reconciliation pass. Collaborator failures are mapped to
// the most conservative decision instead of being propagated; the only error
// Decide returns is ctx.Err() when the pass was superseded or shut down.
func (e *Engine) Decide(ctx context.Context) (Decision, error) {
	// A device's own completion is authoritative for that device and is
	// never overridden by remote state.
	completed, err := e.local.OnboardingCompleted(ctx)
	if err != nil {
		e.logger.Warn(ctx, "local flag read failed, assuming not completed", "error", err)
	}
	if completed {
		return SkipSilently, nil
	}

	// Pull the latest remote state before deciding; does not block this pass.
	e.remote.Synchronize(ctx)

	available, err := e.probe.Check(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		// Fail open: without a usable account the remote flag cannot be
		// trusted, and an occasional redundant onboarding beats a stalled
		// launch.
		e.logger.Warn(ctx, "account probe failed, treating user as new", "error", err)
		return ShowOnboarding, nil
	}
	if !available {
		e.logger.Info(ctx, "no account behind remote store, treating user as new")
		return ShowOnboarding, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	remoteCompleted, err := e.remote.OnboardingCompleted(ctx)
	if err != nil {
		e.logger.Warn(ctx, "remote flag read failed, assuming not completed", "error", err)
	}
	if remoteCompleted {
		// The welcome screen, not onboarding, closes the loop from here.
		return PendingReturningWelcome, nil
	}

	return e.detectMigration(ctx)
}

// detectMigration handles the "neither flag set" case. A device carrying a
// named profile, or one where category seeding already ran, belonged to an
// existing user whose flags were never retroactively set. This must run
// before concluding "new user" or every upgrading user would be re-onboarded.
func (e *Engine) detectMigration(ctx context.Context) (Decision, error) {
	summary, err := e.data.Summary(ctx)
	if err != nil {
		// Treated as "no data": bias toward showing onboarding rather than
		// blocking launch on a storage error.
		e.logger.Error(ctx, "data probe failed during migration detection", "error", err)
		summary = DataSummary{}
	}

	seeded, err := e.local.CategoriesSeeded(ctx)
	if err != nil {
		e.logger.Warn(ctx, "seeding heuristic read failed", "error", err)
		seeded = false
	}

	hasNamedProfile := summary.HasProfile && summary.ProfileName != ""
	if !hasNamedProfile && !seeded {
		return ShowOnboarding, nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.logger.Info(ctx, "migration detected, marking onboarding completed",
		"has_named_profile", hasNamedProfile, "categories_seeded", seeded)

	if err := e.local.MarkOnboardingCompleted(ctx); err != nil {
		e.logger.Error(ctx, "failed to set local flag after migration", "error", err)
	}
	if err := e.remote.MarkOnboardingCompleted(ctx); err != nil {
		// Best effort: the next pass on this device short-circuits on the
		// local flag anyway.
		e.logger.Warn(ctx, "failed to set remote flag after migration", "error", err)
	}

	return SkipSilently, nil
}
