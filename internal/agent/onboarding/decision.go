// Package onboarding decides, on every launch or foreground resume, which
// onboarding surface the app shell should present: the first-run flow, a
// silent pass-through, or a returning-user welcome whose data may still be
// arriving from the sync server.
//
// The decision is reconciled from four independently failing signals: the
// device-local completion flag, the account-wide remote flag, an account
// availability probe and a local data probe used to detect upgrades from app
// versions that never wrote the flags.
package onboarding

// Decision is the terminal outcome of one reconciliation pass.
type Decision string

const (
	// ShowOnboarding: new user, no prior data found anywhere.
	ShowOnboarding Decision = "show_onboarding"

	// SkipSilently: this device already completed onboarding, or a silent
	// upgrade migration was just detected and both flags were set.
	SkipSilently Decision = "skip"

	// PendingReturningWelcome: onboarding was completed on another device;
	// a welcome is owed once enough data has converged locally.
	PendingReturningWelcome Decision = "pending_welcome"
)

// Trigger identifies the event that started a reconciliation pass.
type Trigger string

const (
	TriggerLaunch       Trigger = "launch"
	TriggerForeground   Trigger = "foreground"
	TriggerRemoteChange Trigger = "remote_change"
)
