// Package agent wires the local store, the sync client and the onboarding
// coordinator into a runnable process.
package agent

import (
	"context"
	"fmt"

	"habitsync/internal/agent/onboarding"
	"habitsync/internal/agent/repositories/habits"
	"habitsync/internal/agent/repositories/metadata"
	"habitsync/internal/agent/repositories/profile"
	"habitsync/internal/common"
)

// localFlags adapts the metadata repository to onboarding.LocalFlags.
type localFlags struct {
	meta metadata.Repository
}

func (l *localFlags) OnboardingCompleted(ctx context.Context) (bool, error) {
	return l.meta.GetBool(ctx, metadata.KeyOnboardingCompleted)
}

func (l *localFlags) MarkOnboardingCompleted(ctx context.Context) error {
	return l.meta.SetBool(ctx, metadata.KeyOnboardingCompleted, true)
}

func (l *localFlags) CategoriesSeeded(ctx context.Context) (bool, error) {
	return l.meta.GetBool(ctx, metadata.KeyCategoriesSeeded)
}

// dataProbe computes a fresh summary from the habit and profile caches.
type dataProbe struct {
	habits  habits.Repository
	profile profile.Repository
}

func (d *dataProbe) Summary(ctx context.Context) (onboarding.DataSummary, error) {
	count, err := d.habits.Count(ctx)
	if err != nil {
		return onboarding.DataSummary{}, fmt.Errorf("%w: %v", common.ErrDataLoad, err)
	}

	p, err := d.profile.Load(ctx)
	if err != nil {
		return onboarding.DataSummary{}, fmt.Errorf("%w: %v", common.ErrDataLoad, err)
	}

	s := onboarding.DataSummary{HabitsCount: count}
	if p != nil {
		s.HasProfile = true
		s.ProfileName = p.Name
		s.ProfileGender = p.Gender
		s.ProfileAgeGroup = p.AgeGroup
	}
	return s, nil
}
