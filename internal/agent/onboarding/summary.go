package onboarding

// DataSummary is a snapshot of the locally synced domain data, recomputed on
// every probe. It is derived state and never persisted.
type DataSummary struct {
	HabitsCount     int
	HasProfile      bool
	ProfileName     string
	ProfileGender   string
	ProfileAgeGroup string
}

// IsComplete reports whether enough data has converged to populate the
// returning-user welcome. Demographics lag behind the habit list on slow
// networks, so all of them are required before the welcome is shown.
func (s DataSummary) IsComplete() bool {
	return s.HabitsCount > 0 &&
		s.HasProfile &&
		s.ProfileGender != "" &&
		s.ProfileAgeGroup != ""
}
