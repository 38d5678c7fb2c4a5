package store

import "sync/atomic"

// FeatureFlags holds process-wide toggles written by the admin surface and
// read by every handling task. Readers always observe the latest committed
// value.
type FeatureFlags struct {
	autoSuggestions atomic.Bool
}

func NewFeatureFlags(autoSuggestions bool) *FeatureFlags {
	f := &FeatureFlags{}
	f.autoSuggestions.Store(autoSuggestions)
	return f
}

func (f *FeatureFlags) AutoSuggestions() bool {
	return f.autoSuggestions.Load()
}

func (f *FeatureFlags) SetAutoSuggestions(on bool) {
	f.autoSuggestions.Store(on)
}
