package feedback

// RetentionPolicy selects which payload categories survive a hard clear.
//
// The exempt set is deployment configuration, not a hardcoded pair of
// special cases: the defaults match the behavior profile-guided consumers
// expect (numeric feedback has nothing to reclaim; allocation sites are too
// valuable to drop), but a deployment may tighten either category.
//
// Generic and megamorphic sentinels are not governed by policy. They encode
// a permanent property of the site's usage pattern rather than a cached
// pointer, so no clearing pass may remove them.
type RetentionPolicy struct {
	// Numeric retains plain numeric tags (no pointer semantics; the
	// feedback remains valid across collections).
	Numeric bool

	// AllocationSites retains allocation-history markers.
	AllocationSites bool
}

// DefaultRetention is the policy HardClear applies.
func DefaultRetention() RetentionPolicy {
	return RetentionPolicy{
		Numeric:         true,
		AllocationSites: true,
	}
}
