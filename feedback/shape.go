package feedback

import "sync/atomic"

// ---------------------------------------------------------------------------
// Shape: opaque object layout identity with explicit liveness
// ---------------------------------------------------------------------------

// Shape is an opaque descriptor of an object's layout (or a callee's
// identity at call sites), supplied by the object representation. The
// feedback subsystem only compares shapes by interface identity and stores
// them; it never inspects their internals.
//
// Alive stands in for weak-reference semantics: instead of integrating with
// a specific collector, a stored shape reference is an (identity, liveness
// check) pair, and liveness is queried lazily whenever a slot is read. A
// reference whose shape reports dead resolves to ReclaimedSentinel.
type Shape interface {
	Alive() bool
}

// ---------------------------------------------------------------------------
// AllocationSite: preserved allocation-history marker
// ---------------------------------------------------------------------------

// AllocationSite records that a call site's result came from a specific
// allocation pattern. Sites are cheap, rare, and disproportionately
// valuable to downstream specialization, so the default retention policy
// exempts them from hard clearing.
type AllocationSite struct {
	label string
	hits  atomic.Uint64
}

// NewAllocationSite creates an allocation site with a diagnostic label
// naming the allocation pattern (e.g. the built-in constructor involved).
func NewAllocationSite(label string) *AllocationSite {
	return &AllocationSite{label: label}
}

// Label returns the site's diagnostic label.
func (s *AllocationSite) Label() string {
	return s.label
}

// RecordHit bumps the site's allocation count. Called by the execution
// engine each time the owning call site allocates through this pattern.
func (s *AllocationSite) RecordHit() {
	s.hits.Add(1)
}

// Hits returns the number of allocations recorded against this site.
func (s *AllocationSite) Hits() uint64 {
	return s.hits.Load()
}
