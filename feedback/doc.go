// Package feedback implements per-function type feedback vectors.
//
// This package contains:
//   - NaN-boxed tagged cell representation for feedback storage
//   - Slot layout specs and derived metadata
//   - The feedback vector: header counters plus one cell group per slot
//   - The nexus family: per-site-kind inline cache state machines
//   - Collector hooks (soft and hard clearing) with a retention policy
//
// A front end builds a VectorSpec while compiling a function, derives
// Metadata from it, and allocates a Vector to match. At run time the
// execution engine constructs a short-lived Nexus for the slot a site owns
// and records what it observed; an optimizing consumer later reads the
// finalized states, shape lists, and aggregate counters through the same
// nexus views.
package feedback
