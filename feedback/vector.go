package feedback

import (
	"sync"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Vector: per-function feedback storage
// ---------------------------------------------------------------------------

// HeaderCells is the number of reserved cells at the front of every vector:
// two aggregate counters, stored as SmallInts.
const HeaderCells = 2

const (
	typedCountIndex   = 0 // sites carrying real type information
	genericCountIndex = 1 // sites that degraded to fully generic
)

// shapeEntry is one (shape, handler) pair in a polymorphic list.
type shapeEntry struct {
	shape   Shape
	handler Value
}

// Vector is the mutable runtime feedback table for one compiled function:
// a flat array of tagged cells addressed through immutable Metadata, plus
// the two-counter header.
//
// Cells never hold raw pointers; shape references, polymorphic pair lists,
// and allocation sites live in arenas owned by the vector and are referenced
// by marker-encoded handles. That keeps the collector's traversal a linear
// scan over plain words.
//
// A vector has a single logical writer (the thread executing the owning
// function). The collector reads cells during its trace phase, so every
// cell access is a single atomic 64-bit operation; the arenas are touched
// only by the writer and by clearing passes that run while the writer is
// suspended.
type Vector struct {
	metadata *Metadata
	cells    []Value

	shapes     []Shape           // weak references: identity + lazy liveness
	shapeLists [][]shapeEntry    // polymorphic (shape, handler) lists
	sites      []*AllocationSite // preserved allocation-history markers
}

var (
	emptyVectorOnce sync.Once
	emptyVector     *Vector
)

// EmptyVector returns the canonical vector for an empty spec: zero slots,
// header only. It is shared process-wide; every function compiled without
// feedback sites uses this one instance, and its counters always read zero.
func EmptyVector() *Vector {
	emptyVectorOnce.Do(func() {
		emptyVector = newVector(EmptyMetadata())
	})
	return emptyVector
}

// NewVector allocates a vector matching the metadata's layout. Every slot
// cell starts at the uninitialized sentinel. Metadata with zero slots yields
// the canonical empty vector without allocating.
func NewVector(md *Metadata) *Vector {
	if md == nil || md.SlotCount() == 0 {
		return EmptyVector()
	}
	return newVector(md)
}

func newVector(md *Metadata) *Vector {
	v := &Vector{
		metadata: md,
		cells:    make([]Value, md.vectorLength()),
	}
	v.cells[typedCountIndex] = FromSmallInt(0)
	v.cells[genericCountIndex] = FromSmallInt(0)
	for i := HeaderCells; i < len(v.cells); i++ {
		v.cells[i] = UninitializedSentinel
	}
	return v
}

// Metadata returns the layout description this vector was allocated from.
func (v *Vector) Metadata() *Metadata {
	return v.metadata
}

// SlotCount returns the number of logical slots.
func (v *Vector) SlotCount() int {
	return v.metadata.SlotCount()
}

// IsEmpty returns true if the vector has zero slots. Counters remain
// queryable regardless.
func (v *Vector) IsEmpty() bool {
	return v.metadata.SlotCount() == 0
}

// KindOf returns the kind of the given slot. Panics if slot is out of range.
func (v *Vector) KindOf(slot Slot) SlotKind {
	return v.metadata.KindOf(slot)
}

// Length returns the total cell count, header included.
func (v *Vector) Length() int {
	return len(v.cells)
}

// ---------------------------------------------------------------------------
// Offset bijection
// ---------------------------------------------------------------------------

// IndexForSlot returns the absolute cell offset of the slot's first cell:
// the header width plus the widths of all preceding slots. The mapping is a
// pure function of the metadata and is stable for the vector's lifetime.
func (v *Vector) IndexForSlot(slot Slot) int {
	return v.metadata.offsetOf(slot)
}

// SlotForIndex maps an absolute cell offset back to the slot whose storage
// contains it. Inverse of IndexForSlot: for every slot,
// SlotForIndex(IndexForSlot(slot)) == slot.
func (v *Vector) SlotForIndex(offset int) Slot {
	return v.metadata.slotAt(offset)
}

// ---------------------------------------------------------------------------
// Cell access
// ---------------------------------------------------------------------------

// loadCell and storeCell are the only cell accessors. Single 64-bit atomic
// operations: a tracing collector reading a cell mid-pass must never observe
// a torn value.
func (v *Vector) loadCell(index int) Value {
	return Value(atomic.LoadUint64((*uint64)(&v.cells[index])))
}

func (v *Vector) storeCell(index int, val Value) {
	atomic.StoreUint64((*uint64)(&v.cells[index]), uint64(val))
}

// Get returns the first cell of the given slot.
func (v *Vector) Get(slot Slot) Value {
	return v.loadCell(v.metadata.offsetOf(slot))
}

// Set stores into the first cell of the given slot.
func (v *Vector) Set(slot Slot, val Value) {
	v.storeCell(v.metadata.offsetOf(slot), val)
}

// GetExtra returns the trailing cell of a two-cell slot (handler or
// auxiliary data). Panics if the slot's kind is single-cell.
func (v *Vector) GetExtra(slot Slot) Value {
	if v.metadata.SlotWidth(slot) < 2 {
		panic("Vector.GetExtra: slot has no extra cell")
	}
	return v.loadCell(v.metadata.offsetOf(slot) + 1)
}

// SetExtra stores into the trailing cell of a two-cell slot.
// Panics if the slot's kind is single-cell.
func (v *Vector) SetExtra(slot Slot, val Value) {
	if v.metadata.SlotWidth(slot) < 2 {
		panic("Vector.SetExtra: slot has no extra cell")
	}
	v.storeCell(v.metadata.offsetOf(slot)+1, val)
}

// ---------------------------------------------------------------------------
// Aggregate counters
// ---------------------------------------------------------------------------
//
// The two header counters partition the non-counter slots that have been
// observed at least twice: typed counts slots that reached monomorphic or
// polymorphic, generic counts slots that degraded to fully generic. Only
// nexus transition logic and clearing passes may adjust them; everything
// else reads.

// TypedProfileCount returns the number of sites carrying real type
// information.
func (v *Vector) TypedProfileCount() int {
	return int(v.loadCell(typedCountIndex).SmallInt())
}

// GenericProfileCount returns the number of sites that degraded to fully
// generic.
func (v *Vector) GenericProfileCount() int {
	return int(v.loadCell(genericCountIndex).SmallInt())
}

func (v *Vector) setTypedProfileCount(n int) {
	if v.IsEmpty() {
		return // the shared empty singleton stays all-zero
	}
	v.storeCell(typedCountIndex, FromSmallInt(int64(n)))
}

func (v *Vector) setGenericProfileCount(n int) {
	if v.IsEmpty() {
		return
	}
	v.storeCell(genericCountIndex, FromSmallInt(int64(n)))
}

func (v *Vector) incrementTypedProfileCount() {
	v.setTypedProfileCount(v.TypedProfileCount() + 1)
}

func (v *Vector) decrementTypedProfileCount() {
	if n := v.TypedProfileCount(); n > 0 {
		v.setTypedProfileCount(n - 1)
	}
}

func (v *Vector) incrementGenericProfileCount() {
	v.setGenericProfileCount(v.GenericProfileCount() + 1)
}

func (v *Vector) decrementGenericProfileCount() {
	if n := v.GenericProfileCount(); n > 0 {
		v.setGenericProfileCount(n - 1)
	}
}

// ---------------------------------------------------------------------------
// Arenas
// ---------------------------------------------------------------------------

func (v *Vector) internShape(s Shape) Value {
	v.shapes = append(v.shapes, s)
	return shapeRefHandle(len(v.shapes) - 1)
}

func (v *Vector) shapeAt(index int) Shape {
	if index < 0 || index >= len(v.shapes) {
		return nil
	}
	return v.shapes[index]
}

func (v *Vector) internShapeList(entries []shapeEntry) Value {
	v.shapeLists = append(v.shapeLists, entries)
	return shapeListHandle(len(v.shapeLists) - 1)
}

func (v *Vector) shapeListAt(index int) []shapeEntry {
	if index < 0 || index >= len(v.shapeLists) {
		return nil
	}
	return v.shapeLists[index]
}

func (v *Vector) setShapeList(index int, entries []shapeEntry) {
	v.shapeLists[index] = entries
}

func (v *Vector) internAllocationSite(site *AllocationSite) Value {
	v.sites = append(v.sites, site)
	return allocationSiteHandle(len(v.sites) - 1)
}

func (v *Vector) allocationSiteAt(index int) *AllocationSite {
	if index < 0 || index >= len(v.sites) {
		return nil
	}
	return v.sites[index]
}

// ---------------------------------------------------------------------------
// Collector hooks
// ---------------------------------------------------------------------------

// SoftClear is the collector's trace-time entry point, called once per
// reachable vector during the trace pass. It performs no mutation: weak
// shape references resolve to the reclaimed sentinel lazily when read, so
// there is nothing to rewrite here, and the trace pass must be free to call
// this in any order relative to other traced objects.
func (v *Vector) SoftClear() {
	// Intentionally empty. Slot contents survive tracing untouched; only
	// HardClear, which runs after liveness is established, discards state.
}

// HardClear is the collector's pruning pass, applying the default retention
// policy. It must run only after liveness has been established for the
// cycle, never during tracing.
func (v *Vector) HardClear() {
	v.HardClearWith(DefaultRetention())
}

// HardClearWith resets every slot to the uninitialized sentinel, except for
// the payload categories the policy retains and for the generic and
// megamorphic sentinels, which record a usage-pattern fact rather than a
// cached pointer and are unconditionally sticky. The typed/generic counter
// partition is maintained: clearing a slot that held shape feedback removes
// its typed contribution.
func (v *Vector) HardClearWith(policy RetentionPolicy) {
	if v.IsEmpty() {
		return
	}

	for slot := Slot(0); int(slot) < v.SlotCount(); slot++ {
		cell := v.Get(slot)
		switch {
		case cell == UninitializedSentinel:
			continue

		case cell == GenericSentinel, cell == MegamorphicSentinel:
			// Sticky: a collection cycle never reverts genericity.
			continue

		case cell.IsSmallInt() || cell.IsFloat():
			// Plain numeric tag: nothing to reclaim.
			if policy.Numeric {
				continue
			}

		case cell.marker() == allocationSiteMarker:
			if policy.AllocationSites {
				continue
			}
			// Dropping the marker loses the slot's monomorphic-equivalent
			// type information.
			v.decrementTypedProfileCount()

		case cell.marker() == shapeRefMarker, cell.marker() == shapeListMarker:
			v.decrementTypedProfileCount()

		case cell == PremonomorphicSentinel:
			// Seen once, nothing typed recorded yet.
		}

		v.Set(slot, UninitializedSentinel)
		if v.metadata.SlotWidth(slot) == 2 {
			v.SetExtra(slot, UninitializedSentinel)
		}
	}

	// Every shape reference and polymorphic list was just dropped; the
	// retained cells (numeric tags, allocation sites, sticky sentinels)
	// never point into these two arenas.
	v.shapes = v.shapes[:0]
	v.shapeLists = v.shapeLists[:0]
	if !policy.AllocationSites {
		v.sites = v.sites[:0]
	}
}
