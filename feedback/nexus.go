package feedback

// ---------------------------------------------------------------------------
// Nexus: transient per-slot inline cache view
// ---------------------------------------------------------------------------

// MaxPolymorphicShapes is the polymorphic fan-out limit. A site that
// observes more distinct live shapes than this degrades to megamorphic.
const MaxPolymorphicShapes = 4

// Nexus is a short-lived, kind-specific view of one (vector, slot) pair.
// It carries no state of its own: two nexuses over the same pair observe
// each other's writes immediately because they share the same backing
// cells. Construct one on demand, use it, let it go.
//
// Cache progression for shape-tracking kinds:
//
//	UNINITIALIZED -> PREMONOMORPHIC -> MONOMORPHIC -> POLYMORPHIC -> MEGAMORPHIC
//
// with GENERIC reachable from any state when an operand carries no
// trackable shape. The first observation is only noted, not cached
// (premonomorphic); caching starts on the second, when the site has proven
// it runs more than once.
type Nexus struct {
	vector *Vector
	slot   Slot
	kind   SlotKind
}

// NewNexus constructs a view of the given slot, taking the kind from the
// vector's metadata. Panics on counter slots, which carry no inline cache
// state (read them through Vector.Get/Set).
func NewNexus(v *Vector, slot Slot) Nexus {
	kind := v.KindOf(slot)
	if kind == KindCounter {
		panic("NewNexus: counter slots carry no inline cache state")
	}
	return Nexus{vector: v, slot: slot, kind: kind}
}

func newKindNexus(v *Vector, slot Slot, want SlotKind, ctor string) Nexus {
	kind := v.KindOf(slot)
	if kind != want {
		// Wrong-kind construction is a caller bug, caught here rather than
		// at first use.
		panic(ctor + ": slot records " + kind.String() + " feedback, not " + want.String())
	}
	return Nexus{vector: v, slot: slot, kind: kind}
}

// NewCallNexus constructs a call-site view. Panics if the slot's kind differs.
func NewCallNexus(v *Vector, slot Slot) Nexus {
	return newKindNexus(v, slot, KindCall, "NewCallNexus")
}

// NewLoadNexus constructs a property-load view. Panics if the slot's kind differs.
func NewLoadNexus(v *Vector, slot Slot) Nexus {
	return newKindNexus(v, slot, KindLoad, "NewLoadNexus")
}

// NewStoreNexus constructs a property-store view. Panics if the slot's kind differs.
func NewStoreNexus(v *Vector, slot Slot) Nexus {
	return newKindNexus(v, slot, KindStore, "NewStoreNexus")
}

// NewKeyedLoadNexus constructs a keyed-load view. Panics if the slot's kind differs.
func NewKeyedLoadNexus(v *Vector, slot Slot) Nexus {
	return newKindNexus(v, slot, KindKeyedLoad, "NewKeyedLoadNexus")
}

// NewKeyedStoreNexus constructs a keyed-store view. Panics if the slot's kind differs.
func NewKeyedStoreNexus(v *Vector, slot Slot) Nexus {
	return newKindNexus(v, slot, KindKeyedStore, "NewKeyedStoreNexus")
}

// Kind returns the slot kind this nexus operates on.
func (n Nexus) Kind() SlotKind {
	return n.kind
}

// Slot returns the slot this nexus is bound to.
func (n Nexus) Slot() Slot {
	return n.slot
}

func (n Nexus) isPropertyKind() bool {
	switch n.kind {
	case KindLoad, KindStore, KindKeyedLoad, KindKeyedStore:
		return true
	}
	return false
}

func (n Nexus) hasHandlerCell() bool {
	return n.kind.Width() == 2
}

// ---------------------------------------------------------------------------
// State computation
// ---------------------------------------------------------------------------

// State computes the inline cache state from the slot's stored content.
// It is a pure read: calling it any number of times without an intervening
// record yields the same result. Liveness of weak shape references is
// checked lazily here; a monomorphic slot whose shape has been reclaimed
// reads as premonomorphic (the site has history but no usable shape), and a
// polymorphic slot with no surviving entries likewise.
func (n Nexus) State() ICState {
	cell := n.vector.Get(n.slot)
	switch cell {
	case UninitializedSentinel:
		return StateUninitialized
	case PremonomorphicSentinel:
		return StatePremonomorphic
	case MegamorphicSentinel:
		return StateMegamorphic
	case GenericSentinel:
		return StateGeneric
	}

	switch cell.marker() {
	case allocationSiteMarker:
		// Allocation history counts as a single tracked target.
		return StateMonomorphic
	case shapeRefMarker:
		if s := n.vector.shapeAt(cell.handleIndex()); s != nil && s.Alive() {
			return StateMonomorphic
		}
		return StatePremonomorphic
	case shapeListMarker:
		for _, e := range n.vector.shapeListAt(cell.handleIndex()) {
			if e.shape.Alive() {
				return StatePolymorphic
			}
		}
		return StatePremonomorphic
	}

	// Only the payloads above ever reach an inline cache slot.
	panic("Nexus.State: unrecognized feedback payload " + cell.String())
}

// ---------------------------------------------------------------------------
// Recording (execution engine entry points)
// ---------------------------------------------------------------------------

// Record notes one execution of a property access site with the receiver's
// shape and an optional handler. A nil shape means the operand carried no
// trackable shape and degrades the slot to generic. For single-cell kinds
// the monomorphic handler is dropped (there is no cell for it); polymorphic
// lists keep (shape, handler) pairs for every kind.
//
// Panics on call-site slots; use RecordCallee there.
func (n Nexus) Record(shape Shape, handler Value) {
	if !n.isPropertyKind() {
		panic("Nexus.Record: not a property slot (kind " + n.kind.String() + ")")
	}
	if shape == nil {
		n.RecordGeneric()
		return
	}

	v := n.vector
	cell := v.Get(n.slot)

	switch {
	case cell == UninitializedSentinel:
		// First observation: mark seen-once, cache nothing yet.
		v.Set(n.slot, PremonomorphicSentinel)

	case cell == PremonomorphicSentinel:
		n.storeMonomorphic(shape, handler)
		v.incrementTypedProfileCount()

	case cell.marker() == shapeRefMarker:
		existing := v.shapeAt(cell.handleIndex())
		if existing == shape {
			if n.hasHandlerCell() {
				v.SetExtra(n.slot, handler)
			}
			return
		}
		if existing == nil || !existing.Alive() {
			// The cached shape died; restart monomorphic with the new one.
			// The slot already holds its typed contribution.
			n.storeMonomorphic(shape, handler)
			return
		}
		// Second distinct shape: go polymorphic with both pairs.
		prior := shapeEntry{shape: existing, handler: Nil}
		if n.hasHandlerCell() {
			prior.handler = v.GetExtra(n.slot)
		}
		v.Set(n.slot, v.internShapeList([]shapeEntry{prior, {shape: shape, handler: handler}}))
		if n.hasHandlerCell() {
			v.SetExtra(n.slot, UninitializedSentinel)
		}

	case cell.marker() == shapeListMarker:
		n.recordPolymorphic(cell, shape, handler)

	case cell == MegamorphicSentinel, cell == GenericSentinel:
		// Nothing left to learn.

	default:
		panic("Nexus.Record: unrecognized feedback payload " + cell.String())
	}
}

func (n Nexus) storeMonomorphic(shape Shape, handler Value) {
	v := n.vector
	v.Set(n.slot, v.internShape(shape))
	if n.hasHandlerCell() {
		v.SetExtra(n.slot, handler)
	}
}

func (n Nexus) recordPolymorphic(cell Value, shape Shape, handler Value) {
	v := n.vector
	index := cell.handleIndex()
	entries := v.shapeListAt(index)

	// Drop reclaimed entries while we are here; they no longer count
	// against the fan-out limit.
	live := entries[:0]
	for _, e := range entries {
		if e.shape.Alive() {
			live = append(live, e)
		}
	}

	for i := range live {
		if live[i].shape == shape {
			live[i].handler = handler
			v.setShapeList(index, live)
			return
		}
	}

	if len(live) >= MaxPolymorphicShapes {
		// Fan-out exhausted. Not an error: the site is megamorphic now.
		v.Set(n.slot, MegamorphicSentinel)
		v.setShapeList(index, nil)
		return
	}

	v.setShapeList(index, append(live, shapeEntry{shape: shape, handler: handler}))
}

// RecordCallee notes one execution of a call site with the callee's
// identity. Call sites track a single callee: the same callee keeps the
// slot monomorphic, a different one degrades it to generic (call sites do
// not build polymorphic lists). A nil callee means the target was not
// trackable and likewise degrades to generic. A preserved allocation-site
// marker takes precedence and is left untouched.
//
// Panics on non-call slots.
func (n Nexus) RecordCallee(callee Shape) {
	if n.kind != KindCall {
		panic("Nexus.RecordCallee: not a call slot (kind " + n.kind.String() + ")")
	}
	if callee == nil {
		n.RecordGeneric()
		return
	}

	v := n.vector
	cell := v.Get(n.slot)

	switch {
	case cell == UninitializedSentinel:
		v.Set(n.slot, PremonomorphicSentinel)

	case cell == PremonomorphicSentinel:
		v.Set(n.slot, v.internShape(callee))
		v.incrementTypedProfileCount()

	case cell.marker() == shapeRefMarker:
		existing := v.shapeAt(cell.handleIndex())
		if existing == callee {
			return
		}
		if existing == nil || !existing.Alive() {
			v.Set(n.slot, v.internShape(callee))
			return
		}
		n.RecordGeneric()

	case cell.marker() == allocationSiteMarker:
		// Allocation history outranks callee tracking.

	case cell == GenericSentinel:
		// Sticky.

	default:
		panic("Nexus.RecordCallee: unrecognized feedback payload " + cell.String())
	}
}

// RecordAllocationSite stores an allocation-history marker for a call site
// whose callee allocates through a known pattern. The marker is
// monomorphic-equivalent for state and counter purposes and survives hard
// clearing under the default retention policy. Generic slots are left
// alone: genericity is sticky, and a site that already degraded gains
// nothing from allocation history.
//
// Panics on non-call slots or a nil site.
func (n Nexus) RecordAllocationSite(site *AllocationSite) {
	if n.kind != KindCall {
		panic("Nexus.RecordAllocationSite: not a call slot (kind " + n.kind.String() + ")")
	}
	if site == nil {
		panic("Nexus.RecordAllocationSite: nil site")
	}

	v := n.vector
	cell := v.Get(n.slot)

	switch {
	case cell == GenericSentinel, cell == MegamorphicSentinel:
		return

	case cell.marker() == allocationSiteMarker:
		if v.allocationSiteAt(cell.handleIndex()) == site {
			return
		}
		// Replacing one marker with another keeps the typed contribution.
		v.Set(n.slot, v.internAllocationSite(site))

	case cell.marker() == shapeRefMarker:
		// Was monomorphic on callee identity; still typed.
		v.Set(n.slot, v.internAllocationSite(site))

	case cell == UninitializedSentinel, cell == PremonomorphicSentinel:
		v.Set(n.slot, v.internAllocationSite(site))
		v.incrementTypedProfileCount()

	default:
		panic("Nexus.RecordAllocationSite: unrecognized feedback payload " + cell.String())
	}
}

// RecordGeneric degrades the slot to generic: the operand carried no
// trackable shape, or the site's targets are inherently untrackable.
// Generic is sticky once set. The slot's counter contribution moves from
// typed to generic in the same step, keeping the two header counters an
// exact partition. A call slot holding a preserved allocation-site marker
// is left untouched; the marker takes precedence.
func (n Nexus) RecordGeneric() {
	v := n.vector
	cell := v.Get(n.slot)

	switch {
	case cell == GenericSentinel:
		return

	case cell.marker() == allocationSiteMarker:
		return

	case cell.marker() == shapeRefMarker, cell.marker() == shapeListMarker,
		cell == MegamorphicSentinel:
		// The payload category, not the lazily computed state, decides the
		// counter move: a monomorphic slot whose shape died still holds a
		// typed contribution.
		v.decrementTypedProfileCount()
		v.incrementGenericProfileCount()

	default:
		// Uninitialized or premonomorphic: never counted as typed.
		v.incrementGenericProfileCount()
	}

	v.Set(n.slot, GenericSentinel)
	if n.hasHandlerCell() {
		v.SetExtra(n.slot, UninitializedSentinel)
	}
}

// ---------------------------------------------------------------------------
// Queries (optimizing consumer entry points)
// ---------------------------------------------------------------------------

// FindFirstShape returns the single tracked shape iff the slot is
// monomorphic, nil otherwise. Call slots always return nil: callee identity
// is not shape feedback.
func (n Nexus) FindFirstShape() Shape {
	if n.kind == KindCall {
		return nil
	}
	cell := n.vector.Get(n.slot)
	if cell.marker() != shapeRefMarker {
		return nil
	}
	if s := n.vector.shapeAt(cell.handleIndex()); s != nil && s.Alive() {
		return s
	}
	return nil
}

// FindAllShapes returns the tracked shapes in observation order: a
// singleton list for monomorphic slots, the full live list for polymorphic
// slots, empty for every other state. Reclaimed shapes are filtered out.
func (n Nexus) FindAllShapes() []Shape {
	if n.kind == KindCall {
		return nil
	}
	cell := n.vector.Get(n.slot)
	switch cell.marker() {
	case shapeRefMarker:
		if s := n.vector.shapeAt(cell.handleIndex()); s != nil && s.Alive() {
			return []Shape{s}
		}
	case shapeListMarker:
		entries := n.vector.shapeListAt(cell.handleIndex())
		shapes := make([]Shape, 0, len(entries))
		for _, e := range entries {
			if e.shape.Alive() {
				shapes = append(shapes, e.shape)
			}
		}
		if len(shapes) > 0 {
			return shapes
		}
	}
	return nil
}

// FindAllHandlers returns the handlers paired with the shapes FindAllShapes
// reports, in the same order. Single-cell kinds report Nil for the
// monomorphic handler (they have no cell for one).
func (n Nexus) FindAllHandlers() []Value {
	cell := n.vector.Get(n.slot)
	switch cell.marker() {
	case shapeRefMarker:
		if s := n.vector.shapeAt(cell.handleIndex()); s != nil && s.Alive() {
			if n.hasHandlerCell() {
				return []Value{n.vector.GetExtra(n.slot)}
			}
			return []Value{Nil}
		}
	case shapeListMarker:
		entries := n.vector.shapeListAt(cell.handleIndex())
		handlers := make([]Value, 0, len(entries))
		for _, e := range entries {
			if e.shape.Alive() {
				handlers = append(handlers, e.handler)
			}
		}
		if len(handlers) > 0 {
			return handlers
		}
	}
	return nil
}

// GetFeedback returns the slot's raw payload for diagnostic and consumer
// use: a sentinel, a numeric tag, or an arena handle. A weak shape
// reference whose target has been reclaimed resolves to ReclaimedSentinel;
// the stored cell itself is never rewritten by a read.
func (n Nexus) GetFeedback() Value {
	cell := n.vector.Get(n.slot)
	if cell.marker() == shapeRefMarker {
		if s := n.vector.shapeAt(cell.handleIndex()); s == nil || !s.Alive() {
			return ReclaimedSentinel
		}
	}
	return cell
}

// GetFeedbackExtra returns the trailing cell of a two-cell slot.
// Panics if the slot's kind is single-cell.
func (n Nexus) GetFeedbackExtra() Value {
	return n.vector.GetExtra(n.slot)
}

// AllocationSite returns the preserved allocation-history marker, or nil if
// the slot holds none.
func (n Nexus) AllocationSite() *AllocationSite {
	cell := n.vector.Get(n.slot)
	if cell.marker() != allocationSiteMarker {
		return nil
	}
	return n.vector.allocationSiteAt(cell.handleIndex())
}

// ---------------------------------------------------------------------------
// Explicit invalidation
// ---------------------------------------------------------------------------

// Clear forcibly resets the slot regardless of current state: call slots to
// premonomorphic, every other kind to uninitialized. The slot's counter
// contribution is removed. This is explicit invalidation (deoptimization,
// code patching), not part of normal execution, and it is well-defined on a
// slot that already degraded to generic.
func (n Nexus) Clear() {
	v := n.vector
	cell := v.Get(n.slot)

	switch {
	case cell == GenericSentinel:
		v.decrementGenericProfileCount()
	case cell.marker() == shapeRefMarker, cell.marker() == shapeListMarker,
		cell.marker() == allocationSiteMarker, cell == MegamorphicSentinel:
		v.decrementTypedProfileCount()
	}

	if n.kind == KindCall {
		v.Set(n.slot, PremonomorphicSentinel)
	} else {
		v.Set(n.slot, UninitializedSentinel)
	}
	if n.hasHandlerCell() {
		v.SetExtra(n.slot, UninitializedSentinel)
	}
}
