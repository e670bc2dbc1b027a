package feedback

// ---------------------------------------------------------------------------
// Centralized marker allocation table
// ---------------------------------------------------------------------------
//
// Every symbol-encoded (non-numeric) cell payload uses a unique marker byte
// stored in bits 24-31 of the symbol ID. This file is the single source of
// truth for all marker allocations.
//
// To add a new marker:
//   1. Pick the next available value from the table below.
//   2. Define the constant here.
//   3. Handle it in Value.String and, if it carries an arena handle, in the
//      vector's clearing logic.
//
// IMPORTANT: Once assigned, marker values must NEVER change — they are part
// of the snapshot wire format.

const (
	// State sentinels (no handle payload)
	uninitializedMarker  uint32 = 1 << 24
	premonomorphicMarker uint32 = 2 << 24
	megamorphicMarker    uint32 = 3 << 24
	genericMarker        uint32 = 4 << 24
	reclaimedMarker      uint32 = 5 << 24

	// Arena handles (24-bit index payload into a vector-owned arena)
	shapeRefMarker       uint32 = 16 << 24
	shapeListMarker      uint32 = 17 << 24
	allocationSiteMarker uint32 = 18 << 24
)

// markerMask extracts the marker byte from a symbol ID.
const markerMask uint32 = 0xFF << 24

// maxHandleIndex is the largest arena index a handle symbol can carry.
const maxHandleIndex = 1<<24 - 1

// Shared sentinel cells. These are plain tagged words, so every vector can
// hold the same sentinel values without per-instance allocation.
const (
	// UninitializedSentinel marks a slot that has never recorded anything
	// (fresh vector, or reset by a hard clear).
	UninitializedSentinel Value = Value(nanBits | tagSymbol | uint64(uninitializedMarker))

	// PremonomorphicSentinel marks a slot that has been executed exactly once.
	// The first observation is deliberately not cached; many sites run once
	// during setup and never again.
	PremonomorphicSentinel Value = Value(nanBits | tagSymbol | uint64(premonomorphicMarker))

	// MegamorphicSentinel marks a slot that outgrew the polymorphic
	// fan-out limit.
	MegamorphicSentinel Value = Value(nanBits | tagSymbol | uint64(megamorphicMarker))

	// GenericSentinel marks a slot whose operand carried no trackable shape.
	// Generic is sticky: it records a property of the site's usage pattern,
	// not a cached pointer, so clearing passes never remove it.
	GenericSentinel Value = Value(nanBits | tagSymbol | uint64(genericMarker))

	// ReclaimedSentinel is what a weak shape reference resolves to after its
	// target has been collected. It is produced lazily on read; clearing
	// passes never write it into a cell.
	ReclaimedSentinel Value = Value(nanBits | tagSymbol | uint64(reclaimedMarker))
)

func shapeRefHandle(index int) Value {
	if index < 0 || index > maxHandleIndex {
		panic("shapeRefHandle: arena index out of range")
	}
	return FromSymbolID(shapeRefMarker | uint32(index))
}

func shapeListHandle(index int) Value {
	if index < 0 || index > maxHandleIndex {
		panic("shapeListHandle: arena index out of range")
	}
	return FromSymbolID(shapeListMarker | uint32(index))
}

func allocationSiteHandle(index int) Value {
	if index < 0 || index > maxHandleIndex {
		panic("allocationSiteHandle: arena index out of range")
	}
	return FromSymbolID(allocationSiteMarker | uint32(index))
}
