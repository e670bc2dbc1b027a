package feedback

import "sync"

// ---------------------------------------------------------------------------
// Metadata: immutable slot layout description
// ---------------------------------------------------------------------------

// Metadata is the immutable description derived once from a finalized
// VectorSpec: the kind of each slot and the cell offset its storage starts
// at. Every vector with an identical spec shape can share one Metadata;
// the empty spec always maps to one canonical shared instance.
type Metadata struct {
	kinds []SlotKind

	// offsets[i] is the absolute cell index of slot i's first cell,
	// including the vector header. offsets[len(kinds)] is the total vector
	// width, so slot widths and the total length fall out of one table.
	offsets []int
}

var (
	emptyMetadataOnce sync.Once
	emptyMetadata     *Metadata
)

// EmptyMetadata returns the canonical metadata for a spec with zero slots.
func EmptyMetadata() *Metadata {
	emptyMetadataOnce.Do(func() {
		emptyMetadata = &Metadata{offsets: []int{HeaderCells}}
	})
	return emptyMetadata
}

// DeriveMetadata derives immutable metadata from a spec. A nil or empty
// spec yields the canonical empty metadata without allocating.
func DeriveMetadata(spec *VectorSpec) *Metadata {
	if spec == nil || spec.SlotCount() == 0 {
		return EmptyMetadata()
	}

	kinds := make([]SlotKind, len(spec.kinds))
	copy(kinds, spec.kinds)

	offsets := make([]int, len(kinds)+1)
	offset := HeaderCells
	for i, kind := range kinds {
		offsets[i] = offset
		offset += kind.Width()
	}
	offsets[len(kinds)] = offset

	return &Metadata{kinds: kinds, offsets: offsets}
}

// SlotCount returns the number of slots described.
func (m *Metadata) SlotCount() int {
	return len(m.kinds)
}

// KindOf returns the kind of the given slot.
// Panics if slot is out of range: indices must come from the spec this
// metadata was derived from, so a bad index is a contract violation, not a
// recoverable condition.
func (m *Metadata) KindOf(slot Slot) SlotKind {
	if slot < 0 || int(slot) >= len(m.kinds) {
		panic("Metadata.KindOf: slot out of range")
	}
	return m.kinds[slot]
}

// SlotWidth returns the storage width of the given slot's kind.
// Panics if slot is out of range.
func (m *Metadata) SlotWidth(slot Slot) int {
	return m.KindOf(slot).Width()
}

// vectorLength returns the total cell count a vector of this shape needs,
// header included.
func (m *Metadata) vectorLength() int {
	return m.offsets[len(m.kinds)]
}

// offsetOf returns the absolute cell index of the slot's first cell.
func (m *Metadata) offsetOf(slot Slot) int {
	if slot < 0 || int(slot) >= len(m.kinds) {
		panic("Metadata.offsetOf: slot out of range")
	}
	return m.offsets[slot]
}

// slotAt maps an absolute cell offset back to the slot whose storage
// contains it. Inverse of offsetOf for every valid first-cell offset.
// Panics if offset lies in the header or past the end of the vector.
func (m *Metadata) slotAt(offset int) Slot {
	if offset < HeaderCells || offset >= m.vectorLength() {
		panic("Metadata.slotAt: offset out of range")
	}
	// offsets is sorted; binary search would work, but vectors are small
	// and this path is cold (collector and diagnostics only).
	for i := range m.kinds {
		if offset < m.offsets[i+1] {
			return Slot(i)
		}
	}
	panic("Metadata.slotAt: unreachable")
}
