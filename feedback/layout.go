package feedback

// ---------------------------------------------------------------------------
// VectorSpec: build-time slot layout accumulator
// ---------------------------------------------------------------------------

// Slot is a logical slot index within a feedback vector. Indices are dense,
// starting at 0, assigned in append order by a VectorSpec.
type Slot int

// VectorSpec accumulates, in order, the kind of feedback each site of a
// function needs. The front end appends one entry per site (or one entry
// shared by several provably redundant sites of the same kind) while
// compiling the function, derives Metadata from the finished spec, and then
// discards it. Entries are never removed or reordered.
//
// The zero value is an empty spec, ready to use.
type VectorSpec struct {
	kinds []SlotKind
}

func (s *VectorSpec) add(kind SlotKind) Slot {
	s.kinds = append(s.kinds, kind)
	return Slot(len(s.kinds) - 1)
}

// AddCounterSlot appends a counter-only slot and returns its index.
func (s *VectorSpec) AddCounterSlot() Slot { return s.add(KindCounter) }

// AddCallSlot appends a call site slot and returns its index.
func (s *VectorSpec) AddCallSlot() Slot { return s.add(KindCall) }

// AddLoadSlot appends a property load slot and returns its index.
func (s *VectorSpec) AddLoadSlot() Slot { return s.add(KindLoad) }

// AddStoreSlot appends a property store slot and returns its index.
func (s *VectorSpec) AddStoreSlot() Slot { return s.add(KindStore) }

// AddKeyedLoadSlot appends a keyed property load slot and returns its index.
func (s *VectorSpec) AddKeyedLoadSlot() Slot { return s.add(KindKeyedLoad) }

// AddKeyedStoreSlot appends a keyed property store slot and returns its index.
func (s *VectorSpec) AddKeyedStoreSlot() Slot { return s.add(KindKeyedStore) }

// SlotCount returns the number of slots added so far.
func (s *VectorSpec) SlotCount() int {
	return len(s.kinds)
}

// KindOf returns the kind of the given slot.
// Panics if slot is out of range; indices only come from the Add* methods,
// so an out-of-range index is a caller bug.
func (s *VectorSpec) KindOf(slot Slot) SlotKind {
	if slot < 0 || int(slot) >= len(s.kinds) {
		panic("VectorSpec.KindOf: slot out of range")
	}
	return s.kinds[slot]
}
