package feedback

// SlotKind identifies what feedback a slot records. Kind is assigned when
// the slot is added to a VectorSpec and is immutable from then on.
type SlotKind uint8

const (
	// KindCounter slots carry no inline cache state; they hold a plain
	// numeric tag read and written directly through the vector.
	KindCounter SlotKind = iota

	// KindCall slots track callee identity (and allocation history) for a
	// call site.
	KindCall

	// KindLoad and KindStore slots track receiver shapes for named property
	// access.
	KindLoad
	KindStore

	// KindKeyedLoad and KindKeyedStore slots track receiver shapes for
	// indexed access; they carry a second cell for the access handler.
	KindKeyedLoad
	KindKeyedStore
)

// Width returns the number of storage cells a slot of this kind occupies.
// Width is a pure function of kind, not of any slot instance: keyed kinds
// hold a shape and a handler and take two cells, everything else takes one.
func (k SlotKind) Width() int {
	switch k {
	case KindKeyedLoad, KindKeyedStore:
		return 2
	case KindCounter, KindCall, KindLoad, KindStore:
		return 1
	}
	panic("SlotKind.Width: invalid kind")
}

func (k SlotKind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindCall:
		return "call"
	case KindLoad:
		return "load"
	case KindStore:
		return "store"
	case KindKeyedLoad:
		return "keyed-load"
	case KindKeyedStore:
		return "keyed-store"
	}
	return "invalid"
}

// ICState is the specialization state a nexus computes from a slot's
// stored content.
type ICState uint8

const (
	StateUninitialized ICState = iota
	StatePremonomorphic
	StateMonomorphic
	StatePolymorphic
	StateMegamorphic
	StateGeneric
)

func (s ICState) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StatePremonomorphic:
		return "PREMONOMORPHIC"
	case StateMonomorphic:
		return "MONOMORPHIC"
	case StatePolymorphic:
		return "POLYMORPHIC"
	case StateMegamorphic:
		return "MEGAMORPHIC"
	case StateGeneric:
		return "GENERIC"
	}
	return "INVALID"
}
