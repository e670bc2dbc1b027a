package feedback

// StateCounts tallies slot states across one vector, for diagnostics and
// profile snapshots.
type StateCounts struct {
	Counter        int // counter-only slots (no IC state)
	Uninitialized  int
	Premonomorphic int
	Monomorphic    int
	Polymorphic    int
	Megamorphic    int
	Generic        int
}

// StateCounts computes the current state tally. Counter slots are reported
// separately; every other slot is classified through a read-only nexus view.
func (v *Vector) StateCounts() StateCounts {
	var c StateCounts
	for slot := Slot(0); int(slot) < v.SlotCount(); slot++ {
		if v.KindOf(slot) == KindCounter {
			c.Counter++
			continue
		}
		switch NewNexus(v, slot).State() {
		case StateUninitialized:
			c.Uninitialized++
		case StatePremonomorphic:
			c.Premonomorphic++
		case StateMonomorphic:
			c.Monomorphic++
		case StatePolymorphic:
			c.Polymorphic++
		case StateMegamorphic:
			c.Megamorphic++
		case StateGeneric:
			c.Generic++
		}
	}
	return c
}

// MonomorphicRate returns the fraction of touched IC slots that are
// monomorphic, as a percentage (0-100). Touched means past premonomorphic.
func (c StateCounts) MonomorphicRate() float64 {
	touched := c.Monomorphic + c.Polymorphic + c.Megamorphic + c.Generic
	if touched == 0 {
		return 0
	}
	return float64(c.Monomorphic) * 100 / float64(touched)
}
