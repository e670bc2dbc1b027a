// Package snapshot captures point-in-time profiles of feedback vectors and
// serializes them as canonical CBOR, so type feedback gathered in one process
// can be inspected offline or persisted across runs.
package snapshot

import (
	"time"

	"github.com/chazu/sybil/feedback"
)

// SlotProfile is the captured view of one feedback slot. Shape identities do
// not survive a process boundary, so the snapshot records only the learned
// structure: the state and how many live shapes backed it.
type SlotProfile struct {
	Slot       int    `cbor:"1,keyasint"`
	Kind       string `cbor:"2,keyasint"`
	State      string `cbor:"3,keyasint,omitempty"` // empty for counter slots
	ShapeCount int    `cbor:"4,keyasint,omitempty"`

	// Allocation-history marker, if the slot holds one.
	SiteLabel string `cbor:"5,keyasint,omitempty"`
	SiteHits  uint64 `cbor:"6,keyasint,omitempty"`
}

// FunctionProfile is the captured view of one function's feedback vector.
type FunctionProfile struct {
	Function   string        `cbor:"1,keyasint"`
	CapturedAt int64         `cbor:"2,keyasint"` // unix seconds
	Typed      int           `cbor:"3,keyasint"`
	Generic    int           `cbor:"4,keyasint"`
	Slots      []SlotProfile `cbor:"5,keyasint,omitempty"`
}

// Capture snapshots the vector's current feedback under the given function
// name. It reads through the same views the optimizer uses, so a slot whose
// shapes were reclaimed profiles exactly as the optimizer would see it.
func Capture(function string, v *feedback.Vector) *FunctionProfile {
	p := &FunctionProfile{
		Function:   function,
		CapturedAt: time.Now().Unix(),
		Typed:      v.TypedProfileCount(),
		Generic:    v.GenericProfileCount(),
	}

	for slot := feedback.Slot(0); int(slot) < v.SlotCount(); slot++ {
		kind := v.KindOf(slot)
		sp := SlotProfile{Slot: int(slot), Kind: kind.String()}
		if kind != feedback.KindCounter {
			n := feedback.NewNexus(v, slot)
			sp.State = n.State().String()
			sp.ShapeCount = len(n.FindAllShapes())
			if site := n.AllocationSite(); site != nil {
				sp.SiteLabel = site.Label()
				sp.SiteHits = site.Hits()
			}
		}
		p.Slots = append(p.Slots, sp)
	}
	return p
}

// StateCounts tallies the captured slot states, mirroring
// feedback.Vector.StateCounts for a profile that has left the process.
func (p *FunctionProfile) StateCounts() feedback.StateCounts {
	var c feedback.StateCounts
	for _, sp := range p.Slots {
		switch sp.State {
		case "":
			c.Counter++
		case feedback.StateUninitialized.String():
			c.Uninitialized++
		case feedback.StatePremonomorphic.String():
			c.Premonomorphic++
		case feedback.StateMonomorphic.String():
			c.Monomorphic++
		case feedback.StatePolymorphic.String():
			c.Polymorphic++
		case feedback.StateMegamorphic.String():
			c.Megamorphic++
		case feedback.StateGeneric.String():
			c.Generic++
		}
	}
	return c
}
