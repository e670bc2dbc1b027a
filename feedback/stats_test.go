package feedback

import "testing"

func TestStateCounts(t *testing.T) {
	var spec VectorSpec
	spec.AddCounterSlot()
	mono := spec.AddLoadSlot()
	poly := spec.AddLoadSlot()
	generic := spec.AddCallSlot()
	spec.AddStoreSlot() // stays uninitialized
	v := NewVector(DeriveMetadata(&spec))

	s := newShape("Point")
	mn := NewLoadNexus(v, mono)
	mn.Record(s, Nil)
	mn.Record(s, Nil)

	pn := NewLoadNexus(v, poly)
	pn.Record(newShape("A"), Nil)
	pn.Record(newShape("A"), Nil)
	pn.Record(newShape("B"), Nil)

	NewCallNexus(v, generic).RecordCallee(nil)

	got := v.StateCounts()
	want := StateCounts{
		Counter:       1,
		Uninitialized: 1,
		Monomorphic:   1,
		Polymorphic:   1,
		Generic:       1,
	}
	if got != want {
		t.Errorf("StateCounts() = %+v, want %+v", got, want)
	}

	// 1 of 3 touched slots is monomorphic.
	if rate := got.MonomorphicRate(); rate < 33.3 || rate > 33.4 {
		t.Errorf("MonomorphicRate() = %v, want ~33.3", rate)
	}
}

func TestMonomorphicRateUntouched(t *testing.T) {
	var c StateCounts
	if c.MonomorphicRate() != 0 {
		t.Errorf("MonomorphicRate() = %v, want 0", c.MonomorphicRate())
	}
}
