package snapshot

import (
	"bytes"
	"testing"

	"github.com/chazu/sybil/feedback"
)

type stubShape struct{ name string }

func (s *stubShape) Alive() bool { return true }

func buildVector() *feedback.Vector {
	var spec feedback.VectorSpec
	spec.AddCounterSlot()
	mono := spec.AddLoadSlot()
	poly := spec.AddLoadSlot()
	call := spec.AddCallSlot()
	spec.AddStoreSlot() // left uninitialized
	v := feedback.NewVector(feedback.DeriveMetadata(&spec))

	s := &stubShape{name: "Point"}
	mn := feedback.NewLoadNexus(v, mono)
	mn.Record(s, feedback.Nil)
	mn.Record(s, feedback.Nil)

	pn := feedback.NewLoadNexus(v, poly)
	a := &stubShape{name: "A"}
	pn.Record(a, feedback.Nil)
	pn.Record(a, feedback.Nil)
	pn.Record(&stubShape{name: "B"}, feedback.Nil)

	site := feedback.NewAllocationSite("Array")
	site.RecordHit()
	site.RecordHit()
	feedback.NewCallNexus(v, call).RecordAllocationSite(site)

	return v
}

func TestCapture(t *testing.T) {
	v := buildVector()
	p := Capture("Point>>moveBy:", v)

	if p.Function != "Point>>moveBy:" {
		t.Errorf("Function = %q, want %q", p.Function, "Point>>moveBy:")
	}
	if p.Typed != v.TypedProfileCount() {
		t.Errorf("Typed = %d, want %d", p.Typed, v.TypedProfileCount())
	}
	if len(p.Slots) != v.SlotCount() {
		t.Fatalf("len(Slots) = %d, want %d", len(p.Slots), v.SlotCount())
	}

	if p.Slots[0].State != "" {
		t.Errorf("counter slot State = %q, want empty", p.Slots[0].State)
	}
	if p.Slots[1].State != "MONOMORPHIC" || p.Slots[1].ShapeCount != 1 {
		t.Errorf("mono slot = %+v, want MONOMORPHIC with 1 shape", p.Slots[1])
	}
	if p.Slots[2].State != "POLYMORPHIC" || p.Slots[2].ShapeCount != 2 {
		t.Errorf("poly slot = %+v, want POLYMORPHIC with 2 shapes", p.Slots[2])
	}
	if p.Slots[3].SiteLabel != "Array" || p.Slots[3].SiteHits != 2 {
		t.Errorf("call slot = %+v, want allocation site Array with 2 hits", p.Slots[3])
	}
	if p.Slots[4].State != "UNINITIALIZED" {
		t.Errorf("untouched slot State = %q, want UNINITIALIZED", p.Slots[4].State)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	p := Capture("Array>>at:put:", buildVector())

	data, err := MarshalProfile(p)
	if err != nil {
		t.Fatalf("MarshalProfile: %v", err)
	}
	got, err := UnmarshalProfile(data)
	if err != nil {
		t.Fatalf("UnmarshalProfile: %v", err)
	}

	if got.Function != p.Function || got.CapturedAt != p.CapturedAt {
		t.Errorf("header mismatch: got %+v, want %+v", got, p)
	}
	if got.Typed != p.Typed || got.Generic != p.Generic {
		t.Errorf("counters mismatch: got %d/%d, want %d/%d",
			got.Typed, got.Generic, p.Typed, p.Generic)
	}
	if len(got.Slots) != len(p.Slots) {
		t.Fatalf("len(Slots) = %d, want %d", len(got.Slots), len(p.Slots))
	}
	for i := range p.Slots {
		if got.Slots[i] != p.Slots[i] {
			t.Errorf("Slots[%d] = %+v, want %+v", i, got.Slots[i], p.Slots[i])
		}
	}
}

func TestMarshalDeterministic(t *testing.T) {
	p := Capture("Dictionary>>at:", buildVector())

	a, err := MarshalProfile(p)
	if err != nil {
		t.Fatalf("MarshalProfile: %v", err)
	}
	b, err := MarshalProfile(p)
	if err != nil {
		t.Fatalf("MarshalProfile: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("canonical encoding should be byte-stable")
	}
}

func TestUnmarshalProfileRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalProfile([]byte{0xff, 0x00, 0x01}); err == nil {
		t.Error("expected error for malformed input")
	}
}

func TestProfileStateCounts(t *testing.T) {
	v := buildVector()
	p := Capture("Point>>x", v)

	if got, want := p.StateCounts(), v.StateCounts(); got != want {
		t.Errorf("StateCounts() = %+v, want %+v", got, want)
	}
}
