package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/chazu/sybil/feedback"
	"github.com/chazu/sybil/feedback/snapshot"
)

type stubShape struct{ name string }

func (s *stubShape) Alive() bool { return true }

func sampleProfile(function string) *snapshot.FunctionProfile {
	var spec feedback.VectorSpec
	load := spec.AddLoadSlot()
	v := feedback.NewVector(feedback.DeriveMetadata(&spec))

	s := &stubShape{name: "Point"}
	n := feedback.NewLoadNexus(v, load)
	n.Record(s, feedback.Nil)
	n.Record(s, feedback.Nil)

	return snapshot.Capture(function, v)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "profiles.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSaveAndLoad(t *testing.T) {
	st := openTestStore(t)

	p := sampleProfile("Point>>x")
	if err := st.Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Load("Point>>x")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Function != p.Function || got.Typed != p.Typed {
		t.Errorf("Load = %+v, want %+v", got, p)
	}
	if len(got.Slots) != len(p.Slots) || got.Slots[0] != p.Slots[0] {
		t.Errorf("Slots = %+v, want %+v", got.Slots, p.Slots)
	}
}

func TestLoadMissing(t *testing.T) {
	st := openTestStore(t)

	if _, err := st.Load("nope"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Load(missing) = %v, want ErrProfileNotFound", err)
	}
}

func TestSaveReplaces(t *testing.T) {
	st := openTestStore(t)

	p := sampleProfile("Point>>x")
	if err := st.Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	p.Typed = 42
	if err := st.Save(p); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := st.Load("Point>>x")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Typed != 42 {
		t.Errorf("Typed = %d, want 42 (latest snapshot wins)", got.Typed)
	}

	names, err := st.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 {
		t.Errorf("List() = %v, want one entry", names)
	}
}

func TestDeleteAndList(t *testing.T) {
	st := openTestStore(t)

	for _, fn := range []string{"b", "a", "c"} {
		if err := st.Save(sampleProfile(fn)); err != nil {
			t.Fatalf("Save(%q): %v", fn, err)
		}
	}

	names, err := st.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("List() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	if err := st.Delete("b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Load("b"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Load after Delete = %v, want ErrProfileNotFound", err)
	}

	// Deleting again is harmless.
	if err := st.Delete("b"); err != nil {
		t.Errorf("repeat Delete: %v", err)
	}
}
