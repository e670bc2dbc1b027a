package feedback

import (
	"math"
	"testing"
)

// ---------------------------------------------------------------------------
// SmallInt tests
// ---------------------------------------------------------------------------

func TestSmallIntRoundTrip(t *testing.T) {
	tests := []int64{
		0, 1, -1, 42, -42,
		MaxSmallInt, MinSmallInt,
		MaxSmallInt - 1, MinSmallInt + 1,
	}

	for _, n := range tests {
		v := FromSmallInt(n)
		if !v.IsSmallInt() {
			t.Errorf("FromSmallInt(%d).IsSmallInt() = false, want true", n)
			continue
		}
		if got := v.SmallInt(); got != n {
			t.Errorf("FromSmallInt(%d).SmallInt() = %d, want %d", n, got, n)
		}
	}
}

func TestSmallIntOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FromSmallInt(MaxSmallInt+1) should panic")
		}
	}()
	FromSmallInt(MaxSmallInt + 1)
}

func TestSmallIntIsNotFloat(t *testing.T) {
	v := FromSmallInt(7)
	if v.IsFloat() {
		t.Error("SmallInt should not be a float")
	}
	if v.IsSymbol() {
		t.Error("SmallInt should not be a symbol")
	}
}

// ---------------------------------------------------------------------------
// Float tests
// ---------------------------------------------------------------------------

func TestFloatRoundTrip(t *testing.T) {
	tests := []float64{
		0.0, 1.0, -1.0, 3.14159265358979,
		math.MaxFloat64, math.SmallestNonzeroFloat64,
		math.Inf(1), math.Inf(-1),
	}

	for _, f := range tests {
		v := FromFloat64(f)
		if !v.IsFloat() {
			t.Errorf("FromFloat64(%v).IsFloat() = false, want true", f)
			continue
		}
		if got := v.Float64(); got != f {
			t.Errorf("FromFloat64(%v).Float64() = %v, want %v", f, got, f)
		}
	}
}

func TestFloatNaN(t *testing.T) {
	// A real NaN must read as a float, not as a tagged cell.
	v := FromFloat64(math.NaN())
	if !v.IsFloat() {
		t.Error("NaN should be treated as float")
	}
	if !math.IsNaN(v.Float64()) {
		t.Error("NaN roundtrip failed")
	}
}

// ---------------------------------------------------------------------------
// Symbol and sentinel tests
// ---------------------------------------------------------------------------

func TestSymbolRoundTrip(t *testing.T) {
	id := shapeRefMarker | 12345
	v := FromSymbolID(id)
	if !v.IsSymbol() {
		t.Error("Expected symbol")
	}
	if v.SymbolID() != id {
		t.Errorf("SymbolID() = %#x, want %#x", v.SymbolID(), id)
	}
	if v.marker() != shapeRefMarker {
		t.Errorf("marker() = %#x, want %#x", v.marker(), shapeRefMarker)
	}
	if v.handleIndex() != 12345 {
		t.Errorf("handleIndex() = %d, want 12345", v.handleIndex())
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []Value{
		UninitializedSentinel,
		PremonomorphicSentinel,
		MegamorphicSentinel,
		GenericSentinel,
		ReclaimedSentinel,
		Nil,
	}
	for i, a := range sentinels {
		if !a.IsSymbol() && a != Nil {
			t.Errorf("sentinel %d is not a symbol", i)
		}
		if a.IsFloat() {
			t.Errorf("sentinel %d reads as a float", i)
		}
		for j, b := range sentinels {
			if i != j && a == b {
				t.Errorf("sentinels %d and %d collide", i, j)
			}
		}
	}
}

func TestMarkerTableUnique(t *testing.T) {
	markers := []uint32{
		uninitializedMarker, premonomorphicMarker, megamorphicMarker,
		genericMarker, reclaimedMarker,
		shapeRefMarker, shapeListMarker, allocationSiteMarker,
	}
	seen := make(map[uint32]bool)
	for _, m := range markers {
		if m&^markerMask != 0 {
			t.Errorf("marker %#x has bits outside the marker byte", m)
		}
		if seen[m] {
			t.Errorf("marker %#x allocated twice", m)
		}
		seen[m] = true
	}
}

func TestHandleEncoding(t *testing.T) {
	v := shapeListHandle(99)
	if v.marker() != shapeListMarker {
		t.Error("Expected shape list marker")
	}
	if v.handleIndex() != 99 {
		t.Errorf("handleIndex() = %d, want 99", v.handleIndex())
	}

	defer func() {
		if recover() == nil {
			t.Error("out-of-range arena index should panic")
		}
	}()
	shapeRefHandle(maxHandleIndex + 1)
}
