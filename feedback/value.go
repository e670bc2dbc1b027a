package feedback

import (
	"fmt"
	"math"
)

// Value represents one feedback storage cell using NaN-boxing.
//
// All cells are 64-bit words. Non-float payloads are encoded in the NaN
// (Not-a-Number) space using the quiet NaN prefix and tag bits to
// distinguish types.
//
// Encoding scheme:
//   - Float: Native IEEE 754 double (if not a NaN, it's a float)
//   - SmallInt: Quiet NaN + tagInt + 48-bit signed payload
//   - Symbol: Quiet NaN + tagSymbol + marker byte + 24-bit payload
//   - Special: Quiet NaN + tagSpecial + special value ID (nil)
//
// Feedback cells never hold raw pointers. Heap payloads (weak shape
// references, polymorphic pair lists, allocation sites) live in arenas
// owned by the vector and are referenced by symbol-encoded handles, so the
// cell array stays a flat table of plain words that a tracing collector can
// scan linearly. A Value fits in a single atomic 64-bit store.
type Value uint64

// NaN-boxing constants
const (
	// Quiet NaN prefix: exponent all 1s, quiet bit set, sign bit 0
	nanBits uint64 = 0x7FF8000000000000

	// Tag mask: 3 bits within the NaN mantissa space
	tagMask uint64 = 0x0007000000000000

	// Payload mask: 48 bits
	payloadMask uint64 = 0x0000FFFFFFFFFFFF

	// Tag values (shifted into position)
	tagInt     uint64 = 0x0002000000000000 // 48-bit signed integer
	tagSpecial uint64 = 0x0003000000000000 // nil
	tagSymbol  uint64 = 0x0004000000000000 // marker-encoded sentinel or handle

	// Sign bit for 48-bit integer sign extension
	intSignBit uint64 = 0x0000800000000000

	// Mask for sign extension
	intSignExtend uint64 = 0xFFFF000000000000
)

// Nil is the empty cell value. Freshly allocated vectors are initialized to
// kind-specific sentinels, never to Nil; Nil only appears as the "no
// payload" result of accessor helpers.
const Nil Value = Value(nanBits | tagSpecial)

// SmallInt range (48-bit signed)
const (
	MaxSmallInt int64 = (1 << 47) - 1
	MinSmallInt int64 = -(1 << 47)
)

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// IsFloat returns true if v represents a float64 value.
// A value is a float if it's not one of our tagged NaN values.
func (v Value) IsFloat() bool {
	bits := uint64(v)

	if (bits & 0x7FF0000000000000) != 0x7FF0000000000000 {
		// Exponent is not all 1s, so it's a regular float.
		return true
	}

	// Exponent all 1s: Infinity (mantissa 0) is a valid float.
	if bits&0x000FFFFFFFFFFFFF == 0 {
		return true
	}

	// Signaling NaNs and untagged quiet NaNs are floats; only quiet NaNs
	// carrying one of our tags are non-float cells.
	if (bits&nanBits) != nanBits || bits&tagMask == 0 {
		return true
	}
	return false
}

// IsSmallInt returns true if v represents a small integer.
func (v Value) IsSmallInt() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagInt)
}

// IsSymbol returns true if v represents a marker-encoded symbol.
func (v Value) IsSymbol() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagSymbol)
}

// IsNil returns true if v is the nil value.
func (v Value) IsNil() bool {
	return v == Nil
}

// ---------------------------------------------------------------------------
// Float operations
// ---------------------------------------------------------------------------

// Float64 returns v as a float64.
// Panics if v is not a float.
func (v Value) Float64() float64 {
	if !v.IsFloat() {
		panic("Value.Float64: not a float")
	}
	return math.Float64frombits(uint64(v))
}

// FromFloat64 creates a Value from a float64.
func FromFloat64(f float64) Value {
	return Value(math.Float64bits(f))
}

// ---------------------------------------------------------------------------
// SmallInt operations
// ---------------------------------------------------------------------------

// SmallInt returns v as an int64.
// Panics if v is not a small integer.
func (v Value) SmallInt() int64 {
	if !v.IsSmallInt() {
		panic("Value.SmallInt: not a small integer")
	}
	payload := uint64(v) & payloadMask

	// Sign extend from 48 bits to 64 bits
	if (payload & intSignBit) != 0 {
		payload |= intSignExtend
	}
	return int64(payload)
}

// FromSmallInt creates a Value from an int64.
// Panics if n is outside the SmallInt range.
func FromSmallInt(n int64) Value {
	if n > MaxSmallInt || n < MinSmallInt {
		panic("FromSmallInt: value out of range")
	}
	return Value(nanBits | tagInt | (uint64(n) & payloadMask))
}

// ---------------------------------------------------------------------------
// Symbol operations
// ---------------------------------------------------------------------------

// SymbolID returns the full symbol ID (marker byte plus payload) encoded in v.
// Panics if v is not a symbol.
func (v Value) SymbolID() uint32 {
	if !v.IsSymbol() {
		panic("Value.SymbolID: not a symbol")
	}
	return uint32(uint64(v) & payloadMask)
}

// FromSymbolID creates a Value from a symbol ID.
func FromSymbolID(id uint32) Value {
	return Value(nanBits | tagSymbol | uint64(id))
}

// marker returns the marker byte of a symbol value, or 0 if v is not a symbol.
func (v Value) marker() uint32 {
	if !v.IsSymbol() {
		return 0
	}
	return v.SymbolID() & markerMask
}

// handleIndex returns the 24-bit arena index of a handle-carrying symbol.
func (v Value) handleIndex() int {
	return int(v.SymbolID() &^ markerMask)
}

// String renders a cell for diagnostics.
func (v Value) String() string {
	switch {
	case v.IsSmallInt():
		return fmt.Sprintf("smi(%d)", v.SmallInt())
	case v.IsNil():
		return "nil"
	case v.IsSymbol():
		switch v.marker() {
		case uninitializedMarker:
			return "uninitialized"
		case premonomorphicMarker:
			return "premonomorphic"
		case megamorphicMarker:
			return "megamorphic"
		case genericMarker:
			return "generic"
		case reclaimedMarker:
			return "reclaimed"
		case shapeRefMarker:
			return fmt.Sprintf("shape#%d", v.handleIndex())
		case shapeListMarker:
			return fmt.Sprintf("shapes#%d", v.handleIndex())
		case allocationSiteMarker:
			return fmt.Sprintf("allocsite#%d", v.handleIndex())
		}
		return fmt.Sprintf("symbol(%#x)", v.SymbolID())
	default:
		return fmt.Sprintf("float(%g)", v.Float64())
	}
}
