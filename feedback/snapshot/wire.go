package snapshot

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical options so the same profile always encodes to
// the same bytes, which keeps stored profiles comparable.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalProfile serializes a FunctionProfile to CBOR bytes.
func MarshalProfile(p *FunctionProfile) ([]byte, error) {
	return cborEncMode.Marshal(p)
}

// UnmarshalProfile deserializes a FunctionProfile from CBOR bytes.
func UnmarshalProfile(data []byte) (*FunctionProfile, error) {
	var p FunctionProfile
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal profile: %w", err)
	}
	return &p, nil
}
