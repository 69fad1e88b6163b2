package types

import (
	"encoding/hex"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Bytes is the transport binary payload. It crosses the service
// boundary as raw bytes in cramberry and as a 0x-prefixed hex
// string in JSON, independent of the ledger's internal encoding.
type Bytes []byte

// String returns the 0x-prefixed hex form.
func (b Bytes) String() string { return "0x" + hex.EncodeToString(b) }

// MarshalJSON encodes the payload as a 0x-prefixed hex string.
// An empty payload encodes as "0x".
func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON decodes a 0x-prefixed hex string.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := decodeHex(s)
	if err != nil {
		return err
	}
	*b = raw
	return nil
}

// Clone returns a copy that shares no memory with b.
// A nil payload clones to an empty, non-nil one.
func (b Bytes) Clone() Bytes {
	out := make(Bytes, len(b))
	copy(out, b)
	return out
}
