// Package types defines the data shapes exchanged by the DID
// attribute query service.
//
// These are plain Go structs with cramberry struct tags for
// deterministic binary serialization. Transport concerns
// (gRPC codec registration, JSON-RPC framing) are handled in the
// transport packages.
package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash is a 32-byte block hash.
type Hash [32]byte

// AccountID identifies a DID account on the ledger.
type AccountID [32]byte

// String returns the 0x-prefixed hex form of the hash.
func (h Hash) String() string { return "0x" + hex.EncodeToString(h[:]) }

// String returns the 0x-prefixed hex form of the account.
func (a AccountID) String() string { return "0x" + hex.EncodeToString(a[:]) }

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	return decodeFixed(h[:], string(text), "hash")
}

// MarshalText implements encoding.TextMarshaler.
func (a AccountID) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AccountID) UnmarshalText(text []byte) error {
	return decodeFixed(a[:], string(text), "account id")
}

// ParseHash parses a 0x-prefixed 32-byte hex string.
func ParseHash(s string) (Hash, error) {
	var h Hash
	err := h.UnmarshalText([]byte(s))
	return h, err
}

// ParseAccountID parses a 0x-prefixed 32-byte hex string.
func ParseAccountID(s string) (AccountID, error) {
	var a AccountID
	err := a.UnmarshalText([]byte(s))
	return a, err
}

func decodeFixed(dst []byte, s, what string) error {
	raw, err := decodeHex(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", what, err)
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("invalid %s: expected %d bytes, got %d", what, len(dst), len(raw))
	}
	copy(dst, raw)
	return nil
}

func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, fmt.Errorf("missing 0x prefix")
	}
	return hex.DecodeString(s[2:])
}
