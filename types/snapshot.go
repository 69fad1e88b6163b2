package types

// Snapshot pins a query to one state of the ledger. The zero value
// is the unspecified snapshot, which resolves to the best block the
// node knows about at query time.
type Snapshot struct {
	hash Hash
	set  bool
}

// Best returns the unspecified snapshot.
func Best() Snapshot { return Snapshot{} }

// At returns a snapshot pinned to the block with the given hash.
func At(h Hash) Snapshot { return Snapshot{hash: h, set: true} }

// SnapshotFromPtr converts the wire form (nil = unspecified).
func SnapshotFromPtr(h *Hash) Snapshot {
	if h == nil {
		return Best()
	}
	return At(*h)
}

// Hash returns the pinned block hash, or false if the snapshot is
// unspecified.
func (s Snapshot) Hash() (Hash, bool) { return s.hash, s.set }

// IsBest reports whether the snapshot is unspecified.
func (s Snapshot) IsBest() bool { return !s.set }

// Ptr returns the wire form (nil = unspecified).
func (s Snapshot) Ptr() *Hash {
	if !s.set {
		return nil
	}
	h := s.hash
	return &h
}

// String returns "best" or the pinned hash.
func (s Snapshot) String() string {
	if !s.set {
		return "best"
	}
	return s.hash.String()
}
