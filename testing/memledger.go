package didrpctest

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/types"
)

// ErrUnknownBlock is returned by MemLedger for hashes it never sealed.
var ErrUnknownBlock = errors.New("didrpctest: unknown block")

// Compile-time interface checks.
var (
	_ didrpc.Ledger       = (*MemLedger)(nil)
	_ didrpc.APIVersioner = (*MemLedger)(nil)
)

type attrKey struct {
	account types.AccountID
	name    string
}

type memBlock struct {
	hash    types.Hash
	version uint32
	state   map[attrKey]types.Attribute
}

// MemLedger is an in-memory ledger with full attribute history.
//
// Writes are staged with Set and Remove and become visible when Seal
// produces the next block. Every sealed block keeps its own state, so
// queries against an old hash see the attributes as they were then.
// Block 0 (genesis) is sealed on construction and is empty.
type MemLedger struct {
	mu      sync.RWMutex
	blocks  []memBlock
	byHash  map[types.Hash]uint64
	staged  map[attrKey]*types.Attribute // nil value = removal
	version uint32
	failErr error
}

// NewMemLedger creates a ledger at genesis with API version 1.
func NewMemLedger() *MemLedger {
	l := &MemLedger{
		byHash:  make(map[types.Hash]uint64),
		staged:  make(map[attrKey]*types.Attribute),
		version: 1,
	}
	l.seal()
	return l
}

// Set stages a write of attr under account for the next block.
func (l *MemLedger) Set(account types.AccountID, attr types.Attribute) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a := cloneAttribute(attr)
	l.staged[attrKey{account, string(attr.Name)}] = &a
}

// Remove stages a removal of name under account for the next block.
func (l *MemLedger) Remove(account types.AccountID, name []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.staged[attrKey{account, string(name)}] = nil
}

// Seal produces the next block from the previous state plus staged
// writes, makes it the best block, and returns its hash.
func (l *MemLedger) Seal() types.Hash {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seal()
}

// SealTo seals empty blocks until the chain reaches height n and
// returns the hash at n. Staged writes land in the first sealed block.
func (l *MemLedger) SealTo(n uint64) types.Hash {
	l.mu.Lock()
	defer l.mu.Unlock()
	for uint64(len(l.blocks)) <= n {
		l.seal()
	}
	return l.blocks[n].hash
}

// HashAt returns the hash of the block at height n.
func (l *MemLedger) HashAt(n uint64) (types.Hash, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n >= uint64(len(l.blocks)) {
		return types.Hash{}, false
	}
	return l.blocks[n].hash, true
}

// Height returns the height of the best block.
func (l *MemLedger) Height() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.blocks) - 1)
}

// SetAPIVersion sets the runtime API version for blocks sealed from
// now on.
func (l *MemLedger) SetAPIVersion(v uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.version = v
}

// Fail forces every read to fail with err. Fail(nil) restores
// normal operation.
func (l *MemLedger) Fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failErr = err
}

func (l *MemLedger) BestHash() types.Hash {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.blocks[len(l.blocks)-1].hash
}

func (l *MemLedger) ReadAttribute(_ context.Context, at types.Hash, account types.AccountID, name []byte) (*types.Attribute, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.failErr != nil {
		return nil, l.failErr
	}
	n, ok := l.byHash[at]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlock, at)
	}
	attr, ok := l.blocks[n].state[attrKey{account, string(name)}]
	if !ok {
		return nil, nil
	}
	out := cloneAttribute(attr)
	return &out, nil
}

func (l *MemLedger) APIVersion(_ context.Context, at types.Hash) (uint32, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n, ok := l.byHash[at]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownBlock, at)
	}
	return l.blocks[n].version, nil
}

// seal must be called with mu held.
func (l *MemLedger) seal() types.Hash {
	height := uint64(len(l.blocks))

	state := make(map[attrKey]types.Attribute)
	var parent types.Hash
	if height > 0 {
		prev := l.blocks[height-1]
		parent = prev.hash
		for k, v := range prev.state {
			state[k] = v
		}
	}
	for k, v := range l.staged {
		if v == nil {
			delete(state, k)
			continue
		}
		state[k] = *v
	}
	clear(l.staged)

	h := blockHash(parent, height)
	l.blocks = append(l.blocks, memBlock{hash: h, version: l.version, state: state})
	l.byHash[h] = height
	return h
}

func blockHash(parent types.Hash, height uint64) types.Hash {
	var buf [40]byte
	copy(buf[:32], parent[:])
	binary.BigEndian.PutUint64(buf[32:], height)
	return sha256.Sum256(buf[:])
}

func cloneAttribute(a types.Attribute) types.Attribute {
	return types.Attribute{
		Name:     append([]byte(nil), a.Name...),
		Value:    append([]byte(nil), a.Value...),
		Validity: a.Validity,
		Created:  a.Created,
	}
}
