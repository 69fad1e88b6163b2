// Package didrpctest provides test utilities for the DID attribute
// query service: a configurable mock ledger, an in-memory historical
// ledger, a test harness, and a compliance suite any didrpc.Querier
// can be checked against.
package didrpctest

import (
	"context"
	"sync/atomic"

	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/types"
)

// Compile-time check that MockLedger satisfies all interfaces.
var (
	_ didrpc.Ledger       = (*MockLedger)(nil)
	_ didrpc.APIVersioner = (*MockLedger)(nil)
)

// MockLedger is a configurable mock ledger. All methods are
// configurable via function fields. Unconfigured methods return
// sensible zero-value defaults: no records, zero best hash, API
// version 1.
type MockLedger struct {
	// Configurable handlers. If nil, defaults are used.
	ReadAttributeFn func(context.Context, types.Hash, types.AccountID, []byte) (*types.Attribute, error)
	BestHashFn      func() types.Hash
	APIVersionFn    func(context.Context, types.Hash) (uint32, error)

	// Call counters (atomic for concurrent access).
	ReadAttributeCalls atomic.Int64
	BestHashCalls      atomic.Int64
	APIVersionCalls    atomic.Int64
}

func (m *MockLedger) ReadAttribute(ctx context.Context, at types.Hash, account types.AccountID, name []byte) (*types.Attribute, error) {
	m.ReadAttributeCalls.Add(1)
	if m.ReadAttributeFn != nil {
		return m.ReadAttributeFn(ctx, at, account, name)
	}
	return nil, nil
}

func (m *MockLedger) BestHash() types.Hash {
	m.BestHashCalls.Add(1)
	if m.BestHashFn != nil {
		return m.BestHashFn()
	}
	return types.Hash{}
}

func (m *MockLedger) APIVersion(ctx context.Context, at types.Hash) (uint32, error) {
	m.APIVersionCalls.Add(1)
	if m.APIVersionFn != nil {
		return m.APIVersionFn(ctx, at)
	}
	return 1, nil
}
