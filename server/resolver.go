package server

import (
	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/types"
)

// Resolver fixes the block a query runs against.
type Resolver struct {
	chain didrpc.ChainInfo
}

// NewResolver creates a resolver backed by the node's chain view.
func NewResolver(chain didrpc.ChainInfo) *Resolver {
	return &Resolver{chain: chain}
}

// Resolve returns the pinned hash of at, or the current best block
// hash if at is unspecified.
func (r *Resolver) Resolve(at types.Snapshot) types.Hash {
	if h, ok := at.Hash(); ok {
		return h
	}
	return r.chain.BestHash()
}
