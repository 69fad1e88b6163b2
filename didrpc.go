// Package didrpc defines the query boundary between DID attribute
// consumers and the ledger runtime that owns attribute state.
//
// The ledger side is expressed as narrow capability interfaces:
// [AttributeReader] and [ChainInfo] are required, [APIVersioner] is
// optional and discovered via Go type assertion. The consumer side is
// the single-method [Querier].
package didrpc

import (
	"context"

	"github.com/blockberries/didrpc/types"
)

// AttributeReader is the versioned runtime read capability.
//
// ReadAttribute returns the attribute stored under name for account
// as of the block at. A nil record with a nil error means the
// attribute does not exist at that block. Any error means the read
// itself could not be completed (unknown block, unavailable API,
// internal fault).
//
// This method MUST be safe for concurrent use.
type AttributeReader interface {
	ReadAttribute(ctx context.Context, at types.Hash, account types.AccountID, name []byte) (*types.Attribute, error)
}

// ChainInfo exposes the node's view of the chain head.
type ChainInfo interface {
	// BestHash returns the hash of the best block known to the node.
	// It must not block on I/O; implementations that need I/O track
	// the value in the background.
	BestHash() types.Hash
}

// Ledger is the full collaborator required by the query service.
type Ledger interface {
	AttributeReader
	ChainInfo
}

// APIVersioner is implemented by ledgers that can report which
// version of the DID runtime API is available at a given block. If
// the ledger does not implement it, no version check is performed.
type APIVersioner interface {
	APIVersion(ctx context.Context, at types.Hash) (uint32, error)
}

// Querier is the single exposed operation of the service.
type Querier interface {
	// ReadAttribute returns the attribute name of account as of the
	// snapshot at.
	//
	// Exactly one of the following holds:
	//   - present: non-nil attribute, nil error;
	//   - absent:  nil attribute, nil error;
	//   - failure: nil attribute, *ServiceError.
	//
	// An empty name is a literal key, not a validation error.
	//
	// This method MUST be safe for concurrent use.
	ReadAttribute(ctx context.Context, account types.AccountID, name types.Bytes, at types.Snapshot) (*types.RPCAttribute, error)
}

// Connection represents a transport-agnostic connection to the query
// service. gRPC clients, JSON-RPC clients and in-process adapters all
// implement it.
type Connection interface {
	Querier

	// Close terminates the connection.
	Close() error
}
