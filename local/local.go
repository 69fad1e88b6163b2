// Package local provides a zero-copy, in-process didrpc connection.
//
// For callers compiled into the same binary as the node, this
// adapter wraps a ledger with the query server directly, with no
// serialization overhead.
package local

import (
	"context"

	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/server"
	"github.com/blockberries/didrpc/types"
)

// Compile-time interface check.
var _ didrpc.Connection = (*Connection)(nil)

// Connection wraps a ledger with the query server.
type Connection struct {
	srv *server.Server
}

// NewConnection creates an in-process connection over the given
// ledger.
func NewConnection(ledger didrpc.Ledger, opts ...server.Option) *Connection {
	return &Connection{srv: server.New(ledger, opts...)}
}

func (c *Connection) ReadAttribute(ctx context.Context, account types.AccountID, name types.Bytes, at types.Snapshot) (*types.RPCAttribute, error) {
	return c.srv.ReadAttribute(ctx, account, name, at)
}

func (c *Connection) Close() error { return nil }

// Server returns the underlying server for advanced use cases.
func (c *Connection) Server() *server.Server {
	return c.srv
}
