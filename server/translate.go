package server

import (
	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/types"
)

// Translate shapes an executor outcome for the transport layer.
//
//   - record present → transport attribute, nil error
//   - no record      → nil, nil
//   - runtime error  → nil, RuntimeError service error
func Translate(rec *types.Attribute, err error) (*types.RPCAttribute, *didrpc.ServiceError) {
	if err != nil {
		return nil, didrpc.NewRuntimeError(err)
	}
	if rec == nil {
		return nil, nil
	}
	out := types.NewRPCAttribute(*rec)
	return &out, nil
}
