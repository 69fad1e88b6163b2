package didgrpc

import (
	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/types"
)

// Transport-specific wrapper types. These are used only for gRPC
// serialization boundaries.

// ReadAttributeRequest wraps the parameters for Querier.ReadAttribute.
type ReadAttributeRequest struct {
	Account types.AccountID `cramberry:"1"`
	Name    types.Bytes     `cramberry:"2"`
	// Nil = best block.
	At *types.Hash `cramberry:"3"`
}

// ReadAttributeResponse is a tagged union: at most one of Attribute
// and Error is set. Both nil means the attribute is absent.
type ReadAttributeResponse struct {
	Attribute *types.RPCAttribute `cramberry:"1"`
	Error     *WireError          `cramberry:"2"`
}

// WireError is the serialized form of a didrpc.ServiceError.
type WireError struct {
	Code    int64  `cramberry:"1"`
	Message string `cramberry:"2"`
	Data    string `cramberry:"3"`
}

func toWireError(e *didrpc.ServiceError) *WireError {
	return &WireError{Code: e.Code(), Message: e.Message, Data: e.Data}
}

func (w *WireError) serviceError() *didrpc.ServiceError {
	return didrpc.NewServiceError(w.Code, w.Message, w.Data)
}
