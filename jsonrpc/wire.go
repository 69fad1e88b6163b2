// Package jsonrpc exposes the DID attribute query service as a
// JSON-RPC 2.0 method over HTTP.
//
// The single method is did_readAttribute with positional params
// [account, name, at?]. Account and at are 0x-prefixed 32-byte hex
// strings, name is 0x-prefixed hex. The result is null when the
// attribute is absent.
//
// Notifications (requests without an id) are answered with 204 No
// Content and an empty body. Batches are rejected.
package jsonrpc

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/blockberries/didrpc"
)

// MethodReadAttribute is the JSON-RPC method name.
const MethodReadAttribute = "did_readAttribute"

const version = "2.0"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Reserved JSON-RPC 2.0 error codes. These describe transport
// failures and never overlap with service error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
)

type request struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      requestID           `json:"id,omitempty"`
	Method  string              `json:"method"`
	Params  jsoniter.RawMessage `json:"params,omitempty"`
}

// requestID keeps the raw id member. An explicit null is stored as
// the literal "null", so only a missing member leaves it empty.
type requestID []byte

func (id *requestID) UnmarshalJSON(data []byte) error {
	*id = append((*id)[:0], data...)
	return nil
}

func (id requestID) MarshalJSON() ([]byte, error) {
	if len(id) == 0 {
		return []byte("null"), nil
	}
	return id, nil
}

// isNotification reports whether the request carried no id member.
func (id requestID) isNotification() bool { return len(id) == 0 }

type successResponse struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      jsoniter.RawMessage `json:"id"`
	Result  any                 `json:"result"`
}

type errorResponse struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      jsoniter.RawMessage `json:"id"`
	Error   *Error              `json:"error"`
}

// response is the client-side view of either response shape.
type response struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      jsoniter.RawMessage `json:"id"`
	Result  jsoniter.RawMessage `json:"result"`
	Error   *Error              `json:"error"`
}

// Error is a JSON-RPC error object. Service errors use their stable
// code; transport errors use the reserved negative codes.
type Error struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e.Data == "" {
		return fmt.Sprintf("jsonrpc: %s (code %d)", e.Message, e.Code)
	}
	return fmt.Sprintf("jsonrpc: %s (code %d): %s", e.Message, e.Code, e.Data)
}

// IsTransport reports whether the code is a reserved JSON-RPC code
// rather than a service error code.
func (e *Error) IsTransport() bool {
	return e.Code <= -32000 && e.Code >= -32768
}

func fromServiceError(e *didrpc.ServiceError) *Error {
	return &Error{Code: e.Code(), Message: e.Message, Data: e.Data}
}

func newError(code int64, message, data string) *Error {
	return &Error{Code: code, Message: message, Data: data}
}
