package jsonrpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/types"
)

// Compile-time interface check.
var _ didrpc.Connection = (*Client)(nil)

// Client implements didrpc.Connection over JSON-RPC 2.0 / HTTP.
type Client struct {
	endpoint string
	hc       *http.Client
	nextID   atomic.Uint64
}

// NewClient creates a client posting to endpoint. A nil http.Client
// uses http.DefaultClient.
func NewClient(endpoint string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{endpoint: endpoint, hc: hc}
}

// ReadAttribute calls did_readAttribute. Service errors are restored
// as *didrpc.ServiceError; reserved JSON-RPC errors are returned as
// *Error.
func (c *Client) ReadAttribute(ctx context.Context, account types.AccountID, name types.Bytes, at types.Snapshot) (*types.RPCAttribute, error) {
	if name == nil {
		name = types.Bytes{}
	}
	params := []any{account, name}
	if h, ok := at.Hash(); ok {
		params = append(params, h)
	}
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("jsonrpc: encode params: %w", err)
	}

	id := c.nextID.Add(1)
	body, err := json.Marshal(request{
		JSONRPC: version,
		ID:      requestID(strconv.FormatUint(id, 10)),
		Method:  MethodReadAttribute,
		Params:  rawParams,
	})
	if err != nil {
		return nil, fmt.Errorf("jsonrpc: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("jsonrpc: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("jsonrpc: post %s: %w", c.endpoint, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("jsonrpc: unexpected status %d: %s", httpResp.StatusCode, bytes.TrimSpace(msg))
	}

	var resp response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("jsonrpc: decode response: %w", err)
	}
	if resp.Error != nil {
		if resp.Error.IsTransport() {
			return nil, resp.Error
		}
		return nil, didrpc.NewServiceError(resp.Error.Code, resp.Error.Message, resp.Error.Data)
	}

	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil, nil
	}
	attr := new(types.RPCAttribute)
	if err := json.Unmarshal(resp.Result, attr); err != nil {
		return nil, fmt.Errorf("jsonrpc: decode result: %w", err)
	}
	return attr, nil
}

// Close releases idle connections held by the HTTP client.
func (c *Client) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}
