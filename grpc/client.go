package didgrpc

import (
	"context"
	"fmt"

	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/types"

	"google.golang.org/grpc"
)

// Compile-time interface check.
var _ didrpc.Connection = (*Client)(nil)

// Client implements didrpc.Connection for a remote query service
// over gRPC using cramberry serialization.
type Client struct {
	cc *grpc.ClientConn
}

// Dial connects to a remote query service.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("didrpc client: dial %s: %w", addr, err)
	}
	return &Client{cc: cc}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

// ReadAttribute queries the remote service. A service error is
// restored as *didrpc.ServiceError; transport failures are returned
// as gRPC status errors.
func (c *Client) ReadAttribute(ctx context.Context, account types.AccountID, name types.Bytes, at types.Snapshot) (*types.RPCAttribute, error) {
	req := &ReadAttributeRequest{Account: account, Name: name, At: at.Ptr()}
	resp := new(ReadAttributeResponse)
	if err := c.cc.Invoke(ctx, fullMethod("ReadAttribute"), req, resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error.serviceError()
	}
	return resp.Attribute, nil
}
