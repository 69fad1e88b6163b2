package didgrpc

import (
	"context"
	"net"

	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/server"
	"github.com/blockberries/didrpc/types"

	"google.golang.org/grpc"
)

// Compile-time interface check.
var _ DIDQueryServer = (*GRPCServer)(nil)

// GRPCServer exposes a didrpc.Querier over gRPC.
// No type conversion is needed: domain types are serialized
// directly via cramberry.
type GRPCServer struct {
	q didrpc.Querier
}

// NewGRPCServer creates a gRPC server querying the given ledger.
func NewGRPCServer(ledger didrpc.Ledger, opts ...server.Option) *GRPCServer {
	return &GRPCServer{q: server.New(ledger, opts...)}
}

// NewGRPCServerFor exposes an existing querier.
func NewGRPCServerFor(q didrpc.Querier) *GRPCServer {
	return &GRPCServer{q: q}
}

// Register adds the service to a gRPC server.
func (s *GRPCServer) Register(gs grpc.ServiceRegistrar) {
	RegisterDIDQueryServer(gs, s)
}

// Serve starts a gRPC server on the given listener.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs.Serve(lis)
}

// Stop gracefully stops the gRPC server.
func (s *GRPCServer) Stop(gs *grpc.Server) {
	gs.GracefulStop()
}

// Querier returns the underlying querier for advanced use.
func (s *GRPCServer) Querier() didrpc.Querier {
	return s.q
}

func (s *GRPCServer) ReadAttribute(ctx context.Context, req *ReadAttributeRequest) (*ReadAttributeResponse, error) {
	attr, err := s.q.ReadAttribute(ctx, req.Account, req.Name, types.SnapshotFromPtr(req.At))
	if err != nil {
		svcErr, ok := didrpc.IsServiceError(err)
		if !ok {
			return nil, err
		}
		return &ReadAttributeResponse{Error: toWireError(svcErr)}, nil
	}
	return &ReadAttributeResponse{Attribute: attr}, nil
}
