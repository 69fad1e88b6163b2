package didgrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
)

const serviceName = "didrpc.v1.DIDQuery"

// DIDQueryServer is the server-side interface for the gRPC service.
type DIDQueryServer interface {
	ReadAttribute(context.Context, *ReadAttributeRequest) (*ReadAttributeResponse, error)
}

// RegisterDIDQueryServer registers the DIDQueryServer on a gRPC server.
func RegisterDIDQueryServer(s grpc.ServiceRegistrar, srv DIDQueryServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

func handlerReadAttribute(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(ReadAttributeRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DIDQueryServer).ReadAttribute(ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: fullMethod("ReadAttribute"),
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DIDQueryServer).ReadAttribute(ctx, req.(*ReadAttributeRequest))
	}
	return interceptor(ctx, req, info, handler)
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DIDQueryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ReadAttribute", Handler: handlerReadAttribute},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "didrpc/v1/service.cram",
}
