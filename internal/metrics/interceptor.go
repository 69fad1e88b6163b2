package metrics

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

// UnaryServerInterceptor returns a gRPC interceptor that records metrics for each request.
func UnaryServerInterceptor(exporter *PrometheusExporter) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		method := info.FullMethod

		exporter.RecordRequest(TransportGRPC, method)

		resp, err := handler(ctx, req)

		exporter.RecordDuration(TransportGRPC, method, time.Since(start).Seconds())
		if err != nil {
			exporter.RecordError(TransportGRPC, method)
		}

		return resp, err
	}
}
