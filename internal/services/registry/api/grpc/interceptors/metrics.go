package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// RequestObserver records completed gRPC calls.
type RequestObserver interface {
	ObserveRequest(method, code string, elapsed time.Duration)
}

// MetricsUnaryInterceptor reports each unary call's status code and latency.
func MetricsUnaryInterceptor(observer RequestObserver) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()
		resp, err := handler(ctx, req)
		if observer != nil {
			observer.ObserveRequest(info.FullMethod, status.Code(err).String(), time.Since(started))
		}
		return resp, err
	}
}

// MetricsStreamInterceptor reports each stream's final status code and lifetime.
func MetricsStreamInterceptor(observer RequestObserver) grpc.StreamServerInterceptor {
	return func(srv any, stream grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		started := time.Now()
		err := handler(srv, stream)
		if observer != nil {
			observer.ObserveRequest(info.FullMethod, status.Code(err).String(), time.Since(started))
		}
		return err
	}
}
