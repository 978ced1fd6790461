package interceptors

import (
	"context"
	"errors"
	"log"

	apperrors "github.com/Douglas360/smart-contracts/internal/platform/errors"
	grpcmeta "github.com/Douglas360/smart-contracts/internal/services/registry/api/grpc/metadata"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToStatus converts err into a gRPC status error. Domain errors carry
// errdetails with a message localized for locale.
func ToStatus(err error, locale string) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if domainErr, ok := apperrors.As(err); ok {
		return domainErr.LocalizedStatus(locale)
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// ErrorUnaryInterceptor maps handler errors to localized gRPC statuses.
func ErrorUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			if apperrors.CodeOf(err) == apperrors.CodeUnknown {
				log.Printf("%s: %v", info.FullMethod, err)
			}
			return resp, ToStatus(err, grpcmeta.LocaleFromContext(ctx))
		}
		return resp, nil
	}
}

// ErrorStreamInterceptor maps stream handler errors to localized gRPC statuses.
func ErrorStreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, stream grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		err := handler(srv, stream)
		if err != nil {
			if apperrors.CodeOf(err) == apperrors.CodeUnknown {
				log.Printf("%s: %v", info.FullMethod, err)
			}
			return ToStatus(err, grpcmeta.LocaleFromContext(stream.Context()))
		}
		return nil
	}
}
