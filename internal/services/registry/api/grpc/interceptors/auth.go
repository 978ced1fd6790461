package interceptors

import (
	"context"
	"log"

	apperrors "github.com/Douglas360/smart-contracts/internal/platform/errors"
	"github.com/Douglas360/smart-contracts/internal/platform/requestctx"
	grpcmeta "github.com/Douglas360/smart-contracts/internal/services/registry/api/grpc/metadata"
	"github.com/Douglas360/smart-contracts/internal/services/registry/callerauth"
	"google.golang.org/grpc"
)

// Authenticator resolves the caller of a gRPC request.
type Authenticator struct {
	// Grants verifies bearer caller grants. Nil disables grant verification.
	Grants *callerauth.Config
	// Insecure trusts the caller header when no grant is presented.
	Insecure bool
	// Public lists full method names that accept anonymous callers.
	Public map[string]bool
}

// Authenticate returns ctx carrying the resolved caller address.
func (a Authenticator) Authenticate(ctx context.Context, fullMethod string) (context.Context, error) {
	if grant := grpcmeta.BearerFromContext(ctx); grant != "" {
		if a.Grants == nil {
			return nil, apperrors.New(apperrors.CodeCallerGrantInvalid, "caller grants are not accepted by this server")
		}
		claims, err := callerauth.Verify(grant, *a.Grants)
		if err != nil {
			return nil, err
		}
		return requestctx.WithCaller(ctx, claims.Caller.String()), nil
	}
	if a.Insecure {
		if caller := grpcmeta.CallerFromContext(ctx); caller != "" {
			return requestctx.WithCaller(ctx, caller), nil
		}
	}
	if a.Public[fullMethod] {
		return ctx, nil
	}
	return nil, apperrors.New(apperrors.CodeUnauthenticated, "caller grant is required")
}

// AuthUnaryInterceptor authenticates unary calls.
func AuthUnaryInterceptor(auth Authenticator) grpc.UnaryServerInterceptor {
	if auth.Insecure {
		log.Printf("caller header %q is trusted without verification", grpcmeta.CallerHeader)
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		authed, err := auth.Authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(authed, req)
	}
}

// AuthStreamInterceptor authenticates streaming calls.
func AuthStreamInterceptor(auth Authenticator) grpc.StreamServerInterceptor {
	return func(srv any, stream grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		authed, err := auth.Authenticate(stream.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &grpcmeta.WrappedServerStream{ServerStream: stream, Ctx: authed})
	}
}
