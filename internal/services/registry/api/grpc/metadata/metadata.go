package metadata

import (
	"context"
	"strings"

	"github.com/Douglas360/smart-contracts/internal/platform/id"
	"github.com/Douglas360/smart-contracts/internal/platform/requestctx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDHeader is the gRPC metadata key for request correlation IDs.
const RequestIDHeader = "x-registry-request-id"

// AuthorizationHeader is the gRPC metadata key for caller grants.
const AuthorizationHeader = "authorization"

// CallerHeader is the gRPC metadata key for an unverified caller address.
const CallerHeader = "x-registry-caller"

// LocaleHeader is the gRPC metadata key for the preferred response locale.
const LocaleHeader = "accept-language"

const bearerPrefix = "bearer "

// IsPrintableASCII reports whether a string contains only printable ASCII characters.
func IsPrintableASCII(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 || value[i] > 0x7e {
			return false
		}
	}
	return true
}

// FirstMetadataValue returns the first printable ASCII metadata value for a key.
func FirstMetadataValue(md metadata.MD, key string) string {
	if len(md) == 0 {
		return ""
	}
	for mdKey, values := range md {
		if !strings.EqualFold(mdKey, key) {
			continue
		}
		for _, value := range values {
			if IsPrintableASCII(value) {
				return value
			}
		}
	}
	return ""
}

// BearerFromContext returns the bearer credential from incoming metadata.
func BearerFromContext(ctx context.Context) string {
	value := strings.TrimSpace(incomingValue(ctx, AuthorizationHeader))
	if len(value) < len(bearerPrefix) || !strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(value[len(bearerPrefix):])
}

// CallerFromContext returns the caller address hint from incoming metadata.
func CallerFromContext(ctx context.Context) string {
	return strings.TrimSpace(incomingValue(ctx, CallerHeader))
}

// LocaleFromContext returns the accept-language value from incoming metadata.
func LocaleFromContext(ctx context.Context) string {
	return incomingValue(ctx, LocaleHeader)
}

// WithBearer appends a caller grant to outgoing metadata.
func WithBearer(ctx context.Context, grant string) context.Context {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, AuthorizationHeader, "Bearer "+grant)
}

// WithCaller appends a caller address hint to outgoing metadata.
func WithCaller(ctx context.Context, caller string) context.Context {
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, CallerHeader, caller)
}

// UnaryServerInterceptor guarantees every unary call carries a request id,
// echoing it back in the response header.
func UnaryServerInterceptor(idGenerator func() (string, error)) grpc.UnaryServerInterceptor {
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		updatedCtx, requestID, err := ensureRequestID(ctx, idGenerator)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "ensure request metadata: %v", err)
		}
		if err := grpc.SetHeader(updatedCtx, metadata.Pairs(RequestIDHeader, requestID)); err != nil {
			return nil, status.Errorf(codes.Internal, "set response metadata: %v", err)
		}
		return handler(updatedCtx, req)
	}
}

// StreamServerInterceptor guarantees every streaming call carries a request id.
func StreamServerInterceptor(idGenerator func() (string, error)) grpc.StreamServerInterceptor {
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	return func(srv any, stream grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		updatedCtx, requestID, err := ensureRequestID(stream.Context(), idGenerator)
		if err != nil {
			return status.Errorf(codes.Internal, "ensure request metadata: %v", err)
		}
		if err := stream.SetHeader(metadata.Pairs(RequestIDHeader, requestID)); err != nil {
			return status.Errorf(codes.Internal, "set response metadata: %v", err)
		}
		return handler(srv, &WrappedServerStream{ServerStream: stream, Ctx: updatedCtx})
	}
}

// WrappedServerStream overrides the context for a gRPC stream.
type WrappedServerStream struct {
	grpc.ServerStream
	Ctx context.Context
}

// Context returns the updated stream context.
func (w *WrappedServerStream) Context() context.Context {
	return w.Ctx
}

func ensureRequestID(ctx context.Context, idGenerator func() (string, error)) (context.Context, string, error) {
	requestID := incomingValue(ctx, RequestIDHeader)
	if requestID == "" {
		generated, err := idGenerator()
		if err != nil {
			return nil, "", err
		}
		requestID = generated
	}
	return requestctx.WithRequestID(ctx, requestID), requestID, nil
}

func incomingValue(ctx context.Context, header string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	return FirstMetadataValue(md, header)
}
