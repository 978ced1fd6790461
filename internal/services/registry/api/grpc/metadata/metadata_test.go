package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/Douglas360/smart-contracts/internal/platform/requestctx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestIsPrintableASCII(t *testing.T) {
	if IsPrintableASCII("") {
		t.Fatal("expected empty string to be non-printable")
	}
	if !IsPrintableASCII("hello") {
		t.Fatal("expected printable ascii to be accepted")
	}
	if IsPrintableASCII("line\n") {
		t.Fatal("expected newline to be non-printable")
	}
	if IsPrintableASCII(string([]byte{0x7f})) {
		t.Fatal("expected DEL to be non-printable")
	}
}

func TestFirstMetadataValue(t *testing.T) {
	md := metadata.MD{
		"X-Registry-Request-Id": {"\n", "req-1"},
	}
	if got := FirstMetadataValue(md, RequestIDHeader); got != "req-1" {
		t.Fatalf("expected printable request id, got %q", got)
	}
	if FirstMetadataValue(metadata.MD{}, RequestIDHeader) != "" {
		t.Fatal("expected empty value for empty metadata")
	}
}

func TestIncomingAccessors(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		AuthorizationHeader, "Bearer grant-1",
		CallerHeader, " alice ",
		LocaleHeader, "pt-BR",
	))
	if got := BearerFromContext(ctx); got != "grant-1" {
		t.Fatalf("bearer = %q, want grant-1", got)
	}
	if got := CallerFromContext(ctx); got != "alice" {
		t.Fatalf("caller = %q, want alice", got)
	}
	if got := LocaleFromContext(ctx); got != "pt-BR" {
		t.Fatalf("locale = %q, want pt-BR", got)
	}
}

func TestBearerFromContextRejectsOtherSchemes(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(AuthorizationHeader, "Basic abc"))
	if got := BearerFromContext(ctx); got != "" {
		t.Fatalf("bearer = %q, want empty", got)
	}
	if got := BearerFromContext(context.Background()); got != "" {
		t.Fatalf("bearer without metadata = %q, want empty", got)
	}
}

func TestOutgoingHelpers(t *testing.T) {
	ctx := WithCaller(WithBearer(context.Background(), "grant"), "bob")
	md, ok := metadata.FromOutgoingContext(ctx)
	if !ok {
		t.Fatal("expected outgoing metadata")
	}
	if got := md.Get(AuthorizationHeader); len(got) != 1 || got[0] != "Bearer grant" {
		t.Fatalf("authorization = %v", got)
	}
	if got := md.Get(CallerHeader); len(got) != 1 || got[0] != "bob" {
		t.Fatalf("caller = %v", got)
	}
	if WithBearer(context.Background(), " ") != context.Background() {
		t.Fatal("expected blank grant to leave context unchanged")
	}
}

type fakeServerStream struct {
	grpc.ServerStream
	ctx    context.Context
	header metadata.MD
}

func (f *fakeServerStream) Context() context.Context { return f.ctx }

func (f *fakeServerStream) SetHeader(md metadata.MD) error {
	f.header = metadata.Join(f.header, md)
	return nil
}

func TestStreamServerInterceptorGeneratesRequestID(t *testing.T) {
	stream := &fakeServerStream{ctx: context.Background()}
	interceptor := StreamServerInterceptor(func() (string, error) { return "gen-1", nil })

	var seen string
	err := interceptor(nil, stream, &grpc.StreamServerInfo{}, func(_ any, ss grpc.ServerStream) error {
		seen = requestctx.RequestIDFromContext(ss.Context())
		return nil
	})
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if seen != "gen-1" {
		t.Fatalf("request id = %q, want gen-1", seen)
	}
	if got := stream.header.Get(RequestIDHeader); len(got) != 1 || got[0] != "gen-1" {
		t.Fatalf("response header = %v", got)
	}
}

func TestStreamServerInterceptorKeepsIncomingRequestID(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "req-9"))
	stream := &fakeServerStream{ctx: ctx}
	interceptor := StreamServerInterceptor(func() (string, error) {
		t.Fatal("generator should not run")
		return "", nil
	})

	var seen string
	if err := interceptor(nil, stream, &grpc.StreamServerInfo{}, func(_ any, ss grpc.ServerStream) error {
		seen = requestctx.RequestIDFromContext(ss.Context())
		return nil
	}); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if seen != "req-9" {
		t.Fatalf("request id = %q, want req-9", seen)
	}
}

func TestStreamServerInterceptorGeneratorFailure(t *testing.T) {
	stream := &fakeServerStream{ctx: context.Background()}
	interceptor := StreamServerInterceptor(func() (string, error) { return "", errors.New("no entropy") })
	err := interceptor(nil, stream, &grpc.StreamServerInfo{}, func(any, grpc.ServerStream) error { return nil })
	if status.Code(err) != codes.Internal {
		t.Fatalf("code = %v, want Internal", status.Code(err))
	}
}
