package grpc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DialStage describes where a connection attempt failed.
type DialStage string

const (
	// DialStageConnect indicates the client could not be created.
	DialStageConnect DialStage = "connect"
	// DialStageHealth indicates the health check failed.
	DialStageHealth DialStage = "health"
)

// DialError wraps client creation and health check failures with a stage indicator.
type DialError struct {
	Stage DialStage
	Err   error
}

// Error implements the error interface.
func (e *DialError) Error() string {
	if e == nil {
		return "gRPC dial error"
	}
	return fmt.Sprintf("gRPC %s error: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *DialError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConnectOptions configures Connect.
type ConnectOptions struct {
	// Service is the health-check service name; empty checks the server as a whole.
	Service string
	// Timeout bounds client creation plus the health wait.
	Timeout time.Duration
	// Logf receives health progress lines when set.
	Logf func(string, ...any)
	// DialOptions replaces DefaultClientDialOptions when non-empty.
	DialOptions []gogrpc.DialOption
}

// DefaultClientDialOptions returns standard dial options for registry clients.
// Includes the OTel stats handler so outbound calls propagate trace context
// when a TracerProvider is registered.
func DefaultClientDialOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// Connect creates a client for addr and waits for the health check to report
// SERVING. It closes the connection if the health check fails.
func Connect(ctx context.Context, addr string, options ConnectOptions) (*gogrpc.ClientConn, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	dialOptions := options.DialOptions
	if len(dialOptions) == 0 {
		dialOptions = DefaultClientDialOptions()
	}

	conn, err := gogrpc.NewClient(addr, dialOptions...)
	if err != nil {
		return nil, &DialError{Stage: DialStageConnect, Err: err}
	}

	waitCtx := ctx
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}
	if err := WaitForHealth(waitCtx, conn, options.Service, options.Logf); err != nil {
		_ = conn.Close()
		return nil, &DialError{Stage: DialStageHealth, Err: err}
	}
	return conn, nil
}
