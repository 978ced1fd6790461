package grpc

import (
	"context"
	"errors"
	"time"

	gogrpc "google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	healthProbeTimeout = time.Second
	healthFirstRetry   = 100 * time.Millisecond
	healthMaxRetry     = time.Second
)

// WaitForHealth polls the health service of conn until service reports
// SERVING or ctx ends. logf, when set, receives a line each time the observed
// state changes.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return errors.New("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	client := grpc_health_v1.NewHealthClient(conn)
	retry := healthFirstRetry
	last := ""
	for {
		state := probeHealth(ctx, client, service)
		if state != last {
			logf("health of %q: %s", service, state)
			last = state
		}
		if state == grpc_health_v1.HealthCheckResponse_SERVING.String() {
			return nil
		}

		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return &healthTimeoutError{service: service, last: last, err: ctx.Err()}
		case <-timer.C:
		}
		retry = min(retry*2, healthMaxRetry)
	}
}

// probeHealth returns the serving status name, or the call error text.
func probeHealth(ctx context.Context, client grpc_health_v1.HealthClient, service string) string {
	probeCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()
	resp, err := client.Check(probeCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return err.Error()
	}
	return resp.GetStatus().String()
}

type healthTimeoutError struct {
	service string
	last    string
	err     error
}

func (e *healthTimeoutError) Error() string {
	return "wait for health of \"" + e.service + "\" (last: " + e.last + "): " + e.err.Error()
}

func (e *healthTimeoutError) Unwrap() error { return e.err }
