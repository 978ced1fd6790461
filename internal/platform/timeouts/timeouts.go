// Package timeouts collects the fixed deadlines of the registry processes.
package timeouts

import "time"

const (
	// GRPCDial bounds client creation plus the health wait in registryctl.
	GRPCDial = 2 * time.Second
	// GRPCRequest is the registryctl per-call deadline when none is configured.
	GRPCRequest = 5 * time.Second
	// ReadHeader is the HTTP server's ReadHeaderTimeout.
	ReadHeader = 5 * time.Second
	// Shutdown bounds graceful HTTP shutdown and telemetry flushing.
	Shutdown = 5 * time.Second
	// StreamWrite bounds one websocket frame write to a feed subscriber.
	StreamWrite = 10 * time.Second
)
