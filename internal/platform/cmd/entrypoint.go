// Package cmd holds startup plumbing shared by the commands under cmd/.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/Douglas360/smart-contracts/internal/platform/config"
	"github.com/Douglas360/smart-contracts/internal/platform/otel"
	"github.com/Douglas360/smart-contracts/internal/platform/timeouts"
)

// Service names, used for log prefixes and the OpenTelemetry resource.
const (
	ServiceRegistry    = "registry"
	ServiceRegistryCtl = "registryctl"
	ServiceCallerGrant = "caller-grant"
)

// ParseConfig fills cfg from its env struct tags.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses flags registered on fs. Service commands take no
// positional arguments, so leftovers are an error.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if err := fs.Parse(append([]string{}, args...)); err != nil {
		return err
	}
	if rest := fs.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}
	return nil
}

// LogPrefix returns the log prefix of a service process, e.g. "[REGISTRY] ".
func LogPrefix(service string) string {
	service = strings.TrimSpace(service)
	if service == "" {
		return ""
	}
	return "[" + strings.ToUpper(service) + "] "
}

// RunWithTelemetry installs the tracer provider for service, runs run and
// flushes telemetry afterwards. A flush failure is reported alongside the
// run error.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) (err error) {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if run == nil {
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return fmt.Errorf("set up telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if flushErr := shutdown(flushCtx); flushErr != nil {
			log.Printf("%s telemetry shutdown: %v", service, flushErr)
			err = errors.Join(err, fmt.Errorf("shut down telemetry: %w", flushErr))
		}
	}()

	return run(ctx)
}
