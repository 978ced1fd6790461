// Package main provides the registry command-line client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Douglas360/smart-contracts/internal/cmd/registryctl"
	"github.com/Douglas360/smart-contracts/internal/platform/config"
)

func main() {
	root, err := registryctl.NewRootCommand()
	if err != nil {
		config.Exitf("parse config: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		config.Exitf("registryctl: %v", err)
	}
}
