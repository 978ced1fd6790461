// Package main generates caller grant keys and issues signed caller grants.
package main

import (
	"os"

	"github.com/Douglas360/smart-contracts/internal/platform/config"
	"github.com/Douglas360/smart-contracts/internal/tools/callergrant"
)

func main() {
	if err := callergrant.Run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		config.Exitf("caller-grant: %v", err)
	}
}
