// Command aws-rate-hook prices EC2 instances from the public AWS on-demand
// catalog and composes itemized rates per environment.
package main

import (
	"fmt"
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.0.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[aws-rate-hook] Error: %v\n", err)
		os.Exit(1)
	}
}
