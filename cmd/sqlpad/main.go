// Package main provides the SQLPad command-line entrypoint.
package main

import (
	"os"

	"github.com/leapstack-labs/sqlpad/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
