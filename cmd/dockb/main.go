// Package main provides the entry point for the dockb CLI.
package main

import (
	"os"

	"github.com/dockb/dockb/cmd/dockb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
