// Package main is the entry point for the pagedeck plugin toolkit.
package main

import (
	"fmt"
	"os"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
