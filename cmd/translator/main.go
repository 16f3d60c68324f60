// Package main is the entry point for the translator CLI. It serves the
// dictionary over HTTP and offers one-shot translate and register commands.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
