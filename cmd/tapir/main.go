// Package main provides the entry point for the tapir checksum CLI.
package main

import (
	"errors"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		// Drift is a data result: the report was already printed, and
		// exit code 1 distinguishes it from structural failures.
		if errors.Is(err, errDriftDetected) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
