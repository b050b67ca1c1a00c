// Package main provides the entry point for the ragcheck CLI.
package main

import (
	"fmt"
	"os"

	"github.com/kt2saint-sec/ragcheck/cmd/ragcheck/cmd"
	"github.com/kt2saint-sec/ragcheck/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errors.FormatForCLI(err))
		if errors.IsFatal(err) {
			// The runner's own environment is broken: the verdict is
			// unknowable, which is worse than a failed verification.
			os.Exit(2)
		}
		os.Exit(1)
	}
}
