// Package main provides the subdigest CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/ppiankov/subdigest/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "subdigest: %v\n", err)
		os.Exit(1)
	}
}
