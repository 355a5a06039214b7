// Package main is the entry point for the gerard CLI.
// Running it with no arguments provisions the orchestrator environment.
package main

import (
	"os"

	"github.com/TipTopTap/super-doodle/cmd/gerard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
