// Package main provides the entry point for the teamstats service.
package main

import (
	"os"

	"github.com/graaaaa/teamstats/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
