// Package main provides the entry point for the bridge CLI tool.
package main

import (
	"os"

	"github.com/tracksync/bridge/cmd/bridge/cmd"
	"github.com/tracksync/bridge/pkg/logging"
)

// Version is populated by the release build.
var version = "dev"

func main() {
	if err := cmd.Execute(version); err != nil {
		logging.Default().Error().Err(err).Msg("bridge failed")
		os.Exit(1)
	}
}
