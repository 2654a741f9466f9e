// Package main provides the tripplanner CLI.
package main

import (
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/cmd"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/config"
)

// Build vars.
var (
	//nolint: gochecknoglobals
	Version = ""
	//nolint: gochecknoglobals
	CommitSHA = ""
)

func main() {
	cfg, cfgErr := config.Ensure()
	cmd.Execute(cmd.BuildInfo{Version: Version, CommitSHA: CommitSHA}, cfg, cfgErr)
}
