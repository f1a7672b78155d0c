// Package main provides the entry point for the pybundle CLI.
package main

import (
	"context"
	"os"

	"github.com/pybundle/pybundle/internal/cli"
)

// Build-time variables set via ldflags.
var (
	version = "" //nolint:gochecknoglobals // set by -ldflags
	commit  = "" //nolint:gochecknoglobals // set by -ldflags
	date    = "" //nolint:gochecknoglobals // set by -ldflags
)

func main() {
	ctx := context.Background()
	info := cli.BuildInfo{Version: version, Commit: commit, Date: date}

	if err := cli.Execute(ctx, info); err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}
