package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pybundle/pybundle/internal/config"
	"github.com/pybundle/pybundle/internal/errors"
)

// AddCleanCommand adds the clean command to the root command.
func AddCleanCommand(root *cobra.Command) {
	root.AddCommand(newCleanCmd())
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the virtualenv and build artifacts",
		Long: `Remove the project-local virtualenv, build/, and dist/ directories.

This is the same cleanup the build pipeline performs on its own; clean is
for recovering disk space or a known-clean state without running a build.
Absent directories are not an error, so clean is idempotent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClean(cmd.Context(), os.Stdout)
		},
	}
}

func runClean(ctx context.Context, w io.Writer) error {
	logger := GetLogger()
	ctx = logger.WithContext(ctx)

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.Load(ctx, workDir)
	if err != nil {
		return err
	}

	removed := 0
	for _, dir := range []string{cfg.Python.VenvDir, cfg.Build.BuildDir, cfg.Build.DistDir} {
		path := filepath.Join(workDir, dir)
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return errors.Wrapf(err, "failed to remove %s", path)
		}
		logger.Info().Str("path", path).Msg("removed")
		removed++
	}

	switch removed {
	case 0:
		fmt.Fprintln(w, "Nothing to clean")
	case 1:
		fmt.Fprintln(w, "Removed 1 directory")
	default:
		fmt.Fprintf(w, "Removed %d directories\n", removed)
	}
	return nil
}
