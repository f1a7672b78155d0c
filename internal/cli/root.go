package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pybundle/pybundle/internal/errors"
	"github.com/pybundle/pybundle/internal/signal"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// This is set during PersistentPreRunE and should be accessed via GetLogger.
// Access is protected by globalLoggerMu for thread safety.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// IMPORTANT: This function MUST only be called after the root command's
// PersistentPreRunE has executed. Calling it before initialization will
// return a zero-value logger that discards all log output.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// newRootCmd creates and returns the root command for the pybundle CLI.
// This function-based approach avoids package-level globals, making the
// code more testable.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "pybundle",
		Short: "pybundle - macOS app bundling pipeline for Python projects",
		Long: `pybundle builds a macOS application bundle from a Python project in one
reproducible pipeline: a fresh virtualenv, pinned dependencies, a clean
py2app invocation, and guaranteed teardown of the environment.

The release variant additionally compresses the bundle and relocates both
the archive and the raw bundle into a destination directory (default
~/Downloads), replacing any prior versions there.`,
		Version: formatVersion(info),
		// Run displays help when the root command is invoked without
		// subcommands. This ensures PersistentPreRunE runs for flag validation.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			globalLoggerMu.Lock()
			globalLogger = InitLogger(flags.Verbose, flags.Quiet)
			globalLoggerMu.Unlock()

			return nil
		},
		// SilenceUsage and SilenceErrors prevent cobra's own printing on
		// error; Execute prints a single actionable message instead.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	AddBuildCommand(cmd, flags)
	AddReleaseCommand(cmd, flags)
	AddCleanCommand(cmd)
	AddDoctorCommand(cmd, flags)
	AddConfigCommand(cmd)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
// SIGINT and SIGTERM cancel the command context; the pipeline's finalizers
// still run on interruption.
func Execute(ctx context.Context, info BuildInfo) error {
	h := signal.NewHandler(ctx)
	defer h.Stop()
	defer CloseLogFile()

	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	err := cmd.ExecuteContext(h.Context())
	if err != nil {
		renderError(os.Stderr, err, h.Interrupted())
	}
	return err
}

// renderError prints a single actionable message for a failed run. An
// interrupted run is reported as such rather than through the canceled
// step's error, which would misattribute Ctrl+C to the step it happened
// to land on.
func renderError(w io.Writer, err error, interrupted <-chan struct{}) {
	select {
	case <-interrupted:
		fmt.Fprintln(w, "Error: interrupted")
		return
	default:
	}

	message, action := errors.Actionable(err)
	fmt.Fprintln(w, "Error:", message)
	if action != "" {
		fmt.Fprintln(w, "Hint:", action)
	}
}
