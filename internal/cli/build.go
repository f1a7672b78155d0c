package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pybundle/pybundle/internal/archive"
	"github.com/pybundle/pybundle/internal/command"
	"github.com/pybundle/pybundle/internal/config"
	"github.com/pybundle/pybundle/internal/constants"
	"github.com/pybundle/pybundle/internal/packager"
	"github.com/pybundle/pybundle/internal/pipeline"
	"github.com/pybundle/pybundle/internal/pyenv"
	"github.com/pybundle/pybundle/internal/relocate"
)

// AddBuildCommand adds the build command to the root command.
func AddBuildCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newBuildCmd(flags))
}

func newBuildCmd(flags *GlobalFlags) *cobra.Command {
	var release bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the application bundle",
		Long: `Run the build pipeline against the project in the current directory:

  1. Create a fresh virtualenv (a stale one from a failed run is removed first)
  2. Install the pinned dependency manifest into it
  3. Remove prior build/ and dist/ artifacts
  4. Invoke the packaging tool (py2app) to produce the .app bundle
  5. Tear the virtualenv down

With --release, the bundle is additionally compressed to <Bundle>.app.tar.gz
and both archive and bundle are moved into the destination directory,
replacing any prior versions there. Existing destination entries with the
same name are deleted without confirmation.

Examples:
  pybundle build
  pybundle build --release
  pybundle build --release --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), os.Stdout, flags, release)
		},
	}

	cmd.Flags().BoolVar(&release, "release", false, "archive the bundle and relocate artifacts to the destination")

	return cmd
}

// buildReport is the result summary printed after a pipeline run.
type buildReport struct {
	RunID       string                `json:"run_id"`
	Success     bool                  `json:"success"`
	FailedStep  string                `json:"failed_step,omitempty"`
	Error       string                `json:"error,omitempty"`
	Bundle      string                `json:"bundle,omitempty"`
	Archive     string                `json:"archive,omitempty"`
	Destination string                `json:"destination,omitempty"`
	Steps       []pipeline.StepResult `json:"steps"`
}

// runBuild assembles and executes the build pipeline.
//
// The pipeline is strictly sequential and invokes every external command
// exactly once: there are no retries and no step parallelism. It assumes it
// is the only writer against the project and destination directories; no
// locking is performed.
func runBuild(ctx context.Context, w io.Writer, flags *GlobalFlags, release bool) error {
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

	runner := &command.DefaultRunner{}

	// Verbose runs stream pip and py2app output live instead of holding it
	// back until an error carries the captured stderr.
	var envOpts []pyenv.Option
	var pkgOpts []packager.Option
	if flags.Verbose {
		envOpts = append(envOpts, pyenv.WithLiveOutput(os.Stderr))
		pkgOpts = append(pkgOpts, packager.WithLiveOutput(os.Stderr))
	}

	env := pyenv.New(runner, workDir, cfg.Python.Interpreter, cfg.Python.VenvDir, cfg.Build.Timeout, envOpts...)
	pkg := packager.New(runner, workDir, cfg.Project.SetupScript, cfg.Build.BuildDir, cfg.Build.DistDir, cfg.Build.Timeout, pkgOpts...)

	run := pipeline.NewRun(logger)

	logger.Info().
		Str("run_id", run.ID()).
		Str("project", projectName(cfg)).
		Bool("release", release).
		Msg("starting build pipeline")

	var bundlePath, archivePath string

	steps := []pipeline.Step{
		{Name: "prepare environment", Run: func(ctx context.Context) error {
			if err := env.Create(ctx); err != nil {
				return err
			}
			// Teardown is registered only once the venv exists, and runs on
			// every exit path from here on, packaging failure included.
			run.Defer(pipeline.Step{Name: "teardown environment", Run: func(context.Context) error {
				return env.Remove()
			}})
			return nil
		}},
		{Name: "install dependencies", Run: func(ctx context.Context) error {
			return env.Install(ctx, cfg.Project.Requirements)
		}},
		{Name: "clean prior artifacts", Run: pkg.CleanArtifacts},
		{Name: "package application", Run: func(ctx context.Context) error {
			if err := pkg.Package(ctx, env.Python()); err != nil {
				return err
			}
			bundle, err := pkg.Bundle()
			if err != nil {
				return err
			}
			bundlePath = bundle
			return nil
		}},
		{Name: "remove intermediate artifacts", Run: func(context.Context) error {
			return pkg.RemoveIntermediate()
		}},
	}

	if release {
		steps = append(steps,
			pipeline.Step{Name: "archive bundle", Run: func(ctx context.Context) error {
				archivePath = bundlePath + constants.ArchiveSuffix
				return archive.Create(ctx, bundlePath, archivePath, archiveOptions(flags)...)
			}},
			pipeline.Step{Name: "relocate artifacts", Run: func(ctx context.Context) error {
				rel := relocate.New(cfg.Release.Destination)
				if err := rel.Replace(ctx, archivePath); err != nil {
					return err
				}
				if err := rel.Replace(ctx, bundlePath); err != nil {
					return err
				}
				archivePath = filepath.Join(cfg.Release.Destination, filepath.Base(archivePath))
				bundlePath = filepath.Join(cfg.Release.Destination, filepath.Base(bundlePath))

				if err := relocate.RemoveIfEmpty(pkg.DistPath()); err != nil {
					zerolog.Ctx(ctx).Warn().Err(err).Msg("could not remove dist directory")
				}
				return nil
			}},
		)
	}

	runErr := run.Execute(ctx, steps)

	report := buildReport{
		RunID:   run.ID(),
		Success: runErr == nil,
		Bundle:  bundlePath,
		Steps:   run.Results(),
	}
	if release && runErr == nil {
		report.Archive = archivePath
		report.Destination = cfg.Release.Destination
	}
	if runErr != nil {
		report.Error = runErr.Error()
		report.FailedStep = failedStep(run.Results())
	}

	if err := writeReport(w, flags.Output, &report); err != nil {
		return err
	}

	return runErr
}

// projectName returns the configured project name or a placeholder until the
// bundle name is known.
func projectName(cfg *config.Config) string {
	if cfg.Project.Name != "" {
		return cfg.Project.Name
	}
	return filepath.Base(cfg.Project.SetupScript)
}

// archiveOptions enables the archive progress bar only for interactive text
// output, so JSON and piped output stay machine-readable.
func archiveOptions(flags *GlobalFlags) []archive.Option {
	if flags.Output != OutputText || flags.Quiet {
		return nil
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return []archive.Option{archive.WithProgress(os.Stderr)}
}

// failedStep returns the name of the first failed step, if any.
func failedStep(results []pipeline.StepResult) string {
	for _, r := range results {
		if r.Status == pipeline.StatusFailed {
			return r.Name
		}
	}
	return ""
}

// writeReport prints the run summary in the requested output format.
func writeReport(w io.Writer, format string, report *buildReport) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if report.Success {
		fmt.Fprintf(w, "Build %s succeeded\n", report.RunID)
		if report.Bundle != "" {
			fmt.Fprintf(w, "  bundle:  %s\n", report.Bundle)
		}
		if report.Archive != "" {
			fmt.Fprintf(w, "  archive: %s\n", report.Archive)
		}
		return nil
	}

	fmt.Fprintf(w, "Build %s failed at step %q: %s\n", report.RunID, report.FailedStep, report.Error)
	return nil
}
