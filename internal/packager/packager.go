// Package packager drives the packaging tool that turns the Python project
// into a macOS application bundle.
//
// The build descriptor (setup.py) is an opaque external input: it names the
// entry point, icons, bundled resources, and target format. pybundle only
// invokes it and inspects the dist directory for the result.
package packager

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pybundle/pybundle/internal/command"
	"github.com/pybundle/pybundle/internal/constants"
	"github.com/pybundle/pybundle/internal/errors"
)

// Packager invokes the packaging tool and manages its working directories.
type Packager struct {
	runner      command.Runner
	workDir     string
	setupScript string
	buildDir    string
	distDir     string
	timeout     time.Duration
	liveOut     io.Writer
}

// Option configures a Packager.
type Option func(*Packager)

// WithLiveOutput streams the packaging tool's combined output to w while it
// is also captured for error reporting. Used for verbose runs.
func WithLiveOutput(w io.Writer) Option {
	return func(p *Packager) {
		p.liveOut = w
	}
}

// New creates a Packager for the project rooted at workDir.
func New(runner command.Runner, workDir, setupScript, buildDir, distDir string, timeout time.Duration, opts ...Option) *Packager {
	p := &Packager{
		runner:      runner,
		workDir:     workDir,
		setupScript: setupScript,
		buildDir:    buildDir,
		distDir:     distDir,
		timeout:     timeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BuildPath returns the absolute path of the intermediate build directory.
func (p *Packager) BuildPath() string {
	return filepath.Join(p.workDir, p.buildDir)
}

// DistPath returns the absolute path of the dist directory.
func (p *Packager) DistPath() string {
	return filepath.Join(p.workDir, p.distDir)
}

// CleanArtifacts removes any pre-existing build and dist directories so the
// packaging tool starts from a clean slate. Absence is not an error.
func (p *Packager) CleanArtifacts(ctx context.Context) error {
	for _, dir := range []string{p.BuildPath(), p.DistPath()} {
		if err := os.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, "failed to remove %s", dir)
		}
	}
	zerolog.Ctx(ctx).Debug().
		Str("build_dir", p.BuildPath()).
		Str("dist_dir", p.DistPath()).
		Msg("prior build artifacts removed")
	return nil
}

// Package runs the packaging tool using the given interpreter (the venv's
// own python, so the tool sees the isolated environment). A non-zero exit
// is fatal and the error carries the tool's stderr. Failures are wrapped
// with ErrPackaging.
func (p *Packager) Package(ctx context.Context, python string) error {
	cmdCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	_, stderr, exitCode, err := p.run(cmdCtx, python, p.setupScript, "py2app")
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stderr = strings.TrimSpace(stderr)
		if stderr != "" {
			return errors.Wrapf(errors.ErrPackaging, "%s py2app exited %d: %s", p.setupScript, exitCode, stderr)
		}
		return errors.Wrapf(errors.ErrPackaging, "%s py2app exited %d", p.setupScript, exitCode)
	}

	zerolog.Ctx(ctx).Info().
		Dur("duration", time.Since(start)).
		Str("dist_dir", p.DistPath()).
		Msg("packaging completed")
	return nil
}

// run dispatches to the runner, streaming live output when a writer is
// attached and the runner supports it.
func (p *Packager) run(ctx context.Context, name string, args ...string) (stdout, stderr string, exitCode int, err error) {
	if p.liveOut != nil {
		if live, ok := p.runner.(command.LiveOutputRunner); ok {
			return live.RunWithLiveOutput(ctx, p.workDir, p.liveOut, name, args...)
		}
	}
	return p.runner.Run(ctx, p.workDir, name, args...)
}

// Bundle locates the application bundle produced under dist. Exactly one
// .app entry is expected; its name is fixed by the build descriptor, not by
// pybundle. Zero or multiple bundles wrap ErrBundleNotFound and
// ErrAmbiguousBundle respectively, both of which are packaging failures.
func (p *Packager) Bundle() (string, error) {
	entries, err := os.ReadDir(p.DistPath())
	if err != nil {
		return "", errors.Wrapf(errors.ErrBundleNotFound, "cannot read %s: %v", p.DistPath(), err)
	}

	var bundles []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasSuffix(entry.Name(), constants.BundleSuffix) {
			bundles = append(bundles, entry.Name())
		}
	}

	switch len(bundles) {
	case 0:
		return "", errors.Wrapf(errors.ErrBundleNotFound, "no %s directory in %s", constants.BundleSuffix, p.DistPath())
	case 1:
		return filepath.Join(p.DistPath(), bundles[0]), nil
	default:
		return "", errors.Wrapf(errors.ErrAmbiguousBundle, "found %d bundles in %s: %s", len(bundles), p.DistPath(), strings.Join(bundles, ", "))
	}
}

// RemoveIntermediate removes the build directory after a successful package
// step. Only dist carries the deliverable; build is scratch space.
func (p *Packager) RemoveIntermediate() error {
	return errors.Wrapf(os.RemoveAll(p.BuildPath()), "failed to remove %s", p.BuildPath())
}
