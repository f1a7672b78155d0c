// Package pyenv manages the isolated Python dependency environment used by
// the build pipeline.
//
// The environment is a project-local virtualenv created fresh for every run
// and removed again at the end of it. Instead of sourcing the venv's
// activate script (ambient state an orchestrating process cannot scope), the
// venv's own bin/python and bin/pip executables are invoked directly.
package pyenv

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pybundle/pybundle/internal/command"
	"github.com/pybundle/pybundle/internal/errors"
)

// Env represents one isolated dependency environment inside a project.
// It is owned exclusively by a single pipeline run; there is no locking
// because concurrent runs against the same project are out of scope.
type Env struct {
	runner      command.Runner
	workDir     string
	interpreter string
	dir         string // venv directory, relative to workDir
	timeout     time.Duration
	liveOut     io.Writer
}

// Option configures an Env.
type Option func(*Env)

// WithLiveOutput streams the tools' combined output to w while it is also
// captured for error reporting. Used for verbose runs.
func WithLiveOutput(w io.Writer) Option {
	return func(e *Env) {
		e.liveOut = w
	}
}

// New creates an Env rooted at workDir. The environment directory is not
// touched until Create is called.
func New(runner command.Runner, workDir, interpreter, venvDir string, timeout time.Duration, opts ...Option) *Env {
	e := &Env{
		runner:      runner,
		workDir:     workDir,
		interpreter: interpreter,
		dir:         venvDir,
		timeout:     timeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Path returns the absolute path of the environment directory.
func (e *Env) Path() string {
	return filepath.Join(e.workDir, e.dir)
}

// Python returns the path of the environment's own interpreter.
func (e *Env) Python() string {
	return filepath.Join(e.Path(), binDir(), "python")
}

// Pip returns the path of the environment's own pip executable.
func (e *Env) Pip() string {
	return filepath.Join(e.Path(), binDir(), "pip")
}

// Create builds a fresh virtualenv. Any stale environment directory left
// behind by a failed prior run is removed first so that every run starts
// from a known state. Failures are wrapped with ErrEnvSetup.
func (e *Env) Create(ctx context.Context) error {
	log := zerolog.Ctx(ctx)

	if _, err := os.Stat(e.Path()); err == nil {
		log.Debug().Str("venv", e.Path()).Msg("removing stale virtualenv")
		if err := os.RemoveAll(e.Path()); err != nil {
			return errors.Wrapf(errors.ErrEnvSetup, "failed to remove stale virtualenv %s: %v", e.Path(), err)
		}
	}

	cmdCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	_, stderr, _, err := e.run(cmdCtx, e.interpreter, "-m", "venv", e.dir)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return commandError(errors.ErrEnvSetup, e.interpreter+" -m venv", stderr)
	}

	log.Debug().Str("venv", e.Path()).Msg("virtualenv created")
	return nil
}

// Install installs the pinned dependency manifest into the environment.
// An install failure is fatal for the run: packaging must never proceed
// against a partially populated environment. Failures are wrapped with
// ErrDependencyInstall.
func (e *Env) Install(ctx context.Context, requirements string) error {
	cmdCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	_, stderr, _, err := e.run(cmdCtx, e.Pip(), "install", "-r", requirements)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return commandError(errors.ErrDependencyInstall, "pip install -r "+requirements, stderr)
	}

	zerolog.Ctx(ctx).Debug().Str("requirements", requirements).Msg("dependencies installed")
	return nil
}

// Remove deletes the environment directory. Callers treat a failure here as
// a warning, not an error: by teardown time the packaged artifact already
// exists on disk and must not be unwound.
func (e *Env) Remove() error {
	return errors.Wrapf(os.RemoveAll(e.Path()), "failed to remove virtualenv %s", e.Path())
}

// run dispatches to the runner, streaming live output when a writer is
// attached and the runner supports it.
func (e *Env) run(ctx context.Context, name string, args ...string) (stdout, stderr string, exitCode int, err error) {
	if e.liveOut != nil {
		if live, ok := e.runner.(command.LiveOutputRunner); ok {
			return live.RunWithLiveOutput(ctx, e.workDir, e.liveOut, name, args...)
		}
	}
	return e.runner.Run(ctx, e.workDir, name, args...)
}

// commandError builds a sentinel-wrapped error carrying the tool's stderr
// for diagnostics.
func commandError(sentinel error, what, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr != "" {
		return errors.Wrapf(sentinel, "%s: %s", what, stderr)
	}
	return errors.Wrap(sentinel, what)
}

// binDir returns the executables directory inside a virtualenv.
// Virtualenvs use Scripts on Windows and bin everywhere else.
func binDir() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}
