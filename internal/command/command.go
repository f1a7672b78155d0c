// Package command provides external command execution for the build pipeline.
//
// Every external collaborator of the pipeline (the Python interpreter, pip,
// the packaging tool) is invoked through the CommandRunner interface so that
// higher layers can be tested with mock implementations.
//
// Commands are invoked argv-style, never through a shell: the arguments are
// constructed internally from configuration, and there is no need for shell
// features like pipes or globbing anywhere in the pipeline.
package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// Runner defines the interface for executing external commands.
// This allows for testing by injecting mock implementations.
type Runner interface {
	// Run executes name with args in workDir and returns its captured output.
	Run(ctx context.Context, workDir, name string, args ...string) (stdout, stderr string, exitCode int, err error)
}

// LiveOutputRunner is a Runner that supports live output streaming.
type LiveOutputRunner interface {
	Runner
	// RunWithLiveOutput executes a command and streams combined output to
	// the writer while also capturing it.
	RunWithLiveOutput(ctx context.Context, workDir string, liveOut io.Writer, name string, args ...string) (stdout, stderr string, exitCode int, err error)
}

// DefaultRunner implements Runner and LiveOutputRunner using os/exec.
type DefaultRunner struct{}

// Run executes a command and captures its output.
func (r *DefaultRunner) Run(ctx context.Context, workDir, name string, args ...string) (stdout, stderr string, exitCode int, err error) {
	return r.runCommand(ctx, workDir, nil, name, args...)
}

// RunWithLiveOutput executes a command and streams output to liveOut while also capturing it.
func (r *DefaultRunner) RunWithLiveOutput(ctx context.Context, workDir string, liveOut io.Writer, name string, args ...string) (stdout, stderr string, exitCode int, err error) {
	return r.runCommand(ctx, workDir, liveOut, name, args...)
}

// runCommand executes a command with optional live output streaming.
// If liveOut is non-nil, output is streamed to it while also being captured.
func (r *DefaultRunner) runCommand(ctx context.Context, workDir string, liveOut io.Writer, name string, args ...string) (stdout, stderr string, exitCode int, err error) {
	cmd := exec.CommandContext(ctx, name, args...) //#nosec G204 -- args are constructed internally, not user input
	cmd.Dir = workDir

	var outBuf, errBuf bytes.Buffer
	if liveOut != nil {
		cmd.Stdout = io.MultiWriter(&outBuf, liveOut)
		cmd.Stderr = io.MultiWriter(&errBuf, liveOut)
	} else {
		cmd.Stdout = &outBuf
		cmd.Stderr = &errBuf
	}

	err = cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 1
		}
	}

	return stdout, stderr, exitCode, err
}

// LookPath reports whether name resolves to an executable on PATH.
// Returns the resolved path when found.
func LookPath(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}

// Ensure DefaultRunner implements Runner and LiveOutputRunner.
var (
	_ Runner           = (*DefaultRunner)(nil)
	_ LiveOutputRunner = (*DefaultRunner)(nil)
)
