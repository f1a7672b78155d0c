package pyenv_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pybundle/pybundle/internal/command"
	"github.com/pybundle/pybundle/internal/errors"
	"github.com/pybundle/pybundle/internal/pyenv"
)

// call records one invocation of the mock runner.
type call struct {
	workDir string
	name    string
	args    []string
}

// mockRunner implements command.Runner recording every invocation.
type mockRunner struct {
	calls  []call
	stderr string
	err    error
}

func (m *mockRunner) Run(_ context.Context, workDir, name string, args ...string) (string, string, int, error) {
	m.calls = append(m.calls, call{workDir: workDir, name: name, args: args})
	if m.err != nil {
		return "", m.stderr, 1, m.err
	}
	return "", "", 0, nil
}

// liveMockRunner additionally implements command.LiveOutputRunner, writing
// a marker to the live writer on every invocation.
type liveMockRunner struct {
	mockRunner
	liveCalls int
}

func (m *liveMockRunner) RunWithLiveOutput(ctx context.Context, workDir string, liveOut io.Writer, name string, args ...string) (string, string, int, error) {
	m.liveCalls++
	_, _ = io.WriteString(liveOut, "tool output\n")
	return m.Run(ctx, workDir, name, args...)
}

func newEnv(runner command.Runner, workDir string) *pyenv.Env {
	return pyenv.New(runner, workDir, "python3", "venv", time.Minute)
}

func TestCreateInvokesVenvModule(t *testing.T) {
	workDir := t.TempDir()
	runner := &mockRunner{}
	env := newEnv(runner, workDir)

	require.NoError(t, env.Create(context.Background()))

	require.Len(t, runner.calls, 1)
	assert.Equal(t, workDir, runner.calls[0].workDir)
	assert.Equal(t, "python3", runner.calls[0].name)
	assert.Equal(t, []string{"-m", "venv", "venv"}, runner.calls[0].args)
}

func TestCreateRemovesStaleEnvironment(t *testing.T) {
	workDir := t.TempDir()
	stale := filepath.Join(workDir, "venv")
	require.NoError(t, os.MkdirAll(filepath.Join(stale, "lib"), 0o750))

	runner := &mockRunner{}
	env := newEnv(runner, workDir)

	require.NoError(t, env.Create(context.Background()))

	// The mock runner creates nothing, so the stale directory being gone
	// proves Create removed it before invoking the interpreter.
	assert.NoDirExists(t, stale)
	require.Len(t, runner.calls, 1)
}

func TestCreateFailureWrapsEnvSetup(t *testing.T) {
	runner := &mockRunner{err: errors.ErrCommandFailed, stderr: "no such interpreter"}
	env := newEnv(runner, t.TempDir())

	err := env.Create(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEnvSetup)
	assert.Contains(t, err.Error(), "no such interpreter")
}

func TestInstallInvokesVenvPip(t *testing.T) {
	workDir := t.TempDir()
	runner := &mockRunner{}
	env := newEnv(runner, workDir)

	require.NoError(t, env.Install(context.Background(), "requirements.txt"))

	require.Len(t, runner.calls, 1)
	assert.Equal(t, filepath.Join(workDir, "venv", "bin", "pip"), runner.calls[0].name)
	assert.Equal(t, []string{"install", "-r", "requirements.txt"}, runner.calls[0].args)
}

func TestInstallFailureWrapsDependencyInstall(t *testing.T) {
	runner := &mockRunner{err: errors.ErrCommandFailed, stderr: "No matching distribution found for pillow==99.0"}
	env := newEnv(runner, t.TempDir())

	err := env.Install(context.Background(), "requirements.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDependencyInstall)
	assert.Contains(t, err.Error(), "pillow==99.0")
}

func TestInstallStreamsLiveOutput(t *testing.T) {
	workDir := t.TempDir()
	runner := &liveMockRunner{}
	var out bytes.Buffer
	env := pyenv.New(runner, workDir, "python3", "venv", time.Minute, pyenv.WithLiveOutput(&out))

	require.NoError(t, env.Install(context.Background(), "requirements.txt"))

	assert.Equal(t, 1, runner.liveCalls)
	assert.Equal(t, "tool output\n", out.String())
	require.Len(t, runner.calls, 1)
	assert.Equal(t, filepath.Join(workDir, "venv", "bin", "pip"), runner.calls[0].name)
}

func TestLiveOutputFallsBackWithoutSupport(t *testing.T) {
	// A runner without RunWithLiveOutput is still usable when a live writer
	// is attached; output simply stays captured.
	runner := &mockRunner{}
	var out bytes.Buffer
	env := pyenv.New(runner, t.TempDir(), "python3", "venv", time.Minute, pyenv.WithLiveOutput(&out))

	require.NoError(t, env.Create(context.Background()))

	require.Len(t, runner.calls, 1)
	assert.Empty(t, out.String())
}

func TestRemoveDeletesEnvironment(t *testing.T) {
	workDir := t.TempDir()
	venv := filepath.Join(workDir, "venv")
	require.NoError(t, os.MkdirAll(filepath.Join(venv, "bin"), 0o750))

	env := newEnv(&mockRunner{}, workDir)
	require.NoError(t, env.Remove())
	assert.NoDirExists(t, venv)
}

func TestRemoveMissingEnvironmentIsNoError(t *testing.T) {
	env := newEnv(&mockRunner{}, t.TempDir())
	assert.NoError(t, env.Remove())
}

func TestPythonAndPipPaths(t *testing.T) {
	workDir := t.TempDir()
	env := newEnv(&mockRunner{}, workDir)

	assert.Equal(t, filepath.Join(workDir, "venv"), env.Path())
	assert.Equal(t, filepath.Join(workDir, "venv", "bin", "python"), env.Python())
	assert.Equal(t, filepath.Join(workDir, "venv", "bin", "pip"), env.Pip())
}
