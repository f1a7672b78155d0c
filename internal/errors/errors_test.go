package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pybundle/pybundle/internal/errors"
)

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		errors.ErrEnvSetup,
		errors.ErrDependencyInstall,
		errors.ErrPackaging,
		errors.ErrRelocation,
		errors.ErrCommandFailed,
		errors.ErrBundleNotFound,
		errors.ErrAmbiguousBundle,
		errors.ErrConfigInvalid,
		errors.ErrMissingPrerequisite,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.NotErrorIs(t, a, b, "sentinel %v must not match %v", a, b)
		}
	}
}

func TestWrapPreservesChain(t *testing.T) {
	wrapped := errors.Wrap(errors.ErrPackaging, "setup.py py2app")
	require.Error(t, wrapped)
	assert.ErrorIs(t, wrapped, errors.ErrPackaging)
	assert.Contains(t, wrapped.Error(), "setup.py py2app")
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, errors.Wrap(nil, "context"))
	assert.NoError(t, errors.Wrapf(nil, "context %d", 42))
}

func TestWrapfInterpolates(t *testing.T) {
	wrapped := errors.Wrapf(errors.ErrRelocation, "cannot remove existing %s", "/tmp/App.app")
	require.Error(t, wrapped)
	assert.ErrorIs(t, wrapped, errors.ErrRelocation)
	assert.Contains(t, wrapped.Error(), "/tmp/App.app")
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{
			name:     "env setup",
			err:      fmt.Errorf("venv: %w", errors.ErrEnvSetup),
			contains: "isolated Python environment",
		},
		{
			name:     "dependency install",
			err:      errors.Wrap(errors.ErrDependencyInstall, "pip install"),
			contains: "packaging was not attempted",
		},
		{
			name:     "relocation preserves artifacts",
			err:      errors.Wrap(errors.ErrRelocation, "mv"),
			contains: "remain in the local dist directory",
		},
		{
			name:     "uncategorized falls back to error text",
			err:      stderrors.New("boom"),
			contains: "boom",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, errors.UserMessage(tc.err), tc.contains)
		})
	}
}

func TestUserMessageNil(t *testing.T) {
	assert.Empty(t, errors.UserMessage(nil))
}

func TestActionable(t *testing.T) {
	message, action := errors.Actionable(errors.Wrap(errors.ErrMissingPrerequisite, "doctor"))
	assert.NotEmpty(t, message)
	assert.Contains(t, action, "pybundle doctor")

	message, action = errors.Actionable(stderrors.New("plain"))
	assert.Equal(t, "plain", message)
	assert.Empty(t, action)
}

func TestIsInvalidInput(t *testing.T) {
	assert.True(t, errors.IsInvalidInput(errors.ErrInvalidOutputFormat))
	assert.True(t, errors.IsInvalidInput(errors.Wrap(errors.ErrConfigInvalid, "build.timeout")))
	assert.True(t, errors.IsInvalidInput(errors.Wrap(errors.ErrEmptyValue, "python.interpreter")))
	assert.False(t, errors.IsInvalidInput(errors.ErrPackaging))
	assert.False(t, errors.IsInvalidInput(nil))
}
