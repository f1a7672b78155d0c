package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pybundle/pybundle/internal/errors"
)

func TestRootCmdHelp(t *testing.T) {
	t.Setenv("PYBUNDLE_HOME", t.TempDir())

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "test"})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "pybundle")
	assert.Contains(t, output, "build")
	assert.Contains(t, output, "release")
	assert.Contains(t, output, "clean")
	assert.Contains(t, output, "doctor")
	assert.Contains(t, output, "--output")
	assert.Contains(t, output, "--verbose")
	assert.Contains(t, output, "--quiet")
}

func TestRootCmdInvalidOutputFormat(t *testing.T) {
	t.Setenv("PYBUNDLE_HOME", t.TempDir())

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--output", "yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidOutputFormat)
}

func TestRootCmdRejectsVerboseAndQuiet(t *testing.T) {
	t.Setenv("PYBUNDLE_HOME", t.TempDir())

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--verbose", "--quiet"})

	assert.Error(t, cmd.Execute())
}

func TestRenderErrorActionable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderError(&buf, errors.Wrap(errors.ErrRelocation, "cannot move"), make(chan struct{}))

	output := buf.String()
	assert.Contains(t, output, "Error:")
	assert.Contains(t, output, "destination")
	assert.Contains(t, output, "Hint:")
}

func TestRenderErrorInterrupted(t *testing.T) {
	t.Parallel()

	interrupted := make(chan struct{})
	close(interrupted)

	var buf bytes.Buffer
	renderError(&buf, context.Canceled, interrupted)

	assert.Equal(t, "Error: interrupted\n", buf.String())
}

func TestFormatVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		info           BuildInfo
		expectContains []string
	}{
		{
			name:           "full version info",
			info:           BuildInfo{Version: "1.4.1", Commit: "abc1234", Date: "2026-01-01"},
			expectContains: []string{"1.4.1", "abc1234", "2026-01-01"},
		},
		{
			name:           "empty fields get placeholders",
			info:           BuildInfo{},
			expectContains: []string{"dev", "none", "unknown"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			version := formatVersion(tc.info)
			for _, want := range tc.expectContains {
				assert.Contains(t, version, want)
			}
		})
	}
}
