package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pybundle/pybundle/internal/errors"
)

func TestExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitError", ExitError, 1},
		{"ExitInvalidInput", ExitInvalidInput, 2},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, tc.code)
		})
	}
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, ExitSuccess},
		{"pipeline failure", errors.ErrPackaging, ExitError},
		{"wrapped pipeline failure", errors.Wrap(errors.ErrRelocation, "cannot move"), ExitError},
		{"invalid output format", errors.ErrInvalidOutputFormat, ExitInvalidInput},
		{"invalid config", errors.Wrap(errors.ErrConfigInvalid, "python.venv_dir"), ExitInvalidInput},
		{"empty config value", errors.Wrap(errors.ErrEmptyValue, "project.setup_script"), ExitInvalidInput},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, ExitCodeForError(tc.err))
		})
	}
}

func TestExitCodeForUnknownFlag(t *testing.T) {
	t.Setenv("PYBUNDLE_HOME", t.TempDir())

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--no-such-flag"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestExitCodeForMutuallyExclusiveFlags(t *testing.T) {
	t.Setenv("PYBUNDLE_HOME", t.TempDir())

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--verbose", "--quiet"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestExitCodeForUnknownCommand(t *testing.T) {
	t.Setenv("PYBUNDLE_HOME", t.TempDir())

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"bogus"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestValidOutputFormats(t *testing.T) {
	t.Parallel()

	formats := ValidOutputFormats()
	assert.Contains(t, formats, OutputText)
	assert.Contains(t, formats, OutputJSON)
	assert.Len(t, formats, 2)
}

func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		valid  bool
	}{
		{"text", true},
		{"json", true},
		{"", false},
		{"yaml", false},
		{"TEXT", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.valid, IsValidOutputFormat(tc.format))
		})
	}
}

func TestAddGlobalFlags(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)

	assert.NotNil(t, cmd.PersistentFlags().Lookup("output"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("quiet"))
	assert.Equal(t, OutputText, flags.Output)
}

func TestBindGlobalFlags(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)

	v := viper.New()
	require.NoError(t, BindGlobalFlags(v, cmd))

	assert.Equal(t, OutputText, v.GetString("output"))
	assert.False(t, v.GetBool("verbose"))
}
