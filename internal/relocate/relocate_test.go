package relocate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pybundle/pybundle/internal/errors"
	"github.com/pybundle/pybundle/internal/relocate"
)

func makeArtifact(t *testing.T, dir, name, marker string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Join(path, "Contents"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(path, "Contents", "marker"), []byte(marker), 0o600))
	return path
}

func readMarker(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(path, "Contents", "marker"))
	require.NoError(t, err)
	return string(content)
}

func TestReplaceMovesArtifact(t *testing.T) {
	dist := t.TempDir()
	dest := t.TempDir()
	src := makeArtifact(t, dist, "App.app", "v2")

	rel := relocate.New(dest)
	require.NoError(t, rel.Replace(context.Background(), src))

	assert.NoDirExists(t, src, "source must be gone after the move")
	moved := filepath.Join(dest, "App.app")
	assert.DirExists(t, moved)
	assert.Equal(t, "v2", readMarker(t, moved))
}

func TestReplaceDeletesPriorEntry(t *testing.T) {
	dist := t.TempDir()
	dest := t.TempDir()
	makeArtifact(t, dest, "App.app", "v1")
	src := makeArtifact(t, dist, "App.app", "v2")

	rel := relocate.New(dest)
	require.NoError(t, rel.Replace(context.Background(), src))

	// Replaced, not duplicated: one entry carrying the new content.
	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "v2", readMarker(t, filepath.Join(dest, "App.app")))
}

func TestReplaceWorksForPlainFiles(t *testing.T) {
	dist := t.TempDir()
	dest := t.TempDir()
	src := filepath.Join(dist, "App.app.tar.gz")
	require.NoError(t, os.WriteFile(src, []byte("gzip"), 0o600))

	rel := relocate.New(dest)
	require.NoError(t, rel.Replace(context.Background(), src))

	assert.NoFileExists(t, src)
	assert.FileExists(t, filepath.Join(dest, "App.app.tar.gz"))
}

func TestReplaceMissingDestinationPreservesSource(t *testing.T) {
	dist := t.TempDir()
	src := makeArtifact(t, dist, "App.app", "v2")

	rel := relocate.New(filepath.Join(t.TempDir(), "not-mounted"))
	err := rel.Replace(context.Background(), src)

	require.ErrorIs(t, err, errors.ErrRelocation)
	assert.DirExists(t, src, "a failed relocation must leave the artifact in place")
}

func TestReplaceDestinationIsFilePreservesSource(t *testing.T) {
	dist := t.TempDir()
	src := makeArtifact(t, dist, "App.app", "v2")

	destFile := filepath.Join(t.TempDir(), "Downloads")
	require.NoError(t, os.WriteFile(destFile, []byte("x"), 0o600))

	err := relocate.New(destFile).Replace(context.Background(), src)
	require.ErrorIs(t, err, errors.ErrRelocation)
	assert.DirExists(t, src)
}

func TestCheckWritable(t *testing.T) {
	assert.NoError(t, relocate.New(t.TempDir()).CheckWritable())

	err := relocate.New(filepath.Join(t.TempDir(), "missing")).CheckWritable()
	assert.ErrorIs(t, err, errors.ErrRelocation)
}

func TestCheckWritableUnwritableDir(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root bypasses permission checks")
	}

	dest := t.TempDir()
	require.NoError(t, os.Chmod(dest, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dest, 0o700) })

	err := relocate.New(dest).CheckWritable()
	assert.ErrorIs(t, err, errors.ErrRelocation)
}

func TestRemoveIfEmpty(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "dist")
	require.NoError(t, os.Mkdir(empty, 0o750))

	require.NoError(t, relocate.RemoveIfEmpty(empty))
	assert.NoDirExists(t, empty)
}

func TestRemoveIfEmptyKeepsNonEmpty(t *testing.T) {
	dir := t.TempDir()
	dist := filepath.Join(dir, "dist")
	require.NoError(t, os.Mkdir(dist, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "App.app.tar.gz"), []byte("x"), 0o600))

	require.NoError(t, relocate.RemoveIfEmpty(dist))
	assert.DirExists(t, dist, "non-empty dist must be preserved")
}

func TestRemoveIfEmptyMissingDirIsNoError(t *testing.T) {
	assert.NoError(t, relocate.RemoveIfEmpty(filepath.Join(t.TempDir(), "gone")))
}
