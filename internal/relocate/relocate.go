// Package relocate moves finished artifacts into the destination directory.
//
// The destination (a user's Downloads folder by default) is treated as a
// replace-in-place single-slot store: a prior entry with the same name is
// deleted before the new one is moved in. This overwrite is deliberate and
// matches the tool's contract; there is no confirmation step.
//
// Relocation failures never delete the freshly built artifacts: on any
// error the sources stay where they are so the user can recover manually.
package relocate

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/pybundle/pybundle/internal/errors"
)

// Relocator moves artifacts into a fixed destination directory.
type Relocator struct {
	dest string
}

// New creates a Relocator for the given destination directory.
// The directory must already exist; pybundle never creates it.
func New(dest string) *Relocator {
	return &Relocator{dest: dest}
}

// Destination returns the destination directory path.
func (r *Relocator) Destination() string {
	return r.dest
}

// CheckWritable verifies the destination exists, is a directory, and is
// writable, by creating and removing a probe file. Failures are wrapped
// with ErrRelocation.
func (r *Relocator) CheckWritable() error {
	info, err := os.Stat(r.dest)
	if err != nil {
		return errors.Wrapf(errors.ErrRelocation, "destination %s is not accessible: %v", r.dest, err)
	}
	if !info.IsDir() {
		return errors.Wrapf(errors.ErrRelocation, "destination %s is not a directory", r.dest)
	}

	probe, err := os.CreateTemp(r.dest, ".pybundle-probe-*")
	if err != nil {
		return errors.Wrapf(errors.ErrRelocation, "destination %s is not writable: %v", r.dest, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// Replace moves src into the destination, deleting any prior entry with the
// same base name first. The move is a rename when possible, with a
// copy-then-remove fallback for cross-device destinations. Failures are
// wrapped with ErrRelocation and leave src untouched wherever possible.
func (r *Relocator) Replace(ctx context.Context, src string) error {
	if err := r.CheckWritable(); err != nil {
		return err
	}

	target := filepath.Join(r.dest, filepath.Base(src))
	log := zerolog.Ctx(ctx)

	if _, err := os.Lstat(target); err == nil {
		log.Info().Str("target", target).Msg("replacing existing destination entry")
		if err := os.RemoveAll(target); err != nil {
			return errors.Wrapf(errors.ErrRelocation, "cannot remove existing %s: %v", target, err)
		}
	}

	if err := os.Rename(src, target); err == nil {
		log.Debug().Str("src", src).Str("target", target).Msg("artifact moved")
		return nil
	}

	// Rename failed, most likely EXDEV (destination on another filesystem).
	// Copy the tree and only remove the source once the copy succeeded.
	if err := copyTree(ctx, src, target); err != nil {
		_ = os.RemoveAll(target)
		return errors.Wrapf(errors.ErrRelocation, "cannot copy %s to %s: %v", src, target, err)
	}
	if err := os.RemoveAll(src); err != nil {
		return errors.Wrapf(errors.ErrRelocation, "copied to %s but cannot remove source %s: %v", target, src, err)
	}

	log.Debug().Str("src", src).Str("target", target).Msg("artifact copied across filesystems")
	return nil
}

// RemoveIfEmpty removes dir when it contains no entries. Used to clean up
// the local dist directory after its contents were relocated.
func RemoveIfEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "cannot read %s", dir)
	}
	if len(entries) > 0 {
		return nil
	}
	return errors.Wrapf(os.Remove(dir), "cannot remove %s", dir)
}

// copyTree recursively copies src (file, directory, or symlink) to dst,
// preserving permissions and link targets.
func copyTree(ctx context.Context, src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		link, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(link, dst)

	case info.IsDir():
		if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := copyTree(ctx, filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
		return nil

	default:
		return copyFile(src, dst, info.Mode().Perm())
	}
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src) //#nosec G304 -- paths derive from the build pipeline
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //#nosec G304
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
