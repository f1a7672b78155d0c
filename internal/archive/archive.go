// Package archive produces the compressed release artifact from an
// application bundle.
//
// Compression happens in-process (tar + gzip) rather than shelling out to
// tar, so the pipeline's only external collaborators remain the Python
// toolchain. Application bundles contain symlinks (Frameworks/ trees), so
// link entries are preserved as links rather than followed.
package archive

import (
	"archive/tar"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/schollz/progressbar/v3"

	"github.com/pybundle/pybundle/internal/errors"
)

// Option configures archive creation.
type Option func(*builder)

// WithProgress attaches a progress bar writing to w. Intended for
// interactive runs; without it archiving is silent.
func WithProgress(w io.Writer) Option {
	return func(b *builder) {
		b.progressOut = w
	}
}

type builder struct {
	progressOut io.Writer
}

// Create compresses the directory tree at srcDir into a gzipped tarball at
// outPath. Entries are rooted at the directory's base name, so extracting
// the archive reproduces the bundle as a single top-level directory.
func Create(ctx context.Context, srcDir, outPath string, opts ...Option) (err error) {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}

	info, err := os.Stat(srcDir)
	if err != nil {
		return errors.Wrapf(err, "cannot stat %s", srcDir)
	}
	if !info.IsDir() {
		return errors.Wrapf(errors.ErrBundleNotFound, "%s is not a directory", srcDir)
	}

	out, createErr := os.Create(outPath) //#nosec G304 -- path is derived from config, not user input
	if createErr != nil {
		return errors.Wrapf(createErr, "cannot create archive %s", outPath)
	}
	// Leave no truncated archive behind on any failure, a close error
	// included: a tarball whose trailing blocks never made it to disk is
	// corrupt even though every entry was written.
	defer func() {
		_ = out.Close()
		if err != nil {
			_ = os.Remove(outPath)
		}
	}()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	bar := b.newBar(srcDir)

	if err := writeTree(ctx, tw, srcDir, bar); err != nil {
		_ = tw.Close()
		_ = gz.Close()
		return err
	}

	if err := tw.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize tar stream")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize gzip stream")
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", outPath)
	}
	return nil
}

// newBar builds a byte-count progress bar sized by walking the tree, or a
// silent one when no progress writer is attached.
func (b *builder) newBar(srcDir string) *progressbar.ProgressBar {
	if b.progressOut == nil {
		return progressbar.DefaultBytesSilent(-1)
	}

	var total int64
	_ = filepath.WalkDir(srcDir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		if info, infoErr := d.Info(); infoErr == nil {
			total += info.Size()
		}
		return nil
	})

	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(b.progressOut),
		progressbar.OptionSetDescription("archiving"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
}

// writeTree walks srcDir writing one tar entry per filesystem entry.
func writeTree(ctx context.Context, tw *tar.Writer, srcDir string, bar *progressbar.ProgressBar) error {
	base := filepath.Base(srcDir)

	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return errors.Wrapf(walkErr, "walk failed at %s", path)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return errors.Wrapf(err, "cannot relativize %s", path)
		}
		name := filepath.ToSlash(filepath.Join(base, rel))

		info, err := d.Info()
		if err != nil {
			return errors.Wrapf(err, "cannot stat %s", path)
		}

		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return errors.Wrapf(err, "cannot read link %s", path)
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return errors.Wrapf(err, "cannot build header for %s", path)
		}
		hdr.Name = name
		if info.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return errors.Wrapf(err, "cannot write header for %s", name)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path) //#nosec G304 -- path comes from walking the bundle tree
		if err != nil {
			return errors.Wrapf(err, "cannot open %s", path)
		}

		if _, err := io.Copy(io.MultiWriter(tw, bar), f); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "cannot archive %s", path)
		}
		return f.Close()
	})
}
