package executor

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"

	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/zerr"
)

// Copy copies a single file, overwriting the destination. It announces the
// copy on standard output first. Failures are then reported as a standard
// error line and exit code 1, never as an error.
func Copy(ctx context.Context, desc *domain.CopyTaskDescriptor) iter.Seq2[domain.ProcessEvent, error] {
	return func(yield func(domain.ProcessEvent, error) bool) {
		if !yield(domain.StdoutLine(fmt.Sprintf("copying %s -> %s", desc.FromAbsolutePath, desc.ToAbsolutePath)), nil) {
			return
		}
		if err := copyFile(ctx, desc.FromAbsolutePath, desc.ToAbsolutePath); err != nil {
			if !yield(domain.StderrLine(err.Error()), nil) {
				return
			}
			yield(domain.ExitCode(1), nil)
			return
		}
		yield(domain.ExitCode(0), nil)
	}
}

func copyFile(ctx context.Context, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(from) //nolint:gosec // descriptor provided path
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open copy source"), "path", from)
	}
	defer func() { _ = src.Close() }()

	info, err := src.Stat()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat copy source"), "path", from)
	}

	if err := os.MkdirAll(filepath.Dir(to), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create copy destination directory"), "path", to)
	}

	dst, err := os.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec // descriptor provided path
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open copy destination"), "path", to)
	}

	_, err = io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", to)
	}
	return nil
}
