package blobs

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// blobListName records the files of the previous layout inside a build directory.
const blobListName = ".bloblist"

// Store implements ports.BlobStore on a flat directory of files named by hash.
type Store struct {
	root string
}

// NewStore creates a new Store rooted at root.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create blob directory"), "path", root)
	}
	return &Store{root: root}, nil
}

// Path returns where the blob with the given hash is stored.
func (s *Store) Path(hash uint64) string {
	return filepath.Join(s.root, HexString(hash))
}

// Has reports whether the blob is present.
func (s *Store) Has(hash uint64) bool {
	info, err := os.Stat(s.Path(hash))
	return err == nil && info.Mode().IsRegular()
}

// Missing returns the hashes that are not present in the store.
func (s *Store) Missing(hashes []uint64) []uint64 {
	var missing []uint64
	seen := make(map[uint64]struct{}, len(hashes))
	for _, hash := range hashes {
		if _, ok := seen[hash]; ok {
			continue
		}
		seen[hash] = struct{}{}
		if !s.Has(hash) {
			missing = append(missing, hash)
		}
	}
	return missing
}

// Write stores the content read from r under hash. The content is hashed while
// it is written and discarded when it does not match.
func (s *Store) Write(hash uint64, r io.Reader) error {
	_, err := s.write(hash, r)
	return err
}

func (s *Store) write(hash uint64, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(s.root, HexString(hash)+".*.tmp")
	if err != nil {
		return 0, zerr.Wrap(err, "failed to create temporary blob")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	h := xxhash.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, zerr.With(zerr.Wrap(err, "failed to write blob"), "hash", HexString(hash))
	}

	if got := h.Sum64(); got != hash {
		return n, zerr.With(zerr.With(domain.ErrBlobHashMismatch, "hash", HexString(hash)), "actual", HexString(got))
	}

	// Concurrent writers of the same hash produce identical files, so the last rename wins harmlessly.
	if err := os.Rename(tmp.Name(), s.Path(hash)); err != nil {
		return n, zerr.With(zerr.Wrap(err, "failed to commit blob"), "hash", HexString(hash))
	}
	return n, nil
}

// Import copies the file at path into the store when its content hashes to hash.
func (s *Store) Import(hash uint64, path string) error {
	f, err := os.Open(path) //nolint:gosec // caller provided path
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open blob source"), "path", path)
	}
	defer func() { _ = f.Close() }()
	return s.Write(hash, f)
}

// Open opens the blob with the given hash.
func (s *Store) Open(hash uint64) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(hash))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(domain.ErrBlobNotFound, "hash", HexString(hash))
		}
		return nil, zerr.Wrap(err, "failed to open blob")
	}
	return f, nil
}

// LayoutBuildDirectory copies every input blob to its mapped path inside target.
// Files listed by the previous layout that are no longer wanted are removed.
func (s *Store) LayoutBuildDirectory(ctx context.Context, target string, inputs map[string]domain.BlobRef) error {
	if err := os.MkdirAll(target, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create build directory"), "path", target)
	}

	for hashPath, ref := range inputs {
		if !s.Has(ref.XxHash64) {
			return zerr.With(zerr.With(domain.ErrBlobNotFound, "hash", HexString(ref.XxHash64)), "path", hashPath)
		}
	}

	listPath := filepath.Join(target, blobListName)
	previous, err := readBlobList(listPath)
	if err != nil {
		return err
	}
	for _, path := range previous {
		if _, wanted := inputs[path]; wanted {
			continue
		}
		if err := os.Remove(BuildDirectoryPath(target, path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return zerr.With(zerr.Wrap(err, "failed to remove stale input"), "path", path)
		}
	}

	if err := writeBlobList(listPath, inputs); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for path, ref := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return s.materialize(BuildDirectoryPath(target, path), ref, 0o644)
		})
	}
	return g.Wait()
}

// materialize copies the blob to dest unless dest already holds the same
// content with the expected modification time.
func (s *Store) materialize(dest string, ref domain.BlobRef, perm os.FileMode) error {
	if ref.LastModifiedUtcTicks != 0 {
		if info, err := os.Stat(dest); err == nil && info.ModTime().UnixNano() == ref.LastModifiedUtcTicks {
			if hash, err := HashFile(dest); err == nil && hash == ref.XxHash64 {
				return nil
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(dest))
	}

	src, err := s.Open(ref.XxHash64)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	// Remove first so read-only files and hard links from earlier layouts are replaced, not written through.
	_ = os.Remove(dest)
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm) //nolint:gosec // mapped build path
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create input file"), "path", dest)
	}
	_, err = io.Copy(out, src)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to copy blob"), "path", dest)
	}

	if ref.LastModifiedUtcTicks != 0 {
		mtime := time.Unix(0, ref.LastModifiedUtcTicks)
		if err := os.Chtimes(dest, mtime, mtime); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to set modification time"), "path", dest)
		}
	}
	return nil
}

// CaptureOutputs stores the outputs found inside target. Outputs the tool did not produce are skipped.
func (s *Store) CaptureOutputs(ctx context.Context, target string, outputs []string) (map[string]domain.BlobRef, error) {
	var mu sync.Mutex
	results := make(map[string]domain.BlobRef, len(outputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, path := range outputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			local := BuildDirectoryPath(target, path)
			info, err := os.Stat(local)
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}

			hash, err := HashFile(local)
			if err != nil {
				return err
			}
			if !s.Has(hash) {
				if err := s.Import(hash, local); err != nil {
					return err
				}
			}

			mu.Lock()
			results[path] = domain.BlobRef{XxHash64: hash, LastModifiedUtcTicks: info.ModTime().UnixNano()}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func readBlobList(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // build directory file
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read blob list"), "path", path)
	}
	defer func() { _ = f.Close() }()

	var paths []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			paths = append(paths, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read blob list"), "path", path)
	}
	return paths, nil
}

func writeBlobList(path string, inputs map[string]domain.BlobRef) error {
	var b strings.Builder
	for p := range inputs {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), domain.PrivateFilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write blob list"), "path", path)
	}
	return nil
}
