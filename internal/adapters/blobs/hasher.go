package blobs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/zerr"
)

type fileStamp struct {
	size    int64
	modTime int64
	hash    uint64
}

// Hasher implements ports.BlobHasher. File hashes are remembered by size and
// modification time for the lifetime of the hasher.
type Hasher struct {
	mu    sync.Mutex
	files map[string]fileStamp
}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{files: make(map[string]fileStamp)}
}

// ComputeFileHash returns the hash of the file at path and its modification time.
func (h *Hasher) ComputeFileHash(path string) (hash uint64, modTime int64, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}
	size, mtime := info.Size(), info.ModTime().UnixNano()

	h.mu.Lock()
	stamp, ok := h.files[path]
	h.mu.Unlock()
	if ok && stamp.size == size && stamp.modTime == mtime {
		return stamp.hash, mtime, nil
	}

	hash, err = HashFile(path)
	if err != nil {
		return 0, 0, zerr.With(zerr.Wrap(err, "failed to hash file"), "path", path)
	}

	h.mu.Lock()
	h.files[path] = fileStamp{size: size, modTime: mtime, hash: hash}
	h.mu.Unlock()
	return hash, mtime, nil
}

// HashTool hashes every file below the directory of the tool executable.
// The tool hash covers the relative paths and the content of all files.
func (h *Hasher) HashTool(ctx context.Context, executablePath string) (*domain.ToolManifest, error) {
	base := filepath.Dir(executablePath)
	files := make(map[string]uint64)

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		hash, _, err := h.ComputeFileHash(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = hash
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to hash tool"), "path", executablePath)
	}

	return &domain.ToolManifest{
		LocalBasePath:      base,
		ToolXxHash64:       toolHash(files),
		ToolExecutableName: filepath.Base(executablePath),
		Files:              files,
	}, nil
}

// toolHash hashes the file list in a deterministic order.
func toolHash(files map[string]uint64) uint64 {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	hasher := xxhash.New()
	for _, p := range paths {
		_, _ = hasher.WriteString(p)
		_, _ = hasher.Write([]byte{0}) // Separator
		_, _ = hasher.WriteString(HexString(files[p]))
		_, _ = hasher.Write([]byte{0})
	}
	return hasher.Sum64()
}

// HashInputs hashes the given files.
func (h *Hasher) HashInputs(ctx context.Context, paths []string) (*domain.BlobManifest, error) {
	manifest := &domain.BlobManifest{
		PathsToBlobs:  make(map[string]domain.BlobRef, len(paths)),
		HashesToPaths: make(map[uint64]string, len(paths)),
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hash, mtime, err := h.ComputeFileHash(path)
		if err != nil {
			return nil, err
		}
		manifest.PathsToBlobs[path] = domain.BlobRef{XxHash64: hash, LastModifiedUtcTicks: mtime}
		if _, ok := manifest.HashesToPaths[hash]; !ok {
			manifest.HashesToPaths[hash] = path
		}
	}
	return manifest, nil
}
