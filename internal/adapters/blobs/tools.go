package blobs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// toolBlobsDirName holds the blobs that tool trees are constructed from.
const toolBlobsDirName = "ToolBlobs"

// ToolManager implements ports.ToolManager. Each tool is a directory named by
// the tool hash that mirrors the directory of the tool executable.
type ToolManager struct {
	root  string
	blobs *Store
	group singleflight.Group
}

// NewToolManager creates a new ToolManager. Tool trees live in dataDir/Tools and
// their blobs in dataDir/ToolBlobs.
func NewToolManager(dataDir string) (*ToolManager, error) {
	root := filepath.Join(dataDir, domain.ToolsDirName)
	if err := os.MkdirAll(root, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create tools directory"), "path", root)
	}
	blobs, err := NewStore(filepath.Join(dataDir, toolBlobsDirName))
	if err != nil {
		return nil, err
	}
	return &ToolManager{root: root, blobs: blobs}, nil
}

// ToolPath returns where the executable of the given tool lives.
func (m *ToolManager) ToolPath(hash uint64, executableName string) string {
	return filepath.Join(m.root, HexString(hash), executableName)
}

// QueryTool reports whether the tool tree already exists.
func (m *ToolManager) QueryTool(hash uint64) bool {
	info, err := os.Stat(filepath.Join(m.root, HexString(hash)))
	return err == nil && info.IsDir()
}

// HasToolBlobs reports which tool blobs are present. A blob whose local hint
// path exists on this machine with matching content is imported instead of
// being reported missing.
func (m *ToolManager) HasToolBlobs(ctx context.Context, blobs []domain.ToolBlob) (map[uint64]bool, error) {
	result := make(map[uint64]bool, len(blobs))
	for _, blob := range blobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if m.blobs.Has(blob.XxHash64) {
			result[blob.XxHash64] = true
			continue
		}
		result[blob.XxHash64] = blob.LocalHintPath != "" && m.blobs.Import(blob.XxHash64, blob.LocalHintPath) == nil
	}
	return result, nil
}

// WriteToolBlob stores a tool blob and returns the committed size.
func (m *ToolManager) WriteToolBlob(_ context.Context, hash uint64, r io.Reader) (int64, error) {
	if m.blobs.Has(hash) {
		return io.Copy(io.Discard, r)
	}
	return m.blobs.write(hash, r)
}

// ConstructTool assembles the tool tree from its blobs. Concurrent calls for the
// same tool share one construction.
func (m *ToolManager) ConstructTool(ctx context.Context, hash uint64, files map[string]uint64) error {
	_, err, _ := m.group.Do(HexString(hash), func() (any, error) {
		if m.QueryTool(hash) {
			return nil, nil
		}
		return nil, m.construct(ctx, hash, files)
	})
	return err
}

func (m *ToolManager) construct(ctx context.Context, hash uint64, files map[string]uint64) error {
	staging, err := os.MkdirTemp(m.root, HexString(hash)+".*.tmp")
	if err != nil {
		return zerr.Wrap(err, "failed to create tool staging directory")
	}
	defer func() { _ = os.RemoveAll(staging) }()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for rel, blobHash := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dest := filepath.Join(staging, filepath.FromSlash(rel))
			// Tool files keep the executable bit since the source file mode is not transferred.
			return m.blobs.materialize(dest, domain.BlobRef{XxHash64: blobHash}, 0o755)
		})
	}
	if err := g.Wait(); err != nil {
		return zerr.With(err, "tool", HexString(hash))
	}

	final := filepath.Join(m.root, HexString(hash))
	if err := os.Rename(staging, final); err != nil {
		if m.QueryTool(hash) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to commit tool"), "tool", HexString(hash))
	}
	return nil
}

