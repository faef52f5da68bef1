package ports

import (
	"context"
	"io"

	"go.trai.ch/openge/internal/core/domain"
)

//go:generate mockgen -source=blobs.go -destination=mocks/mock_blobs.go -package=mocks

// BlobStore stores content addressed by xxHash64.
type BlobStore interface {
	// Missing returns the hashes that are not present in the store.
	Missing(hashes []uint64) []uint64

	// Write stores the content read from r under hash, verifying the content hash.
	Write(hash uint64, r io.Reader) error

	// Open opens the blob with the given hash.
	Open(hash uint64) (io.ReadCloser, error)

	// LayoutBuildDirectory materializes inputs inside target, removing files left
	// from a previous layout that are no longer wanted.
	LayoutBuildDirectory(ctx context.Context, target string, inputs map[string]domain.BlobRef) error

	// CaptureOutputs stores the outputs found inside target and returns their blob references.
	CaptureOutputs(ctx context.Context, target string, outputs []string) (map[string]domain.BlobRef, error)
}

// ToolManager stores tool trees constructed from tool blobs.
type ToolManager interface {
	// ToolPath returns where the executable of the given tool lives.
	ToolPath(hash uint64, executableName string) string

	// QueryTool reports whether the tool tree already exists.
	QueryTool(hash uint64) bool

	// HasToolBlobs reports which tool blobs are present, importing local hints when possible.
	HasToolBlobs(ctx context.Context, blobs []domain.ToolBlob) (map[uint64]bool, error)

	// WriteToolBlob stores a tool blob and returns the committed size.
	WriteToolBlob(ctx context.Context, hash uint64, r io.Reader) (int64, error)

	// ConstructTool assembles the tool tree from its blobs.
	ConstructTool(ctx context.Context, hash uint64, files map[string]uint64) error
}

// BlobHasher hashes local content before it is sent to a worker.
type BlobHasher interface {
	// HashTool hashes every file in the directory of the tool executable.
	HashTool(ctx context.Context, executablePath string) (*domain.ToolManifest, error)

	// HashInputs hashes the given files.
	HashInputs(ctx context.Context, paths []string) (*domain.BlobManifest, error)
}
