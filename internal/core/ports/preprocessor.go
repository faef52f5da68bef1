package ports

import (
	"context"

	"go.trai.ch/openge/internal/core/domain"
)

//go:generate mockgen -source=preprocessor.go -destination=mocks/mock_preprocessor.go -package=mocks

// PreprocessorCache answers dependency questions about C and C++ source files.
type PreprocessorCache interface {
	// Ensure initializes the cache. It is safe to call more than once.
	Ensure(ctx context.Context) error

	// GetUnresolvedDependencies returns the scan result of a single file.
	GetUnresolvedDependencies(ctx context.Context, path string) (*domain.ScanResultWithCacheMetadata, error)

	// GetResolvedDependencies returns the transitive include closure of a file.
	GetResolvedDependencies(ctx context.Context, req domain.ResolveRequest) (*domain.ResolutionResult, error)

	// Close releases the cache.
	Close() error
}

// PreprocessorScanner returns scan results for individual files.
type PreprocessorScanner interface {
	// ScanFile returns the scan result of path, rescanning it when the stored result is stale.
	ScanFile(ctx context.Context, path string) (*domain.ScanResultWithCacheMetadata, error)
}

// ScanStore persists scan results.
type ScanStore interface {
	// Get returns the stored row for path, or nil when none exists.
	Get(ctx context.Context, path string) (*domain.StoredScanResult, error)

	// Put replaces the stored row for the result's path.
	Put(ctx context.Context, result *domain.StoredScanResult) error

	// Close releases the store.
	Close() error
}
