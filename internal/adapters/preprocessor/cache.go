package preprocessor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.trai.ch/openge/internal/adapters/reservation"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

type cacheState uint8

const (
	stateUninitialized cacheState = iota
	stateInitializing
	stateReady
	stateDisposed
)

// Cache is the in-process preprocessor cache. Only one Cache may be ready per data
// directory at a time; the others fail Ensure with domain.ErrCacheAlreadyRunning.
type Cache struct {
	dataDir string
	logger  ports.Logger

	mu          sync.Mutex
	state       cacheState
	reservation ports.Reservation
	store       ports.ScanStore

	scans  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

var (
	_ ports.PreprocessorCache   = (*Cache)(nil)
	_ ports.PreprocessorScanner = (*Cache)(nil)
)

// NewCache creates a cache that keeps its state in dataDir.
func NewCache(dataDir string, logger ports.Logger) *Cache {
	return &Cache{dataDir: dataDir, logger: logger}
}

// Ensure acquires the cache reservation and opens the store.
func (c *Cache) Ensure(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateReady:
		return nil
	case stateDisposed:
		return domain.ErrCacheDisposed
	}
	c.state = stateInitializing

	mgr, err := reservation.NewManager(filepath.Join(c.dataDir, domain.ReservationsDirName))
	if err != nil {
		c.state = stateUninitialized
		return err
	}
	res, err := mgr.TryReserveExact(domain.PreprocessorReservationName)
	if err != nil {
		c.state = stateUninitialized
		return err
	}
	if res == nil {
		c.state = stateUninitialized
		return zerr.With(domain.ErrCacheAlreadyRunning, "data_dir", c.dataDir)
	}

	store, err := OpenStore(filepath.Join(c.dataDir, domain.ScanStoreFileName))
	if err != nil {
		_ = res.Release()
		c.state = stateUninitialized
		return err
	}

	c.reservation = res
	c.store = store
	c.state = stateReady
	c.logger.Info("preprocessor cache ready in " + c.dataDir)
	return nil
}

func (c *Cache) ready() (ports.ScanStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateReady:
		return c.store, nil
	case stateDisposed:
		return nil, domain.ErrCacheDisposed
	default:
		return nil, domain.ErrCacheNotReady
	}
}

// GetUnresolvedDependencies returns the scan result of a single file.
func (c *Cache) GetUnresolvedDependencies(
	ctx context.Context,
	path string,
) (*domain.ScanResultWithCacheMetadata, error) {
	if !filepath.IsAbs(path) {
		return nil, zerr.With(domain.ErrPathNotAbsolute, "path", path)
	}
	return c.ScanFile(ctx, path)
}

// GetResolvedDependencies returns the transitive include closure of a file.
func (c *Cache) GetResolvedDependencies(
	ctx context.Context,
	req domain.ResolveRequest,
) (*domain.ResolutionResult, error) {
	if _, err := c.ready(); err != nil {
		return nil, err
	}
	return Resolve(ctx, c, req)
}

// ScanFile returns the scan result of path, rescanning it when the stored result is stale.
func (c *Cache) ScanFile(ctx context.Context, path string) (*domain.ScanResultWithCacheMetadata, error) {
	store, err := c.ready()
	if err != nil {
		return nil, err
	}

	v, err, _ := c.scans.Do(path, func() (any, error) {
		return c.scan(ctx, store, path)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ScanResultWithCacheMetadata), nil
}

func (c *Cache) scan(ctx context.Context, store ports.ScanStore, path string) (*domain.ScanResultWithCacheMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to stat source file"), "path", path)
	}
	ticks := info.ModTime().UnixNano()

	stored, err := store.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	status := cacheStatus(stored, ticks)
	if status == domain.CacheHit {
		c.hits.Add(1)
		return &domain.ScanResultWithCacheMetadata{Result: stored.Result, CacheStatus: status}, nil
	}
	c.misses.Add(1)

	result, err := scanPath(path)
	if err != nil {
		return nil, err
	}
	if err := store.Put(ctx, &domain.StoredScanResult{
		Path:           path,
		LastWriteTicks: ticks,
		CacheVersion:   domain.ScanResultVersion,
		Result:         result,
	}); err != nil {
		return nil, err
	}
	return &domain.ScanResultWithCacheMetadata{Result: result, CacheStatus: status}, nil
}

// cacheStatus applies the hit policy in order: absent, out of date, old version.
func cacheStatus(stored *domain.StoredScanResult, ticks int64) domain.CacheStatus {
	switch {
	case stored == nil:
		return domain.CacheMissDueToMissingFile
	case ticks > stored.LastWriteTicks:
		return domain.CacheMissDueToFileOutOfDate
	case stored.CacheVersion < domain.ScanResultVersion:
		return domain.CacheMissDueToOldCacheVersion
	default:
		return domain.CacheHit
	}
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() domain.CacheStats {
	return domain.CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Close releases the store and the reservation. The cache cannot be used afterwards.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateDisposed {
		return nil
	}
	c.state = stateDisposed

	var errs []error
	if c.store != nil {
		errs = append(errs, c.store.Close())
	}
	if c.reservation != nil {
		errs = append(errs, c.reservation.Release())
	}
	if err := errors.Join(errs...); err != nil {
		return zerr.Wrap(err, "failed to close preprocessor cache")
	}
	return nil
}
