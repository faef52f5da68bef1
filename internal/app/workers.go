package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.trai.ch/openge/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/openge/internal/engine/workerpool"
	"go.trai.ch/zerr"
)

// configReloadDelay coalesces the events of a single configuration save.
const configReloadDelay = 200 * time.Millisecond

// workerRegistry keeps the remote workers of a pool in line with the configuration.
type workerRegistry struct {
	pool      *workerpool.Pool
	connector ports.WorkerConnector
	logger    ports.Logger

	mu         sync.Mutex
	registered map[string]domain.WorkerEndpoint
}

func newWorkerRegistry(pool *workerpool.Pool, connector ports.WorkerConnector, logger ports.Logger) *workerRegistry {
	return &workerRegistry{
		pool:       pool,
		connector:  connector,
		logger:     logger,
		registered: make(map[string]domain.WorkerEndpoint),
	}
}

// Apply registers the endpoints that are not in the pool yet and removes the
// ones that disappeared or changed. A worker that cannot be registered is
// logged and skipped; the job keeps running on the others.
func (r *workerRegistry) Apply(ctx context.Context, endpoints []domain.WorkerEndpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[string]domain.WorkerEndpoint, len(endpoints))
	for _, ep := range endpoints {
		wanted[ep.Name] = ep
	}
	for name, ep := range r.registered {
		if w, ok := wanted[name]; ok && w == ep {
			continue
		}
		if err := r.pool.UnregisterRemoteWorker(name); err != nil {
			r.logger.Warn(fmt.Sprintf("failed to remove worker %s: %v", name, err))
		}
		delete(r.registered, name)
		r.logger.Info(fmt.Sprintf("removed worker %s", name))
	}

	for _, ep := range endpoints {
		if _, ok := r.registered[ep.Name]; ok {
			continue
		}
		client, err := r.connector.Connect(ep)
		if err != nil {
			r.logger.Warn(fmt.Sprintf("failed to connect to worker %s at %s: %v", ep.Name, ep.Address, err))
			continue
		}
		if err := r.pool.RegisterRemoteWorker(ctx, client); err != nil {
			_ = client.Close()
			r.logger.Warn(fmt.Sprintf("failed to register worker %s: %v", ep.Name, err))
			continue
		}
		r.registered[ep.Name] = ep
		r.logger.Info(fmt.Sprintf("registered worker %s at %s with %d cores", ep.Name, ep.Address, ep.Cores))
	}
}

// watchWorkers applies the workers of configPath to registry whenever the
// file changes. The returned function stops watching.
func (a *App) watchWorkers(ctx context.Context, configPath string, registry *workerRegistry) func() {
	if a.watcher == nil {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	if err := a.watcher.Start(ctx, configPath); err != nil {
		cancel()
		a.logger.Warn("configuration changes will not be picked up: " + err.Error())
		return func() {}
	}

	reload := func() {
		cfg, err := a.configLoader.Load(configPath)
		if err != nil {
			a.logger.Warn("ignoring configuration change: " + err.Error())
			return
		}
		registry.Apply(ctx, cfg.Workers)
	}
	debouncer := watcher.NewDebouncer(configReloadDelay, reload)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range a.watcher.Events() {
			debouncer.Trigger()
		}
	}()

	return func() {
		cancel()
		_ = a.watcher.Stop()
		<-done
		debouncer.Stop()
	}
}

// lazyCache connects to the preprocessor cache daemon on first use, so jobs
// that never place a compile step on a remote worker do not start it.
type lazyCache struct {
	connector  ports.CacheConnector
	dataDir    string
	spawnDelay time.Duration

	mu     sync.Mutex
	client ports.CacheClient
}

func newLazyCache(connector ports.CacheConnector, dataDir string, spawnDelay time.Duration) *lazyCache {
	return &lazyCache{connector: connector, dataDir: dataDir, spawnDelay: spawnDelay}
}

func (c *lazyCache) get(ctx context.Context) (ports.CacheClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	client, err := c.connector.Connect(ctx, c.dataDir, c.spawnDelay)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to connect to the preprocessor cache")
	}
	c.client = client
	return client, nil
}

// Ensure implements ports.PreprocessorCache.
func (c *lazyCache) Ensure(ctx context.Context) error {
	_, err := c.get(ctx)
	return err
}

// GetUnresolvedDependencies implements ports.PreprocessorCache.
func (c *lazyCache) GetUnresolvedDependencies(ctx context.Context, path string) (*domain.ScanResultWithCacheMetadata, error) {
	client, err := c.get(ctx)
	if err != nil {
		return nil, err
	}
	return client.GetUnresolvedDependencies(ctx, path)
}

// GetResolvedDependencies implements ports.PreprocessorCache.
func (c *lazyCache) GetResolvedDependencies(ctx context.Context, req domain.ResolveRequest) (*domain.ResolutionResult, error) {
	client, err := c.get(ctx)
	if err != nil {
		return nil, err
	}
	return client.GetResolvedDependencies(ctx, req)
}

// Close implements ports.PreprocessorCache. It leaves the daemon running.
func (c *lazyCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}
