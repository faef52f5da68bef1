package app

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/openge/internal/core/ports/mocks"
	"go.trai.ch/openge/internal/engine/workerpool"
	"go.uber.org/mock/gomock"
)

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()
	return logger
}

func workerClient(ctrl *gomock.Controller, name string, cores int) *mocks.MockWorkerClient {
	client := mocks.NewMockWorkerClient(ctrl)
	client.EXPECT().Name().Return(name).AnyTimes()
	client.EXPECT().Cores().Return(cores).AnyTimes()
	return client
}

func remoteNames(pool *workerpool.Pool) []string {
	var names []string
	for _, s := range pool.Stats() {
		if !s.Local {
			names = append(names, s.Name)
		}
	}
	return names
}

func TestWorkerRegistry_Apply(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := quietLogger(ctrl)
	connector := mocks.NewMockWorkerConnector(ctrl)

	pool := workerpool.New(1, logger)
	t.Cleanup(func() { _ = pool.Close() })
	registry := newWorkerRegistry(pool, connector, logger)

	b1 := domain.WorkerEndpoint{Name: "b1", Address: "b1:7600", Cores: 4}
	b2 := domain.WorkerEndpoint{Name: "b2", Address: "b2:7600", Cores: 8}
	b1Client := workerClient(ctrl, "b1", 4)
	b2Client := workerClient(ctrl, "b2", 8)
	connector.EXPECT().Connect(b1).Return(b1Client, nil)
	connector.EXPECT().Connect(b2).Return(b2Client, nil)

	registry.Apply(context.Background(), []domain.WorkerEndpoint{b1, b2})
	assert.Equal(t, []string{"b1", "b2"}, remoteNames(pool))

	// Unchanged endpoints are left alone.
	registry.Apply(context.Background(), []domain.WorkerEndpoint{b1, b2})
	assert.Equal(t, []string{"b1", "b2"}, remoteNames(pool))

	// Removing b1 closes its client; moving b2 reconnects it.
	moved := domain.WorkerEndpoint{Name: "b2", Address: "elsewhere:7600", Cores: 8}
	movedClient := workerClient(ctrl, "b2", 8)
	b1Client.EXPECT().Close().Return(nil)
	b2Client.EXPECT().Close().Return(nil)
	connector.EXPECT().Connect(moved).Return(movedClient, nil)
	movedClient.EXPECT().Close().Return(nil)

	registry.Apply(context.Background(), []domain.WorkerEndpoint{moved})
	assert.Equal(t, []string{"b2"}, remoteNames(pool))
}

func TestWorkerRegistry_ConnectFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).Times(1)
	connector := mocks.NewMockWorkerConnector(ctrl)

	pool := workerpool.New(1, logger)
	t.Cleanup(func() { _ = pool.Close() })
	registry := newWorkerRegistry(pool, connector, logger)

	down := domain.WorkerEndpoint{Name: "down", Address: "down:7600", Cores: 2}
	up := domain.WorkerEndpoint{Name: "up", Address: "up:7600", Cores: 2}
	upClient := workerClient(ctrl, "up", 2)
	upClient.EXPECT().Close().Return(nil)
	connector.EXPECT().Connect(down).Return(nil, errors.New("connection refused"))
	connector.EXPECT().Connect(up).Return(upClient, nil)

	registry.Apply(context.Background(), []domain.WorkerEndpoint{down, up})
	assert.Equal(t, []string{"up"}, remoteNames(pool))
}

func TestWorkerRegistry_LocalNameRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := quietLogger(ctrl)
	connector := mocks.NewMockWorkerConnector(ctrl)

	pool := workerpool.New(1, logger)
	t.Cleanup(func() { _ = pool.Close() })

	local := domain.WorkerEndpoint{Name: workerpool.LocalWorkerName, Address: "x:1", Cores: 1}
	client := workerClient(ctrl, workerpool.LocalWorkerName, 1)
	client.EXPECT().Close().Return(nil)
	connector.EXPECT().Connect(local).Return(client, nil)

	newWorkerRegistry(pool, connector, logger).Apply(context.Background(), []domain.WorkerEndpoint{local})
	assert.Empty(t, remoteNames(pool))
}

// chanWatcher is a ports.Watcher fed by a test.
type chanWatcher struct {
	events  chan ports.WatchEvent
	started string
}

func (w *chanWatcher) Start(_ context.Context, path string) error {
	w.started = path
	return nil
}

func (w *chanWatcher) Stop() error {
	close(w.events)
	return nil
}

func (w *chanWatcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for ev := range w.events {
			if !yield(ev) {
				return
			}
		}
	}
}

func TestApp_WatchWorkers(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := quietLogger(ctrl)
	loader := mocks.NewMockConfigLoader(ctrl)
	connector := mocks.NewMockWorkerConnector(ctrl)
	w := &chanWatcher{events: make(chan ports.WatchEvent)}

	a := New(loader, logger, nil, nil, connector, nil, w, nil)
	pool := workerpool.New(1, logger)
	t.Cleanup(func() { _ = pool.Close() })
	registry := newWorkerRegistry(pool, connector, logger)

	added := domain.WorkerEndpoint{Name: "b1", Address: "b1:7600", Cores: 2}
	client := workerClient(ctrl, "b1", 2)
	client.EXPECT().Close().Return(nil)
	loader.EXPECT().Load("openge.yaml").Return(&domain.Config{Workers: []domain.WorkerEndpoint{added}}, nil)
	connector.EXPECT().Connect(added).Return(client, nil)

	stop := a.watchWorkers(context.Background(), "openge.yaml", registry)
	assert.Equal(t, "openge.yaml", w.started)

	// A burst of events reloads the configuration once.
	for range 3 {
		w.events <- ports.WatchEvent{Path: "openge.yaml", Operation: ports.OpWrite}
	}
	require.Eventually(t, func() bool {
		return len(remoteNames(pool)) == 1
	}, 5*time.Second, 10*time.Millisecond)

	stop()
}

func TestApp_WatchWorkers_NoWatcher(t *testing.T) {
	a := New(nil, nil, nil, nil, nil, nil, nil, nil)
	stop := a.watchWorkers(context.Background(), "openge.yaml", nil)
	stop()
}

func TestLazyCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	connector := mocks.NewMockCacheConnector(ctrl)
	client := mocks.NewMockCacheClient(ctrl)

	cache := newLazyCache(connector, "/data", time.Millisecond)
	require.NoError(t, cache.Close(), "closing an unused cache is a no-op")

	req := domain.ResolveRequest{Path: "/src/a.c"}
	connector.EXPECT().Connect(gomock.Any(), "/data", time.Millisecond).Return(client, nil).Times(1)
	client.EXPECT().GetResolvedDependencies(gomock.Any(), req).Return(&domain.ResolutionResult{}, nil)
	client.EXPECT().GetUnresolvedDependencies(gomock.Any(), "/src/a.c").Return(&domain.ScanResultWithCacheMetadata{}, nil)
	client.EXPECT().Close().Return(nil)

	_, err := cache.GetResolvedDependencies(context.Background(), req)
	require.NoError(t, err)
	_, err = cache.GetUnresolvedDependencies(context.Background(), "/src/a.c")
	require.NoError(t, err)
	require.NoError(t, cache.Close())
}

func TestLazyCache_ConnectFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	connector := mocks.NewMockCacheConnector(ctrl)
	connector.EXPECT().Connect(gomock.Any(), "/data", time.Duration(0)).Return(nil, errors.New("spawn failed")).Times(2)

	cache := newLazyCache(connector, "/data", 0)
	err := cache.Ensure(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to the preprocessor cache")

	// Failures are not cached, so the next request tries again.
	require.Error(t, cache.Ensure(context.Background()))
	require.NoError(t, cache.Close())
}
