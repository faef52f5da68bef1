package workerpool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/openge/internal/engine/workerpool"
)

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}

// fakeWorker grants cores immediately unless gate is set, in which case every
// grant waits for a value on gate.
type fakeWorker struct {
	name  string
	cores int
	gate  chan struct{}
	err   error

	mu          sync.Mutex
	reserved    int
	maxReserved int
	next        int
	closed      bool
}

func (w *fakeWorker) Name() string { return w.name }
func (w *fakeWorker) Cores() int { return w.cores }

func (w *fakeWorker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWorker) ReserveCore(ctx context.Context) (ports.RemoteCore, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.gate != nil {
		select {
		case <-w.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.reserved++
	w.maxReserved = max(w.maxReserved, w.reserved)
	w.next++
	return &fakeCore{worker: w, number: w.next}, nil
}

func (w *fakeWorker) current() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reserved
}

type fakeCore struct {
	ports.RemoteCore

	worker *fakeWorker
	number int
}

func (c *fakeCore) CoreNumber() int { return c.number }

func (c *fakeCore) Release() {
	c.worker.mu.Lock()
	defer c.worker.mu.Unlock()
	c.worker.reserved--
}

func reservedTotal(p *workerpool.Pool) int {
	total := 0
	for _, s := range p.Stats() {
		total += s.Reserved
	}
	return total
}

func TestPool_LocalCapacity(t *testing.T) {
	pool := workerpool.New(2, nopLogger{})

	first, err := pool.ReserveCore(context.Background(), true)
	require.NoError(t, err)
	second, err := pool.ReserveCore(context.Background(), true)
	require.NoError(t, err)

	assert.True(t, first.IsLocal())
	assert.Equal(t, workerpool.LocalWorkerName, first.WorkerName())
	assert.Nil(t, first.Remote())
	assert.ElementsMatch(t, []int{0, 1}, []int{first.CoreNumber(), second.CoreNumber()})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.ReserveCore(ctx, true)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	freed := second.CoreNumber()
	second.Release()

	third, err := pool.ReserveCore(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, freed, third.CoreNumber())

	assert.Equal(t, []workerpool.SubpoolStats{
		{Name: workerpool.LocalWorkerName, Cores: 2, Reserved: 2, Local: true},
	}, pool.Stats())

	first.Release()
	third.Release()
	assert.Zero(t, reservedTotal(pool))
}

func TestPool_NoEligibleWorkers(t *testing.T) {
	empty := workerpool.New(0, nopLogger{})
	_, err := empty.ReserveCore(context.Background(), false)
	require.ErrorIs(t, err, domain.ErrNoWorkersAvailable)

	remoteOnly := workerpool.New(0, nopLogger{})
	require.NoError(t, remoteOnly.RegisterRemoteWorker(context.Background(), &fakeWorker{name: "w1", cores: 1}))
	_, err = remoteOnly.ReserveCore(context.Background(), true)
	require.ErrorIs(t, err, domain.ErrNoWorkersAvailable)
}

func TestPool_RaceReleasesLosers(t *testing.T) {
	pool := workerpool.New(0, nopLogger{})
	w1 := &fakeWorker{name: "w1", cores: 4}
	w2 := &fakeWorker{name: "w2", cores: 4}
	require.NoError(t, pool.RegisterRemoteWorker(context.Background(), w1))
	require.NoError(t, pool.RegisterRemoteWorker(context.Background(), w2))

	res, err := pool.ReserveCore(context.Background(), false)
	require.NoError(t, err)
	require.NotNil(t, res.Remote())
	assert.False(t, res.IsLocal())

	assert.Equal(t, 1, w1.current()+w2.current(), "only the winning core stays reserved")
	assert.Equal(t, 1, reservedTotal(pool))

	res.Release()
	assert.Zero(t, w1.current()+w2.current())
	assert.Zero(t, reservedTotal(pool))
}

func TestPool_LateJoiner(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pool := workerpool.New(1, nopLogger{})

		held, err := pool.ReserveCore(context.Background(), false)
		require.NoError(t, err)
		defer held.Release()

		got := make(chan ports.CoreReservation, 1)
		go func() {
			res, err := pool.ReserveCore(context.Background(), false)
			assert.NoError(t, err)
			got <- res
		}()
		synctest.Wait()

		late := &fakeWorker{name: "late", cores: 1}
		require.NoError(t, pool.RegisterRemoteWorker(context.Background(), late))

		res := <-got
		assert.Equal(t, "late", res.WorkerName())
		assert.Equal(t, 1, late.current())
		res.Release()
	})
}

func TestPool_CancelWhileWaiting(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pool := workerpool.New(0, nopLogger{})
		gated := &fakeWorker{name: "gated", cores: 2, gate: make(chan struct{})}
		require.NoError(t, pool.RegisterRemoteWorker(context.Background(), gated))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			_, err := pool.ReserveCore(ctx, false)
			done <- err
		}()
		synctest.Wait()

		cancel()
		require.ErrorIs(t, <-done, context.Canceled)
		assert.Zero(t, gated.current())
		assert.Zero(t, reservedTotal(pool))
	})
}

func TestPool_ReleaseIsIdempotent(t *testing.T) {
	pool := workerpool.New(1, nopLogger{})

	res, err := pool.ReserveCore(context.Background(), true)
	require.NoError(t, err)
	res.Release()
	res.Release()

	first, err := pool.ReserveCore(context.Background(), true)
	require.NoError(t, err)
	defer first.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.ReserveCore(ctx, true)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "a double release must not grant extra capacity")
}

func TestPool_RegisterAndUnregister(t *testing.T) {
	pool := workerpool.New(0, nopLogger{})
	w := &fakeWorker{name: "w1", cores: 0}

	require.NoError(t, pool.RegisterRemoteWorker(context.Background(), w))
	err := pool.RegisterRemoteWorker(context.Background(), &fakeWorker{name: "w1", cores: 2})
	require.ErrorIs(t, err, domain.ErrWorkerAlreadyRegistered)

	assert.Equal(t, []workerpool.SubpoolStats{{Name: "w1", Cores: 1}}, pool.Stats(), "non-positive core counts default to one")

	require.NoError(t, pool.UnregisterRemoteWorker("w1"))
	require.NoError(t, pool.UnregisterRemoteWorker("w1"))
	assert.True(t, w.closed)
	assert.Zero(t, pool.WorkerCount())
}

func TestPool_FailingWorker(t *testing.T) {
	pool := workerpool.New(0, nopLogger{})
	boom := errors.New("connection refused")
	require.NoError(t, pool.RegisterRemoteWorker(context.Background(), &fakeWorker{name: "down", cores: 1, err: boom}))

	_, err := pool.ReserveCore(context.Background(), false)
	require.ErrorIs(t, err, domain.ErrNoWorkersAvailable)
	assert.ErrorIs(t, err, boom)
}

func TestPool_ConcurrentCapacity(t *testing.T) {
	pool := workerpool.New(2, nopLogger{})
	remote := &fakeWorker{name: "w1", cores: 3}
	require.NoError(t, pool.RegisterRemoteWorker(context.Background(), remote))

	var local, maxLocal atomic.Int64
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := pool.ReserveCore(context.Background(), false)
			if !assert.NoError(t, err) {
				return
			}
			if res.IsLocal() {
				n := local.Add(1)
				for {
					m := maxLocal.Load()
					if n <= m || maxLocal.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				local.Add(-1)
			} else {
				time.Sleep(time.Millisecond)
			}
			res.Release()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxLocal.Load(), int64(2))
	assert.LessOrEqual(t, remote.maxReserved, 3)
	assert.Zero(t, remote.current())
	assert.Zero(t, reservedTotal(pool))
}
