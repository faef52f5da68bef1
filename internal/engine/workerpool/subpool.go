package workerpool

import (
	"context"
	"sync"
	"sync/atomic"

	"go.trai.ch/openge/internal/core/ports"
	"golang.org/x/sync/semaphore"
)

// subpool is the capacity of one worker. The local slot has no client.
type subpool struct {
	name   string
	cores  int
	client ports.WorkerClient
	slots  *semaphore.Weighted

	reserved atomic.Int64

	mu   sync.Mutex
	free []int
}

func newSubpool(name string, cores int, client ports.WorkerClient) *subpool {
	if cores <= 0 {
		cores = 1
	}
	sp := &subpool{
		name:   name,
		cores:  cores,
		client: client,
		slots:  semaphore.NewWeighted(int64(cores)),
	}
	if client == nil {
		sp.free = make([]int, cores)
		for i := range sp.free {
			sp.free[i] = cores - 1 - i
		}
	}
	return sp
}

func (sp *subpool) isLocal() bool {
	return sp.client == nil
}

// reserve waits for a slot and, for remote workers, for the worker to grant a core.
func (sp *subpool) reserve(ctx context.Context) (*reservation, error) {
	if err := sp.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	if sp.isLocal() {
		sp.mu.Lock()
		core := sp.free[len(sp.free)-1]
		sp.free = sp.free[:len(sp.free)-1]
		sp.mu.Unlock()

		sp.reserved.Add(1)
		return &reservation{sp: sp, core: core}, nil
	}

	remote, err := sp.client.ReserveCore(ctx)
	if err != nil {
		sp.slots.Release(1)
		return nil, err
	}
	sp.reserved.Add(1)
	return &reservation{sp: sp, core: remote.CoreNumber(), remote: remote}, nil
}

func (sp *subpool) release(r *reservation) {
	if r.remote != nil {
		r.remote.Release()
	} else {
		sp.mu.Lock()
		sp.free = append(sp.free, r.core)
		sp.mu.Unlock()
	}
	sp.reserved.Add(-1)
	sp.slots.Release(1)
}

// reservation implements ports.CoreReservation.
type reservation struct {
	sp     *subpool
	core   int
	remote ports.RemoteCore
	once   sync.Once
}

func (r *reservation) WorkerName() string {
	return r.sp.name
}

func (r *reservation) CoreNumber() int {
	return r.core
}

func (r *reservation) IsLocal() bool {
	return r.sp.isLocal()
}

func (r *reservation) Remote() ports.RemoteCore {
	return r.remote
}

func (r *reservation) Release() {
	r.once.Do(func() { r.sp.release(r) })
}
