// Package workerpool hands out execution cores across the local machine and
// registered remote workers.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
)

// LocalWorkerName is the subpool name of the local execution slot.
const LocalWorkerName = "local"

// SubpoolStats describes the capacity of one subpool.
type SubpoolStats struct {
	Name     string
	Cores    int
	Reserved int
	Local    bool
}

// Pool implements ports.WorkerPool.
type Pool struct {
	logger ports.Logger
	local  *subpool

	mu      sync.Mutex
	remotes map[string]*subpool
	order   []string
	changed chan struct{}
}

// New creates a pool with a local slot of localCores cores. Zero disables local execution.
func New(localCores int, logger ports.Logger) *Pool {
	p := &Pool{
		logger:  logger,
		remotes: make(map[string]*subpool),
		changed: make(chan struct{}),
	}
	if localCores > 0 {
		p.local = newSubpool(LocalWorkerName, localCores, nil)
	}
	return p
}

// RegisterRemoteWorker adds a subpool for client. Requests that are already
// waiting for a core start competing for it immediately.
func (p *Pool) RegisterRemoteWorker(_ context.Context, client ports.WorkerClient) error {
	name := client.Name()

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.remotes[name]; ok || name == LocalWorkerName {
		return zerr.With(domain.ErrWorkerAlreadyRegistered, "worker", name)
	}
	p.remotes[name] = newSubpool(name, client.Cores(), client)
	p.order = append(p.order, name)
	p.notifyLocked()

	p.logger.Info(fmt.Sprintf("registered worker %s with %d cores", name, p.remotes[name].cores))
	return nil
}

// UnregisterRemoteWorker removes the worker and closes its client. Outstanding
// reservations on it fail on their next use.
func (p *Pool) UnregisterRemoteWorker(name string) error {
	p.mu.Lock()
	sp, ok := p.remotes[name]
	if ok {
		delete(p.remotes, name)
		p.order = slices.DeleteFunc(p.order, func(n string) bool { return n == name })
	}
	p.mu.Unlock()

	if !ok {
		return nil
	}
	return sp.client.Close()
}

// Close unregisters every remote worker.
func (p *Pool) Close() error {
	p.mu.Lock()
	names := slices.Clone(p.order)
	p.mu.Unlock()

	var errs []error
	for _, name := range names {
		errs = append(errs, p.UnregisterRemoteWorker(name))
	}
	return errors.Join(errs...)
}

// Stats returns the capacity of every subpool, local first.
func (p *Pool) Stats() []SubpoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	var stats []SubpoolStats
	if p.local != nil {
		stats = append(stats, p.local.stats())
	}
	for _, name := range p.order {
		stats = append(stats, p.remotes[name].stats())
	}
	return stats
}

func (sp *subpool) stats() SubpoolStats {
	return SubpoolStats{
		Name:     sp.name,
		Cores:    sp.cores,
		Reserved: int(sp.reserved.Load()),
		Local:    sp.isLocal(),
	}
}

// notifyLocked wakes every request waiting in ReserveCore. p.mu must be held.
func (p *Pool) notifyLocked() {
	close(p.changed)
	p.changed = make(chan struct{})
}

// eligible returns the subpools a request may use and a channel that is
// closed when the set changes.
func (p *Pool) eligible(requireLocal bool) ([]*subpool, <-chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var pools []*subpool
	if p.local != nil {
		pools = append(pools, p.local)
	}
	if !requireLocal {
		for _, name := range p.order {
			pools = append(pools, p.remotes[name])
		}
	}
	return pools, p.changed
}

type attempt struct {
	sp  *subpool
	res *reservation
	err error
}

// ReserveCore races one reservation attempt per eligible subpool and returns
// the first core granted. Cores won by the other attempts are released before
// it returns.
func (p *Pool) ReserveCore(ctx context.Context, requireLocal bool) (ports.CoreReservation, error) {
	pools, changed := p.eligible(requireLocal)
	if len(pools) == 0 {
		return nil, zerr.With(domain.ErrNoWorkersAvailable, "require_local", requireLocal)
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan attempt)
	started := make(map[*subpool]bool)
	pending := 0
	launch := func(sp *subpool) {
		started[sp] = true
		pending++
		go func() {
			res, err := sp.reserve(raceCtx)
			results <- attempt{sp: sp, res: res, err: err}
		}()
	}
	for _, sp := range pools {
		launch(sp)
	}

	// drain waits for the remaining attempts and releases what they won.
	drain := func() {
		cancel()
		for ; pending > 0; pending-- {
			if a := <-results; a.res != nil {
				a.res.Release()
			}
		}
	}

	var failures []error
	for {
		select {
		case a := <-results:
			pending--
			if a.err == nil {
				drain()
				return a.res, nil
			}
			if raceCtx.Err() == nil {
				p.logger.Warn(fmt.Sprintf("failed to reserve a core on %s: %v", a.sp.name, a.err))
				failures = append(failures, zerr.With(a.err, "worker", a.sp.name))
			}
			if pending == 0 && ctx.Err() == nil {
				return nil, errors.Join(append([]error{domain.ErrNoWorkersAvailable}, failures...)...)
			}

		case <-changed:
			pools, changed = p.eligible(requireLocal)
			for _, sp := range pools {
				if !started[sp] {
					launch(sp)
				}
			}

		case <-ctx.Done():
			drain()
			return nil, ctx.Err()
		}
	}
}
