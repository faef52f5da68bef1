// Package reservation hands out exclusively held directories backed by advisory file locks.
package reservation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

const lockSuffix = ".lock"

// Manager reserves directories below a root. Locks are held with flock, so a
// reservation is exclusive across processes and is dropped when its holder exits.
type Manager struct {
	root string
}

// NewManager creates a manager rooted at root, creating the directory if needed.
func NewManager(root string) (*Manager, error) {
	if err := os.MkdirAll(root, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrReservationFailed.Error()), "root", root)
	}
	return &Manager{root: root}, nil
}

// Root returns the directory that contains all reservations.
func (m *Manager) Root() string {
	return m.root
}

// TryReserveExact reserves the directory called name. It returns nil and no error
// when another holder owns it.
func (m *Manager) TryReserveExact(name string) (ports.Reservation, error) {
	res, err := m.tryReserve(name)
	if err != nil || res == nil {
		return nil, err
	}
	return res, nil
}

// Reserve reserves the first free directory named "<parts>-<slot>".
func (m *Manager) Reserve(ctx context.Context, parts ...string) (ports.Reservation, error) {
	prefix := strings.Join(parts, "-")
	if prefix == "" {
		prefix = "slot"
	}

	for slot := 0; ; slot++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := m.tryReserve(prefix + "-" + strconv.Itoa(slot))
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
}

func (m *Manager) tryReserve(name string) (*Reservation, error) {
	dir := filepath.Join(m.root, name)
	lockPath := dir + lockSuffix

	//nolint:gosec // lock path is derived from the reservation root
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, domain.PrivateFilePerm)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrReservationFailed.Error()), "name", name)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrReservationFailed.Error()), "name", name)
	}

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrReservationFailed.Error()), "name", name)
	}

	return &Reservation{path: dir, lock: f}, nil
}

// Reservation is a held directory.
type Reservation struct {
	path string
	lock *os.File
	once sync.Once
	err  error
}

// Path returns the reserved directory.
func (r *Reservation) Path() string {
	return r.path
}

// Release unlocks the directory. It is safe to call more than once.
func (r *Reservation) Release() error {
	r.once.Do(func() {
		r.err = errors.Join(
			unix.Flock(int(r.lock.Fd()), unix.LOCK_UN),
			r.lock.Close(),
		)
	})
	return r.err
}
