package ports

import (
	"context"
	"time"

	"go.trai.ch/openge/internal/core/domain"
)

//go:generate mockgen -source=daemon.go -destination=mocks/mock_daemon.go -package=mocks

// DaemonStatus represents the current state of the cache daemon.
type DaemonStatus struct {
	Running       bool
	PID           int
	Uptime        time.Duration
	LastActivity  time.Time
	IdleRemaining time.Duration
	Stats         domain.CacheStats
}

// CacheClient is a connection to the preprocessor cache daemon.
type CacheClient interface {
	PreprocessorCache

	// Ping checks if the daemon is alive and resets the inactivity timer.
	Ping(ctx context.Context) error

	// Status returns the current daemon status.
	Status(ctx context.Context) (*DaemonStatus, error)

	// Shutdown requests a graceful daemon shutdown.
	Shutdown(ctx context.Context) error
}

// CacheConnector manages the daemon lifecycle from the client perspective.
type CacheConnector interface {
	// Connect returns a client to the daemon serving dataDir, spawning it if
	// necessary. spawnDelay paces the retries after a spawn.
	Connect(ctx context.Context, dataDir string, spawnDelay time.Duration) (CacheClient, error)

	// Dial returns a client without spawning the daemon.
	Dial(dataDir string) (CacheClient, error)

	// Spawn starts a new daemon process for dataDir in the background.
	Spawn(ctx context.Context, dataDir string) error
}
