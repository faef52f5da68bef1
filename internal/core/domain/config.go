package domain

import "time"

const (
	// DefaultWorkerIdleTimeout is how long a worker keeps an idle reservation.
	DefaultWorkerIdleTimeout = 60 * time.Second

	// DefaultCacheIdleTimeout is how long the cache daemon stays up without requests.
	DefaultCacheIdleTimeout = 10 * time.Minute

	// DefaultCacheSpawnDelay is the pause between spawning the cache daemon and retrying.
	DefaultCacheSpawnDelay = 250 * time.Millisecond

	// DefaultWorkerListen is the default worker listen address.
	DefaultWorkerListen = ":7600"

	// DefaultDispatcherListen is the default dispatcher listen address.
	DefaultDispatcherListen = ":7601"
)

// WorkerEndpoint is a remote worker known to the dispatcher.
type WorkerEndpoint struct {
	Name    string
	Address string
	Cores   int
}

// Config is the resolved runtime configuration.
type Config struct {
	// LocalCores is the size of the local execution slot; zero disables it.
	LocalCores int
	Workers    []WorkerEndpoint

	DispatcherListen string
	// DispatcherAddress is the dispatcher jobs are submitted to. Empty runs jobs in process.
	DispatcherAddress string

	WorkerListen      string
	WorkerCores       int
	WorkerIdleTimeout time.Duration
	WorkerDataDir     string

	CacheIdleTimeout time.Duration
	CacheDataDir     string
	CacheSpawnDelay  time.Duration

	UsePty           bool
	TelemetryEnabled bool
}
