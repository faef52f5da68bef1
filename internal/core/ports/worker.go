package ports

import (
	"context"
	"iter"

	"go.trai.ch/openge/internal/core/domain"
)

//go:generate mockgen -source=worker.go -destination=mocks/mock_worker.go -package=mocks

// WorkerClient is the dispatcher side of a remote worker.
type WorkerClient interface {
	// Name returns the unique worker name.
	Name() string
	// Cores returns how many cores the worker offers.
	Cores() int
	// ReserveCore opens a reservation stream and waits for the worker to grant a core.
	ReserveCore(ctx context.Context) (RemoteCore, error)
	// Close releases the connection.
	Close() error
}

// WorkerConnector opens connections to remote workers.
type WorkerConnector interface {
	// Connect returns a client for the worker at endpoint. The connection is made lazily.
	Connect(endpoint domain.WorkerEndpoint) (WorkerClient, error)
}

// RemoteCore is a granted core on a remote worker. It stays reserved until Release.
type RemoteCore interface {
	// CoreNumber returns the worker-assigned core number.
	CoreNumber() int

	// SyncTool makes sure the worker has the tool described by manifest.
	SyncTool(ctx context.Context, manifest *domain.ToolManifest) (domain.ToolExecutionInfo, error)

	// SyncInputBlobs sends the blobs the worker is missing.
	SyncInputBlobs(ctx context.Context, manifest *domain.BlobManifest) error

	// ExecuteTask runs the descriptor on the worker.
	ExecuteTask(ctx context.Context, desc domain.TaskDescriptor) iter.Seq2[domain.ProcessEvent, error]

	// ReceiveOutputBlobs fetches output blobs and writes them to their local paths.
	ReceiveOutputBlobs(ctx context.Context, outputs map[string]domain.BlobRef) error

	// Release cancels the reservation stream.
	Release()
}

// CoreReservation is a core held by the dispatcher on behalf of a task.
type CoreReservation interface {
	// WorkerName returns the name of the worker the core belongs to.
	WorkerName() string
	// CoreNumber returns the core number within that worker.
	CoreNumber() int
	// IsLocal reports whether the core is the local execution slot.
	IsLocal() bool
	// Remote returns the remote core, or nil for local reservations.
	Remote() RemoteCore
	// Release returns the core to the pool. It is idempotent.
	Release()
}

// WorkerPool hands out cores across local and remote workers.
type WorkerPool interface {
	// ReserveCore waits for a core. When requireLocal is set only the local slot is eligible.
	ReserveCore(ctx context.Context, requireLocal bool) (CoreReservation, error)
}
