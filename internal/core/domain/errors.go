package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrToolAlreadyExists is returned when a build set declares the same tool name twice.
	ErrToolAlreadyExists = zerr.New("tool already exists")

	// ErrEnvironmentAlreadyExists is returned when a build set declares the same environment twice.
	ErrEnvironmentAlreadyExists = zerr.New("environment already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrMissingTool is returned when a task references a tool that is not defined in its environment.
	ErrMissingTool = zerr.New("tool not found")

	// ErrMissingEnvironment is returned when a project references an environment that is not defined.
	ErrMissingEnvironment = zerr.New("environment not found")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrInvalidBuildSet is returned when the build set document cannot be parsed.
	ErrInvalidBuildSet = zerr.New("invalid build set")

	// ErrUnsupportedBuildSetVersion is returned when the build set declares an unknown format version.
	ErrUnsupportedBuildSetVersion = zerr.New("unsupported build set format version")

	// ErrInvalidTaskDescriptor is returned when a descriptor does not carry exactly one payload.
	ErrInvalidTaskDescriptor = zerr.New("invalid task descriptor")

	// ErrCacheAlreadyRunning is returned when another process holds the preprocessor cache reservation.
	ErrCacheAlreadyRunning = zerr.New("preprocessor cache is already running in another process")

	// ErrCacheDisposed is returned when the preprocessor cache is used after it was closed.
	ErrCacheDisposed = zerr.New("preprocessor cache has been disposed")

	// ErrCacheNotReady is returned when the preprocessor cache is used before it was initialized.
	ErrCacheNotReady = zerr.New("preprocessor cache is not initialized")

	// ErrPathNotAbsolute is returned when a preprocessor request contains a relative path.
	ErrPathNotAbsolute = zerr.New("path must be absolute")

	// ErrDependencyResolutionFailed is returned by cache clients when the cache
	// rejected a resolution because of the request or the headers it reached.
	ErrDependencyResolutionFailed = zerr.New("dependency resolution failed")

	// ErrStoreOpenFailed is returned when the scan result store cannot be opened.
	ErrStoreOpenFailed = zerr.New("failed to open scan result store")

	// ErrStoreReadFailed is returned when a scan result cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read scan result")

	// ErrStoreWriteFailed is returned when a scan result cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write scan result")

	// ErrReservationFailed is returned when a directory reservation cannot be acquired.
	ErrReservationFailed = zerr.New("failed to acquire reservation")

	// ErrNoWorkersAvailable is returned when a core is requested but no subpool can satisfy it.
	ErrNoWorkersAvailable = zerr.New("no workers available to reserve a core")

	// ErrWorkerAlreadyRegistered is returned when a remote worker with the same name is registered twice.
	ErrWorkerAlreadyRegistered = zerr.New("worker already registered")

	// ErrWorkerReservationFailed is returned when a remote worker rejects a core reservation.
	ErrWorkerReservationFailed = zerr.New("worker failed to reserve a core")

	// ErrWorkerStreamClosed is returned when a remote core stream ends unexpectedly.
	ErrWorkerStreamClosed = zerr.New("worker stream closed")

	// ErrUnexpectedResponse is returned when a remote worker answers with the wrong message type.
	ErrUnexpectedResponse = zerr.New("unexpected response from worker")

	// ErrToolNotFound is returned when a worker has no tool for the requested hash.
	ErrToolNotFound = zerr.New("tool not found on worker")

	// ErrBlobNotFound is returned when a blob is not present in the blob store.
	ErrBlobNotFound = zerr.New("blob not found")

	// ErrBlobHashMismatch is returned when blob content does not match its declared hash.
	ErrBlobHashMismatch = zerr.New("blob content does not match hash")

	// ErrCommandFailed is returned when a process exits with a non-zero code.
	ErrCommandFailed = zerr.New("command failed")

	// ErrCommandNotFound is returned when the executable cannot be found.
	ErrCommandNotFound = zerr.New("command not found")

	// ErrBuildExecutionFailed is returned when at least one task of a job failed.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when the config file contains invalid values.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrDaemonSpawnFailed is returned when the cache daemon process cannot be started.
	ErrDaemonSpawnFailed = zerr.New("failed to spawn preprocessor cache daemon")

	// ErrDaemonNotRunning is returned when the cache daemon is expected but not reachable.
	ErrDaemonNotRunning = zerr.New("preprocessor cache daemon is not running")
)
