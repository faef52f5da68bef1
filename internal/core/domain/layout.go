package domain

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// OpenGEDirName is the name of the shared data directory.
	OpenGEDirName = "OpenGE"

	// CacheDirName is the name of the preprocessor cache data directory.
	CacheDirName = "Cache"

	// WorkerDirName is the name of the worker data directory.
	WorkerDirName = "Worker"

	// ScanStoreFileName is the name of the preprocessor scan result database.
	ScanStoreFileName = "preprocessor.db"

	// CacheSocketName is the name of the cache daemon Unix socket.
	CacheSocketName = "cache.sock"

	// CachePIDFileName is the name of the cache daemon PID file.
	CachePIDFileName = "cache.pid"

	// CacheLogFileName is the name of the cache daemon log file.
	CacheLogFileName = "cache.log"

	// ReservationsDirName holds reservation lock directories.
	ReservationsDirName = "Reservations"

	// BlobsDirName holds content-addressed blobs on a worker.
	BlobsDirName = "Blobs"

	// ToolsDirName holds constructed tool trees on a worker.
	ToolsDirName = "Tools"

	// PreprocessorReservationName is the exclusive reservation held by the preprocessor cache owner.
	PreprocessorReservationName = "Preprocessor"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "openge.yaml"

	// VirtualRootPlaceholder is substituted with the build directory in remote arguments and environment.
	VirtualRootPlaceholder = "{__OPENGE_VIRTUAL_ROOT__}"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600

	// SocketPerm is the permission for the cache daemon socket.
	SocketPerm = 0o600
)

// SharedRoot returns the machine-wide root for OpenGE data.
// It is /Users/Shared/OpenGE on macOS and <tmp>/OpenGE elsewhere.
func SharedRoot() string {
	if runtime.GOOS == "darwin" {
		return filepath.Join("/Users", "Shared", OpenGEDirName)
	}
	return filepath.Join(os.TempDir(), OpenGEDirName)
}

// DefaultCacheDataPath returns the default preprocessor cache data directory.
func DefaultCacheDataPath() string {
	return filepath.Join(SharedRoot(), CacheDirName)
}

// DefaultWorkerDataPath returns the default worker data directory.
func DefaultWorkerDataPath() string {
	return filepath.Join(SharedRoot(), WorkerDirName)
}

// CacheSocketPath returns the cache daemon socket path within dataDir.
func CacheSocketPath(dataDir string) string {
	return filepath.Join(dataDir, CacheSocketName)
}

// CachePIDPath returns the cache daemon PID file path within dataDir.
func CachePIDPath(dataDir string) string {
	return filepath.Join(dataDir, CachePIDFileName)
}

// CacheLogPath returns the cache daemon log file path within dataDir.
func CacheLogPath(dataDir string) string {
	return filepath.Join(dataDir, CacheLogFileName)
}
