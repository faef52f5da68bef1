package daemon_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/openge/internal/adapters/daemon"
	"go.trai.ch/openge/internal/adapters/preprocessor"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newQuietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	return logger
}

// startServer serves a cache for dataDir until the test ends.
func startServer(t *testing.T, dataDir string, lc *daemon.Lifecycle) <-chan error {
	t.Helper()

	logger := newQuietLogger(t)
	srv := daemon.NewServer(lc, preprocessor.NewCache(dataDir, logger), logger, dataDir)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx) }()
	t.Cleanup(cancel)

	require.Eventually(t, func() bool {
		_, err := os.Stat(domain.CachePIDPath(dataDir))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	return errCh
}

func dialClient(t *testing.T, dataDir string) *daemon.Client {
	t.Helper()
	client, err := daemon.Dial(dataDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestServer_RoundTrip(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.cpp"), []byte("#include \"a.h\"\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.h"), nil, 0o600))

	startServer(t, dataDir, daemon.NewLifecycle(time.Minute))
	client := dialClient(t, dataDir)
	ctx := context.Background()

	require.NoError(t, client.Ensure(ctx))

	scan, err := client.GetUnresolvedDependencies(ctx, filepath.Join(root, "main.cpp"))
	require.NoError(t, err)
	assert.Equal(t, domain.CacheMissDueToMissingFile, scan.CacheStatus)
	assert.Equal(t, []string{"a.h"}, scan.Result.Includes)

	resolved, err := client.GetResolvedDependencies(ctx, domain.ResolveRequest{Path: filepath.Join(root, "main.cpp")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.h")}, resolved.DependsOnPaths)

	st, err := client.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Running)
	assert.Equal(t, os.Getpid(), st.PID)
	assert.Equal(t, domain.CacheStats{Hits: 1, Misses: 2}, st.Stats)
	assert.Positive(t, st.IdleRemaining)

	pid, err := os.ReadFile(domain.CachePIDPath(dataDir))
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(pid))
}

func TestServer_InvalidArgument(t *testing.T) {
	dataDir := t.TempDir()
	startServer(t, dataDir, daemon.NewLifecycle(time.Minute))
	client := dialClient(t, dataDir)

	_, err := client.GetUnresolvedDependencies(context.Background(), "relative.cpp")
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_ResolutionFailure(t *testing.T) {
	dataDir := t.TempDir()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.cpp"), []byte("#include \"missing.h\"\n"), 0o600))

	startServer(t, dataDir, daemon.NewLifecycle(time.Minute))
	client := dialClient(t, dataDir)
	ctx := context.Background()
	require.NoError(t, client.Ensure(ctx))

	_, err := client.GetResolvedDependencies(ctx, domain.ResolveRequest{Path: filepath.Join(root, "main.cpp")})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.ErrorIs(t, err, domain.ErrDependencyResolutionFailed)
	assert.True(t, domain.IsResolutionFailure(err))
}

func TestServer_Shutdown(t *testing.T) {
	dataDir := t.TempDir()
	errCh := startServer(t, dataDir, daemon.NewLifecycle(time.Minute))
	client := dialClient(t, dataDir)

	require.NoError(t, client.Shutdown(context.Background()))

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	assert.NoFileExists(t, domain.CacheSocketPath(dataDir))
	assert.NoFileExists(t, domain.CachePIDPath(dataDir))
}

func TestServer_IdleTimeout(t *testing.T) {
	dataDir := t.TempDir()
	logger := newQuietLogger(t)
	srv := daemon.NewServer(daemon.NewLifecycle(200*time.Millisecond), preprocessor.NewCache(dataDir, logger), logger, dataDir)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(context.Background()) }()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after the idle timeout")
	}
}

func TestServer_AlreadyRunning(t *testing.T) {
	dataDir := t.TempDir()

	owner := preprocessor.NewCache(dataDir, newQuietLogger(t))
	require.NoError(t, owner.Ensure(context.Background()))
	t.Cleanup(func() { _ = owner.Close() })

	logger := newQuietLogger(t)
	srv := daemon.NewServer(daemon.NewLifecycle(time.Minute), preprocessor.NewCache(dataDir, logger), logger, dataDir)

	require.NoError(t, srv.Serve(context.Background()))
	assert.NoFileExists(t, domain.CacheSocketPath(dataDir))
}

func TestConnector_SpawnsWhenUnavailable(t *testing.T) {
	dataDir := t.TempDir()

	spawns := 0
	connector := daemon.NewTestConnector(func(_ context.Context, dir string) error {
		spawns++
		startServer(t, dir, daemon.NewLifecycle(time.Minute))
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := connector.Connect(ctx, dataDir, 10*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.Equal(t, 1, spawns)
	require.NoError(t, client.Ping(ctx))
}

func TestConnector_ReusesRunningDaemon(t *testing.T) {
	dataDir := t.TempDir()
	startServer(t, dataDir, daemon.NewLifecycle(time.Minute))

	connector := daemon.NewTestConnector(func(context.Context, string) error {
		t.Fatal("a running daemon must not be respawned")
		return nil
	})

	client, err := connector.Connect(context.Background(), dataDir, 10*time.Millisecond)
	require.NoError(t, err)
	_ = client.Close()
}

func TestConnector_GivesUpWithContext(t *testing.T) {
	connector := daemon.NewTestConnector(func(context.Context, string) error { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := connector.Connect(ctx, t.TempDir(), 10*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
