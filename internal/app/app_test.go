package app_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/openge/internal/adapters/process"
	"go.trai.ch/openge/internal/adapters/telemetry"
	"go.trai.ch/openge/internal/app"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/openge/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const buildSet = `<BuildSet FormatVersion="1">
  <Environments>
    <Environment Name="E">
      <Tools>
        <Tool Name="hello" Path="/bin/sh" Params="-c &quot;echo hello&quot;" />
        <Tool Name="fail" Path="/bin/sh" Params="-c &quot;echo broken &gt;&amp;2; exit 3&quot;" />
      </Tools>
    </Environment>
  </Environments>
  <Project Name="P" Env="E">
    <Task Name="greet" Caption="Greet" Tool="hello" />
    %s
  </Project>
</BuildSet>`

type fixture struct {
	loader *mocks.MockConfigLoader
	caches *mocks.MockCacheConnector
	app    *app.App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	f := &fixture{
		loader: mocks.NewMockConfigLoader(ctrl),
		caches: mocks.NewMockCacheConnector(ctrl),
		stdout: new(bytes.Buffer),
		stderr: new(bytes.Buffer),
	}
	f.app = app.New(
		f.loader,
		logger,
		process.NewRunner(nil),
		mocks.NewMockBlobHasher(ctrl),
		mocks.NewMockWorkerConnector(ctrl),
		f.caches,
		nil,
		telemetry.NewNoOpTracer(),
	).WithOutput(f.stdout, f.stderr)
	return f
}

func writeBuildSet(t *testing.T, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.xml")
	content := []byte(fmt.Sprintf(buildSet, extra))
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestApp_Dispatch(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load("openge.yaml").Return(&domain.Config{LocalCores: 2}, nil)

	err := f.app.Dispatch(context.Background(), app.DispatchOptions{
		ConfigPath:   "openge.yaml",
		BuildSetPath: writeBuildSet(t, ""),
	})
	require.NoError(t, err)

	assert.Equal(t, "[Greet] hello\n", f.stdout.String())
	assert.Contains(t, f.stderr.String(), "Dispatching 1 task(s)")
	assert.Contains(t, f.stderr.String(), "[Greet] Starting on local:")
	assert.Contains(t, f.stderr.String(), "Job success")
}

func TestApp_Dispatch_DiscoversConfig(t *testing.T) {
	f := newFixture(t)
	wd := t.TempDir()
	t.Chdir(wd)

	f.loader.EXPECT().Discover(gomock.Any()).Return("found.yaml")
	f.loader.EXPECT().Load("found.yaml").Return(&domain.Config{LocalCores: 1}, nil)

	err := f.app.Dispatch(context.Background(), app.DispatchOptions{BuildSetPath: writeBuildSet(t, "")})
	require.NoError(t, err)
}

func TestApp_Dispatch_BuildFailure(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(gomock.Any()).Return(&domain.Config{LocalCores: 1}, nil)

	err := f.app.Dispatch(context.Background(), app.DispatchOptions{
		ConfigPath:   "openge.yaml",
		BuildSetPath: writeBuildSet(t, `<Task Name="broken" Tool="fail" DependsOn="greet" />`),
	})
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)

	assert.Contains(t, f.stderr.String(), "[broken] broken")
	assert.Contains(t, f.stderr.String(), "[broken] ✗ failure")
	assert.Contains(t, f.stderr.String(), "Job failure")
}

func TestApp_Dispatch_ConfigError(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load("openge.yaml").Return(nil, errors.New("bad yaml"))

	err := f.app.Dispatch(context.Background(), app.DispatchOptions{
		ConfigPath:   "openge.yaml",
		BuildSetPath: writeBuildSet(t, ""),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestApp_Dispatch_MissingBuildSet(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(gomock.Any()).Return(&domain.Config{LocalCores: 1}, nil)

	err := f.app.Dispatch(context.Background(), app.DispatchOptions{
		ConfigPath:   "openge.yaml",
		BuildSetPath: filepath.Join(t.TempDir(), "missing.xml"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read build set")
}

func TestApp_CacheStatus(t *testing.T) {
	t.Run("running", func(t *testing.T) {
		f := newFixture(t)
		client := mocks.NewMockCacheClient(gomock.NewController(t))
		f.loader.EXPECT().Load(gomock.Any()).Return(&domain.Config{CacheDataDir: "/cfg"}, nil)
		f.caches.EXPECT().Dial("/override").Return(client, nil)
		client.EXPECT().Status(gomock.Any()).Return(&ports.DaemonStatus{
			Running: true,
			PID:     42,
			Stats:   domain.CacheStats{Hits: 7, Misses: 3},
		}, nil)
		client.EXPECT().Close().Return(nil)

		err := f.app.CacheStatus(context.Background(), app.CacheOptions{ConfigPath: "c", DataDir: "/override"})
		require.NoError(t, err)
		assert.Contains(t, f.stdout.String(), "running (pid 42)")
		assert.Contains(t, f.stdout.String(), "7/3")
	})

	t.Run("not running", func(t *testing.T) {
		f := newFixture(t)
		client := mocks.NewMockCacheClient(gomock.NewController(t))
		f.loader.EXPECT().Load(gomock.Any()).Return(&domain.Config{CacheDataDir: "/cfg"}, nil)
		f.caches.EXPECT().Dial("/cfg").Return(client, nil)
		client.EXPECT().Status(gomock.Any()).Return(nil, status.Error(codes.Unavailable, "no socket"))
		client.EXPECT().Close().Return(nil)

		err := f.app.CacheStatus(context.Background(), app.CacheOptions{ConfigPath: "c"})
		require.NoError(t, err)
		assert.Equal(t, "preprocessor cache is not running\n", f.stdout.String())
	})
}

func TestApp_StopCache(t *testing.T) {
	f := newFixture(t)
	client := mocks.NewMockCacheClient(gomock.NewController(t))
	f.loader.EXPECT().Load(gomock.Any()).Return(&domain.Config{CacheDataDir: "/cfg"}, nil)
	f.caches.EXPECT().Dial("/cfg").Return(client, nil)
	client.EXPECT().Shutdown(gomock.Any()).Return(nil)
	client.EXPECT().Close().Return(nil)

	require.NoError(t, f.app.StopCache(context.Background(), app.CacheOptions{ConfigPath: "c"}))
	assert.Equal(t, "preprocessor cache stopped\n", f.stdout.String())
}

func TestApp_ServeCache(t *testing.T) {
	f := newFixture(t)
	dataDir := t.TempDir()
	f.loader.EXPECT().Load(gomock.Any()).Return(&domain.Config{CacheIdleTimeout: domain.DefaultCacheIdleTimeout}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.app.ServeCache(ctx, app.CacheOptions{ConfigPath: "c", DataDir: dataDir})
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(domain.CacheSocketPath(dataDir))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
