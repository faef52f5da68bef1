package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/openge/cmd/openge/commands"
	"go.trai.ch/openge/internal/app"
	"go.trai.ch/openge/internal/build"
)

type mockApp struct {
	dispatch   *app.DispatchOptions
	dispatcher *app.ServeOptions
	worker     *app.ServeOptions
	cache      *app.CacheOptions
	cacheCmd   string
	jsonLogs   bool
	err        error
}

func (m *mockApp) Dispatch(_ context.Context, opts app.DispatchOptions) error {
	m.dispatch = &opts
	return m.err
}

func (m *mockApp) ServeDispatcher(_ context.Context, opts app.ServeOptions) error {
	m.dispatcher = &opts
	return m.err
}

func (m *mockApp) ServeWorker(_ context.Context, opts app.ServeOptions) error {
	m.worker = &opts
	return m.err
}

func (m *mockApp) ServeCache(_ context.Context, opts app.CacheOptions) error {
	m.cache, m.cacheCmd = &opts, "serve"
	return m.err
}

func (m *mockApp) CacheStatus(_ context.Context, opts app.CacheOptions) error {
	m.cache, m.cacheCmd = &opts, "status"
	return m.err
}

func (m *mockApp) StopCache(_ context.Context, opts app.CacheOptions) error {
	m.cache, m.cacheCmd = &opts, "stop"
	return m.err
}

func (m *mockApp) SetJSONLogs(enable bool) {
	m.jsonLogs = enable
}

func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(m)
	cli.SetArgs(args)
	out := new(bytes.Buffer)
	cli.SetOutput(out, out)
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestCommands_Dispatch(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "-c", "ci.yaml", "dispatch", "job.xml", "--dispatcher", "sched:7601", "--node", "laptop")
		require.NoError(t, err)
		require.NotNil(t, m.dispatch)
		assert.Equal(t, app.DispatchOptions{
			ConfigPath:        "ci.yaml",
			BuildSetPath:      "job.xml",
			DispatcherAddress: "sched:7601",
			BuildNodeName:     "laptop",
		}, *m.dispatch)
		assert.False(t, m.jsonLogs)
	})

	t.Run("requires a build set", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "dispatch")
		require.Error(t, err)
		assert.Nil(t, m.dispatch)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		m := &mockApp{err: errors.New("simulated error")}
		_, err := execute(t, m, "dispatch", "job.xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Serve(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "dispatcher", "serve", "--listen", ":9000")
	require.NoError(t, err)
	assert.Equal(t, &app.ServeOptions{Listen: ":9000"}, m.dispatcher)

	_, err = execute(t, m, "--log-json", "worker", "serve", "-l", ":9100", "--name", "b7")
	require.NoError(t, err)
	assert.Equal(t, &app.ServeOptions{Listen: ":9100", Name: "b7"}, m.worker)
	assert.True(t, m.jsonLogs)
}

func TestCommands_Cache(t *testing.T) {
	for _, sub := range []string{"serve", "status", "stop"} {
		t.Run(sub, func(t *testing.T) {
			m := &mockApp{}
			_, err := execute(t, m, "--config", "x.yaml", "cache", sub, "--data-dir", "/d")
			require.NoError(t, err)
			assert.Equal(t, sub, m.cacheCmd)
			assert.Equal(t, &app.CacheOptions{ConfigPath: "x.yaml", DataDir: "/d"}, m.cache)
		})
	}
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Equal(t, "openge version "+build.Version+" (commit: "+build.Commit+", date: "+build.Date+")\n", out)

	out, err = execute(t, &mockApp{}, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "openge version "+build.Version)
}

func TestCommands_Help(t *testing.T) {
	out, err := execute(t, &mockApp{}, "--help")
	require.NoError(t, err)
	for _, cmd := range []string{"dispatch", "dispatcher", "worker", "cache", "version"} {
		assert.Contains(t, out, cmd)
	}
}
