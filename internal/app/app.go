// Package app implements the application layer for openge.
package app

import (
	"cmp"
	"context"
	"io"
	"net"
	"os"
	"strings"

	"go.trai.ch/openge/internal/adapters/executor"  //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/linear"    //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/openge/internal/engine/dispatcher"
	"go.trai.ch/openge/internal/engine/workerpool"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	runner       ports.ProcessRunner
	hasher       ports.BlobHasher
	workers      ports.WorkerConnector
	caches       ports.CacheConnector
	watcher      ports.Watcher
	tracer       ports.Tracer

	stdout io.Writer
	stderr io.Writer
}

// New creates a new App instance. A nil watcher disables picking up workers
// added to the configuration while a job runs.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	runner ports.ProcessRunner,
	hasher ports.BlobHasher,
	workers ports.WorkerConnector,
	caches ports.CacheConnector,
	watcher ports.Watcher,
	tracer ports.Tracer,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		runner:       runner,
		hasher:       hasher,
		workers:      workers,
		caches:       caches,
		watcher:      watcher,
		tracer:       tracer,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput redirects what the App prints for the user.
// This is primarily used for testing.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// SetJSONLogs switches the logger to JSON records when it supports them.
func (a *App) SetJSONLogs(enable bool) {
	if l, ok := a.logger.(interface{ SetJSON(enable bool) }); ok {
		l.SetJSON(enable)
	}
}

// DispatchOptions configuration for the Dispatch method.
type DispatchOptions struct {
	// ConfigPath is the openge.yaml to use. Empty discovers it from the working directory.
	ConfigPath string
	// BuildSetPath is the build set XML file describing the job.
	BuildSetPath string
	// DispatcherAddress overrides the configured dispatcher. Empty uses the configuration.
	DispatcherAddress string
	// BuildNodeName identifies the submitting machine. Empty uses the host name.
	BuildNodeName string
}

// Dispatch submits a build set and renders its events until the job completes.
// Without a dispatcher address the job runs in process.
func (a *App) Dispatch(ctx context.Context, opts DispatchOptions) error {
	cfg, configPath, err := a.loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	//nolint:gosec // G304: the build set is chosen by the user
	data, err := os.ReadFile(opts.BuildSetPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read build set"), "path", opts.BuildSetPath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return zerr.Wrap(err, "failed to determine working directory")
	}

	spec := domain.JobSpec{
		JobXML:           string(data),
		WorkingDirectory: wd,
		BuildNodeName:    cmp.Or(opts.BuildNodeName, hostname()),
		Environment:      environment(),
	}

	var d ports.JobDispatcher
	if address := cmp.Or(opts.DispatcherAddress, cfg.DispatcherAddress); address != "" {
		client, err := dispatcher.Dial(address)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		d = client
	} else {
		shutdown := a.setupTelemetry(cfg)
		defer shutdown()

		local, cleanup := a.newLocalDispatcher(ctx, cfg, configPath)
		defer cleanup()
		d = local
	}

	return d.Submit(ctx, spec, linear.NewRenderer(a.stdout, a.stderr).Handle)
}

// ServeOptions configuration for the long running services.
type ServeOptions struct {
	ConfigPath string
	// Listen overrides the configured listen address.
	Listen string
	// Name overrides the worker name, which defaults to the host name.
	Name string
}

// ServeDispatcher runs the dispatcher service until ctx ends.
func (a *App) ServeDispatcher(ctx context.Context, opts ServeOptions) error {
	cfg, configPath, err := a.loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	shutdown := a.setupTelemetry(cfg)
	defer shutdown()

	d, cleanup := a.newLocalDispatcher(ctx, cfg, configPath)
	defer cleanup()

	address := cmp.Or(opts.Listen, cfg.DispatcherListen)
	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen"), "address", address)
	}
	return dispatcher.NewServer(d, a.logger).Serve(ctx, lis)
}

// newLocalDispatcher wires a dispatcher that runs jobs on the local slot and
// the configured workers. The returned function releases what it set up.
func (a *App) newLocalDispatcher(ctx context.Context, cfg *domain.Config, configPath string) (*dispatcher.Dispatcher, func()) {
	pool := workerpool.New(cfg.LocalCores, a.logger)
	registry := newWorkerRegistry(pool, a.workers, a.logger)
	registry.Apply(ctx, cfg.Workers)
	stopWatching := a.watchWorkers(ctx, configPath, registry)

	cache := newLazyCache(a.caches, cfg.CacheDataDir, cfg.CacheSpawnDelay)
	exec := executor.NewExecutor(a.runner, nil, cfg.UsePty)
	graph := dispatcher.NewGraphExecutor(pool, exec, a.hasher, cache, a.tracer, a.logger)

	return dispatcher.New(graph, a.logger), func() {
		stopWatching()
		_ = cache.Close()
		_ = pool.Close()
	}
}

// loadConfig loads the configuration at path, discovering it when path is empty.
func (a *App) loadConfig(path string) (*domain.Config, string, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", zerr.Wrap(err, "failed to determine working directory")
		}
		path = a.configLoader.Discover(wd)
	}
	cfg, err := a.configLoader.Load(path)
	if err != nil {
		return nil, "", zerr.Wrap(err, "failed to load configuration")
	}
	return cfg, path, nil
}

// setupTelemetry installs the tracing provider when telemetry is enabled.
func (a *App) setupTelemetry(cfg *domain.Config) func() {
	if !cfg.TelemetryEnabled {
		return func() {}
	}
	shutdown := telemetry.Setup(a.logger)
	return func() {
		_ = shutdown(context.Background())
	}
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}
	return name
}

// environment returns the variables of this process as a map.
func environment() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if name, value, ok := strings.Cut(kv, "="); ok && name != "" {
			env[name] = value
		}
	}
	return env
}
