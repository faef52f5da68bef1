package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"time"

	"go.trai.ch/openge/internal/adapters/blobs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/daemon"       //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/executor"     //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/preprocessor" //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/process"      //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/reservation"  //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/worker"       //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/zerr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServeWorker runs the worker service until ctx ends.
func (a *App) ServeWorker(ctx context.Context, opts ServeOptions) error {
	cfg, _, err := a.loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	reservations, err := reservation.NewManager(filepath.Join(cfg.WorkerDataDir, domain.ReservationsDirName))
	if err != nil {
		return err
	}
	store, err := blobs.NewStore(filepath.Join(cfg.WorkerDataDir, domain.BlobsDirName))
	if err != nil {
		return err
	}
	tools, err := blobs.NewToolManager(cfg.WorkerDataDir)
	if err != nil {
		return err
	}

	// Workers mirror the output of the tasks they run into their own log.
	runner := process.NewRunner(a.logger)
	remote := executor.NewRemote(reservations, tools, store, runner, a.logger)
	exec := executor.NewExecutor(runner, remote, cfg.UsePty)
	srv := worker.NewServer(cmp.Or(opts.Name, hostname()), cfg.WorkerCores, cfg.WorkerIdleTimeout, tools, store, exec, a.logger)

	address := cmp.Or(opts.Listen, cfg.WorkerListen)
	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen"), "address", address)
	}
	return srv.Serve(ctx, lis)
}

// CacheOptions configuration for the cache daemon commands.
type CacheOptions struct {
	ConfigPath string
	// DataDir overrides the configured cache data directory.
	DataDir string
}

// ServeCache runs the preprocessor cache daemon in the foreground until ctx
// ends, it is shut down or it stays idle for the configured timeout.
func (a *App) ServeCache(ctx context.Context, opts CacheOptions) error {
	cfg, _, err := a.loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	dataDir := cmp.Or(opts.DataDir, cfg.CacheDataDir)

	cache := preprocessor.NewCache(dataDir, a.logger)
	srv := daemon.NewServer(daemon.NewLifecycle(cfg.CacheIdleTimeout), cache, a.logger, dataDir)
	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// CacheStatus prints the state of the preprocessor cache daemon.
func (a *App) CacheStatus(ctx context.Context, opts CacheOptions) error {
	cfg, _, err := a.loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	client, err := a.caches.Dial(cmp.Or(opts.DataDir, cfg.CacheDataDir))
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	st, err := client.Status(ctx)
	if status.Code(err) == codes.Unavailable {
		_, _ = fmt.Fprintln(a.stdout, "preprocessor cache is not running")
		return nil
	}
	if err != nil {
		return zerr.Wrap(err, "failed to query the preprocessor cache")
	}

	_, _ = fmt.Fprintf(a.stdout, "preprocessor cache is running (pid %d)\n", st.PID)
	_, _ = fmt.Fprintf(a.stdout, "  uptime:        %v\n", st.Uptime.Round(time.Second))
	_, _ = fmt.Fprintf(a.stdout, "  last activity: %s\n", st.LastActivity.Format(time.RFC3339))
	_, _ = fmt.Fprintf(a.stdout, "  idle shutdown: %v\n", st.IdleRemaining.Round(time.Second))
	_, _ = fmt.Fprintf(a.stdout, "  hits/misses:   %d/%d\n", st.Stats.Hits, st.Stats.Misses)
	return nil
}

// StopCache asks a running preprocessor cache daemon to shut down.
func (a *App) StopCache(ctx context.Context, opts CacheOptions) error {
	cfg, _, err := a.loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	client, err := a.caches.Dial(cmp.Or(opts.DataDir, cfg.CacheDataDir))
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	err = client.Shutdown(ctx)
	if status.Code(err) == codes.Unavailable {
		_, _ = fmt.Fprintln(a.stdout, "preprocessor cache is not running")
		return nil
	}
	if err != nil {
		return zerr.Wrap(err, "failed to stop the preprocessor cache")
	}
	_, _ = fmt.Fprintln(a.stdout, "preprocessor cache stopped")
	return nil
}
