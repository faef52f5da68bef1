// Package config provides the configuration loader for openge.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Discover walks from cwd up to the filesystem root and returns the first
// openge.yaml it finds. Without one it returns the path in cwd, which Load
// treats as an empty configuration.
func (l *Loader) Discover(cwd string) string {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}
	return filepath.Join(cwd, domain.ConfigFileName)
}

// Load reads the configuration at path and applies defaults.
func (l *Loader) Load(path string) (*domain.Config, error) {
	var file File

	// #nosec G304 -- path is chosen by the user
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if l.Logger != nil {
			l.Logger.Info("no " + domain.ConfigFileName + " found, using defaults")
		}
	case err != nil:
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	default:
		if parseErr := yaml.Unmarshal(data, &file); parseErr != nil {
			return nil, zerr.With(zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error()), "path", path)
		}
	}

	if err := validate(&file); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return resolve(&file), nil
}

func validate(file *File) error {
	if file.Local.Cores != nil && *file.Local.Cores < 0 {
		return zerr.With(domain.ErrInvalidConfig, "local.cores", *file.Local.Cores)
	}

	seen := make(map[string]bool, len(file.Workers))
	for i, w := range file.Workers {
		switch {
		case w.Name == "":
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "worker name is required"), "index", i)
		case seen[w.Name]:
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "duplicate worker name"), "worker", w.Name)
		case w.Address == "":
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "worker address is required"), "worker", w.Name)
		case w.Cores <= 0:
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "worker cores must be positive"), "worker", w.Name)
		}
		seen[w.Name] = true
	}

	if file.Worker.Cores < 0 {
		return zerr.With(domain.ErrInvalidConfig, "worker.cores", file.Worker.Cores)
	}
	if file.Worker.IdleTimeout < 0 || file.Cache.IdleTimeout < 0 || file.Cache.SpawnDelay < 0 {
		return zerr.Wrap(domain.ErrInvalidConfig, "durations must not be negative")
	}
	return nil
}

func resolve(file *File) *domain.Config {
	cfg := &domain.Config{
		LocalCores:        runtime.NumCPU(),
		DispatcherListen:  orDefault(file.Dispatcher.Listen, domain.DefaultDispatcherListen),
		DispatcherAddress: file.Dispatcher.Address,
		WorkerListen:      orDefault(file.Worker.Listen, domain.DefaultWorkerListen),
		WorkerCores:       file.Worker.Cores,
		WorkerIdleTimeout: orDefault(file.Worker.IdleTimeout, domain.DefaultWorkerIdleTimeout),
		WorkerDataDir:     orDefault(file.Worker.DataDir, domain.DefaultWorkerDataPath()),
		CacheIdleTimeout:  orDefault(file.Cache.IdleTimeout, domain.DefaultCacheIdleTimeout),
		CacheDataDir:      orDefault(file.Cache.DataDir, domain.DefaultCacheDataPath()),
		CacheSpawnDelay:   orDefault(file.Cache.SpawnDelay, domain.DefaultCacheSpawnDelay),
		UsePty:            file.Execution.Pty,
		TelemetryEnabled:  file.Telemetry.Enabled,
	}
	if file.Local.Cores != nil {
		cfg.LocalCores = *file.Local.Cores
	}
	if cfg.WorkerCores == 0 {
		cfg.WorkerCores = runtime.NumCPU()
	}

	for _, w := range file.Workers {
		cfg.Workers = append(cfg.Workers, domain.WorkerEndpoint{
			Name:    w.Name,
			Address: w.Address,
			Cores:   w.Cores,
		})
	}
	return cfg
}

func orDefault[T comparable](value, fallback T) T {
	var zero T
	if value == zero {
		return fallback
	}
	return value
}
