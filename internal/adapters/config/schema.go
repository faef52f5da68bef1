package config

import "time"

// File represents the structure of the openge.yaml configuration file.
type File struct {
	Local      LocalDTO      `yaml:"local"`
	Workers    []WorkerDTO   `yaml:"workers"`
	Dispatcher DispatcherDTO `yaml:"dispatcher"`
	Worker     WorkerMode    `yaml:"worker"`
	Cache      CacheDTO      `yaml:"cache"`
	Execution  ExecutionDTO  `yaml:"execution"`
	Telemetry  TelemetryDTO  `yaml:"telemetry"`
}

// LocalDTO configures the local execution slot.
type LocalDTO struct {
	// Cores is the number of local cores. Nil means one per CPU; zero disables local execution.
	Cores *int `yaml:"cores"`
}

// WorkerDTO is a remote worker the dispatcher may schedule on.
type WorkerDTO struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Cores   int    `yaml:"cores"`
}

// DispatcherDTO configures the dispatcher service.
type DispatcherDTO struct {
	Listen string `yaml:"listen"`
	// Address of a running dispatcher. When set, jobs are submitted to it
	// instead of being executed in process.
	Address string `yaml:"address"`
}

// WorkerMode configures this machine when it runs as a worker.
type WorkerMode struct {
	Listen      string        `yaml:"listen"`
	Cores       int           `yaml:"cores"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	DataDir     string        `yaml:"data_dir"`
}

// CacheDTO configures the preprocessor cache daemon.
type CacheDTO struct {
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	DataDir     string        `yaml:"data_dir"`
	SpawnDelay  time.Duration `yaml:"spawn_delay"`
}

// ExecutionDTO configures process execution.
type ExecutionDTO struct {
	Pty bool `yaml:"pty"`
}

// TelemetryDTO configures tracing.
type TelemetryDTO struct {
	Enabled bool `yaml:"enabled"`
}
