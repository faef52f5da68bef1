package ports

import "go.trai.ch/openge/internal/core/domain"

//go:generate mockgen -source=config.go -destination=mocks/mock_config.go -package=mocks

// ConfigLoader defines the interface for loading the configuration.
type ConfigLoader interface {
	// Load reads the configuration at path. A missing file yields the defaults.
	Load(path string) (*domain.Config, error)

	// Discover returns the configuration path for the given working directory.
	Discover(cwd string) string
}
