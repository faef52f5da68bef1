// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/openge/internal/adapters/blobs"
	_ "go.trai.ch/openge/internal/adapters/config"
	_ "go.trai.ch/openge/internal/adapters/daemon"
	_ "go.trai.ch/openge/internal/adapters/logger"
	_ "go.trai.ch/openge/internal/adapters/process"
	_ "go.trai.ch/openge/internal/adapters/telemetry"
	_ "go.trai.ch/openge/internal/adapters/watcher"
	_ "go.trai.ch/openge/internal/adapters/worker"
	// Register app nodes.
	_ "go.trai.ch/openge/internal/app"
)
