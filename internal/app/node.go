package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/openge/internal/adapters/blobs"     //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/daemon"    //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/process"   //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/adapters/worker"    //nolint:depguard // Wired in app layer
	"go.trai.ch/openge/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			process.NodeID,
			blobs.HasherNodeID,
			worker.NodeID,
			daemon.NodeID,
			watcher.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	runner, err := graft.Dep[ports.ProcessRunner](ctx)
	if err != nil {
		return nil, err
	}
	hasher, err := graft.Dep[ports.BlobHasher](ctx)
	if err != nil {
		return nil, err
	}
	workers, err := graft.Dep[ports.WorkerConnector](ctx)
	if err != nil {
		return nil, err
	}
	caches, err := graft.Dep[ports.CacheConnector](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	// Without a watcher, workers added to the configuration are only picked up
	// by the next job.
	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		log.Warn("configuration watching is unavailable: " + err.Error())
		w = nil
	}

	return New(loader, log, runner, hasher, workers, caches, w, tracer), nil
}
