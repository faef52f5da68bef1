// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"iter"

	"go.trai.ch/openge/internal/core/domain"
)

//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks

// ProcessRunner starts processes and streams their output.
type ProcessRunner interface {
	// Run starts the process described by spec. The sequence yields one event per
	// output line and ends with exactly one exit event, unless an error is yielded
	// because the process could not be started.
	Run(ctx context.Context, spec domain.ProcessSpec) iter.Seq2[domain.ProcessEvent, error]
}

// TaskExecutor executes task descriptors.
type TaskExecutor interface {
	// Execute runs the descriptor and streams its process events.
	Execute(ctx context.Context, desc domain.TaskDescriptor) iter.Seq2[domain.ProcessEvent, error]
}
