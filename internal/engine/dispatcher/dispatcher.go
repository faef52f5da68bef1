package dispatcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
)

// Dispatcher implements ports.JobDispatcher in process.
type Dispatcher struct {
	executor *GraphExecutor
	logger   ports.Logger
}

// New creates a Dispatcher that runs jobs on executor.
func New(executor *GraphExecutor, logger ports.Logger) *Dispatcher {
	return &Dispatcher{executor: executor, logger: logger}
}

// Submit implements ports.JobDispatcher.
func (d *Dispatcher) Submit(ctx context.Context, spec domain.JobSpec, sink ports.JobEventSink) error {
	set, err := ParseBuildSet(strings.NewReader(spec.JobXML))
	if err != nil {
		return err
	}

	job := &Job{
		ID:               uuid.NewString(),
		Graph:            set.Graph,
		WorkingDirectory: spec.WorkingDirectory,
		BuildNodeName:    spec.BuildNodeName,
		Environment:      spec.Environment,
	}

	from := spec.BuildNodeName
	if from == "" {
		from = "unknown node"
	}
	d.logger.Info(fmt.Sprintf("job %s: %d tasks submitted by %s", job.ID, set.Graph.Len(), from))

	return d.executor.Execute(ctx, job, sink)
}
