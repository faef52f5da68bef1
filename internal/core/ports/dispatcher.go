package ports

import (
	"context"

	"go.trai.ch/openge/internal/core/domain"
)

//go:generate mockgen -source=dispatcher.go -destination=mocks/mock_dispatcher.go -package=mocks

// JobEventSink receives the events of a running job. Calls are never concurrent.
// Returning an error cancels the job.
type JobEventSink func(domain.JobResponse) error

// JobDispatcher runs submitted jobs.
type JobDispatcher interface {
	// Submit parses the job and runs it, streaming its events to sink.
	// An invalid build set is reported before any event is emitted.
	Submit(ctx context.Context, job domain.JobSpec, sink JobEventSink) error
}
