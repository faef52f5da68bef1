package dispatcher

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// notStartedExitCode is reported for tasks whose process never ran.
const notStartedExitCode = -1

// Job is a parsed build set together with the environment it runs in.
type Job struct {
	ID               string
	Graph            *domain.Graph
	WorkingDirectory string
	BuildNodeName    string
	Environment      map[string]string
}

// GraphExecutor runs the tasks of a job graph on cores reserved from the worker pool.
type GraphExecutor struct {
	pool     ports.WorkerPool
	executor ports.TaskExecutor
	hasher   ports.BlobHasher
	factory  *descriptorFactory
	tracer   ports.Tracer
	logger   ports.Logger
}

// NewGraphExecutor creates a GraphExecutor. A nil cache keeps every task on
// the local slot, because remote compile steps need their includes resolved.
func NewGraphExecutor(
	pool ports.WorkerPool,
	executor ports.TaskExecutor,
	hasher ports.BlobHasher,
	cache ports.PreprocessorCache,
	tracer ports.Tracer,
	logger ports.Logger,
) *GraphExecutor {
	return &GraphExecutor{
		pool:     pool,
		executor: executor,
		hasher:   hasher,
		factory:  newDescriptorFactory(cache),
		tracer:   tracer,
		logger:   logger,
	}
}

// Execute runs every task of job, streaming events to sink. Each task starts
// once all its dependencies reached a terminal state; the only limit on
// parallelism is the number of cores the pool hands out.
//
// It returns nil when every task succeeded, ErrBuildExecutionFailed when some
// task did not, the context error when the job was cancelled and the sink
// error when the sink rejected an event.
func (e *GraphExecutor) Execute(ctx context.Context, job *Job, sink ports.JobEventSink) error {
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "job",
		ports.WithAttribute("job.id", job.ID),
		ports.WithAttribute("job.tasks", job.Graph.Len()),
	)
	defer span.End()

	planned := make([]string, 0, job.Graph.Len())
	for task := range job.Graph.Walk() {
		planned = append(planned, task.Name.String())
	}
	e.tracer.EmitPlan(ctx, planned)

	run := e.newRun(ctx, job, sink)
	defer run.cancel(nil)

	run.emit(domain.JobParsed(job.Graph.Len()))
	run.loop()

	status, failed := run.outcome()
	run.emit(domain.JobComplete(status, time.Since(start)))

	span.SetAttribute("job.status", status.String())
	if err := run.sinkError(); err != nil {
		span.RecordError(err)
		return err
	}
	switch status {
	case domain.JobCancelled:
		return ctx.Err()
	case domain.JobFailure:
		err := zerr.With(domain.ErrBuildExecutionFailed, "failed_tasks", failed)
		span.RecordError(err)
		return err
	default:
		return nil
	}
}

type taskResult struct {
	name   domain.InternedString
	status domain.TaskStatus
}

// jobRun is the state of a single Execute call. Scheduling state is only
// touched by the loop goroutine; task goroutines report through results.
type jobRun struct {
	e          *GraphExecutor
	job        *Job
	ctx        context.Context
	cancel     context.CancelCauseFunc
	startTicks int64

	inDegree map[domain.InternedString]int
	statuses map[domain.InternedString]domain.TaskStatus
	ready    []*domain.Task
	active   int
	results  chan taskResult

	sinkMu  sync.Mutex
	sink    ports.JobEventSink
	sinkErr error

	toolsMu sync.Mutex
	tools   map[string]*domain.ToolManifest
	hashing singleflight.Group
}

func (e *GraphExecutor) newRun(ctx context.Context, job *Job, sink ports.JobEventSink) *jobRun {
	ctx, cancel := context.WithCancelCause(ctx)
	n := job.Graph.Len()
	run := &jobRun{
		e:          e,
		job:        job,
		ctx:        ctx,
		cancel:     cancel,
		startTicks: time.Now().UnixNano(),
		inDegree:   make(map[domain.InternedString]int, n),
		statuses:   make(map[domain.InternedString]domain.TaskStatus, n),
		results:    make(chan taskResult, n),
		sink:       sink,
		tools:      make(map[string]*domain.ToolManifest),
	}
	for task := range job.Graph.Walk() {
		run.inDegree[task.Name] = len(task.Dependencies)
		run.statuses[task.Name] = domain.TaskPending
		if len(task.Dependencies) == 0 {
			run.ready = append(run.ready, task)
		}
	}
	return run
}

func (r *jobRun) loop() {
	for {
		r.schedule()
		if r.active == 0 {
			return
		}
		r.handleResult(<-r.results)
	}
}

// schedule starts every ready task. Tasks that opted out after a failed
// dependency are skipped in place, which can make further tasks ready.
func (r *jobRun) schedule() {
	for len(r.ready) > 0 && r.ctx.Err() == nil {
		task := r.ready[0]
		r.ready = r.ready[1:]

		if task.SkipIfProjectFailed && r.anyDependencyFailed(task) {
			id := task.Name.String()
			r.emit(domain.TaskStarted(id, task.DisplayName(), "", 0))
			r.emit(domain.TaskCompleted(id, domain.TaskSkipped, notStartedExitCode, "a dependency did not succeed", 0))
			r.active++
			r.handleResult(taskResult{name: task.Name, status: domain.TaskSkipped})
			continue
		}

		r.active++
		go func(t *domain.Task) {
			r.results <- taskResult{name: t.Name, status: r.runTask(t)}
		}(task)
	}
}

func (r *jobRun) anyDependencyFailed(task *domain.Task) bool {
	for _, dep := range task.Dependencies {
		if r.statuses[dep] != domain.TaskSuccess {
			return true
		}
	}
	return false
}

func (r *jobRun) handleResult(res taskResult) {
	r.active--
	r.statuses[res.name] = res.status
	for _, dependent := range r.job.Graph.Dependents(res.name) {
		r.inDegree[dependent]--
		if r.inDegree[dependent] == 0 {
			task, _ := r.job.Graph.Task(dependent)
			r.ready = append(r.ready, task)
		}
	}
}

// outcome returns the job status and the number of tasks that did not succeed.
func (r *jobRun) outcome() (domain.JobStatus, int) {
	failed := 0
	for _, status := range r.statuses {
		if status != domain.TaskSuccess {
			failed++
		}
	}
	switch {
	case r.sinkError() != nil:
		return domain.JobFailure, failed
	case r.ctx.Err() != nil:
		return domain.JobCancelled, failed
	case failed > 0:
		return domain.JobFailure, failed
	default:
		return domain.JobSuccess, 0
	}
}

// emit forwards ev to the sink. After the sink failed once the job is
// cancelled and further events are dropped.
func (r *jobRun) emit(ev domain.JobResponse) {
	r.sinkMu.Lock()
	defer r.sinkMu.Unlock()
	if r.sinkErr != nil {
		return
	}
	if err := r.sink(ev); err != nil {
		r.sinkErr = zerr.Wrap(err, "failed to deliver job event")
		r.cancel(r.sinkErr)
	}
}

func (r *jobRun) sinkError() error {
	r.sinkMu.Lock()
	defer r.sinkMu.Unlock()
	return r.sinkErr
}

// runTask reserves a core for task, runs it and reports its terminal status.
// A compile whose includes cannot be resolved moves to the local slot, where
// it runs in place and needs no input list.
func (r *jobRun) runTask(task *domain.Task) domain.TaskStatus {
	start := time.Now()
	id := task.Name.String()

	ctx, span := r.e.tracer.Start(r.ctx, id, ports.WithAttribute("task.display_name", task.DisplayName()))
	defer span.End()

	inv := r.e.factory.prepare(task, r.job)
	core, err := r.e.pool.ReserveCore(ctx, !inv.remotable())
	if err != nil {
		r.emit(domain.TaskStarted(id, task.DisplayName(), "", 0))
		return r.finish(span, id, start, notStartedExitCode, zerr.Wrap(err, "failed to reserve a core"))
	}

	desc, err := r.e.factory.describe(ctx, inv, core.IsLocal(), r.startTicks)
	if err != nil && !core.IsLocal() && domain.IsResolutionFailure(err) {
		r.e.logger.Warn(fmt.Sprintf("task %s runs locally, its includes could not be resolved: %s", id, err))
		core.Release()
		if core, err = r.e.pool.ReserveCore(ctx, true); err != nil {
			r.emit(domain.TaskStarted(id, task.DisplayName(), "", 0))
			return r.finish(span, id, start, notStartedExitCode, zerr.Wrap(err, "failed to reserve a local core"))
		}
		desc, err = r.e.factory.describe(ctx, inv, true, r.startTicks)
	}
	defer core.Release()

	span.SetAttribute("task.worker", core.WorkerName())
	span.SetAttribute("task.core", core.CoreNumber())
	r.emit(domain.TaskStarted(id, task.DisplayName(), core.WorkerName(), core.CoreNumber()))
	if err != nil {
		return r.finish(span, id, start, notStartedExitCode, err)
	}
	span.SetAttribute("task.descriptor", desc.Kind.String())

	var events iter.Seq2[domain.ProcessEvent, error]
	remote := core.Remote()
	if remote != nil && desc.Kind == domain.DescriptorRemote {
		if err := r.syncRemote(ctx, remote, desc.Remote); err != nil {
			return r.finish(span, id, start, notStartedExitCode, err)
		}
		events = remote.ExecuteTask(ctx, desc)
	} else {
		events = r.e.executor.Execute(ctx, desc)
	}

	exitCode, err := r.stream(ctx, id, remote, events)
	return r.finish(span, id, start, exitCode, err)
}

// stream forwards process output as task events and returns the exit code.
func (r *jobRun) stream(
	ctx context.Context,
	id string,
	remote ports.RemoteCore,
	events iter.Seq2[domain.ProcessEvent, error],
) (int, error) {
	for ev, err := range events {
		if err != nil {
			return notStartedExitCode, err
		}
		switch ev.Kind {
		case domain.ProcessStdout:
			r.emit(domain.TaskOutput(id, ev.Line, false))
		case domain.ProcessStderr:
			r.emit(domain.TaskOutput(id, ev.Line, true))
		case domain.ProcessOutputBlobs:
			if remote == nil {
				continue
			}
			if err := remote.ReceiveOutputBlobs(ctx, ev.OutputBlobs); err != nil {
				return notStartedExitCode, zerr.Wrap(err, "failed to receive outputs")
			}
		case domain.ProcessExit:
			return ev.ExitCode, nil
		}
	}
	return notStartedExitCode, domain.ErrWorkerStreamClosed
}

// syncRemote makes the tool and the inputs of desc available on the worker
// and records how the worker refers to them.
func (r *jobRun) syncRemote(ctx context.Context, remote ports.RemoteCore, desc *domain.RemoteTaskDescriptor) error {
	manifest, err := r.toolManifest(ctx, desc.ToolLocalAbsolutePath)
	if err != nil {
		return err
	}
	info, err := remote.SyncTool(ctx, manifest)
	if err != nil {
		return zerr.Wrap(err, "failed to synchronise tool")
	}
	desc.ToolExecutionInfo = info

	inputs, err := r.e.hasher.HashInputs(ctx, desc.InputAbsolutePaths)
	if err != nil {
		return zerr.Wrap(err, "failed to hash inputs")
	}
	if err := remote.SyncInputBlobs(ctx, inputs); err != nil {
		return zerr.Wrap(err, "failed to synchronise inputs")
	}
	desc.InputsByBlob = inputs.PathsToBlobs
	return nil
}

// toolManifest hashes each tool once per job, however many tasks use it.
func (r *jobRun) toolManifest(ctx context.Context, path string) (*domain.ToolManifest, error) {
	r.toolsMu.Lock()
	manifest, ok := r.tools[path]
	r.toolsMu.Unlock()
	if ok {
		return manifest, nil
	}

	v, err, _ := r.hashing.Do(path, func() (any, error) {
		m, err := r.e.hasher.HashTool(ctx, path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to hash tool"), "tool", path)
		}
		r.toolsMu.Lock()
		r.tools[path] = m
		r.toolsMu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ToolManifest), nil
}

// finish emits TaskCompleted and returns the status it carried.
func (r *jobRun) finish(span ports.Span, id string, start time.Time, exitCode int, err error) domain.TaskStatus {
	status, message := domain.TaskSuccess, ""
	switch {
	case r.ctx.Err() != nil:
		status, message = domain.TaskCancelled, "job cancelled"
	case err != nil:
		status, message = domain.TaskFailure, err.Error()
		span.RecordError(err)
		r.e.logger.Warn(fmt.Sprintf("task %s failed: %s", id, message))
	case exitCode != 0:
		status, message = domain.TaskFailure, fmt.Sprintf("exited with code %d", exitCode)
		span.RecordError(zerr.With(domain.ErrCommandFailed, "exit_code", exitCode))
	}

	span.SetAttribute("task.status", status.String())
	r.emit(domain.TaskCompleted(id, status, exitCode, message, time.Since(start)))
	return status
}
