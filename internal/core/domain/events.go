package domain

import "time"

// ProcessEventKind identifies the shape of a ProcessEvent.
type ProcessEventKind uint8

const (
	// ProcessStdout is a single line written to standard output.
	ProcessStdout ProcessEventKind = iota + 1
	// ProcessStderr is a single line written to standard error.
	ProcessStderr
	// ProcessExit carries the exit code; it is always the last event.
	ProcessExit
	// ProcessOutputBlobs carries the blobs captured from a remote build directory.
	ProcessOutputBlobs
)

// ProcessEvent is one element of an executor's output stream.
type ProcessEvent struct {
	Kind        ProcessEventKind   `json:"kind"`
	Line        string             `json:"line,omitempty"`
	ExitCode    int                `json:"exitCode,omitempty"`
	OutputBlobs map[string]BlobRef `json:"outputBlobs,omitempty"`
}

// StdoutLine creates a standard output event.
func StdoutLine(line string) ProcessEvent {
	return ProcessEvent{Kind: ProcessStdout, Line: line}
}

// StderrLine creates a standard error event.
func StderrLine(line string) ProcessEvent {
	return ProcessEvent{Kind: ProcessStderr, Line: line}
}

// ExitCode creates an exit event.
func ExitCode(code int) ProcessEvent {
	return ProcessEvent{Kind: ProcessExit, ExitCode: code}
}

// TaskStatus is the terminal state of a task within a job.
type TaskStatus uint8

const (
	// TaskPending means the task has not reached a terminal state.
	TaskPending TaskStatus = iota
	// TaskSuccess means the task ran and exited with code 0.
	TaskSuccess
	// TaskFailure means the task ran and failed, or could not be started.
	TaskFailure
	// TaskSkipped means an upstream task failed and the task opted out of running.
	TaskSkipped
	// TaskCancelled means the job was cancelled before the task finished.
	TaskCancelled
)

// String returns the lower case name of the status.
func (s TaskStatus) String() string {
	switch s {
	case TaskSuccess:
		return "success"
	case TaskFailure:
		return "failure"
	case TaskSkipped:
		return "skipped"
	case TaskCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// JobStatus is the terminal state of a job.
type JobStatus uint8

const (
	// JobSuccess means every task succeeded.
	JobSuccess JobStatus = iota + 1
	// JobFailure means at least one task did not succeed.
	JobFailure
	// JobCancelled means the job was cancelled.
	JobCancelled
)

// String returns the lower case name of the status.
func (s JobStatus) String() string {
	switch s {
	case JobSuccess:
		return "success"
	case JobFailure:
		return "failure"
	case JobCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// JobResponseKind identifies the shape of a JobResponse.
type JobResponseKind uint8

const (
	// JobParsedEvent is emitted once after the build set was parsed.
	JobParsedEvent JobResponseKind = iota + 1
	// TaskStartedEvent is emitted when a task is about to run or be skipped.
	TaskStartedEvent
	// TaskOutputEvent carries a single output line of a running task.
	TaskOutputEvent
	// TaskCompletedEvent is emitted when a task reaches a terminal state.
	TaskCompletedEvent
	// JobCompleteEvent is emitted last.
	JobCompleteEvent
)

// JobResponse is one event in the stream produced for a submitted job.
type JobResponse struct {
	Kind JobResponseKind

	// JobParsed
	TotalTasks int

	// Task events
	ID          string
	DisplayName string
	WorkerName  string
	CoreNumber  int
	StdoutLine  string
	StderrLine  string
	IsStderr    bool
	Status      TaskStatus
	ExitCode    int
	Message     string

	// JobComplete
	JobStatus JobStatus

	Duration time.Duration
}

// JobParsed creates a JobParsed event.
func JobParsed(total int) JobResponse {
	return JobResponse{Kind: JobParsedEvent, TotalTasks: total}
}

// TaskStarted creates a TaskStarted event.
func TaskStarted(id, displayName, workerName string, coreNumber int) JobResponse {
	return JobResponse{
		Kind:        TaskStartedEvent,
		ID:          id,
		DisplayName: displayName,
		WorkerName:  workerName,
		CoreNumber:  coreNumber,
	}
}

// TaskOutput creates a TaskOutput event for a line.
func TaskOutput(id, line string, stderr bool) JobResponse {
	r := JobResponse{Kind: TaskOutputEvent, ID: id, IsStderr: stderr}
	if stderr {
		r.StderrLine = line
	} else {
		r.StdoutLine = line
	}
	return r
}

// TaskCompleted creates a TaskCompleted event.
func TaskCompleted(id string, status TaskStatus, exitCode int, message string, d time.Duration) JobResponse {
	return JobResponse{
		Kind:     TaskCompletedEvent,
		ID:       id,
		Status:   status,
		ExitCode: exitCode,
		Message:  message,
		Duration: d,
	}
}

// JobComplete creates a JobComplete event.
func JobComplete(status JobStatus, d time.Duration) JobResponse {
	return JobResponse{Kind: JobCompleteEvent, JobStatus: status, Duration: d}
}
