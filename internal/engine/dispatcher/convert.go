package dispatcher

import (
	"time"

	opengev1 "go.trai.ch/openge/api/openge/v1"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/zerr"
)

// toWire converts a job event into its wire form.
func toWire(ev domain.JobResponse) *opengev1.JobResponse {
	switch ev.Kind {
	case domain.JobParsedEvent:
		return &opengev1.JobResponse{JobParsed: &opengev1.JobParsedResponse{
			TotalTasks: int32(ev.TotalTasks), //nolint:gosec // task counts fit
		}}
	case domain.TaskStartedEvent:
		return &opengev1.JobResponse{TaskStarted: &opengev1.TaskStartedResponse{
			ID:          ev.ID,
			DisplayName: ev.DisplayName,
			WorkerName:  ev.WorkerName,
			CoreNumber:  int32(ev.CoreNumber), //nolint:gosec // bounded by the core count
		}}
	case domain.TaskOutputEvent:
		return &opengev1.JobResponse{TaskOutput: &opengev1.TaskOutputResponse{
			ID:         ev.ID,
			StdoutLine: ev.StdoutLine,
			StderrLine: ev.StderrLine,
			IsStderr:   ev.IsStderr,
		}}
	case domain.TaskCompletedEvent:
		return &opengev1.JobResponse{TaskCompleted: &opengev1.TaskCompletedResponse{
			ID:             ev.ID,
			Status:         ev.Status.String(),
			ExitCode:       int32(ev.ExitCode), //nolint:gosec // process exit codes fit
			Message:        ev.Message,
			DurationMillis: ev.Duration.Milliseconds(),
		}}
	case domain.JobCompleteEvent:
		return &opengev1.JobResponse{JobComplete: &opengev1.JobCompleteResponse{
			Status:         ev.JobStatus.String(),
			DurationMillis: ev.Duration.Milliseconds(),
		}}
	default:
		return &opengev1.JobResponse{}
	}
}

// fromWire converts a wire event back into a job event.
func fromWire(resp *opengev1.JobResponse) (domain.JobResponse, error) {
	switch {
	case resp.JobParsed != nil:
		return domain.JobParsed(int(resp.JobParsed.TotalTasks)), nil
	case resp.TaskStarted != nil:
		m := resp.TaskStarted
		return domain.TaskStarted(m.ID, m.DisplayName, m.WorkerName, int(m.CoreNumber)), nil
	case resp.TaskOutput != nil:
		m := resp.TaskOutput
		if m.IsStderr {
			return domain.TaskOutput(m.ID, m.StderrLine, true), nil
		}
		return domain.TaskOutput(m.ID, m.StdoutLine, false), nil
	case resp.TaskCompleted != nil:
		m := resp.TaskCompleted
		status, err := parseTaskStatus(m.Status)
		if err != nil {
			return domain.JobResponse{}, err
		}
		return domain.TaskCompleted(m.ID, status, int(m.ExitCode), m.Message, millis(m.DurationMillis)), nil
	case resp.JobComplete != nil:
		status, err := parseJobStatus(resp.JobComplete.Status)
		if err != nil {
			return domain.JobResponse{}, err
		}
		return domain.JobComplete(status, millis(resp.JobComplete.DurationMillis)), nil
	default:
		return domain.JobResponse{}, domain.ErrUnexpectedResponse
	}
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func parseTaskStatus(s string) (domain.TaskStatus, error) {
	for _, status := range []domain.TaskStatus{
		domain.TaskSuccess, domain.TaskFailure, domain.TaskSkipped, domain.TaskCancelled,
	} {
		if status.String() == s {
			return status, nil
		}
	}
	return domain.TaskPending, zerr.With(domain.ErrUnexpectedResponse, "task_status", s)
}

func parseJobStatus(s string) (domain.JobStatus, error) {
	for _, status := range []domain.JobStatus{domain.JobSuccess, domain.JobFailure, domain.JobCancelled} {
		if status.String() == s {
			return status, nil
		}
	}
	return 0, zerr.With(domain.ErrUnexpectedResponse, "job_status", s)
}
