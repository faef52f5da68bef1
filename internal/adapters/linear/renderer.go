// Package linear renders job events as chronological, task-prefixed lines.
package linear

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"
	"go.trai.ch/openge/internal/core/domain"
)

// Renderer prints the events of a job. Task output goes to stdout, progress
// and results to stderr. It is safe for concurrent use.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu    sync.Mutex
	names map[string]string // task ID -> display name
	done  int
	total int
}

// NewRenderer creates a Renderer. Nil writers default to the process streams.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: termenv.NewOutput(stderr, termenv.WithProfile(colorProfile())),
		names:  make(map[string]string),
	}
}

func colorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// Handle renders ev. It has the signature of ports.JobEventSink and never fails.
func (r *Renderer) Handle(ev domain.JobResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Kind {
	case domain.JobParsedEvent:
		r.total = ev.TotalTasks
		_, _ = fmt.Fprintf(r.stderr, "Dispatching %d task(s)\n", ev.TotalTasks)

	case domain.TaskStartedEvent:
		r.names[ev.ID] = ev.DisplayName
		if ev.WorkerName == "" {
			return nil
		}
		where := r.output.String(fmt.Sprintf("on %s:%d", ev.WorkerName, ev.CoreNumber)).Faint().String()
		_, _ = fmt.Fprintf(r.stderr, "%s Starting %s\n", r.prefix(ev.ID), where)

	case domain.TaskOutputEvent:
		if ev.IsStderr {
			_, _ = fmt.Fprintf(r.stderr, "%s %s\n", r.prefix(ev.ID), ev.StderrLine)
		} else {
			_, _ = fmt.Fprintf(r.stdout, "%s %s\n", r.prefix(ev.ID), ev.StdoutLine)
		}

	case domain.TaskCompletedEvent:
		r.done++
		r.printCompletion(ev)
		delete(r.names, ev.ID)

	case domain.JobCompleteEvent:
		symbol := r.output.String("✓").Foreground(termenv.ANSIGreen).String()
		if ev.JobStatus != domain.JobSuccess {
			symbol = r.output.String("✗").Foreground(termenv.ANSIRed).String()
		}
		_, _ = fmt.Fprintf(r.stderr, "%s Job %s after %v (%d/%d tasks)\n",
			symbol, ev.JobStatus, ev.Duration, r.done, r.total)
	}
	return nil
}

func (r *Renderer) printCompletion(ev domain.JobResponse) {
	prefix := r.prefix(ev.ID)
	switch ev.Status {
	case domain.TaskSuccess:
		symbol := r.output.String("✓").Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", prefix, symbol, ev.Duration)
	case domain.TaskSkipped:
		symbol := r.output.String("-").Faint().String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Skipped: %s\n", prefix, symbol, ev.Message)
	default:
		symbol := r.output.String("✗").Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s %s after %v: %s\n", prefix, symbol, ev.Status, ev.Duration, ev.Message)
	}
}

// prefix returns the bracketed display name of a task. r.mu must be held.
func (r *Renderer) prefix(id string) string {
	name, ok := r.names[id]
	if !ok {
		name = id
	}
	return fmt.Sprintf("[%s]", name)
}
