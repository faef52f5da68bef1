// Package process starts child processes and streams their output line by line.
package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/creack/pty"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
)

// waitDelay bounds how long Wait keeps reading output after the process exited,
// for grandchildren that inherited the output pipes.
const waitDelay = 5 * time.Second

// Runner implements ports.ProcessRunner using os/exec and pty.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new Runner. When logger is not nil every output line is
// mirrored to it.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run starts the process described by spec and streams its output.
// Breaking out of the sequence kills the process.
func (r *Runner) Run(ctx context.Context, spec domain.ProcessSpec) iter.Seq2[domain.ProcessEvent, error] {
	return func(yield func(domain.ProcessEvent, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		proc, err := r.start(ctx, spec)
		if err != nil {
			yield(domain.ProcessEvent{}, err)
			return
		}

		for ev := range proc.events {
			if !yield(ev, nil) {
				cancel()
				for range proc.events { //nolint:revive // drain until the process is gone
				}
				<-proc.done
				return
			}
		}

		err = <-proc.done
		if err == nil {
			yield(domain.ExitCode(0), nil)
			return
		}

		var exitErr *exec.ExitError
		if ctx.Err() != nil {
			yield(domain.ProcessEvent{}, ctx.Err())
			return
		}
		if errors.As(err, &exitErr) {
			yield(domain.ExitCode(exitErr.ExitCode()), nil)
			return
		}
		yield(domain.ProcessEvent{}, zerr.With(zerr.Wrap(err, domain.ErrCommandFailed.Error()), "path", spec.Path))
	}
}

type running struct {
	events <-chan domain.ProcessEvent
	done   <-chan error
}

func (r *Runner) start(ctx context.Context, spec domain.ProcessSpec) (*running, error) {
	if spec.Path == "" {
		return nil, zerr.With(domain.ErrCommandNotFound, "path", spec.Path)
	}

	env := resolveEnvironment(os.Environ(), spec.Environment)

	executable := spec.Path
	if !filepath.IsAbs(executable) && !strings.ContainsRune(executable, filepath.Separator) {
		lp, err := lookPath(executable, env)
		if err != nil {
			return nil, zerr.With(domain.ErrCommandNotFound, "path", spec.Path)
		}
		executable = lp
	}

	cmd := exec.CommandContext(ctx, executable, spec.Arguments...) //nolint:gosec // descriptor provided command
	cmd.Args[0] = spec.Path
	cmd.Dir = spec.WorkingDirectory
	cmd.Env = env
	cmd.WaitDelay = waitDelay

	events := make(chan domain.ProcessEvent, 64)
	stdout := &lineWriter{kind: domain.ProcessStdout, out: events, logger: r.logger}
	stderr := &lineWriter{kind: domain.ProcessStderr, out: events, logger: r.logger}
	done := make(chan error, 1)

	if spec.Pty {
		ptmx, err := pty.Start(cmd)
		if err != nil {
			return nil, startError(err, spec.Path)
		}

		ioDone := make(chan struct{})
		go func() {
			defer close(ioDone)
			defer func() { _ = ptmx.Close() }()
			// The pty merges both streams, and reading ends with EIO once the child is gone.
			_, _ = io.Copy(stdout, ptmx)
			stdout.Close()
		}()

		go func() {
			err := cmd.Wait()
			<-ioDone
			close(events)
			done <- err
		}()

		return &running{events: events, done: done}, nil
	}

	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, startError(err, spec.Path)
	}

	go func() {
		err := cmd.Wait()
		stdout.Close()
		stderr.Close()
		close(events)
		done <- err
	}()

	return &running{events: events, done: done}, nil
}

func startError(err error, path string) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return zerr.With(domain.ErrCommandNotFound, "path", path)
	}
	return zerr.With(zerr.Wrap(err, "failed to start process"), "path", path)
}

// lineWriter splits output into lines and forwards each one as an event.
type lineWriter struct {
	kind   domain.ProcessEventKind
	out    chan<- domain.ProcessEvent
	logger ports.Logger
	buf    []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

// Close flushes a trailing line without newline.
func (w *lineWriter) Close() {
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
}

func (w *lineWriter) emit(line []byte) {
	// PTYs may introduce \r.
	msg := strings.TrimSuffix(string(line), "\r")

	if w.logger != nil {
		if w.kind == domain.ProcessStderr {
			w.logger.Warn(msg)
		} else {
			w.logger.Info(msg)
		}
	}

	w.out <- domain.ProcessEvent{Kind: w.kind, Line: msg}
}

// allowListedEnvVars are the system environment variables inherited by every process.
// Everything else comes from the process spec.
var allowListedEnvVars = map[string]struct{}{
	"HOME":   {},
	"TERM":   {},
	"USER":   {},
	"PATH":   {},
	"TMPDIR": {},
	"LANG":   {},
}

// resolveEnvironment layers the spec environment over the allow-listed system environment.
func resolveEnvironment(sysEnv []string, specEnv map[string]string) []string {
	envMap := filterSystemEnv(sysEnv)

	for k, v := range specEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}
	return envMap
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "PATH="); ok {
			path = after
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
