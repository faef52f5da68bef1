// Package executor runs task descriptors and streams their process events.
package executor

import (
	"context"
	"iter"
	"strings"

	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
)

// Executor implements ports.TaskExecutor by dispatching on the descriptor kind.
type Executor struct {
	runner ports.ProcessRunner
	remote *Remote
	usePty bool
}

// NewExecutor creates a new Executor. Remote descriptors that do not ask for
// fast local execution need remote, which only exists on workers.
func NewExecutor(runner ports.ProcessRunner, remote *Remote, usePty bool) *Executor {
	return &Executor{runner: runner, remote: remote, usePty: usePty}
}

// Execute runs the descriptor and streams its process events.
func (e *Executor) Execute(ctx context.Context, desc domain.TaskDescriptor) iter.Seq2[domain.ProcessEvent, error] {
	if err := desc.Validate(); err != nil {
		return fail(err)
	}

	switch desc.Kind {
	case domain.DescriptorCopy:
		return Copy(ctx, desc.Copy)
	case domain.DescriptorLocal:
		return e.runner.Run(ctx, domain.ProcessSpec{
			Path:             desc.Local.Path,
			Arguments:        desc.Local.Arguments,
			Environment:      desc.Local.EnvironmentVariables,
			WorkingDirectory: desc.Local.WorkingDirectory,
			Pty:              e.usePty,
		})
	case domain.DescriptorRemote:
		if desc.Remote.UseFastLocalExecution {
			return e.runner.Run(ctx, e.fastLocalSpec(desc.Remote))
		}
		if e.remote == nil {
			return fail(domain.ErrInvalidTaskDescriptor)
		}
		return e.remote.Execute(ctx, desc.Remote)
	default:
		return fail(domain.ErrInvalidTaskDescriptor)
	}
}

// fastLocalSpec runs a remote descriptor in place. The virtual root maps to the
// filesystem root, so placeholders are simply removed.
func (e *Executor) fastLocalSpec(desc *domain.RemoteTaskDescriptor) domain.ProcessSpec {
	return domain.ProcessSpec{
		Path:             desc.ToolLocalAbsolutePath,
		Arguments:        replaceRoot(desc.Arguments, ""),
		Environment:      replaceRootEnv(desc.EnvironmentVariables, ""),
		WorkingDirectory: desc.WorkingDirectoryAbsolutePath,
		Pty:              e.usePty,
	}
}

func replaceRoot(args []string, root string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = strings.ReplaceAll(arg, domain.VirtualRootPlaceholder, root)
	}
	return out
}

func replaceRootEnv(env map[string]string, root string) map[string]string {
	if len(env) == 0 {
		return nil
	}
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = strings.ReplaceAll(v, domain.VirtualRootPlaceholder, root)
	}
	return out
}

func fail(err error) iter.Seq2[domain.ProcessEvent, error] {
	return func(yield func(domain.ProcessEvent, error) bool) {
		yield(domain.ProcessEvent{}, err)
	}
}
