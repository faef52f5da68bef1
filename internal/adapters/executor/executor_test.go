package executor_test

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/openge/internal/adapters/executor"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func drain(t *testing.T, seq iter.Seq2[domain.ProcessEvent, error]) ([]domain.ProcessEvent, error) {
	t.Helper()
	var events []domain.ProcessEvent
	for ev, err := range seq {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func sequence(events ...domain.ProcessEvent) iter.Seq2[domain.ProcessEvent, error] {
	return func(yield func(domain.ProcessEvent, error) bool) {
		for _, ev := range events {
			if !yield(ev, nil) {
				return
			}
		}
	}
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "in.txt")
	to := filepath.Join(dir, "nested", "out.txt")
	require.NoError(t, os.WriteFile(from, []byte("payload"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Dir(to), 0o750))
	require.NoError(t, os.WriteFile(to, []byte("old content that is longer"), 0o600))

	events, err := drain(t, executor.Copy(context.Background(), &domain.CopyTaskDescriptor{
		FromAbsolutePath: from,
		ToAbsolutePath:   to,
	}))
	require.NoError(t, err)

	assert.Equal(t, []domain.ProcessEvent{
		domain.StdoutLine("copying " + from + " -> " + to),
		domain.ExitCode(0),
	}, events)

	data, err := os.ReadFile(to)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestCopy_CreatesDestinationDirectory(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "in.txt")
	to := filepath.Join(dir, "a", "b", "out.txt")
	require.NoError(t, os.WriteFile(from, []byte("x"), 0o600))

	events, err := drain(t, executor.Copy(context.Background(), &domain.CopyTaskDescriptor{
		FromAbsolutePath: from,
		ToAbsolutePath:   to,
	}))
	require.NoError(t, err)
	assert.Equal(t, domain.ExitCode(0), events[len(events)-1])
	assert.FileExists(t, to)
}

func TestCopy_MissingSource(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "missing.txt")
	to := filepath.Join(dir, "out.txt")

	events, err := drain(t, executor.Copy(context.Background(), &domain.CopyTaskDescriptor{
		FromAbsolutePath: from,
		ToAbsolutePath:   to,
	}))
	require.NoError(t, err, "copy failures are reported as events")

	require.Len(t, events, 3)
	assert.Equal(t, domain.StdoutLine("copying "+from+" -> "+to), events[0])
	assert.Equal(t, domain.ProcessStderr, events[1].Kind)
	assert.Contains(t, events[1].Line, "missing.txt")
	assert.Equal(t, domain.ExitCode(1), events[2])
	assert.NoFileExists(t, to)
}

func TestCopy_StopsWhenConsumerStops(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "in.txt")
	to := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(from, []byte("x"), 0o600))

	for ev := range executor.Copy(context.Background(), &domain.CopyTaskDescriptor{FromAbsolutePath: from, ToAbsolutePath: to}) {
		assert.Equal(t, domain.ProcessStdout, ev.Kind)
		break
	}
	assert.NoFileExists(t, to, "nothing is copied once the announcement was rejected")
}

func TestExecutor_Local(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockProcessRunner(ctrl)

	runner.EXPECT().Run(gomock.Any(), domain.ProcessSpec{
		Path:             "/usr/bin/cc",
		Arguments:        []string{"-c", "main.c"},
		Environment:      map[string]string{"CC": "1"},
		WorkingDirectory: "/src",
		Pty:              true,
	}).Return(sequence(domain.StdoutLine("ok"), domain.StderrLine("warn"), domain.ExitCode(2)))

	exec := executor.NewExecutor(runner, nil, true)
	events, err := drain(t, exec.Execute(context.Background(), domain.NewLocalDescriptor(&domain.LocalTaskDescriptor{
		Path:                 "/usr/bin/cc",
		Arguments:            []string{"-c", "main.c"},
		EnvironmentVariables: map[string]string{"CC": "1"},
		WorkingDirectory:     "/src",
	})))
	require.NoError(t, err)

	assert.Equal(t, []domain.ProcessEvent{
		domain.StdoutLine("ok"),
		domain.StderrLine("warn"),
		domain.ExitCode(2),
	}, events)
}

func TestExecutor_FastLocalRemote(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockProcessRunner(ctrl)

	runner.EXPECT().Run(gomock.Any(), domain.ProcessSpec{
		Path:             "/opt/clang/bin/clang",
		Arguments:        []string{"-c", "/src/main.c", "-o/build/main.o"},
		Environment:      map[string]string{"INCLUDE": "/sdk/include"},
		WorkingDirectory: "/src",
	}).Return(sequence(domain.ExitCode(0)))

	exec := executor.NewExecutor(runner, nil, false)
	events, err := drain(t, exec.Execute(context.Background(), domain.NewRemoteDescriptor(&domain.RemoteTaskDescriptor{
		ToolLocalAbsolutePath:        "/opt/clang/bin/clang",
		Arguments:                    []string{"-c", domain.VirtualRootPlaceholder + "/src/main.c", "-o" + domain.VirtualRootPlaceholder + "/build/main.o"},
		EnvironmentVariables:         map[string]string{"INCLUDE": domain.VirtualRootPlaceholder + "/sdk/include"},
		WorkingDirectoryAbsolutePath: "/src",
		UseFastLocalExecution:        true,
	})))
	require.NoError(t, err)
	assert.Equal(t, []domain.ProcessEvent{domain.ExitCode(0)}, events)
}

func TestExecutor_InvalidDescriptor(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := executor.NewExecutor(mocks.NewMockProcessRunner(ctrl), nil, false)

	_, err := drain(t, exec.Execute(context.Background(), domain.TaskDescriptor{Kind: domain.DescriptorLocal}))
	require.ErrorIs(t, err, domain.ErrInvalidTaskDescriptor)

	_, err = drain(t, exec.Execute(context.Background(), domain.NewRemoteDescriptor(&domain.RemoteTaskDescriptor{})))
	require.ErrorIs(t, err, domain.ErrInvalidTaskDescriptor, "workers are required for remote descriptors")
}
