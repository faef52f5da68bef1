package executor

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.trai.ch/openge/internal/adapters/blobs"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// buildReservationName prefixes build directory reservations.
	buildReservationName = "OpenGEBuild"

	virtualRootDirName = "root"
	toolLinkName       = "tool"
	systemLinkName     = "system"
)

// Remote runs remote task descriptors inside reserved build directories on a worker.
type Remote struct {
	reservations ports.ReservationManager
	tools        ports.ToolManager
	blobs        ports.BlobStore
	runner       ports.ProcessRunner
	logger       ports.Logger
}

// NewRemote creates a new Remote executor.
func NewRemote(
	reservations ports.ReservationManager,
	tools ports.ToolManager,
	store ports.BlobStore,
	runner ports.ProcessRunner,
	logger ports.Logger,
) *Remote {
	return &Remote{
		reservations: reservations,
		tools:        tools,
		blobs:        store,
		runner:       runner,
		logger:       logger,
	}
}

// Execute lays out the inputs in a build directory, runs the tool there and, on
// success, captures the declared outputs before the exit event.
func (r *Remote) Execute(ctx context.Context, desc *domain.RemoteTaskDescriptor) iter.Seq2[domain.ProcessEvent, error] {
	return func(yield func(domain.ProcessEvent, error) bool) {
		info := desc.ToolExecutionInfo
		res, err := r.reservations.Reserve(ctx, buildReservationName, info.ToolExecutableName)
		if err != nil {
			yield(domain.ProcessEvent{}, err)
			return
		}
		defer func() { _ = res.Release() }()

		spec, root, err := r.prepare(ctx, res.Path(), desc)
		if err != nil {
			yield(domain.ProcessEvent{}, err)
			return
		}

		r.logger.Info("tool: " + spec.Path)
		r.logger.Info("arguments: " + strings.Join(spec.Arguments, " "))
		r.logger.Info("working directory: " + spec.WorkingDirectory)

		for ev, err := range r.runner.Run(ctx, spec) {
			if err != nil {
				yield(domain.ProcessEvent{}, err)
				return
			}
			if ev.Kind != domain.ProcessExit {
				if !yield(ev, nil) {
					return
				}
				continue
			}

			if ev.ExitCode == 0 && len(desc.OutputAbsolutePaths) > 0 {
				outputs, err := r.blobs.CaptureOutputs(ctx, root, desc.OutputAbsolutePaths)
				if err != nil {
					yield(domain.ProcessEvent{}, err)
					return
				}
				if !yield(domain.ProcessEvent{Kind: domain.ProcessOutputBlobs, OutputBlobs: outputs}, nil) {
					return
				}
			}
			yield(ev, nil)
			return
		}
	}
}

// prepare builds the reserved directory and returns the process to run and the virtual root.
func (r *Remote) prepare(ctx context.Context, reserved string, desc *domain.RemoteTaskDescriptor) (domain.ProcessSpec, string, error) {
	if desc.RequireCleanWorkspace {
		if err := RecreateDirectory(reserved); err != nil {
			return domain.ProcessSpec{}, "", err
		}
	}

	info := desc.ToolExecutionInfo
	if !r.tools.QueryTool(info.ToolXxHash64) {
		return domain.ProcessSpec{}, "", zerr.With(domain.ErrToolNotFound, "tool", info.ToolExecutableName)
	}
	toolPath := r.tools.ToolPath(info.ToolXxHash64, info.ToolExecutableName)

	root := shortenPath(filepath.Join(reserved, virtualRootDirName))
	if err := r.blobs.LayoutBuildDirectory(ctx, root, desc.InputsByBlob); err != nil {
		return domain.ProcessSpec{}, "", err
	}

	if err := replaceSymlink(filepath.Dir(toolPath), filepath.Join(reserved, toolLinkName)); err != nil {
		return domain.ProcessSpec{}, "", err
	}
	if err := replaceSymlink(systemDirectory(), filepath.Join(reserved, systemLinkName)); err != nil {
		return domain.ProcessSpec{}, "", err
	}

	// Outputs from a previous task in this reservation must not be captured again.
	for _, out := range desc.OutputAbsolutePaths {
		local := blobs.BuildDirectoryPath(root, out)
		if err := os.Remove(local); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return domain.ProcessSpec{}, "", zerr.With(zerr.Wrap(err, "failed to remove stale output"), "path", local)
		}
		if err := os.MkdirAll(filepath.Dir(local), domain.DirPerm); err != nil {
			return domain.ProcessSpec{}, "", zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", local)
		}
	}

	workingDir := root
	if desc.WorkingDirectoryAbsolutePath != "" {
		workingDir = blobs.BuildDirectoryPath(root, desc.WorkingDirectoryAbsolutePath)
	}
	if err := os.MkdirAll(workingDir, domain.DirPerm); err != nil {
		return domain.ProcessSpec{}, "", zerr.With(zerr.Wrap(err, "failed to create working directory"), "path", workingDir)
	}

	return domain.ProcessSpec{
		Path:             toolPath,
		Arguments:        replaceRoot(desc.Arguments, root),
		Environment:      replaceRootEnv(desc.EnvironmentVariables, root),
		WorkingDirectory: workingDir,
	}, root, nil
}

// RecreateDirectory removes path and creates it again empty. When removal is
// denied the tree is made writable and removal is retried once.
func RecreateDirectory(path string) error {
	if err := os.RemoveAll(path); err != nil {
		if !errors.Is(err, fs.ErrPermission) {
			return zerr.With(zerr.Wrap(err, "failed to remove directory"), "path", path)
		}
		makeWritable(path)
		if err := os.RemoveAll(path); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to remove directory"), "path", path)
		}
	}
	if err := os.MkdirAll(path, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", path)
	}
	return nil
}

// makeWritable adds owner write permission to every entry below path.
func makeWritable(path string) {
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.Type()&fs.ModeSymlink != 0 {
			return nil //nolint:nilerr // best effort
		}
		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // best effort
		}
		_ = os.Chmod(p, info.Mode().Perm()|0o700)
		return nil
	})
}

func replaceSymlink(target, link string) error {
	if current, err := os.Readlink(link); err == nil && current == target {
		return nil
	}
	if err := os.Remove(link); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to remove link"), "path", link)
	}
	if err := os.Symlink(target, link); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create link"), "path", link)
	}
	return nil
}

// shortenPath maps a build directory to a short path. Long paths only matter on
// Windows, so this is the identity elsewhere.
func shortenPath(path string) string {
	return path
}

func systemDirectory() string {
	if runtime.GOOS == "windows" {
		if root := os.Getenv("SystemRoot"); root != "" {
			return filepath.Join(root, "System32")
		}
	}
	return "/usr"
}
