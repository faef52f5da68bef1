package dispatcher

import (
	"context"
	"maps"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"go.trai.ch/openge/internal/adapters/cmdline"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
)

// maxResponseFileDepth bounds nested @file expansion.
const maxResponseFileDepth = 8

var sourceExtensions = map[string]struct{}{
	".c":   {},
	".cc":  {},
	".cpp": {},
	".cxx": {},
	".c++": {},
	".m":   {},
	".mm":  {},
}

// machineSpecificVariables describe the dispatcher host and are not sent to workers.
var machineSpecificVariables = []string{
	"COMPUTERNAME",
	"HOSTNAME",
	"LOGONSERVER",
	"TEMP",
	"TMP",
	"TMPDIR",
	"USERDOMAIN",
	"USERNAME",
}

// invocation is a task resolved against its job: the process it runs and,
// when recognised, the copy or compile step it performs.
type invocation struct {
	toolPath   string
	args       []string
	workingDir string
	env        map[string]string
	copy       *domain.CopyTaskDescriptor
	compile    *compileCommand
}

// remotable reports whether the invocation may be placed on a remote worker.
func (inv *invocation) remotable() bool {
	return inv.compile != nil
}

type compileCommand struct {
	toolPath          string
	source            string
	outputs           []string
	includeDirs       []string
	systemIncludeDirs []string
	forceIncludes     []string
	// forceIncludesFromPCH are satisfied by the precompiled header; their
	// includes are not inputs of the compile.
	forceIncludesFromPCH []string
	// inputs are files the tool reads besides the source and its includes.
	inputs  []string
	defines map[string]string
	// args reference every path through the virtual root.
	args []string
}

// compilerFamily selects how a tool's command line is understood.
type compilerFamily uint8

const (
	familyNone compilerFamily = iota
	familyGCC
	familyMSVC
	familyClangTidy
)

func compilerFamilyOf(toolPath string) compilerFamily {
	switch name := driverName(toolPath); {
	case name == "cl" || name == "clang-cl":
		return familyMSVC
	case name == "clang-tidy":
		return familyClangTidy
	case isCompilerDriver(toolPath):
		return familyGCC
	default:
		return familyNone
	}
}

// descriptorFactory turns tasks into executable descriptors.
type descriptorFactory struct {
	// cache is nil when remote execution is disabled.
	cache ports.PreprocessorCache
}

func newDescriptorFactory(cache ports.PreprocessorCache) *descriptorFactory {
	return &descriptorFactory{cache: cache}
}

// prepare resolves the task against the job without touching the worker pool.
func (f *descriptorFactory) prepare(task *domain.Task, job *Job) *invocation {
	inv := &invocation{
		toolPath:   task.Tool.Path,
		args:       cmdline.Split(task.Tool.Params),
		workingDir: resolveWorkingDirectory(job.WorkingDirectory, task.WorkingDir),
		env:        mergeEnvironment(job.Environment, task.Environment),
	}

	if desc := parseCopy(inv.toolPath, inv.args, inv.workingDir); desc != nil {
		inv.copy = desc
		return inv
	}

	family := compilerFamilyOf(inv.toolPath)
	if f.cache == nil || !task.Tool.AllowRemote || family == familyNone {
		return inv
	}
	toolPath := inv.toolPath
	if !filepath.IsAbs(toolPath) {
		found, err := exec.LookPath(toolPath)
		if err != nil {
			return inv
		}
		if toolPath, err = filepath.Abs(found); err != nil {
			return inv
		}
	}
	args, err := expandResponseFiles(inv.args, inv.workingDir, 0)
	if err != nil {
		return inv
	}
	if cmd, ok := parseCompileFor(family, toolPath, args, inv.workingDir); ok {
		cmd.toolPath = toolPath
		inv.compile = cmd
	}
	return inv
}

// parseCompileFor parses a compile step of the given family and adds the
// macros that compiler predefines. Explicit definitions win.
func parseCompileFor(family compilerFamily, toolPath string, args []string, workingDir string) (*compileCommand, bool) {
	var (
		cmd        *compileCommand
		ok         bool
		predefined map[string]string
	)
	switch family {
	case familyGCC:
		if cmd, ok = parseCompile(args, workingDir); ok {
			predefined = gccPredefinedMacros(toolPath, cmd.source)
		}
	case familyMSVC:
		if cmd, ok = parseMSVCCompile(toolPath, args, workingDir); ok {
			predefined = msvcPredefinedMacros(toolPath, args, cmd.source)
		}
	case familyClangTidy:
		// The analysed compile already carries the predefined macros of its compiler.
		return parseClangTidy(args, workingDir)
	}
	if !ok {
		return nil, false
	}
	for name, value := range predefined {
		if _, set := cmd.defines[name]; !set {
			cmd.defines[name] = value
		}
	}
	return cmd, true
}

// describe builds the descriptor for inv on the reserved core. Compile steps
// on the local slot run in place; on a remote core their includes are resolved
// first so the worker receives every input.
func (f *descriptorFactory) describe(ctx context.Context, inv *invocation, local bool, startTicks int64) (domain.TaskDescriptor, error) {
	switch {
	case inv.copy != nil:
		return domain.NewCopyDescriptor(inv.copy), nil
	case inv.compile == nil:
		return domain.NewLocalDescriptor(&domain.LocalTaskDescriptor{
			Path:                 inv.toolPath,
			Arguments:            inv.args,
			EnvironmentVariables: inv.env,
			WorkingDirectory:     inv.workingDir,
		}), nil
	}

	cmd := inv.compile
	desc := &domain.RemoteTaskDescriptor{
		ToolLocalAbsolutePath:        cmd.toolPath,
		Arguments:                    cmd.args,
		EnvironmentVariables:         remoteEnvironment(inv.env),
		WorkingDirectoryAbsolutePath: inv.workingDir,
		OutputAbsolutePaths:          cmd.outputs,
		UseFastLocalExecution:        local,
	}
	if local {
		// In place the tool runs exactly as the build set describes it.
		desc.Arguments = inv.args
		return domain.NewRemoteDescriptor(desc), nil
	}

	resolved, err := f.cache.GetResolvedDependencies(ctx, domain.ResolveRequest{
		Path:                 cmd.source,
		ForceIncludesFromPCH: cmd.forceIncludesFromPCH,
		ForceIncludes:        cmd.forceIncludes,
		IncludeDirs:          cmd.includeDirs,
		SystemIncludeDirs:    cmd.systemIncludeDirs,
		GlobalDefinitions:    cmd.defines,
		BuildStartTicks:      startTicks,
	})
	if err != nil {
		return domain.TaskDescriptor{}, zerr.With(zerr.Wrap(err, "failed to resolve dependencies"), "source", cmd.source)
	}

	inputs := make([]string, 0, len(resolved.DependsOnPaths)+len(cmd.forceIncludes)+len(cmd.inputs)+1)
	inputs = append(inputs, cmd.source)
	inputs = append(inputs, cmd.forceIncludes...)
	inputs = append(inputs, cmd.inputs...)
	inputs = append(inputs, resolved.DependsOnPaths...)
	slices.Sort(inputs)
	desc.InputAbsolutePaths = slices.Compact(inputs)
	return domain.NewRemoteDescriptor(desc), nil
}

func resolveWorkingDirectory(jobDir, taskDir string) string {
	switch {
	case taskDir == "":
		return jobDir
	case filepath.IsAbs(taskDir) || jobDir == "":
		return taskDir
	default:
		return filepath.Join(jobDir, taskDir)
	}
}

// mergeEnvironment layers the build set environment variables over the job environment.
func mergeEnvironment(job map[string]string, env *domain.Environment) map[string]string {
	merged := make(map[string]string, len(job))
	maps.Copy(merged, job)
	if env != nil {
		maps.Copy(merged, env.Variables)
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

func remoteEnvironment(env map[string]string) map[string]string {
	if len(env) == 0 {
		return nil
	}
	out := maps.Clone(env)
	for _, name := range machineSpecificVariables {
		delete(out, name)
	}
	return out
}

// executableName returns the lower case file name of a tool without an .exe suffix.
// Build sets written on Windows use backslashes, so both separators are honoured.
func executableName(toolPath string) string {
	name := path.Base(strings.ReplaceAll(toolPath, `\`, "/"))
	return strings.TrimSuffix(strings.ToLower(name), ".exe")
}

// driverName strips version suffixes from executableName, so g++-13 and
// clang-tidy-17 become g++ and clang-tidy.
func driverName(toolPath string) string {
	name := executableName(toolPath)
	name = strings.TrimRightFunc(name, func(r rune) bool { return unicode.IsDigit(r) || r == '.' })
	return strings.TrimSuffix(name, "-")
}

// virtualPath references an absolute host path below the virtual root, laid
// out the way workers materialise inputs: drive letters become a directory.
func virtualPath(abs string) string {
	vol := filepath.VolumeName(abs)
	rest := abs[len(vol):]
	if vol != "" {
		rest = string(filepath.Separator) + strings.TrimSuffix(vol, ":") + rest
	}
	return domain.VirtualRootPlaceholder + rest
}

// parseCopy recognises "cp from to" and "cmd /c copy from to".
func parseCopy(toolPath string, args []string, workingDir string) *domain.CopyTaskDescriptor {
	switch name := executableName(toolPath); {
	case name == "cp" && len(args) == 2:
	case name == "cmd" && len(args) == 4 && strings.EqualFold(args[0], "/c") && strings.EqualFold(args[1], "copy"):
		args = args[2:]
	default:
		return nil
	}
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return nil
		}
	}
	if strings.HasSuffix(args[1], "/") || strings.HasSuffix(args[1], `\`) {
		return nil
	}

	to := absolutePath(workingDir, args[1])
	if info, err := os.Stat(to); err == nil && info.IsDir() {
		return nil
	}
	return &domain.CopyTaskDescriptor{
		FromAbsolutePath: absolutePath(workingDir, args[0]),
		ToAbsolutePath:   to,
	}
}

func absolutePath(workingDir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(workingDir, p)
}

// expandResponseFiles replaces every @file argument with the arguments it contains.
func expandResponseFiles(args []string, workingDir string, depth int) ([]string, error) {
	if !slices.ContainsFunc(args, func(a string) bool { return strings.HasPrefix(a, "@") }) {
		return args, nil
	}
	if depth >= maxResponseFileDepth {
		return nil, zerr.With(domain.ErrInvalidBuildSet, "reason", "response files nested too deeply")
	}

	out := make([]string, 0, len(args))
	for _, arg := range args {
		if !strings.HasPrefix(arg, "@") {
			out = append(out, arg)
			continue
		}
		file := absolutePath(workingDir, arg[1:])
		data, err := os.ReadFile(file) //nolint:gosec // path comes from the build set
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to read response file"), "path", file)
		}
		nested, err := expandResponseFiles(cmdline.Split(string(data)), workingDir, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	return out, nil
}
