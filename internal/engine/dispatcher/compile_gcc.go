package dispatcher

import (
	"path/filepath"
	"runtime"
	"strings"
)

// compilerDrivers are the gcc-compatible drivers whose compile steps can run remotely.
var compilerDrivers = map[string]struct{}{
	"cc":      {},
	"c++":     {},
	"gcc":     {},
	"g++":     {},
	"clang":   {},
	"clang++": {},
}

// isCompilerDriver recognises gcc-compatible drivers, including target
// prefixes and version suffixes such as x86_64-linux-gnu-g++-13.
func isCompilerDriver(toolPath string) bool {
	name := driverName(toolPath)
	if i := strings.LastIndexByte(name, '-'); i >= 0 {
		name = name[i+1:]
	}
	_, ok := compilerDrivers[name]
	return ok
}

// pathOptions take a path either joined to the flag or as the next argument.
var pathOptions = []string{"-isystem", "-iquote", "-include", "-I", "-MF", "-o"}

// parseCompile extracts the single source, the outputs and the preprocessor
// state of a gcc-style compile step. It reports false for anything that is not
// a "-c" compile of exactly one source file.
func parseCompile(args []string, workingDir string) (*compileCommand, bool) {
	cmd := &compileCommand{defines: make(map[string]string)}
	var (
		compileOnly bool
		depFile     bool
		output      string
		explicitDep string
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if opt, value, ok := splitOption(args, &i, pathOptions); ok {
			if value == "" {
				return nil, false
			}
			abs := absolutePath(workingDir, value)
			switch opt {
			case "-I", "-iquote":
				cmd.includeDirs = append(cmd.includeDirs, abs)
			case "-isystem":
				cmd.systemIncludeDirs = append(cmd.systemIncludeDirs, abs)
			case "-include":
				cmd.forceIncludes = append(cmd.forceIncludes, abs)
			case "-MF":
				explicitDep = abs
			case "-o":
				output = abs
			}
			cmd.args = append(cmd.args, opt, virtualPath(abs))
			continue
		}

		if opt, value, ok := splitOption(args, &i, []string{"-D", "-U"}); ok {
			name, def, found := strings.Cut(value, "=")
			switch {
			case opt == "-U":
				delete(cmd.defines, name)
			case found:
				cmd.defines[name] = def
			default:
				cmd.defines[name] = "1"
			}
			cmd.args = append(cmd.args, opt+value)
			continue
		}

		switch {
		case arg == "-c":
			compileOnly = true
		case arg == "-MD" || arg == "-MMD":
			depFile = true
		case arg == "-x" || arg == "-MT" || arg == "-MQ" || arg == "-target" || arg == "-arch" || arg == "-Xclang":
			cmd.args = append(cmd.args, arg)
			if i+1 < len(args) {
				i++
				arg = args[i]
			}
		case !strings.HasPrefix(arg, "-"):
			if _, ok := sourceExtensions[strings.ToLower(filepath.Ext(arg))]; ok {
				if cmd.source != "" {
					return nil, false
				}
				cmd.source = absolutePath(workingDir, arg)
				arg = virtualPath(cmd.source)
			}
		}
		cmd.args = append(cmd.args, arg)
	}

	if !compileOnly || cmd.source == "" || output == "" {
		return nil, false
	}
	cmd.outputs = append(cmd.outputs, output)
	switch {
	case explicitDep != "":
		cmd.outputs = append(cmd.outputs, explicitDep)
	case depFile:
		cmd.outputs = append(cmd.outputs, strings.TrimSuffix(output, filepath.Ext(output))+".d")
	}
	return cmd, true
}

// splitOption matches args[*i] against opts, accepting "-Ivalue" and "-I value".
// It advances *i past a separate value.
func splitOption(args []string, i *int, opts []string) (opt, value string, ok bool) {
	arg := args[*i]
	for _, o := range opts {
		if !strings.HasPrefix(arg, o) {
			continue
		}
		if arg != o {
			return o, arg[len(o):], true
		}
		if *i+1 >= len(args) {
			return o, "", true
		}
		*i++
		return o, args[*i], true
	}
	return "", "", false
}

// gccPredefinedMacros are the macros a gcc-compatible driver defines for the
// host target. Conditions in headers that test them would otherwise be unresolvable.
func gccPredefinedMacros(toolPath, source string) map[string]string {
	defines := map[string]string{"__STDC__": "1"}

	name := executableName(toolPath)
	if strings.Contains(name, "clang") {
		defines["__clang__"] = "1"
	}
	defines["__GNUC__"] = "4"

	switch strings.ToLower(filepath.Ext(source)) {
	case ".c", ".m":
	default:
		defines["__cplusplus"] = "201703L"
	}

	switch runtime.GOOS {
	case "linux":
		defines["__linux__"] = "1"
		defines["__unix__"] = "1"
	case "darwin":
		defines["__APPLE__"] = "1"
		defines["__MACH__"] = "1"
	case "windows":
		defines["_WIN32"] = "1"
	}
	switch runtime.GOARCH {
	case "amd64":
		defines["__x86_64__"] = "1"
	case "arm64":
		defines["__aarch64__"] = "1"
	}
	return defines
}
