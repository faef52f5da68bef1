package dispatcher

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/openge/internal/adapters/cmdline"
)

// compileDatabaseEntry is one element of a compile_commands.json file.
type compileDatabaseEntry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Command   string   `json:"command"`
	Arguments []string `json:"arguments"`
}

// tidyPathOptions are clang-tidy options whose value is a file.
var tidyPathOptions = []string{"--lua-script-path=", "--touch-path=", "--export-fixes="}

// parseClangTidy turns a clang-tidy run over one source into a compile
// command. The compile is looked up in the compile database named by -p and
// passed after "--", so the remote run does not need the database, whose
// paths only make sense on this machine.
func parseClangTidy(args []string, workingDir string) (*compileCommand, bool) {
	var (
		database string
		source   string
		outputs  []string
		inputs   []string
		tidyArgs []string
	)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			// An inline compile command bypasses the database.
			return nil, false
		case strings.HasPrefix(arg, "-p="):
			database = absolutePath(workingDir, arg[len("-p="):])
			continue
		case arg == "-p" && i+1 < len(args):
			i++
			database = absolutePath(workingDir, args[i])
			continue
		case isSourceFile(arg):
			if source != "" {
				return nil, false
			}
			source = absolutePath(workingDir, arg)
			continue
		}

		if opt, value, ok := cutPrefixAny(arg, tidyPathOptions); ok {
			abs := absolutePath(workingDir, value)
			if opt == "--lua-script-path=" {
				inputs = append(inputs, abs)
			} else {
				outputs = append(outputs, abs)
			}
			arg = opt + virtualPath(abs)
		}
		tidyArgs = append(tidyArgs, arg)
	}
	if database == "" || source == "" {
		return nil, false
	}
	if info, err := os.Stat(database); err == nil && info.IsDir() {
		database = filepath.Join(database, "compile_commands.json")
	}

	entry, ok := lookupCompileCommand(database, source)
	if !ok {
		return nil, false
	}
	compileArgs := entry.Arguments
	if len(compileArgs) == 0 {
		compileArgs = cmdline.Split(entry.Command)
	}
	if len(compileArgs) < 2 {
		return nil, false
	}
	directory := absolutePath(filepath.Dir(database), entry.Directory)
	expanded, err := expandResponseFiles(compileArgs[1:], directory, 0)
	if err != nil {
		return nil, false
	}

	compiler := compileArgs[0]
	family := compilerFamilyOf(compiler)
	if family == familyNone || family == familyClangTidy {
		return nil, false
	}
	cmd, ok := parseCompileFor(family, compiler, expanded, directory)
	if !ok || !strings.EqualFold(cmd.source, source) {
		return nil, false
	}
	for name, value := range map[string]string{"__clang__": "1", "__clang_analyzer__": "1"} {
		if _, set := cmd.defines[name]; !set {
			cmd.defines[name] = value
		}
	}

	args = append(tidyArgs, virtualPath(source), "--")
	if family == familyMSVC {
		args = append(args, "--driver-mode=cl")
	}
	cmd.args = append(args, cmd.args...)
	// Analysis writes none of the compile's outputs.
	cmd.outputs = outputs
	cmd.inputs = append(inputs, cmd.inputs...)
	return cmd, true
}

// lookupCompileCommand finds the entry compiling source in the database at path.
func lookupCompileCommand(path, source string) (compileDatabaseEntry, bool) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the build set
	if err != nil {
		return compileDatabaseEntry{}, false
	}
	var entries []compileDatabaseEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return compileDatabaseEntry{}, false
	}
	for _, e := range entries {
		if strings.EqualFold(absolutePath(absolutePath(filepath.Dir(path), e.Directory), e.File), source) {
			return e, true
		}
	}
	return compileDatabaseEntry{}, false
}

func cutPrefixAny(s string, prefixes []string) (prefix, rest string, ok bool) {
	for _, p := range prefixes {
		if after, found := strings.CutPrefix(s, p); found {
			return p, after, true
		}
	}
	return "", "", false
}
