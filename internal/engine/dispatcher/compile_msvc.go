package dispatcher

import (
	"os"
	"path/filepath"
	"strings"
)

// msvcOption is a cl.exe option that carries a path.
type msvcOption struct {
	name string
	// joined accepts "/Ipath"; separate accepts "/I path".
	joined, separate bool
}

// msvcPathOptions is ordered so that longer names match before their prefixes.
var msvcPathOptions = []msvcOption{
	{name: "/external:I", joined: true, separate: true},
	{name: "/sourceDependencies", separate: true},
	{name: "/clang:-MF", joined: true},
	{name: "/FI", joined: true, separate: true},
	{name: "/Fo", joined: true},
	{name: "/Fp", joined: true},
	{name: "/Yu", joined: true},
	{name: "/Yc", joined: true},
	{name: "/Tp", joined: true, separate: true},
	{name: "/Tc", joined: true, separate: true},
	{name: "/I", joined: true, separate: true},
}

// msvcOptionName accepts both option prefixes cl.exe understands.
func msvcOptionName(arg string) string {
	if strings.HasPrefix(arg, "-") {
		return "/" + arg[1:]
	}
	return arg
}

// matchMSVCOption matches args[*i] against msvcPathOptions and advances *i
// past a separate value.
func matchMSVCOption(args []string, i *int) (opt, value string, separate, ok bool) {
	arg := msvcOptionName(args[*i])
	for _, o := range msvcPathOptions {
		switch {
		case arg == o.name && o.separate:
			if *i+1 >= len(args) {
				return o.name, "", true, true
			}
			*i++
			return o.name, args[*i], true, true
		case arg == o.name && o.joined:
			return o.name, "", false, true
		case o.joined && strings.HasPrefix(arg, o.name) && arg != o.name:
			return o.name, strings.TrimPrefix(arg[len(o.name):], ":"), false, true
		}
	}
	return "", "", false, false
}

// parseMSVCCompile extracts the source, outputs and preprocessor state of a
// cl.exe or clang-cl compile step. It reports false unless the step is a "/c"
// compile of one source with an explicit object file.
func parseMSVCCompile(toolPath string, args []string, workingDir string) (*compileCommand, bool) {
	cmd := &compileCommand{defines: make(map[string]string)}
	var (
		compileOnly bool
		object      string
		pchHeader   string
		pchFile     string
		creatingPCH bool
		usingPCH    bool
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if opt, value, separate, ok := matchMSVCOption(args, &i); ok {
			switch {
			case value != "":
			case opt == "/Yu" || opt == "/Yc":
				if opt == "/Yc" {
					creatingPCH = true
				} else {
					usingPCH = true
				}
				cmd.args = append(cmd.args, opt)
				continue
			default:
				return nil, false
			}

			abs := absolutePath(workingDir, value)
			switch opt {
			case "/I", "/external:I":
				cmd.includeDirs = append(cmd.includeDirs, abs)
			case "/FI":
				cmd.forceIncludes = append(cmd.forceIncludes, abs)
			case "/Fo":
				if strings.HasSuffix(value, "/") || strings.HasSuffix(value, `\`) {
					// An object directory means more than one object.
					return nil, false
				}
				object = abs
			case "/Fp":
				pchFile = abs
			case "/Yu":
				usingPCH = true
				pchHeader = abs
			case "/Yc":
				creatingPCH = true
				pchHeader = abs
			case "/sourceDependencies", "/clang:-MF":
				cmd.outputs = append(cmd.outputs, abs)
			case "/Tp", "/Tc":
				if cmd.source != "" {
					return nil, false
				}
				cmd.source = abs
			}

			if separate {
				cmd.args = append(cmd.args, opt, virtualPath(abs))
			} else {
				cmd.args = append(cmd.args, opt+virtualPath(abs))
			}
			continue
		}

		if isSourceFile(arg) {
			if cmd.source != "" {
				return nil, false
			}
			cmd.source = absolutePath(workingDir, arg)
			cmd.args = append(cmd.args, virtualPath(cmd.source))
			continue
		}

		name := msvcOptionName(arg)
		if strings.HasPrefix(name, "/D") || strings.HasPrefix(name, "/U") {
			value := name[2:]
			if value == "" && i+1 < len(args) {
				i++
				value = args[i]
			}
			macro, def, found := strings.Cut(strings.Replace(value, "#", "=", 1), "=")
			switch {
			case name[1] == 'U':
				delete(cmd.defines, macro)
			case found:
				cmd.defines[macro] = def
			default:
				cmd.defines[macro] = "1"
			}
			cmd.args = append(cmd.args, name[:2]+value)
			continue
		}

		if name == "/c" {
			compileOnly = true
		}
		cmd.args = append(cmd.args, arg)
	}

	if !compileOnly || cmd.source == "" || object == "" {
		return nil, false
	}
	cmd.outputs = append([]string{object}, cmd.outputs...)

	switch {
	case creatingPCH && pchFile != "":
		cmd.outputs = append(cmd.outputs, pchFile)
	case usingPCH:
		if pchFile != "" {
			cmd.inputs = append(cmd.inputs, pchFile)
		}
		if pchHeader != "" {
			cmd.forceIncludes, cmd.forceIncludesFromPCH = splitPCHIncludes(cmd.forceIncludes, pchHeader)
			for _, header := range cmd.forceIncludesFromPCH {
				cmd.inputs = append(cmd.inputs, header)
				if driverName(toolPath) != "clang-cl" {
					continue
				}
				// clang-cl validates the precompiled header against the
				// source it was created from.
				sibling := strings.TrimSuffix(header, filepath.Ext(header)) + ".cpp"
				if _, err := os.Stat(sibling); err == nil {
					cmd.inputs = append(cmd.inputs, sibling)
				}
			}
		}
	}
	return cmd, true
}

// isSourceFile reports whether arg names a translation unit rather than an option.
func isSourceFile(arg string) bool {
	if strings.HasPrefix(arg, "-") {
		return false
	}
	_, ok := sourceExtensions[strings.ToLower(filepath.Ext(arg))]
	return ok
}

// splitPCHIncludes moves the force include naming the precompiled header out
// of forceIncludes. cl.exe pairs /Yu and /FI by file name.
func splitPCHIncludes(forceIncludes []string, pchHeader string) (rest, fromPCH []string) {
	for _, fi := range forceIncludes {
		if strings.EqualFold(filepath.Base(fi), filepath.Base(pchHeader)) {
			fromPCH = append(fromPCH, fi)
		} else {
			rest = append(rest, fi)
		}
	}
	return rest, fromPCH
}

// msvcPredefinedMacros are the macros cl.exe defines for the target selected
// by the tool's directory, for example bin/Hostx64/arm64/cl.exe.
func msvcPredefinedMacros(toolPath string, args []string, source string) map[string]string {
	defines := map[string]string{
		"_WIN32":        "1",
		"_MSC_VER":      "1935",
		"_MSC_FULL_VER": "193599999",
	}
	if driverName(toolPath) == "clang-cl" {
		defines["__clang__"] = "1"
	}

	switch strings.ToLower(filepath.Base(filepath.Dir(strings.ReplaceAll(toolPath, `\`, "/")))) {
	case "arm64":
		defines["_WIN64"] = "1"
		defines["_M_ARM64"] = "1"
	case "x86":
		defines["_M_IX86"] = "600"
	default:
		defines["_WIN64"] = "1"
		defines["_M_X64"] = "100"
		defines["_M_AMD64"] = "100"
	}

	cpp := !strings.EqualFold(filepath.Ext(source), ".c")
	lang := "201402L"
	conforming := false
	for _, arg := range args {
		switch name := msvcOptionName(arg); {
		case name == "/TP" || strings.HasPrefix(name, "/Tp"):
			cpp = true
		case name == "/TC" || strings.HasPrefix(name, "/Tc"):
			cpp = false
		case name == "/Zc:__cplusplus":
			conforming = true
		case strings.HasPrefix(name, "/std:c++"):
			switch strings.TrimPrefix(name, "/std:c++") {
			case "14":
				lang = "201402L"
			case "17":
				lang = "201703L"
			case "20":
				lang = "202002L"
			case "latest":
				lang = "202004L"
			}
		}
	}
	if cpp {
		defines["_MSVC_LANG"] = lang
		defines["__cplusplus"] = "199711L"
		if conforming {
			defines["__cplusplus"] = lang
		}
	}
	return defines
}
