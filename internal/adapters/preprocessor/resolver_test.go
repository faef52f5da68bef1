package preprocessor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/openge/internal/adapters/preprocessor"
	"go.trai.ch/openge/internal/core/domain"
)

// fileScanner scans files from disk without caching.
type fileScanner struct{}

func (fileScanner) ScanFile(_ context.Context, path string) (*domain.ScanResultWithCacheMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &domain.ScanResultWithCacheMetadata{
		Result:      preprocessor.Scan(strings.Split(string(data), "\n")),
		CacheStatus: domain.CacheMissDueToMissingFile,
	}, nil
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func abs(root string, names ...string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = filepath.Join(root, filepath.FromSlash(name))
	}
	return out
}

func TestResolve_NoIncludes(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"main.cpp": "int main() { return 0; }\n"})

	res, err := preprocessor.Resolve(context.Background(), fileScanner{}, domain.ResolveRequest{
		Path: filepath.Join(root, "main.cpp"),
	})

	require.NoError(t, err)
	assert.Empty(t, res.DependsOnPaths)
}

func TestResolve_Transitive(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/main.cpp":   "#include \"a.h\"\n",
		"src/a.h":        "#pragma once\n#include <sys.h>\n#include \"b.h\"\n",
		"include/b.h":    "#include \"a.h\"\n",
		"system/sys.h":   "// system header\n",
		"include/sys.h":  "// shadowed by the system directory\n",
		"include/unused": "",
	})

	res, err := preprocessor.Resolve(context.Background(), fileScanner{}, domain.ResolveRequest{
		Path:              filepath.Join(root, "src", "main.cpp"),
		IncludeDirs:       abs(root, "include"),
		SystemIncludeDirs: abs(root, "system"),
	})

	require.NoError(t, err)
	assert.Equal(t, abs(root, "include/b.h", "src/a.h", "system/sys.h"), res.DependsOnPaths)
}

func TestResolve_Conditions(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.cpp": strings.Join([]string{
			"#if PLATFORM_WINDOWS",
			"#include \"win.h\"",
			"#else",
			"#include \"other.h\"",
			"#endif",
			"#define USE_EXTRA 1",
			"#if USE_EXTRA && !defined(SKIP_EXTRA)",
			"#include \"extra.h\"",
			"#endif",
			"#undef USE_EXTRA",
			"#ifdef USE_EXTRA",
			"#include \"never.h\"",
			"#endif",
		}, "\n"),
		"win.h":   "",
		"other.h": "",
		"extra.h": "",
	})

	res, err := preprocessor.Resolve(context.Background(), fileScanner{}, domain.ResolveRequest{
		Path:              filepath.Join(root, "main.cpp"),
		GlobalDefinitions: map[string]string{"PLATFORM_WINDOWS": "1"},
	})

	require.NoError(t, err)
	assert.Equal(t, abs(root, "extra.h", "win.h"), res.DependsOnPaths)
}

func TestResolve_IncludeNotFound(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.cpp": "#include \"a.h\"\n",
		"a.h":      "#include \"missing.h\"\n",
	})

	_, err := preprocessor.Resolve(context.Background(), fileScanner{}, domain.ResolveRequest{
		Path: filepath.Join(root, "main.cpp"),
	})

	var notFound *domain.IncludeNotFoundError
	require.True(t, errors.As(err, &notFound), "expected IncludeNotFoundError, got %v", err)
	assert.Equal(t, "missing.h", notFound.SearchValue)

	var resErr *domain.ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, abs(root, "main.cpp", "a.h"), resErr.Chain)
}

func TestResolve_IdentifierNotDefined(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.cpp": "#if SOME_FLAG\n#include \"a.h\"\n#endif\n",
		"a.h":      "",
	})

	_, err := preprocessor.Resolve(context.Background(), fileScanner{}, domain.ResolveRequest{
		Path: filepath.Join(root, "main.cpp"),
	})

	var notDefined *domain.IdentifierNotDefinedError
	require.True(t, errors.As(err, &notDefined), "expected IdentifierNotDefinedError, got %v", err)
	assert.Equal(t, "SOME_FLAG", notDefined.Identifier)
}

func TestResolve_ForceIncludes(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"pch.h":        "#include \"common.h\"\n#define FROM_PCH 1\n",
		"common.h":     "",
		"force.h":      "#include \"forced_dep.h\"\n",
		"forced_dep.h": "",
		"main.cpp":     "#include \"common.h\"\n#if FROM_PCH\n#include \"own.h\"\n#endif\n",
		"own.h":        "",
	})

	res, err := preprocessor.Resolve(context.Background(), fileScanner{}, domain.ResolveRequest{
		Path:                 filepath.Join(root, "main.cpp"),
		ForceIncludesFromPCH: abs(root, "pch.h"),
		ForceIncludes:        abs(root, "force.h"),
	})

	require.NoError(t, err)
	assert.Equal(t, abs(root, "force.h", "forced_dep.h", "own.h"), res.DependsOnPaths)
}

func TestResolve_ExpansionInclude(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.cpp": strings.Join([]string{
			"#define PREPROCESSOR_TO_STRING(x) PREPROCESSOR_TO_STRING_INNER(x)",
			"#define PREPROCESSOR_TO_STRING_INNER(x) #x",
			"#define PREPROCESSOR_JOIN(x, y) PREPROCESSOR_JOIN_INNER(x, y)",
			"#define PREPROCESSOR_JOIN_INNER(x, y) x##y",
			"#define COMPILED_PLATFORM_HEADER(Suffix) PREPROCESSOR_TO_STRING(PREPROCESSOR_JOIN(PLATFORM_HEADER_NAME/PLATFORM_HEADER_NAME, Suffix))",
			"#include COMPILED_PLATFORM_HEADER(Platform.h)",
		}, "\n"),
		"include/Windows/WindowsPlatform.h": "",
	})

	res, err := preprocessor.Resolve(context.Background(), fileScanner{}, domain.ResolveRequest{
		Path:              filepath.Join(root, "main.cpp"),
		IncludeDirs:       abs(root, "include"),
		GlobalDefinitions: map[string]string{"PLATFORM_HEADER_NAME": "Windows"},
	})

	require.NoError(t, err)
	assert.Equal(t, abs(root, "include/Windows/WindowsPlatform.h"), res.DependsOnPaths)
}

func TestResolve_ExpansionIncludeUndefined(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.cpp": "#include COMPILED_PLATFORM_HEADER(Platform.h)\n",
	})

	_, err := preprocessor.Resolve(context.Background(), fileScanner{}, domain.ResolveRequest{
		Path: filepath.Join(root, "main.cpp"),
	})

	var notDefined *domain.IdentifierNotDefinedError
	require.True(t, errors.As(err, &notDefined), "expected IdentifierNotDefinedError, got %v", err)
	assert.Equal(t, "COMPILED_PLATFORM_HEADER", notDefined.Identifier)
}

func TestResolve_ParentChainLookup(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/main.cpp": "#include \"sub/x.h\"\n",
		"src/sub/x.h":  "#include \"y.h\"\n",
		"src/y.h":      "",
	})

	res, err := preprocessor.Resolve(context.Background(), fileScanner{}, domain.ResolveRequest{
		Path: filepath.Join(root, "src", "main.cpp"),
	})

	require.NoError(t, err)
	assert.Equal(t, abs(root, "src/sub/x.h", "src/y.h"), res.DependsOnPaths)
}

func TestResolve_RelativePath(t *testing.T) {
	_, err := preprocessor.Resolve(context.Background(), fileScanner{}, domain.ResolveRequest{
		Path: "relative/main.cpp",
	})

	assert.ErrorIs(t, err, domain.ErrPathNotAbsolute)
}

func TestResolve_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"main.cpp": ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := preprocessor.Resolve(ctx, fileScanner{}, domain.ResolveRequest{
		Path: filepath.Join(root, "main.cpp"),
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve_CompilerPredefinedMacros(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/main.c": "#include <portable.h>\n",
		"sys/portable.h": strings.Join([]string{
			"#ifdef _WIN32",
			"#include <windows.h>",
			"#elif defined(__linux__) && __GNUC__",
			"#include <unistd.h>",
			"#else",
			"#include <generic.h>",
			"#endif",
		}, "\n"),
		"sys/unistd.h":  "",
		"sys/generic.h": "",
		"win/windows.h": "",
	})

	tests := []struct {
		name    string
		dirs    []string
		defines map[string]string
		want    []string
	}{
		{
			name:    "gcc on linux",
			dirs:    abs(root, "sys"),
			defines: map[string]string{"__GNUC__": "4", "__linux__": "1", "__STDC__": "1"},
			want:    abs(root, "sys/portable.h", "sys/unistd.h"),
		},
		{
			name:    "msvc",
			dirs:    abs(root, "sys", "win"),
			defines: map[string]string{"_WIN32": "1", "_MSC_VER": "1935"},
			want:    abs(root, "sys/portable.h", "win/windows.h"),
		},
		{
			name: "nothing predefined",
			dirs: abs(root, "sys"),
			want: abs(root, "sys/generic.h", "sys/portable.h"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := preprocessor.Resolve(context.Background(), fileScanner{}, domain.ResolveRequest{
				Path:              filepath.Join(root, "src", "main.c"),
				SystemIncludeDirs: tt.dirs,
				GlobalDefinitions: tt.defines,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.DependsOnPaths)
		})
	}
}

func TestResolve_EmptyCondition(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.c": "#if\n#include \"a.h\"\n#endif\n#include \"b.h\"\n",
		"a.h":    "",
		"b.h":    "",
	})

	res, err := preprocessor.Resolve(context.Background(), fileScanner{}, domain.ResolveRequest{
		Path: filepath.Join(root, "main.c"),
	})

	require.NoError(t, err)
	assert.Equal(t, abs(root, "a.h", "b.h"), res.DependsOnPaths)
}
