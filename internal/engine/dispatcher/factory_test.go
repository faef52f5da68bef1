package dispatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const vr = domain.VirtualRootPlaceholder

func TestIsCompilerDriver(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "/usr/bin/gcc", want: true},
		{path: "/usr/bin/g++-13", want: true},
		{path: "/usr/bin/x86_64-linux-gnu-g++-13", want: true},
		{path: "/opt/llvm/bin/clang++", want: true},
		{path: "clang-17", want: true},
		{path: `C:\llvm\bin\CLANG.EXE`, want: true},
		{path: "cc", want: true},
		{path: "/bin/sh", want: false},
		{path: "/usr/bin/ld", want: false},
		{path: "cl.exe", want: false},
		{path: "clang-cl", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isCompilerDriver(tt.path))
		})
	}
}

func TestCompilerFamilyOf(t *testing.T) {
	tests := []struct {
		path string
		want compilerFamily
	}{
		{path: "/usr/bin/g++-13", want: familyGCC},
		{path: "/opt/llvm/bin/clang", want: familyGCC},
		{path: `C:\VS\bin\Hostx64\x64\cl.exe`, want: familyMSVC},
		{path: "/opt/llvm/bin/clang-cl", want: familyMSVC},
		{path: `C:\LLVM\bin\clang-tidy.exe`, want: familyClangTidy},
		{path: "clang-tidy-17", want: familyClangTidy},
		{path: "/bin/sh", want: familyNone},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, compilerFamilyOf(tt.path))
		})
	}
}

func TestParseCompile(t *testing.T) {
	wd := "/src/proj"
	args := []string{
		"-c", "lib/a.cpp",
		"-o", "out/a.o",
		"-Iinclude", "-I", "/abs/include",
		"-isystem", "/sys",
		"-include", "pch.h",
		"-DFOO", "-DBAR=2", "-D", "BAZ=x", "-UBAR",
		"-MMD", "-O2", "-x", "c++",
	}

	cmd, ok := parseCompile(args, wd)
	require.True(t, ok)

	assert.Equal(t, "/src/proj/lib/a.cpp", cmd.source)
	assert.Equal(t, []string{"/src/proj/out/a.o", "/src/proj/out/a.d"}, cmd.outputs)
	assert.Equal(t, []string{"/src/proj/include", "/abs/include"}, cmd.includeDirs)
	assert.Equal(t, []string{"/sys"}, cmd.systemIncludeDirs)
	assert.Equal(t, []string{"/src/proj/pch.h"}, cmd.forceIncludes)
	assert.Equal(t, map[string]string{"FOO": "1", "BAZ": "x"}, cmd.defines)
	assert.Equal(t, []string{
		"-c", vr + "/src/proj/lib/a.cpp",
		"-o", vr + "/src/proj/out/a.o",
		"-I", vr + "/src/proj/include", "-I", vr + "/abs/include",
		"-isystem", vr + "/sys",
		"-include", vr + "/src/proj/pch.h",
		"-DFOO", "-DBAR=2", "-DBAZ=x", "-UBAR",
		"-MMD", "-O2", "-x", "c++",
	}, cmd.args)
}

func TestParseCompile_ExplicitDependencyFile(t *testing.T) {
	cmd, ok := parseCompile([]string{"-c", "a.c", "-o", "a.o", "-MD", "-MF", "deps/a.dep"}, "/w")
	require.True(t, ok)
	assert.Equal(t, []string{"/w/a.o", "/w/deps/a.dep"}, cmd.outputs)
}

func TestParseCompile_NotACompile(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "link step", args: []string{"a.o", "b.o", "-o", "app"}},
		{name: "no output", args: []string{"-c", "a.c"}},
		{name: "no source", args: []string{"-c", "-o", "a.o"}},
		{name: "two sources", args: []string{"-c", "a.c", "b.c", "-o", "a.o"}},
		{name: "dangling include dir", args: []string{"-c", "a.c", "-o", "a.o", "-I"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := parseCompile(tt.args, "/w")
			assert.False(t, ok)
		})
	}
}

func TestParseCopy(t *testing.T) {
	wd := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(wd, "dir"), 0o750))

	tests := []struct {
		name string
		tool string
		args []string
		want *domain.CopyTaskDescriptor
	}{
		{
			name: "cp",
			tool: "/bin/cp",
			args: []string{"a.txt", "b.txt"},
			want: &domain.CopyTaskDescriptor{
				FromAbsolutePath: filepath.Join(wd, "a.txt"),
				ToAbsolutePath:   filepath.Join(wd, "b.txt"),
			},
		},
		{
			name: "cmd copy",
			tool: `C:\Windows\System32\cmd.exe`,
			args: []string{"/C", "COPY", "a.txt", "/out/b.txt"},
			want: &domain.CopyTaskDescriptor{
				FromAbsolutePath: filepath.Join(wd, "a.txt"),
				ToAbsolutePath:   "/out/b.txt",
			},
		},
		{name: "flags", tool: "cp", args: []string{"-r", "a"}},
		{name: "too many args", tool: "cp", args: []string{"a", "b", "c"}},
		{name: "directory destination", tool: "cp", args: []string{"a.txt", "dir"}},
		{name: "trailing separator", tool: "cp", args: []string{"a.txt", "out/"}},
		{name: "other tool", tool: "/bin/mv", args: []string{"a.txt", "b.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCopy(tt.tool, tt.args, wd))
		})
	}
}

func TestExpandResponseFiles(t *testing.T) {
	wd := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(wd, "inner.rsp"), []byte(`-DX=1 "-I with space"`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(wd, "outer.rsp"), []byte("-c a.c\n@inner.rsp"), 0o600))

	args, err := expandResponseFiles([]string{"@outer.rsp", "-o", "a.o"}, wd, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"-c", "a.c", "-DX=1", "-I with space", "-o", "a.o"}, args)

	t.Run("recursion is bounded", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(wd, "loop.rsp"), []byte("@loop.rsp"), 0o600))
		_, err := expandResponseFiles([]string{"@loop.rsp"}, wd, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidBuildSet)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := expandResponseFiles([]string{"@nope.rsp"}, wd, 0)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestRemoteEnvironment(t *testing.T) {
	assert.Nil(t, remoteEnvironment(nil))
	assert.Equal(t,
		map[string]string{"PATH": "/usr/bin"},
		remoteEnvironment(map[string]string{"PATH": "/usr/bin", "TMPDIR": "/tmp/x", "HOSTNAME": "box"}),
	)
}

func TestResolveWorkingDirectory(t *testing.T) {
	assert.Equal(t, "/job", resolveWorkingDirectory("/job", ""))
	assert.Equal(t, "/task", resolveWorkingDirectory("/job", "/task"))
	assert.Equal(t, "/job/sub", resolveWorkingDirectory("/job", "sub"))
	assert.Equal(t, "sub", resolveWorkingDirectory("", "sub"))
}

func compileTask(toolPath, params string, allowRemote bool) *domain.Task {
	env := &domain.Environment{Name: "E", Variables: map[string]string{"MODE": "release"}}
	return &domain.Task{
		Name:        domain.NewInternedString("compile"),
		Tool:        &domain.Tool{Name: "cc", Path: toolPath, Params: params, AllowRemote: allowRemote},
		Environment: env,
	}
}

func TestDescriptorFactory_Prepare(t *testing.T) {
	ctrl := gomock.NewController(t)
	job := &Job{WorkingDirectory: "/w", Environment: map[string]string{"MODE": "debug", "HOME": "/home/u"}}

	t.Run("compile step", func(t *testing.T) {
		f := newDescriptorFactory(mocks.NewMockPreprocessorCache(ctrl))
		inv := f.prepare(compileTask("/usr/bin/clang++", "-c a.cpp -o a.o -D__cplusplus=201402L", true), job)

		require.True(t, inv.remotable())
		assert.Equal(t, map[string]string{"MODE": "release", "HOME": "/home/u"}, inv.env)
		assert.Equal(t, "/usr/bin/clang++", inv.compile.toolPath)
		assert.Equal(t, "1", inv.compile.defines["__clang__"])
		assert.Equal(t, "201402L", inv.compile.defines["__cplusplus"], "explicit definitions win over predefined ones")
	})

	t.Run("c source", func(t *testing.T) {
		f := newDescriptorFactory(mocks.NewMockPreprocessorCache(ctrl))
		inv := f.prepare(compileTask("/usr/bin/gcc", "-c a.c -o a.o", true), job)
		require.True(t, inv.remotable())
		assert.NotContains(t, inv.compile.defines, "__cplusplus")
		assert.NotContains(t, inv.compile.defines, "__clang__")
	})

	t.Run("gcc gets no msvc macros", func(t *testing.T) {
		f := newDescriptorFactory(mocks.NewMockPreprocessorCache(ctrl))
		inv := f.prepare(compileTask("/usr/bin/gcc", "-c a.c -o a.o", true), job)
		require.True(t, inv.remotable())
		assert.Equal(t, "4", inv.compile.defines["__GNUC__"])
		assert.NotContains(t, inv.compile.defines, "_MSC_VER")
	})

	t.Run("msvc compile", func(t *testing.T) {
		f := newDescriptorFactory(mocks.NewMockPreprocessorCache(ctrl))
		inv := f.prepare(compileTask("/vs/bin/Hostx64/x64/cl.exe", "/nologo /c /Foa.obj /D_MSC_VER=1929 a.cpp", true), job)
		require.True(t, inv.remotable())
		assert.Equal(t, "/w/a.cpp", inv.compile.source)
		assert.Equal(t, []string{"/w/a.obj"}, inv.compile.outputs)
		assert.Equal(t, "1929", inv.compile.defines["_MSC_VER"], "explicit definitions win over predefined ones")
		assert.Equal(t, "1", inv.compile.defines["_WIN64"])
		assert.NotContains(t, inv.compile.defines, "__GNUC__")
	})

	t.Run("remote not allowed", func(t *testing.T) {
		f := newDescriptorFactory(mocks.NewMockPreprocessorCache(ctrl))
		assert.False(t, f.prepare(compileTask("/usr/bin/gcc", "-c a.c -o a.o", false), job).remotable())
	})

	t.Run("without cache", func(t *testing.T) {
		f := newDescriptorFactory(nil)
		assert.False(t, f.prepare(compileTask("/usr/bin/gcc", "-c a.c -o a.o", true), job).remotable())
	})

	t.Run("copy", func(t *testing.T) {
		f := newDescriptorFactory(nil)
		inv := f.prepare(compileTask("/bin/cp", "a b", false), job)
		assert.Equal(t, &domain.CopyTaskDescriptor{FromAbsolutePath: "/w/a", ToAbsolutePath: "/w/b"}, inv.copy)
	})
}

func TestDescriptorFactory_Describe(t *testing.T) {
	job := &Job{WorkingDirectory: "/w", Environment: map[string]string{"USERNAME": "me"}}
	task := compileTask("/usr/bin/gcc", "-c a.c -o a.o -include force.h", true)

	t.Run("local process", func(t *testing.T) {
		f := newDescriptorFactory(nil)
		desc, err := f.describe(context.Background(), f.prepare(compileTask("/bin/sh", "-c true", false), job), true, 0)
		require.NoError(t, err)
		assert.Equal(t, domain.NewLocalDescriptor(&domain.LocalTaskDescriptor{
			Path:                 "/bin/sh",
			Arguments:            []string{"-c", "true"},
			EnvironmentVariables: map[string]string{"USERNAME": "me", "MODE": "release"},
			WorkingDirectory:     "/w",
		}), desc)
	})

	t.Run("fast local compile skips resolution", func(t *testing.T) {
		f := newDescriptorFactory(mocks.NewMockPreprocessorCache(gomock.NewController(t)))
		desc, err := f.describe(context.Background(), f.prepare(task, job), true, 0)
		require.NoError(t, err)
		require.Equal(t, domain.DescriptorRemote, desc.Kind)
		assert.True(t, desc.Remote.UseFastLocalExecution)
		assert.Empty(t, desc.Remote.InputAbsolutePaths)
		assert.Equal(t, []string{"-c", "a.c", "-o", "a.o", "-include", "force.h"}, desc.Remote.Arguments)
		assert.Equal(t, map[string]string{"MODE": "release"}, desc.Remote.EnvironmentVariables)
	})

	t.Run("remote compile", func(t *testing.T) {
		cache := mocks.NewMockPreprocessorCache(gomock.NewController(t))
		cache.EXPECT().GetResolvedDependencies(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req domain.ResolveRequest) (*domain.ResolutionResult, error) {
				assert.Equal(t, "/w/a.c", req.Path)
				assert.Equal(t, []string{"/w/force.h"}, req.ForceIncludes)
				assert.Equal(t, int64(42), req.BuildStartTicks)
				return &domain.ResolutionResult{DependsOnPaths: []string{"/w/b.h", "/w/force.h"}}, nil
			})

		f := newDescriptorFactory(cache)
		desc, err := f.describe(context.Background(), f.prepare(task, job), false, 42)
		require.NoError(t, err)
		require.NoError(t, desc.Validate())
		assert.False(t, desc.Remote.UseFastLocalExecution)
		assert.Equal(t, []string{"/w/a.c", "/w/b.h", "/w/force.h"}, desc.Remote.InputAbsolutePaths)
		assert.Equal(t, []string{"/w/a.o"}, desc.Remote.OutputAbsolutePaths)
		assert.Equal(t, "/w", desc.Remote.WorkingDirectoryAbsolutePath)
	})

	t.Run("resolution error", func(t *testing.T) {
		cache := mocks.NewMockPreprocessorCache(gomock.NewController(t))
		missing := &domain.IncludeNotFoundError{SearchValue: "b.h"}
		cache.EXPECT().GetResolvedDependencies(gomock.Any(), gomock.Any()).Return(nil, missing)

		f := newDescriptorFactory(cache)
		_, err := f.describe(context.Background(), f.prepare(task, job), false, 0)
		var notFound *domain.IncludeNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "b.h", notFound.SearchValue)
	})
}
