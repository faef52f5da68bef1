package blobs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/openge/internal/adapters/blobs"
)

func TestHasher_HashTool(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cl.exe"), []byte("exe"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "c1.dll"), []byte("dll"), 0o600))

	hasher := blobs.NewHasher()
	manifest, err := hasher.HashTool(context.Background(), filepath.Join(dir, "cl.exe"))
	require.NoError(t, err)

	assert.Equal(t, dir, manifest.LocalBasePath)
	assert.Equal(t, "cl.exe", manifest.ToolExecutableName)
	assert.Equal(t, map[string]uint64{
		"cl.exe":     xxhash.Sum64String("exe"),
		"bin/c1.dll": xxhash.Sum64String("dll"),
	}, manifest.Files)

	again, err := blobs.NewHasher().HashTool(context.Background(), filepath.Join(dir, "cl.exe"))
	require.NoError(t, err)
	assert.Equal(t, manifest.ToolXxHash64, again.ToolXxHash64, "tool hash is deterministic")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "c1.dll"), []byte("changed"), 0o600))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "bin", "c1.dll"), future, future))

	changed, err := hasher.HashTool(context.Background(), filepath.Join(dir, "cl.exe"))
	require.NoError(t, err)
	assert.NotEqual(t, manifest.ToolXxHash64, changed.ToolXxHash64)
}

func TestHasher_HashInputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.h")
	b := filepath.Join(dir, "b.h")
	require.NoError(t, os.WriteFile(a, []byte("same"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("same"), 0o600))

	manifest, err := blobs.NewHasher().HashInputs(context.Background(), []string{a, b})
	require.NoError(t, err)

	hash := xxhash.Sum64String("same")
	assert.Equal(t, hash, manifest.PathsToBlobs[a].XxHash64)
	assert.Equal(t, hash, manifest.PathsToBlobs[b].XxHash64)
	assert.Len(t, manifest.HashesToPaths, 1)

	_, err = blobs.NewHasher().HashInputs(context.Background(), []string{filepath.Join(dir, "missing.h")})
	assert.Error(t, err)
}
