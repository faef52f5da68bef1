// Package blobs stores file content addressed by its xxHash64 and lays it out into build directories.
package blobs

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// HexString formats a hash the way blob and tool directories are named.
func HexString(hash uint64) string {
	s := strconv.FormatUint(hash, 16)
	if len(s) < 16 {
		s = strings.Repeat("0", 16-len(s)) + s
	}
	return s
}

// HashFile returns the xxHash64 of the file at path.
func HashFile(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // caller provided path
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file"), "path", path)
	}
	return h.Sum64(), nil
}

// BuildDirectoryPath maps an absolute path of the dispatcher machine into target.
// The volume separator of Windows paths is dropped, so C:\src\a.cpp becomes
// <target>/C/src/a.cpp.
func BuildDirectoryPath(target, absolutePath string) string {
	vol := filepath.VolumeName(absolutePath)
	rest := absolutePath[len(vol):]
	vol = strings.TrimSuffix(vol, ":")
	return filepath.Join(target, vol, strings.TrimLeft(filepath.FromSlash(rest), string(filepath.Separator)))
}
