package domain

// ProcessSpec describes a process to start.
type ProcessSpec struct {
	Path             string
	Arguments        []string
	Environment      map[string]string
	WorkingDirectory string
	// Pty attaches the process to a pseudo-terminal instead of pipes.
	// Standard error is then merged into standard output.
	Pty bool
}

// ToolBlob is a single file of a tool tree.
type ToolBlob struct {
	XxHash64      uint64 `json:"xxHash64"`
	LocalHintPath string `json:"localHintPath,omitempty"`
}

// ToolManifest is the hashed content of the directory that contains a tool executable.
type ToolManifest struct {
	LocalBasePath      string
	ToolXxHash64       uint64
	ToolExecutableName string
	// Files maps Unix-style relative paths to blob hashes.
	Files map[string]uint64
}

// BlobManifest is the hashed content of a set of input files.
type BlobManifest struct {
	PathsToBlobs  map[string]BlobRef
	HashesToPaths map[uint64]string
}
