package domain

import "go.trai.ch/zerr"

// DescriptorKind identifies which payload a TaskDescriptor carries.
type DescriptorKind uint8

const (
	// DescriptorUnknown is the zero value and is never valid.
	DescriptorUnknown DescriptorKind = iota
	// DescriptorLocal runs a process on the machine that holds the reservation.
	DescriptorLocal
	// DescriptorRemote runs a tool inside a worker build directory.
	DescriptorRemote
	// DescriptorCopy copies a single file.
	DescriptorCopy
)

// String returns the lower case name of the kind.
func (k DescriptorKind) String() string {
	switch k {
	case DescriptorLocal:
		return "local"
	case DescriptorRemote:
		return "remote"
	case DescriptorCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// LocalTaskDescriptor describes a process invocation.
type LocalTaskDescriptor struct {
	Path                 string            `json:"path"`
	Arguments            []string          `json:"arguments"`
	EnvironmentVariables map[string]string `json:"environmentVariables,omitempty"`
	WorkingDirectory     string            `json:"workingDirectory"`
}

// CopyTaskDescriptor describes a file copy.
type CopyTaskDescriptor struct {
	FromAbsolutePath string `json:"fromAbsolutePath"`
	ToAbsolutePath   string `json:"toAbsolutePath"`
}

// ToolExecutionInfo identifies a tool tree on a worker.
type ToolExecutionInfo struct {
	ToolXxHash64       uint64 `json:"toolXxHash64"`
	ToolExecutableName string `json:"toolExecutableName"`
}

// BlobRef refers to content in a blob store.
type BlobRef struct {
	XxHash64             uint64 `json:"xxHash64"`
	LastModifiedUtcTicks int64  `json:"lastModifiedUtcTicks,omitempty"`
}

// RemoteTaskDescriptor describes a tool invocation inside a worker build directory.
// The dispatcher fills the local fields; ToolExecutionInfo and InputsByBlob are
// filled once the tool and the inputs have been synchronised with the worker.
type RemoteTaskDescriptor struct {
	ToolLocalAbsolutePath        string             `json:"toolLocalAbsolutePath"`
	ToolExecutionInfo            ToolExecutionInfo  `json:"toolExecutionInfo"`
	Arguments                    []string           `json:"arguments"`
	EnvironmentVariables         map[string]string  `json:"environmentVariables,omitempty"`
	WorkingDirectoryAbsolutePath string             `json:"workingDirectoryAbsolutePath"`
	InputAbsolutePaths           []string           `json:"inputAbsolutePaths,omitempty"`
	InputsByBlob                 map[string]BlobRef `json:"inputsByBlob,omitempty"`
	OutputAbsolutePaths          []string           `json:"outputAbsolutePaths,omitempty"`
	RequireCleanWorkspace        bool               `json:"requireCleanWorkspace,omitempty"`
	UseFastLocalExecution        bool               `json:"useFastLocalExecution,omitempty"`
}

// TaskDescriptor is a closed variant over the three executable task shapes.
// Exactly one payload matching Kind is set.
type TaskDescriptor struct {
	Kind   DescriptorKind        `json:"kind"`
	Local  *LocalTaskDescriptor  `json:"local,omitempty"`
	Remote *RemoteTaskDescriptor `json:"remote,omitempty"`
	Copy   *CopyTaskDescriptor   `json:"copy,omitempty"`
}

// NewLocalDescriptor wraps d in a TaskDescriptor.
func NewLocalDescriptor(d *LocalTaskDescriptor) TaskDescriptor {
	return TaskDescriptor{Kind: DescriptorLocal, Local: d}
}

// NewRemoteDescriptor wraps d in a TaskDescriptor.
func NewRemoteDescriptor(d *RemoteTaskDescriptor) TaskDescriptor {
	return TaskDescriptor{Kind: DescriptorRemote, Remote: d}
}

// NewCopyDescriptor wraps d in a TaskDescriptor.
func NewCopyDescriptor(d *CopyTaskDescriptor) TaskDescriptor {
	return TaskDescriptor{Kind: DescriptorCopy, Copy: d}
}

// Validate checks that exactly the payload named by Kind is present.
func (d TaskDescriptor) Validate() error {
	set := 0
	for _, present := range []bool{d.Local != nil, d.Remote != nil, d.Copy != nil} {
		if present {
			set++
		}
	}
	ok := set == 1
	switch d.Kind {
	case DescriptorLocal:
		ok = ok && d.Local != nil
	case DescriptorRemote:
		ok = ok && d.Remote != nil
	case DescriptorCopy:
		ok = ok && d.Copy != nil
	default:
		ok = false
	}
	if !ok {
		return zerr.With(ErrInvalidTaskDescriptor, "kind", d.Kind.String())
	}
	return nil
}
