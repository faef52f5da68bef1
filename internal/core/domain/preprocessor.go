package domain

import "time"

// ScanResultVersion is the schema version of persisted scan results.
// Bump it whenever the scanner output changes shape or meaning.
const ScanResultVersion = 4

// DirectiveKind identifies the shape of a Directive.
type DirectiveKind uint8

const (
	// DirectiveInclude is an #include.
	DirectiveInclude DirectiveKind = iota + 1
	// DirectiveDefine is a #define.
	DirectiveDefine
	// DirectiveUndef is an #undef.
	DirectiveUndef
	// DirectiveIf is an #if, #ifdef, #ifndef or #elif.
	DirectiveIf
	// DirectiveBlock is the body of an #else.
	DirectiveBlock
	// DirectiveOpaque is a directive the scanner could not interpret.
	DirectiveOpaque
)

// IncludeKind identifies the operand form of an #include.
type IncludeKind uint8

const (
	// IncludeQuoted is #include "file".
	IncludeQuoted IncludeKind = iota + 1
	// IncludeSystem is #include <file>.
	IncludeSystem
	// IncludeExpansion is #include MACRO or #include MACRO(args).
	IncludeExpansion
)

// IncludeDirective is the payload of an #include.
type IncludeDirective struct {
	Kind IncludeKind `json:"kind"`
	// Path is the include operand without delimiters, or the macro text for expansions.
	Path string `json:"path"`
}

// DefineDirective is the payload of a #define.
type DefineDirective struct {
	Identifier string   `json:"identifier"`
	IsFunction bool     `json:"isFunction,omitempty"`
	Parameters []string `json:"parameters,omitempty"`
	Expansion  string   `json:"expansion,omitempty"`
}

// IfDirective is a conditional with its body and an optional else branch.
// An #elif is represented as an Else holding another DirectiveIf.
type IfDirective struct {
	Condition string      `json:"condition"`
	Body      []Directive `json:"body,omitempty"`
	Else      *Directive  `json:"else,omitempty"`
}

// Directive is a node of the directive tree produced by the scanner.
type Directive struct {
	Kind    DirectiveKind     `json:"kind"`
	Line    int               `json:"line"`
	Include *IncludeDirective `json:"include,omitempty"`
	Define  *DefineDirective  `json:"define,omitempty"`
	Undef   string            `json:"undef,omitempty"`
	If      *IfDirective      `json:"if,omitempty"`
	Block   []Directive       `json:"block,omitempty"`
	Opaque  string            `json:"opaque,omitempty"`
}

// ScanResult is the dependency-relevant view of a single source file.
type ScanResult struct {
	Directives                     []Directive `json:"directives,omitempty"`
	Includes                       []string    `json:"includes,omitempty"`
	SystemIncludes                 []string    `json:"systemIncludes,omitempty"`
	CompiledPlatformHeaderIncludes []string    `json:"compiledPlatformHeaderIncludes,omitempty"`
	Conditions                     []string    `json:"conditions,omitempty"`
}

// CacheStatus reports how a scan result was obtained.
type CacheStatus uint8

const (
	// CacheHit means the stored result was current and returned as is.
	CacheHit CacheStatus = iota + 1
	// CacheMissDueToMissingFile means no result was stored for the path.
	CacheMissDueToMissingFile
	// CacheMissDueToFileOutOfDate means the file changed after the result was stored.
	CacheMissDueToFileOutOfDate
	// CacheMissDueToOldCacheVersion means the result was produced by an older scanner.
	CacheMissDueToOldCacheVersion
)

// String returns a readable name of the status.
func (s CacheStatus) String() string {
	switch s {
	case CacheHit:
		return "hit"
	case CacheMissDueToMissingFile:
		return "miss-missing-file"
	case CacheMissDueToFileOutOfDate:
		return "miss-file-out-of-date"
	case CacheMissDueToOldCacheVersion:
		return "miss-old-cache-version"
	default:
		return "unknown"
	}
}

// ScanResultWithCacheMetadata is a scan result plus how it was obtained.
type ScanResultWithCacheMetadata struct {
	Result      *ScanResult `json:"result"`
	CacheStatus CacheStatus `json:"cacheStatus"`
}

// StoredScanResult is a persisted scan result row.
type StoredScanResult struct {
	Path           string
	LastWriteTicks int64
	CacheVersion   int
	Result         *ScanResult
}

// ResolveRequest describes a transitive include resolution.
// Every path is absolute.
type ResolveRequest struct {
	Path                 string            `json:"path"`
	ForceIncludesFromPCH []string          `json:"forceIncludesFromPch,omitempty"`
	ForceIncludes        []string          `json:"forceIncludes,omitempty"`
	IncludeDirs          []string          `json:"includeDirs,omitempty"`
	SystemIncludeDirs    []string          `json:"systemIncludeDirs,omitempty"`
	GlobalDefinitions    map[string]string `json:"globalDefinitions,omitempty"`
	BuildStartTicks      int64             `json:"buildStartTicks,omitempty"`
}

// ResolutionResult is the transitive include closure of a file.
type ResolutionResult struct {
	DependsOnPaths []string      `json:"dependsOnPaths"`
	ResolutionTime time.Duration `json:"resolutionTime"`
}

// CacheStats reports counters of a preprocessor cache.
type CacheStats struct {
	Hits   int64
	Misses int64
}
