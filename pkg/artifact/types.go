package artifact

// EntryType distinguishes files from directory placeholders in listings.
type EntryType string

const (
	// TypeFile marks a regular file entry.
	TypeFile EntryType = "file"
	// TypeDirectory marks a directory entry.
	TypeDirectory EntryType = "directory"
)

// Entry describes a file or directory inside the artifact. Path is filled in
// by the client (the wire format carries only the name).
type Entry struct {
	Name         string    `json:"name"`
	Path         string    `json:"path,omitempty"`
	Type         EntryType `json:"type"`
	Size         int64     `json:"size"`
	LastModified float64   `json:"last_modified,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Type == TypeDirectory }

// OnError selects the batch failure policy for multi-file operations.
type OnError string

const (
	// OnErrorRaise aborts the batch on the first failure.
	OnErrorRaise OnError = "raise"
	// OnErrorIgnore skips failed files and keeps going.
	OnErrorIgnore OnError = "ignore"
)

// VersionStage selects the staged tree instead of the latest committed one.
const VersionStage = "stage"

const (
	// DefaultMultipartThreshold is the file size above which uploads switch
	// to the multipart protocol.
	DefaultMultipartThreshold = 100 * 1024 * 1024
	// DefaultChunkSize is the multipart part size.
	DefaultChunkSize = 10 * 1024 * 1024
	// MinChunkSize is the smallest part size the storage backend accepts.
	MinChunkSize = 5 * 1024 * 1024
	// DefaultMaxParallel bounds concurrent part uploads.
	DefaultMaxParallel = 4
	// DefaultHeadSize is the number of bytes Head reads when none is given.
	DefaultHeadSize = 1024
)

// MultipartConfig tunes the multipart upload decision and chunking.
type MultipartConfig struct {
	// Enabled forces multipart regardless of file size.
	Enabled bool
	// Threshold is the size at or above which multipart kicks in. Zero
	// means the default of 100 MiB.
	Threshold int64
	// ChunkSize is the per-part size. Zero means the default of 10 MiB.
	ChunkSize int64
	// MaxParallel bounds concurrent part uploads. Zero means 4.
	MaxParallel int
}

func (m MultipartConfig) withDefaults() MultipartConfig {
	if m.Threshold <= 0 {
		m.Threshold = DefaultMultipartThreshold
	}
	if m.ChunkSize <= 0 {
		m.ChunkSize = DefaultChunkSize
	}
	if m.MaxParallel <= 0 {
		m.MaxParallel = DefaultMaxParallel
	}
	return m
}

// shouldUse applies the multipart decision rule to a file size.
func (m MultipartConfig) shouldUse(size int64) bool {
	if size <= 0 {
		return false
	}
	return m.Enabled || size >= m.Threshold
}

// LsOptions controls Ls and LsNames.
type LsOptions struct {
	// Stage lists the staged tree instead of the latest committed version.
	Stage bool
	// Version selects a specific committed version. Ignored when Stage is
	// set.
	Version string
}

// CatOptions controls Cat and CatMany.
type CatOptions struct {
	// Recursive expands directory paths into all contained files
	// (CatMany only).
	Recursive bool
	Stage     bool
	Version   string
	// OnError selects the batch failure policy. Defaults to OnErrorRaise.
	OnError OnError
}

// FindOptions controls Find.
type FindOptions struct {
	// MaxDepth limits recursion; zero or negative means unlimited.
	MaxDepth int
	// WithDirs includes directory entries in the results.
	WithDirs bool
	Stage    bool
	Version  string
}

// CopyOptions controls Copy.
type CopyOptions struct {
	Recursive bool
	// MaxDepth limits recursion for recursive copies; zero means unlimited.
	MaxDepth int
	Version  string
	OnError  OnError
}

// RemoveOptions controls Remove.
type RemoveOptions struct {
	Recursive bool
	MaxDepth  int
}

// TransferOptions controls Upload and Download batches.
type TransferOptions struct {
	Recursive bool
	MaxDepth  int
	OnError   OnError
	// Progress receives synchronous status events for each file.
	Progress ProgressFunc
	// Multipart overrides the client-level multipart configuration
	// (Upload only).
	Multipart *MultipartConfig
	// Version selects the remote version to download from.
	Version string
	Stage   bool
}

// EditRequest updates artifact metadata and/or toggles staging mode.
type EditRequest struct {
	Manifest map[string]any
	Type     string
	Config   map[string]any
	Secrets  map[string]string
	Version  string
	Comment  string
	Stage    bool
}

// CreateRequest creates a new artifact.
type CreateRequest struct {
	Alias       string
	ParentID    string
	Manifest    map[string]any
	Type        string
	Config      map[string]any
	Permissions map[string]any
	Secrets     map[string]string
	Version     string
	Stage       bool
	Comment     string
	Overwrite   bool
}

// DeleteRequest deletes the artifact itself.
type DeleteRequest struct {
	DeleteFiles bool
	Recursive   bool
	Version     string
}

func (o *LsOptions) version() string {
	if o == nil {
		return ""
	}
	if o.Stage {
		return VersionStage
	}
	return o.Version
}

func (o *CatOptions) version() string {
	if o == nil {
		return ""
	}
	if o.Stage {
		return VersionStage
	}
	return o.Version
}

func (o *CatOptions) onError() OnError {
	if o == nil || o.OnError == "" {
		return OnErrorRaise
	}
	return o.OnError
}

func (o *FindOptions) version() string {
	if o == nil {
		return ""
	}
	if o.Stage {
		return VersionStage
	}
	return o.Version
}

func (o *TransferOptions) version() string {
	if o == nil {
		return ""
	}
	if o.Stage {
		return VersionStage
	}
	return o.Version
}

func (o *TransferOptions) onError() OnError {
	if o == nil || o.OnError == "" {
		return OnErrorRaise
	}
	return o.OnError
}

func (o *TransferOptions) progress() ProgressFunc {
	if o == nil {
		return nil
	}
	return o.Progress
}
