package artifact

import "fmt"

// ProgressType classifies a progress event.
type ProgressType string

const (
	ProgressInfo    ProgressType = "info"
	ProgressSuccess ProgressType = "success"
	ProgressError   ProgressType = "error"
	ProgressWarning ProgressType = "warning"
)

// ProgressEvent is the payload delivered to a ProgressFunc. Events are
// emitted synchronously; a slow callback slows the transfer.
type ProgressEvent struct {
	Type        ProgressType `json:"type"`
	Message     string       `json:"message"`
	File        string       `json:"file,omitempty"`
	TotalFiles  int          `json:"total_files,omitempty"`
	CurrentFile int          `json:"current_file,omitempty"`
}

// ProgressFunc receives transfer status events. Panics inside the callback
// are the caller's responsibility.
type ProgressFunc func(ProgressEvent)

// batchStatus tracks a multi-file transfer and emits the event sequence
// the CLI and library callers observe.
type batchStatus struct {
	action string
	total  int
	emit   ProgressFunc
}

func newBatchStatus(action string, total int, emit ProgressFunc) *batchStatus {
	b := &batchStatus{action: action, total: total, emit: emit}
	b.send(ProgressEvent{
		Type:       ProgressInfo,
		Message:    fmt.Sprintf("Starting %s of %d file(s)", action, total),
		TotalFiles: total,
	})
	return b
}

func (b *batchStatus) send(ev ProgressEvent) {
	if b.emit != nil {
		b.emit(ev)
	}
}

func (b *batchStatus) inProgress(file string, index int) {
	b.send(ProgressEvent{
		Type:        ProgressInfo,
		Message:     fmt.Sprintf("%s %s (%d/%d)", b.action, file, index+1, b.total),
		File:        file,
		TotalFiles:  b.total,
		CurrentFile: index + 1,
	})
}

func (b *batchStatus) success(file string) {
	b.send(ProgressEvent{
		Type:       ProgressSuccess,
		Message:    fmt.Sprintf("%s of %s complete", b.action, file),
		File:       file,
		TotalFiles: b.total,
	})
}

func (b *batchStatus) failure(file string, err error) {
	b.send(ProgressEvent{
		Type:       ProgressError,
		Message:    fmt.Sprintf("%s of %s failed: %v", b.action, file, err),
		File:       file,
		TotalFiles: b.total,
	})
}

func (b *batchStatus) warning(file, reason string) {
	b.send(ProgressEvent{
		Type:       ProgressWarning,
		Message:    fmt.Sprintf("skipped %s: %s", file, reason),
		File:       file,
		TotalFiles: b.total,
	})
}
