package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// FileMode selects how Open treats the remote file.
type FileMode string

const (
	// ModeRead opens for reading from a committed version or the stage.
	ModeRead FileMode = "r"
	// ModeWrite opens for writing; the file is replaced on Close.
	ModeWrite FileMode = "w"
	// ModeAppend opens for writing after the existing content.
	ModeAppend FileMode = "a"
)

// File is a sequential handle over one remote file. Reads are served from a
// single download; writes are buffered locally and flushed in one upload on
// Close. A File is not safe for concurrent use.
type File struct {
	client *Client
	ctx    context.Context
	path   string
	mode   FileMode

	data   []byte
	offset int64
	dirty  bool
	closed bool
}

// Open returns a file handle for path. Read mode fetches the content
// eagerly; append mode preloads the existing content so writes extend it.
// opts selects the version for reads (writes always target the stage).
func (c *Client) Open(ctx context.Context, path string, mode FileMode, opts *CatOptions) (*File, error) {
	p, err := Normalize(path)
	if err != nil {
		return nil, err
	}

	f := &File{client: c, ctx: ctx, path: p, mode: mode}
	switch mode {
	case ModeRead:
		data, err := c.readFile(ctx, p, opts.version())
		if err != nil {
			return nil, err
		}
		f.data = data
	case ModeWrite:
		// Starts empty; Close uploads whatever was written.
	case ModeAppend:
		data, err := c.readFile(ctx, p, VersionStage)
		if err != nil && !errors.Is(err, ErrNotFound) {
			// Anything but a missing file must not be mistaken for an
			// empty one, or Close would clobber the staged content.
			return nil, err
		}
		f.data = data
		f.offset = int64(len(data))
	default:
		return nil, fmt.Errorf("%w: unsupported file mode %q", ErrValidation, mode)
	}
	return f, nil
}

// Read implements io.Reader over the downloaded content.
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, fmt.Errorf("%w: file is closed", ErrValidation)
	}
	if f.mode != ModeRead {
		return 0, fmt.Errorf("%w: file not open for reading", ErrValidation)
	}
	if f.offset >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.offset:])
	f.offset += int64(n)
	return n, nil
}

// Write buffers p for upload on Close.
func (f *File) Write(p []byte) (int, error) {
	if f.closed {
		return 0, fmt.Errorf("%w: file is closed", ErrValidation)
	}
	if f.mode != ModeWrite && f.mode != ModeAppend {
		return 0, fmt.Errorf("%w: file not open for writing", ErrValidation)
	}
	end := f.offset + int64(len(p))
	if end > int64(len(f.data)) {
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}
	copy(f.data[f.offset:], p)
	f.offset = end
	f.dirty = true
	return len(p), nil
}

// Seek implements io.Seeker. Seeking past the end of a writable file grows
// it with zeros on the next write.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, fmt.Errorf("%w: file is closed", ErrValidation)
	}
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = f.offset + offset
	case io.SeekEnd:
		next = int64(len(f.data)) + offset
	default:
		return 0, fmt.Errorf("%w: invalid whence %d", ErrValidation, whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("%w: negative seek offset", ErrValidation)
	}
	f.offset = next
	return next, nil
}

// Size returns the current length of the buffered content.
func (f *File) Size() int64 { return int64(len(f.data)) }

// Close flushes buffered writes to the staged tree. Closing twice is a
// no-op; closing a read handle uploads nothing.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.mode == ModeRead || !f.dirty {
		return nil
	}
	return f.client.writeFile(f.ctx, f.path, f.data)
}
