package artifact

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/aicell-lab/hypha-artifact-go/internal/httpx"
	"github.com/aicell-lab/hypha-artifact-go/internal/hyphaapi"
)

var (
	// ErrNotFound indicates a missing path or artifact.
	ErrNotFound = errors.New("artifact: not found")
	// ErrStagingRequired indicates a mutating operation attempted while the
	// artifact is not staged.
	ErrStagingRequired = errors.New("artifact: staging required")
	// ErrStagingConflict indicates the stage is already held by another actor.
	ErrStagingConflict = errors.New("artifact: already staged")
	// ErrNothingToCommit indicates commit/discard without an open stage.
	ErrNothingToCommit = errors.New("artifact: no staged changes")
	// ErrPermission indicates an auth or ACL rejection.
	ErrPermission = errors.New("artifact: permission denied")
	// ErrNetwork indicates a transport failure.
	ErrNetwork = errors.New("artifact: network failure")
	// ErrTimeout indicates an HTTP call exceeded its deadline.
	ErrTimeout = errors.New("artifact: timeout")
	// ErrValidation indicates malformed local arguments.
	ErrValidation = errors.New("artifact: invalid argument")
	// ErrIsADirectory indicates a file operation aimed at a directory.
	ErrIsADirectory = errors.New("artifact: is a directory")
	// ErrNotADirectory indicates a directory operation aimed at a file.
	ErrNotADirectory = errors.New("artifact: not a directory")
	// ErrDirectoryNotEmpty indicates rmdir on a non-empty directory.
	ErrDirectoryNotEmpty = errors.New("artifact: directory not empty")
	// ErrExists indicates the target already exists.
	ErrExists = errors.New("artifact: already exists")
)

// wrapRemote translates a transport error or non-2xx response into the error
// taxonomy. op and path give the caller-facing context.
func wrapRemote(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var httpErr *httpx.HTTPError
	if errors.As(err, &httpErr) {
		return classifyStatus(op, path, httpErr)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s %s: %v", ErrTimeout, op, path, err)
	case errors.Is(err, context.Canceled):
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s %s: %v", ErrTimeout, op, path, err)
	}
	return fmt.Errorf("%w: %s %s: %v", ErrNetwork, op, path, err)
}

func classifyStatus(op, path string, httpErr *httpx.HTTPError) error {
	detail := hyphaapi.ErrorDetail(httpErr.Body)
	if detail == "" {
		detail = http.StatusText(httpErr.StatusCode)
	}
	lower := strings.ToLower(detail)

	kind := ErrNetwork
	switch {
	case httpErr.StatusCode == http.StatusNotFound:
		kind = ErrNotFound
	case httpErr.StatusCode == http.StatusUnauthorized:
		kind = ErrPermission
	case httpErr.StatusCode == http.StatusRequestTimeout ||
		httpErr.StatusCode == http.StatusGatewayTimeout:
		kind = ErrTimeout
	case httpErr.StatusCode == http.StatusConflict:
		kind = ErrStagingConflict
	case httpErr.StatusCode == http.StatusForbidden:
		kind = ErrPermission
		if strings.Contains(lower, "stag") {
			kind = ErrStagingRequired
		}
	case httpErr.StatusCode == http.StatusBadRequest:
		kind = ErrValidation
		switch {
		case strings.Contains(lower, "no staged") || strings.Contains(lower, "nothing to commit"):
			kind = ErrNothingToCommit
		case strings.Contains(lower, "already staged") || strings.Contains(lower, "staged by"):
			kind = ErrStagingConflict
		case strings.Contains(lower, "stag"):
			kind = ErrStagingRequired
		case strings.Contains(lower, "not found") || strings.Contains(lower, "does not exist"):
			kind = ErrNotFound
		}
	case httpErr.StatusCode >= 500:
		kind = ErrNetwork
	}

	return fmt.Errorf("%w: %s %s: %s", kind, op, path, detail)
}

// fatal reports errors that must abort a whole batch regardless of the
// OnError policy: continuing would fail every remaining file the same way.
func fatal(err error) bool {
	return errors.Is(err, ErrPermission) ||
		errors.Is(err, ErrStagingRequired) ||
		errors.Is(err, ErrStagingConflict) ||
		errors.Is(err, context.Canceled)
}
