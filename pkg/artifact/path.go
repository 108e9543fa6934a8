package artifact

import (
	"fmt"
	gopath "path"
	"strings"
)

// Normalize returns the canonical artifact-relative form of p: exactly one
// leading slash, no trailing slash except for the root, no doubled
// separators, "." and ".." resolved. Normalize is idempotent.
func Normalize(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: empty path", ErrValidation)
	}
	return gopath.Clean("/" + strings.Trim(p, " ")), nil
}

// Join joins a directory and a name without doubling separators. The result
// is canonical whenever dir is.
func Join(dir, name string) string {
	return gopath.Join(dir, name)
}

// parentOf returns the canonical parent directory of a canonical path.
func parentOf(p string) string {
	return gopath.Dir(p)
}

// baseOf returns the final element of a canonical path.
func baseOf(p string) string {
	return gopath.Base(p)
}

// relativeTo strips base from a canonical path, returning the remainder
// without a leading slash.
func relativeTo(p, base string) string {
	if base == "/" {
		return strings.TrimPrefix(p, "/")
	}
	return strings.TrimPrefix(strings.TrimPrefix(p, base), "/")
}

// wirePath converts a canonical path into the relative form the artifact
// manager expects. The root maps to the empty string.
func wirePath(p string) string {
	return strings.TrimPrefix(p, "/")
}
