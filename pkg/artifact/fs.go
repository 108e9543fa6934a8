package artifact

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Ls lists the entries directly under path.
func (c *Client) Ls(ctx context.Context, path string, opts *LsOptions) ([]Entry, error) {
	dir, err := Normalize(path)
	if err != nil {
		return nil, err
	}
	return c.listContents(ctx, dir, opts.version())
}

// LsNames lists the full paths of the entries directly under path.
func (c *Client) LsNames(ctx context.Context, path string, opts *LsOptions) ([]string, error) {
	entries, err := c.Ls(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Path
	}
	return names, nil
}

// Info returns metadata for a single path. The root always exists as a
// directory; everything else is resolved by listing its parent.
func (c *Client) Info(ctx context.Context, path string, opts *LsOptions) (Entry, error) {
	p, err := Normalize(path)
	if err != nil {
		return Entry{}, err
	}
	if p == "/" {
		return Entry{Name: "/", Path: "/", Type: TypeDirectory}, nil
	}

	siblings, err := c.listContents(ctx, parentOf(p), opts.version())
	if err != nil {
		return Entry{}, err
	}
	name := baseOf(p)
	for _, e := range siblings {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, p)
}

// InfoMany resolves metadata for several paths. The whole batch fails on the
// first missing path; nothing partial is returned.
func (c *Client) InfoMany(ctx context.Context, paths []string, opts *LsOptions) (map[string]Entry, error) {
	out := make(map[string]Entry, len(paths))
	for _, p := range paths {
		e, err := c.Info(ctx, p, opts)
		if err != nil {
			return nil, err
		}
		out[p] = e
	}
	return out, nil
}

// Exists reports whether a path exists. A missing path is not an error;
// transport failures are.
func (c *Client) Exists(ctx context.Context, path string, opts *LsOptions) (bool, error) {
	_, err := c.Info(ctx, path, opts)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// ExistsMany reports existence for several paths at once.
func (c *Client) ExistsMany(ctx context.Context, paths []string, opts *LsOptions) (map[string]bool, error) {
	out := make(map[string]bool, len(paths))
	for _, p := range paths {
		ok, err := c.Exists(ctx, p, opts)
		if err != nil {
			return nil, err
		}
		out[p] = ok
	}
	return out, nil
}

// IsDir reports whether path exists and is a directory.
func (c *Client) IsDir(ctx context.Context, path string, opts *LsOptions) (bool, error) {
	e, err := c.Info(ctx, path, opts)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return e.IsDir(), nil
}

// IsFile reports whether path exists and is a regular file.
func (c *Client) IsFile(ctx context.Context, path string, opts *LsOptions) (bool, error) {
	e, err := c.Info(ctx, path, opts)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return !e.IsDir(), nil
}

// Size returns the byte size of a file. Directories report zero.
func (c *Client) Size(ctx context.Context, path string, opts *LsOptions) (int64, error) {
	e, err := c.Info(ctx, path, opts)
	if err != nil {
		return 0, err
	}
	if e.IsDir() {
		return 0, nil
	}
	return e.Size, nil
}

// Sizes returns the sizes of several paths. The batch fails on the first
// missing path.
func (c *Client) Sizes(ctx context.Context, paths []string, opts *LsOptions) (map[string]int64, error) {
	out := make(map[string]int64, len(paths))
	for _, p := range paths {
		n, err := c.Size(ctx, p, opts)
		if err != nil {
			return nil, err
		}
		out[p] = n
	}
	return out, nil
}

// Find walks the tree under path and returns the matching entries sorted by
// path. Directories that fail to list mid-walk are skipped rather than
// aborting the walk.
func (c *Client) Find(ctx context.Context, path string, opts *FindOptions) ([]Entry, error) {
	root, err := Normalize(path)
	if err != nil {
		return nil, err
	}

	var (
		version  = opts.version()
		maxDepth = 0
		withDirs = false
	)
	if opts != nil {
		maxDepth = opts.MaxDepth
		withDirs = opts.WithDirs
	}

	var results []Entry
	var walk func(dir string, depth int) error
	walk = func(dir string, depth int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := c.listContents(ctx, dir, version)
		if err != nil {
			if dir == root {
				return err
			}
			// A directory that vanished mid-walk is not fatal.
			return nil
		}
		for _, e := range entries {
			if e.IsDir() {
				if withDirs {
					results = append(results, e)
				}
				if maxDepth <= 0 || depth+1 < maxDepth {
					if err := walk(e.Path, depth+1); err != nil {
						return err
					}
				}
				continue
			}
			results = append(results, e)
		}
		return nil
	}

	if err := walk(root, 0); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

// FindPaths is Find returning only the paths.
func (c *Client) FindPaths(ctx context.Context, path string, opts *FindOptions) ([]string, error) {
	entries, err := c.Find(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths, nil
}

// keepFileName marks directories in object storage, which has no native
// directory objects.
const keepFileName = ".keep"

// Mkdir materialises a directory by writing a placeholder file into the
// staged tree. With createParents false the parent must already exist.
func (c *Client) Mkdir(ctx context.Context, path string, createParents bool) error {
	p, err := Normalize(path)
	if err != nil {
		return err
	}
	if p == "/" {
		return nil
	}
	if !createParents {
		parent := parentOf(p)
		if parent != "/" {
			ok, err := c.IsDir(ctx, parent, &LsOptions{Stage: true})
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: parent directory %s", ErrNotFound, parent)
			}
		}
	}
	return c.writeFile(ctx, Join(p, keepFileName), nil)
}

// Makedirs creates a directory and any missing parents. With existOK false
// it fails if the directory already exists.
func (c *Client) Makedirs(ctx context.Context, path string, existOK bool) error {
	p, err := Normalize(path)
	if err != nil {
		return err
	}
	if !existOK {
		ok, err := c.IsDir(ctx, p, &LsOptions{Stage: true})
		if err != nil {
			return err
		}
		if ok {
			return fmt.Errorf("%w: %s", ErrExists, p)
		}
	}
	return c.Mkdir(ctx, p, true)
}

// Rmdir removes an empty directory from the staged tree. Only the
// placeholder file is removed; a directory holding anything else is
// rejected.
func (c *Client) Rmdir(ctx context.Context, path string) error {
	p, err := Normalize(path)
	if err != nil {
		return err
	}
	if p == "/" {
		return fmt.Errorf("%w: cannot remove the root", ErrValidation)
	}

	e, err := c.Info(ctx, p, &LsOptions{Stage: true})
	if err != nil {
		return err
	}
	if !e.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, p)
	}

	entries, err := c.listContents(ctx, p, VersionStage)
	if err != nil {
		return err
	}
	for _, child := range entries {
		if child.Name != keepFileName {
			return fmt.Errorf("%w: %s", ErrDirectoryNotEmpty, p)
		}
	}
	for _, child := range entries {
		if err := c.removeFile(ctx, child.Path); err != nil {
			return err
		}
	}
	return nil
}

// Touch creates an empty file in the staged tree, or truncates an existing
// one.
func (c *Client) Touch(ctx context.Context, path string) error {
	p, err := Normalize(path)
	if err != nil {
		return err
	}
	return c.writeFile(ctx, p, nil)
}

// Remove deletes a file from the staged tree. Directories require Recursive,
// which removes every file underneath.
func (c *Client) Remove(ctx context.Context, path string, opts *RemoveOptions) error {
	p, err := Normalize(path)
	if err != nil {
		return err
	}

	recursive := opts != nil && opts.Recursive
	maxDepth := 0
	if opts != nil {
		maxDepth = opts.MaxDepth
	}

	e, err := c.Info(ctx, p, &LsOptions{Stage: true})
	if err != nil {
		return err
	}
	if e.IsDir() {
		if !recursive {
			return fmt.Errorf("%w: %s (use recursive)", ErrIsADirectory, p)
		}
		files, err := c.Find(ctx, p, &FindOptions{Stage: true, MaxDepth: maxDepth})
		if err != nil {
			return err
		}
		for _, f := range files {
			if err := c.removeFile(ctx, f.Path); err != nil {
				return err
			}
		}
		return nil
	}
	return c.removeFile(ctx, p)
}
