package artifact

import (
	"context"
	"fmt"
)

// readFile downloads a whole file from the given version.
func (c *Client) readFile(ctx context.Context, path, version string) ([]byte, error) {
	url, err := c.readURL(ctx, path, version)
	if err != nil {
		return nil, err
	}
	data, err := c.downloadBytes(ctx, url, 0)
	if err != nil {
		return nil, wrapRemote("download", path, err)
	}
	return data, nil
}

// writeFile uploads data into the staged tree.
func (c *Client) writeFile(ctx context.Context, path string, data []byte) error {
	url, err := c.writeURL(ctx, path)
	if err != nil {
		return err
	}
	if _, err := c.uploadBytes(ctx, url, data); err != nil {
		return wrapRemote("upload", path, err)
	}
	return nil
}

// Cat returns the full contents of a single file.
func (c *Client) Cat(ctx context.Context, path string, opts *CatOptions) ([]byte, error) {
	p, err := Normalize(path)
	if err != nil {
		return nil, err
	}
	return c.readFile(ctx, p, opts.version())
}

// CatMany returns the contents of several paths keyed by canonical path.
// With Recursive set, directory paths expand to every file beneath them.
// OnErrorIgnore skips unreadable files; fatal errors abort regardless.
func (c *Client) CatMany(ctx context.Context, paths []string, opts *CatOptions) (map[string][]byte, error) {
	version := opts.version()
	policy := opts.onError()
	recursive := opts != nil && opts.Recursive

	var files []string
	for _, raw := range paths {
		p, err := Normalize(raw)
		if err != nil {
			return nil, err
		}
		if recursive {
			isDir, err := c.IsDir(ctx, p, &LsOptions{Version: version})
			if err != nil {
				return nil, err
			}
			if isDir {
				stage := version == VersionStage
				found, err := c.FindPaths(ctx, p, &FindOptions{Version: version, Stage: stage})
				if err != nil {
					return nil, err
				}
				files = append(files, found...)
				continue
			}
		}
		files = append(files, p)
	}

	out := make(map[string][]byte, len(files))
	for _, f := range files {
		data, err := c.readFile(ctx, f, version)
		if err != nil {
			if policy == OnErrorIgnore && !fatal(err) {
				continue
			}
			return nil, err
		}
		out[f] = data
	}
	return out, nil
}

// Head returns the first n bytes of a file. Zero or negative n means the
// default of 1 KiB. Files shorter than n come back whole.
func (c *Client) Head(ctx context.Context, path string, n int64, opts *CatOptions) ([]byte, error) {
	p, err := Normalize(path)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultHeadSize
	}
	url, err := c.readURL(ctx, p, opts.version())
	if err != nil {
		return nil, err
	}
	data, err := c.downloadBytes(ctx, url, n)
	if err != nil {
		return nil, wrapRemote("head", p, err)
	}
	return data, nil
}

// Copy duplicates remote files within the artifact. The source is read from
// the selected version; the destination always lands in the staged tree.
// Copying a directory requires Recursive.
func (c *Client) Copy(ctx context.Context, src, dst string, opts *CopyOptions) error {
	from, err := Normalize(src)
	if err != nil {
		return err
	}
	to, err := Normalize(dst)
	if err != nil {
		return err
	}

	version := ""
	recursive := false
	maxDepth := 0
	policy := OnErrorRaise
	if opts != nil {
		version = opts.Version
		recursive = opts.Recursive
		maxDepth = opts.MaxDepth
		if opts.OnError != "" {
			policy = opts.OnError
		}
	}

	info, err := c.Info(ctx, from, &LsOptions{Version: version})
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return c.copyFile(ctx, from, to, version)
	}
	if !recursive {
		return fmt.Errorf("%w: %s (use recursive)", ErrIsADirectory, from)
	}

	stage := version == VersionStage
	files, err := c.Find(ctx, from, &FindOptions{Version: version, Stage: stage, MaxDepth: maxDepth})
	if err != nil {
		return err
	}
	for _, f := range files {
		target := Join(to, relativeTo(f.Path, from))
		if err := c.copyFile(ctx, f.Path, target, version); err != nil {
			if policy == OnErrorIgnore && !fatal(err) {
				continue
			}
			return err
		}
	}
	return nil
}

func (c *Client) copyFile(ctx context.Context, src, dst, version string) error {
	data, err := c.readFile(ctx, src, version)
	if err != nil {
		return err
	}
	return c.writeFile(ctx, dst, data)
}
