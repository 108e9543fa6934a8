package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// localPair maps one local file to its remote destination.
type localPair struct {
	local  string
	remote string
}

// Upload copies a local file or directory tree into the staged tree. Files
// above the multipart threshold go through the multipart protocol. Progress
// events, when requested, are emitted synchronously per file.
func (c *Client) Upload(ctx context.Context, localPath, remotePath string, opts *TransferOptions) error {
	remote, err := Normalize(remotePath)
	if err != nil {
		return err
	}

	fi, err := os.Stat(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, localPath)
		}
		return err
	}

	mp := c.multipart
	if opts != nil && opts.Multipart != nil {
		mp = opts.Multipart.withDefaults()
	}

	var pairs []localPair
	if fi.IsDir() {
		recursive := opts == nil || opts.Recursive
		if !recursive {
			return fmt.Errorf("%w: %s (use recursive)", ErrIsADirectory, localPath)
		}
		maxDepth := 0
		if opts != nil {
			maxDepth = opts.MaxDepth
		}
		pairs, err = localWalk(localPath, remote, maxDepth)
		if err != nil {
			return err
		}
	} else {
		pairs = []localPair{{local: localPath, remote: remote}}
	}

	c.log.Debug().Str("local", localPath).Str("remote", remote).Int("files", len(pairs)).Msg("starting upload")
	status := newBatchStatus("upload", len(pairs), opts.progress())
	policy := opts.onError()

	var failed int
	for i, pair := range pairs {
		status.inProgress(pair.remote, i)
		if err := c.uploadFile(ctx, pair.local, pair.remote, mp); err != nil {
			if fatal(err) {
				status.failure(pair.remote, err)
				return err
			}
			if policy == OnErrorIgnore {
				status.warning(pair.remote, err.Error())
				failed++
				continue
			}
			status.failure(pair.remote, err)
			return err
		}
		status.success(pair.remote)
	}
	if failed > 0 {
		status.send(ProgressEvent{
			Type:       ProgressWarning,
			Message:    fmt.Sprintf("upload finished with %d of %d file(s) skipped", failed, len(pairs)),
			TotalFiles: len(pairs),
		})
	}
	return nil
}

// Download copies a remote file or directory tree to the local filesystem.
func (c *Client) Download(ctx context.Context, remotePath, localPath string, opts *TransferOptions) error {
	remote, err := Normalize(remotePath)
	if err != nil {
		return err
	}
	version := opts.version()

	info, err := c.Info(ctx, remote, &LsOptions{Version: version})
	if err != nil {
		return err
	}

	var pairs []localPair
	if info.IsDir() {
		recursive := opts == nil || opts.Recursive
		if !recursive {
			return fmt.Errorf("%w: %s (use recursive)", ErrIsADirectory, remote)
		}
		maxDepth := 0
		if opts != nil {
			maxDepth = opts.MaxDepth
		}
		stage := version == VersionStage
		files, err := c.Find(ctx, remote, &FindOptions{Version: version, Stage: stage, MaxDepth: maxDepth})
		if err != nil {
			return err
		}
		for _, f := range files {
			pairs = append(pairs, localPair{
				local:  filepath.Join(localPath, filepath.FromSlash(relativeTo(f.Path, remote))),
				remote: f.Path,
			})
		}
	} else {
		target := localPath
		if fi, err := os.Stat(localPath); err == nil && fi.IsDir() {
			target = filepath.Join(localPath, baseOf(remote))
		}
		pairs = []localPair{{local: target, remote: remote}}
	}

	c.log.Debug().Str("remote", remote).Str("local", localPath).Int("files", len(pairs)).Msg("starting download")
	status := newBatchStatus("download", len(pairs), opts.progress())
	policy := opts.onError()

	var failed int
	for i, pair := range pairs {
		status.inProgress(pair.remote, i)
		if err := c.downloadFile(ctx, pair.remote, pair.local, version); err != nil {
			if fatal(err) {
				status.failure(pair.remote, err)
				return err
			}
			if policy == OnErrorIgnore {
				status.warning(pair.remote, err.Error())
				failed++
				continue
			}
			status.failure(pair.remote, err)
			return err
		}
		status.success(pair.remote)
	}
	if failed > 0 {
		status.send(ProgressEvent{
			Type:       ProgressWarning,
			Message:    fmt.Sprintf("download finished with %d of %d file(s) skipped", failed, len(pairs)),
			TotalFiles: len(pairs),
		})
	}
	return nil
}

func (c *Client) downloadFile(ctx context.Context, remote, local, version string) error {
	data, err := c.readFile(ctx, remote, version)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(local); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(local, data, 0o644)
}

// localWalk enumerates the files under root and maps each to its remote
// destination under remoteBase. maxDepth of zero or less means unlimited.
func localWalk(root, remoteBase string, maxDepth int) ([]localPair, error) {
	var pairs []localPair
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			if maxDepth > 0 && rel != "." && strings.Count(filepath.ToSlash(rel), "/")+1 >= maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		pairs = append(pairs, localPair{
			local:  path,
			remote: Join(remoteBase, filepath.ToSlash(rel)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}
