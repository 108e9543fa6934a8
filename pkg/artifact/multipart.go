package artifact

import (
	"context"
	"fmt"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/aicell-lab/hypha-artifact-go/internal/hyphaapi"
)

// uploadFile sends one local file to the staged tree, choosing between a
// single-shot PUT and the multipart protocol based on size.
func (c *Client) uploadFile(ctx context.Context, local, remote string, mp MultipartConfig) error {
	fi, err := os.Stat(local)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, local)
		}
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrIsADirectory, local)
	}

	if mp.shouldUse(fi.Size()) {
		return c.uploadMultipart(ctx, local, remote, fi.Size(), mp)
	}

	data, err := os.ReadFile(local)
	if err != nil {
		return err
	}
	return c.writeFile(ctx, remote, data)
}

// uploadMultipart splits the file into fixed-size parts, uploads them with
// bounded parallelism, and finalises the upload. On any part failure the
// upload is abandoned without finalisation; the server expires it.
func (c *Client) uploadMultipart(ctx context.Context, local, remote string, size int64, mp MultipartConfig) error {
	mp = mp.withDefaults()
	if mp.ChunkSize < MinChunkSize {
		return fmt.Errorf("%w: chunk size %d below minimum %d", ErrValidation, mp.ChunkSize, int64(MinChunkSize))
	}

	partCount := int((size + mp.ChunkSize - 1) / mp.ChunkSize)
	if partCount == 0 {
		// Empty file, nothing to chunk.
		return c.writeFile(ctx, remote, nil)
	}

	c.log.Debug().
		Str("path", remote).
		Int64("size", size).
		Int("parts", partCount).
		Msg("starting multipart upload")

	info, err := c.startMultipart(ctx, remote, partCount)
	if err != nil {
		return err
	}
	if len(info.Parts) != partCount {
		return fmt.Errorf("%w: start_multipart %s: got %d part URLs, want %d",
			ErrNetwork, remote, len(info.Parts), partCount)
	}

	f, err := os.Open(local)
	if err != nil {
		return err
	}
	defer f.Close()

	completed := make([]hyphaapi.CompletedPart, len(info.Parts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mp.MaxParallel)
	for i, part := range info.Parts {
		i, part := i, part
		g.Go(func() error {
			offset := int64(part.PartNumber-1) * mp.ChunkSize
			length := mp.ChunkSize
			if remaining := size - offset; remaining < length {
				length = remaining
			}
			if length <= 0 {
				return fmt.Errorf("%w: part %d beyond end of file", ErrValidation, part.PartNumber)
			}

			buf := make([]byte, length)
			if _, err := f.ReadAt(buf, offset); err != nil {
				return fmt.Errorf("read part %d of %s: %w", part.PartNumber, local, err)
			}

			etag, err := c.uploadBytes(gctx, part.URL, buf)
			if err != nil {
				return wrapRemote("upload_part", fmt.Sprintf("%s#%d", remote, part.PartNumber), err)
			}
			completed[i] = hyphaapi.CompletedPart{PartNumber: part.PartNumber, ETag: etag}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(completed, func(i, j int) bool {
		return completed[i].PartNumber < completed[j].PartNumber
	})
	if err := c.completeMultipart(ctx, remote, info.UploadID, completed); err != nil {
		return err
	}
	c.log.Debug().Str("path", remote).Str("upload_id", info.UploadID).Msg("multipart upload complete")
	return nil
}
