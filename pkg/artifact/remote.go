package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aicell-lab/hypha-artifact-go/internal/httpx"
	"github.com/aicell-lab/hypha-artifact-go/internal/hyphaapi"
)

// listContents fetches the raw directory listing for a canonical path.
// version may be empty (latest), a version name, or VersionStage.
func (c *Client) listContents(ctx context.Context, dir, version string) ([]Entry, error) {
	req := c.http.R(ctx).
		SetQueryParam("artifact_id", c.artifactID).
		SetQueryParam("dir_path", wirePath(dir))
	if version != "" {
		req.SetQueryParam("version", version)
	}

	resp, err := req.Get("/list_files")
	if err != nil {
		return nil, wrapRemote("ls", dir, err)
	}
	if err := httpx.CheckResponse(resp); err != nil {
		return nil, wrapRemote("ls", dir, err)
	}

	var entries []Entry
	if err := json.Unmarshal(resp.Body(), &entries); err != nil {
		return nil, fmt.Errorf("%w: ls %s: decode listing: %v", ErrNetwork, dir, err)
	}
	for i := range entries {
		entries[i].Path = Join(dir, entries[i].Name)
	}
	return entries, nil
}

// readURL asks the artifact manager for a presigned download URL.
func (c *Client) readURL(ctx context.Context, path, version string) (string, error) {
	req := c.http.R(ctx).
		SetQueryParam("artifact_id", c.artifactID).
		SetQueryParam("file_path", wirePath(path))
	if version != "" {
		req.SetQueryParam("version", version)
	}

	resp, err := req.Get("/get_file")
	if err != nil {
		return "", wrapRemote("get_file", path, err)
	}
	if err := httpx.CheckResponse(resp); err != nil {
		return "", wrapRemote("get_file", path, err)
	}
	u, err := hyphaapi.DecodeURL(resp.Body())
	if err != nil {
		return "", fmt.Errorf("%w: get_file %s: %v", ErrNetwork, path, err)
	}
	return u, nil
}

// writeURL asks the artifact manager for a presigned upload URL. Requires an
// open stage.
func (c *Client) writeURL(ctx context.Context, path string) (string, error) {
	resp, err := c.postJSON(ctx, "/put_file", map[string]any{
		"artifact_id": c.artifactID,
		"file_path":   wirePath(path),
	})
	if err != nil {
		return "", wrapRemote("put_file", path, err)
	}
	u, err := hyphaapi.DecodeURL(resp)
	if err != nil {
		return "", fmt.Errorf("%w: put_file %s: %v", ErrNetwork, path, err)
	}
	return u, nil
}

// removeFile removes a single staged file.
func (c *Client) removeFile(ctx context.Context, path string) error {
	_, err := c.postJSON(ctx, "/remove_file", map[string]any{
		"artifact_id": c.artifactID,
		"file_path":   wirePath(path),
	})
	return wrapRemote("remove_file", path, err)
}

// startMultipart opens a multipart upload and returns the presigned part URLs.
func (c *Client) startMultipart(ctx context.Context, path string, partCount int) (*hyphaapi.MultipartInfo, error) {
	body, err := c.postJSON(ctx, "/put_file_start_multipart", map[string]any{
		"artifact_id": c.artifactID,
		"file_path":   wirePath(path),
		"part_count":  partCount,
	})
	if err != nil {
		return nil, wrapRemote("start_multipart", path, err)
	}
	var info hyphaapi.MultipartInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: start_multipart %s: decode response: %v", ErrNetwork, path, err)
	}
	if info.UploadID == "" {
		return nil, fmt.Errorf("%w: start_multipart %s: missing upload id", ErrNetwork, path)
	}
	return &info, nil
}

// completeMultipart finalises a multipart upload.
func (c *Client) completeMultipart(ctx context.Context, path, uploadID string, parts []hyphaapi.CompletedPart) error {
	_, err := c.postJSON(ctx, "/put_file_complete_multipart", map[string]any{
		"artifact_id": c.artifactID,
		"upload_id":   uploadID,
		"parts":       parts,
	})
	return wrapRemote("complete_multipart", path, err)
}

// downloadBytes fetches up to maxBytes from a presigned URL. A non-positive
// maxBytes fetches the whole object. The range request is advisory: if the
// storage backend ignores it the result is truncated locally.
func (c *Client) downloadBytes(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	req := c.http.Transfer(ctx)
	if maxBytes > 0 {
		req.SetHeader("Range", "bytes=0-"+strconv.FormatInt(maxBytes-1, 10))
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	if err := httpx.CheckResponse(resp); err != nil {
		return nil, err
	}
	data := resp.Body()
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		data = data[:maxBytes]
	}
	return data, nil
}

// uploadBytes writes data to a presigned URL and returns the ETag the storage
// backend assigned.
func (c *Client) uploadBytes(ctx context.Context, url string, data []byte) (string, error) {
	// Zero-byte writes are legitimate (Touch, directory markers), but resty
	// rejects a nil body.
	if data == nil {
		data = []byte{}
	}
	resp, err := c.http.Transfer(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(data).
		Put(url)
	if err != nil {
		return "", err
	}
	if err := httpx.CheckResponse(resp); err != nil {
		return "", err
	}
	return strings.Trim(resp.Header().Get("ETag"), `"`), nil
}

// postJSON issues a POST with a JSON body against the artifact manager and
// returns the raw response body. Errors are left untranslated for the caller.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload map[string]any) ([]byte, error) {
	resp, err := c.http.R(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(endpoint)
	if err != nil {
		return nil, err
	}
	if err := httpx.CheckResponse(resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}
