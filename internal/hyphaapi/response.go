package hyphaapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// DecodeURL unwraps the presigned URL returned by get_file/put_file. The
// artifact manager serialises it as a JSON string; older deployments return
// the bare URL. Both forms are accepted.
func DecodeURL(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", errors.New("hyphaapi: empty URL response")
	}

	var asString string
	if err := json.Unmarshal(trimmed, &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if asString == "" {
			return "", errors.New("hyphaapi: empty URL in response")
		}
		return asString, nil
	}

	raw := strings.Trim(strings.TrimSpace(string(trimmed)), `"`)
	if raw == "" {
		return "", errors.New("hyphaapi: empty URL in response")
	}
	return raw, nil
}

// MultipartInfo is the response of put_file_start_multipart.
type MultipartInfo struct {
	UploadID string         `json:"upload_id"`
	Parts    []MultipartURL `json:"parts"`
}

// MultipartURL describes one presigned part upload slot.
type MultipartURL struct {
	PartNumber int    `json:"part_number"`
	URL        string `json:"url"`
}

// CompletedPart reports an uploaded part back to the artifact manager.
type CompletedPart struct {
	PartNumber int    `json:"part_number"`
	ETag       string `json:"etag"`
}

// ErrorDetail extracts a human-readable message from an error response body.
// The artifact manager wraps messages as {"detail": ...}; anything else is
// returned verbatim.
func ErrorDetail(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err == nil && envelope.Detail != nil {
		var asString string
		if err := json.Unmarshal(envelope.Detail, &asString); err == nil {
			return asString
		}
		return string(envelope.Detail)
	}
	return string(trimmed)
}
