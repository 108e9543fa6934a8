package artifact

import "context"

// Edit updates artifact metadata and optionally opens a stage. With
// req.Stage set, subsequent writes land in the staged tree until Commit or
// Discard.
func (c *Client) Edit(ctx context.Context, req EditRequest) error {
	payload := map[string]any{
		"artifact_id": c.artifactID,
	}
	if req.Manifest != nil {
		payload["manifest"] = req.Manifest
	}
	if req.Type != "" {
		payload["type"] = req.Type
	}
	if req.Config != nil {
		payload["config"] = req.Config
	}
	if req.Secrets != nil {
		payload["secrets"] = req.Secrets
	}
	if req.Version != "" {
		payload["version"] = req.Version
	}
	if req.Comment != "" {
		payload["comment"] = req.Comment
	}
	if req.Stage {
		payload["stage"] = true
	}
	_, err := c.postJSON(ctx, "/edit", payload)
	return wrapRemote("edit", c.artifactID, err)
}

// Stage opens the staging area without touching metadata. Shorthand for
// Edit with only Stage set.
func (c *Client) Stage(ctx context.Context) error {
	return c.Edit(ctx, EditRequest{Stage: true})
}

// Commit atomically promotes all staged changes into a new immutable
// version. version names the new version; empty lets the server assign one.
func (c *Client) Commit(ctx context.Context, version, comment string) error {
	payload := map[string]any{
		"artifact_id": c.artifactID,
	}
	if version != "" {
		payload["version"] = version
	}
	if comment != "" {
		payload["comment"] = comment
	}
	_, err := c.postJSON(ctx, "/commit", payload)
	return wrapRemote("commit", c.artifactID, err)
}

// Discard drops every staged change and closes the staging area. Committed
// versions are untouched.
func (c *Client) Discard(ctx context.Context) error {
	_, err := c.postJSON(ctx, "/discard", map[string]any{
		"artifact_id": c.artifactID,
	})
	return wrapRemote("discard", c.artifactID, err)
}

// Create creates a new artifact on the server and returns a client bound to
// it. The receiver's connection settings carry over.
func (c *Client) Create(ctx context.Context, req CreateRequest) error {
	payload := map[string]any{}
	if req.Alias != "" {
		payload["alias"] = req.Alias
	} else {
		payload["alias"] = c.alias
	}
	payload["workspace"] = c.workspace
	if req.ParentID != "" {
		payload["parent_id"] = req.ParentID
	}
	if req.Manifest != nil {
		payload["manifest"] = req.Manifest
	}
	if req.Type != "" {
		payload["type"] = req.Type
	}
	if req.Config != nil {
		payload["config"] = req.Config
	}
	if req.Permissions != nil {
		payload["permissions"] = req.Permissions
	}
	if req.Secrets != nil {
		payload["secrets"] = req.Secrets
	}
	if req.Version != "" {
		payload["version"] = req.Version
	}
	if req.Stage {
		payload["stage"] = true
	}
	if req.Comment != "" {
		payload["comment"] = req.Comment
	}
	if req.Overwrite {
		payload["overwrite"] = true
	}
	_, err := c.postJSON(ctx, "/create", payload)
	return wrapRemote("create", c.artifactID, err)
}

// DeleteArtifact removes the artifact itself, optionally with its stored
// files and child artifacts. This is irreversible.
func (c *Client) DeleteArtifact(ctx context.Context, req DeleteRequest) error {
	payload := map[string]any{
		"artifact_id": c.artifactID,
	}
	if req.DeleteFiles {
		payload["delete_files"] = true
	}
	if req.Recursive {
		payload["recursive"] = true
	}
	if req.Version != "" {
		payload["version"] = req.Version
	}
	_, err := c.postJSON(ctx, "/delete", payload)
	return wrapRemote("delete", c.artifactID, err)
}
