// Package artifact provides a file-system-like client for Hypha
// artifact-manager services: listing, reading, writing and transferring
// files inside a remote artifact, plus the staging lifecycle (edit, commit,
// discard) that gates every mutation.
//
// All mutating operations require the artifact to be in staging mode and
// land in a staged tree that becomes visible to readers only after Commit.
// Reads default to the latest committed version; pass the stage or a
// version name through the per-call options to read elsewhere.
//
// Large uploads switch automatically to a multipart protocol with bounded
// parallelism; see MultipartConfig.
package artifact
