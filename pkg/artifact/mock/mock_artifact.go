// Package mock implements an in-memory Hypha artifact manager for tests and
// sandboxing. It speaks the same HTTP surface as a real deployment,
// including presigned download/upload URLs and the multipart protocol, so
// the client can be exercised end to end without a server.
package mock

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aicell-lab/hypha-artifact-go/internal/devseed"
)

const servicePrefix = "/public/services/artifact-manager"

type version struct {
	name  string
	files map[string][]byte
}

type artifactState struct {
	versions []version
	staged   map[string][]byte
	staging  bool
}

// latest returns the newest committed file set, or nil when nothing has been
// committed yet.
func (a *artifactState) latest() map[string][]byte {
	if len(a.versions) == 0 {
		return nil
	}
	return a.versions[len(a.versions)-1].files
}

func (a *artifactState) byVersion(name string) (map[string][]byte, bool) {
	for _, v := range a.versions {
		if v.name == name {
			return v.files, true
		}
	}
	return nil, false
}

type uploadGrant struct {
	artifactID string
	path       string
}

type multipartSession struct {
	artifactID string
	path       string
	count      int
	parts      map[int][]byte
}

// Mock is an in-memory artifact manager.
type Mock struct {
	mu         sync.RWMutex
	artifacts  map[string]*artifactState
	downloads  map[string][]byte
	uploads    map[string]uploadGrant
	multiparts map[string]*multipartSession

	requiredToken string
}

// New constructs an empty artifact manager holding no artifacts.
func New() *Mock {
	return &Mock{
		artifacts:  make(map[string]*artifactState),
		downloads:  make(map[string][]byte),
		uploads:    make(map[string]uploadGrant),
		multiparts: make(map[string]*multipartSession),
	}
}

// RequireToken makes every API call demand the given bearer token.
// Presigned URLs stay token-free, as in a real deployment.
func (m *Mock) RequireToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requiredToken = token
}

// CreateArtifact registers an empty artifact with one empty committed
// version, so reads work immediately.
func (m *Mock) CreateArtifact(artifactID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createLocked(artifactID)
}

func (m *Mock) createLocked(artifactID string) *artifactState {
	a := &artifactState{
		versions: []version{{name: "v0", files: map[string][]byte{}}},
	}
	m.artifacts[artifactID] = a
	return a
}

// Seed preloads artifacts from seed entries. Each artifact's files land in
// its first committed version.
func (m *Mock) Seed(seeds []devseed.ArtifactSeed) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range seeds {
		a := m.createLocked(s.ArtifactID)
		files := a.versions[0].files
		for _, e := range s.Files {
			if strings.TrimSpace(e.Path) == "" {
				return fmt.Errorf("mock artifact: seed entry missing path")
			}
			data, err := base64.StdEncoding.DecodeString(e.Base64)
			if err != nil {
				return fmt.Errorf("mock artifact: decode base64 for %s: %w", e.Path, err)
			}
			files[normalizeWire(e.Path)] = data
		}
	}
	return nil
}

// SetFiles replaces the latest committed version of an artifact, creating
// the artifact if needed. Paths are artifact-relative without a leading
// slash.
func (m *Mock) SetFiles(artifactID string, files map[string][]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.artifacts[artifactID]
	if !ok {
		a = m.createLocked(artifactID)
	}
	snapshot := make(map[string][]byte, len(files))
	for k, v := range files {
		snapshot[normalizeWire(k)] = append([]byte(nil), v...)
	}
	a.versions[len(a.versions)-1].files = snapshot
}

// Files returns a copy of the file set for a version ("" means latest,
// "stage" the staged tree). Intended for test assertions.
func (m *Mock) Files(artifactID, versionName string) map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.artifacts[artifactID]
	if !ok {
		return nil
	}
	var src map[string][]byte
	switch versionName {
	case "stage":
		src = a.staged
	case "":
		src = a.latest()
	default:
		src, _ = a.byVersion(versionName)
	}
	if src == nil {
		return nil
	}
	out := make(map[string][]byte, len(src))
	for k, v := range src {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

// Staging reports whether the artifact currently has an open stage.
func (m *Mock) Staging(artifactID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.artifacts[artifactID]
	return ok && a.staging
}

// VersionNames lists committed version names in commit order.
func (m *Mock) VersionNames(artifactID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.artifacts[artifactID]
	if !ok {
		return nil
	}
	names := make([]string, len(a.versions))
	for i, v := range a.versions {
		names[i] = v.name
	}
	return names
}

// Handler returns the HTTP surface: the artifact-manager API under its
// service prefix plus the presigned transfer endpoints under /s3/.
func (m *Mock) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(servicePrefix+"/list_files", m.auth(m.handleListFiles))
	mux.HandleFunc(servicePrefix+"/get_file", m.auth(m.handleGetFile))
	mux.HandleFunc(servicePrefix+"/put_file", m.auth(m.handlePutFile))
	mux.HandleFunc(servicePrefix+"/remove_file", m.auth(m.handleRemoveFile))
	mux.HandleFunc(servicePrefix+"/edit", m.auth(m.handleEdit))
	mux.HandleFunc(servicePrefix+"/commit", m.auth(m.handleCommit))
	mux.HandleFunc(servicePrefix+"/discard", m.auth(m.handleDiscard))
	mux.HandleFunc(servicePrefix+"/create", m.auth(m.handleCreate))
	mux.HandleFunc(servicePrefix+"/delete", m.auth(m.handleDelete))
	mux.HandleFunc(servicePrefix+"/put_file_start_multipart", m.auth(m.handleStartMultipart))
	mux.HandleFunc(servicePrefix+"/put_file_complete_multipart", m.auth(m.handleCompleteMultipart))
	mux.HandleFunc("/s3/dl/", m.handleDownload)
	mux.HandleFunc("/s3/ul/", m.handleUpload)
	mux.HandleFunc("/s3/mp/", m.handleUploadPart)
	return mux
}

func (m *Mock) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		required := m.requiredToken
		m.mu.RUnlock()
		if required != "" && r.Header.Get("Authorization") != "Bearer "+required {
			writeDetail(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next(w, r)
	}
}

// resolveView picks the file set a read should see. stage reads require an
// open stage, matching server behaviour.
func (m *Mock) resolveView(a *artifactState, versionName string) (map[string][]byte, int, string) {
	switch versionName {
	case "stage":
		if !a.staging {
			return nil, http.StatusBadRequest, "artifact must be in staging mode"
		}
		return a.staged, 0, ""
	case "":
		files := a.latest()
		if files == nil {
			files = map[string][]byte{}
		}
		return files, 0, ""
	default:
		files, ok := a.byVersion(versionName)
		if !ok {
			return nil, http.StatusNotFound, fmt.Sprintf("version %q does not exist", versionName)
		}
		return files, 0, ""
	}
}

type listEntry struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Size         int64   `json:"size"`
	LastModified float64 `json:"last_modified"`
}

func (m *Mock) handleListFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()

	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.artifacts[q.Get("artifact_id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "artifact does not exist")
		return
	}
	files, code, msg := m.resolveView(a, q.Get("version"))
	if code != 0 {
		writeDetail(w, code, msg)
		return
	}

	dir := normalizeWire(q.Get("dir_path"))
	prefix := dir
	if prefix != "" {
		prefix += "/"
	}

	seenDirs := map[string]bool{}
	var entries []listEntry
	found := dir == ""
	for path, data := range files {
		if dir != "" && !strings.HasPrefix(path, prefix) {
			// A file named exactly like the requested directory means the
			// caller listed a file, which still counts as existing.
			if path == dir {
				found = true
			}
			continue
		}
		found = true
		rest := strings.TrimPrefix(path, prefix)
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			name := rest[:idx]
			if !seenDirs[name] {
				seenDirs[name] = true
				entries = append(entries, listEntry{Name: name, Type: "directory"})
			}
			continue
		}
		entries = append(entries, listEntry{Name: rest, Type: "file", Size: int64(len(data))})
	}
	if !found {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("path %q does not exist", dir))
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	writeJSON(w, entries)
}

func (m *Mock) handleGetFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.artifacts[q.Get("artifact_id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "artifact does not exist")
		return
	}
	files, code, msg := m.resolveView(a, q.Get("version"))
	if code != 0 {
		writeDetail(w, code, msg)
		return
	}
	path := normalizeWire(q.Get("file_path"))
	data, ok := files[path]
	if !ok {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("file %q does not exist", path))
		return
	}

	token := newToken()
	m.downloads[token] = append([]byte(nil), data...)
	writeJSON(w, presignedURL(r, "/s3/dl/"+token))
}

func (m *Mock) handlePutFile(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ArtifactID string `json:"artifact_id"`
		FilePath   string `json:"file_path"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.artifacts[payload.ArtifactID]
	if !ok {
		writeDetail(w, http.StatusNotFound, "artifact does not exist")
		return
	}
	if !a.staging {
		writeDetail(w, http.StatusForbidden, "artifact must be in staging mode before adding files")
		return
	}

	token := newToken()
	m.uploads[token] = uploadGrant{
		artifactID: payload.ArtifactID,
		path:       normalizeWire(payload.FilePath),
	}
	writeJSON(w, presignedURL(r, "/s3/ul/"+token))
}

func (m *Mock) handleRemoveFile(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ArtifactID string `json:"artifact_id"`
		FilePath   string `json:"file_path"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.artifacts[payload.ArtifactID]
	if !ok {
		writeDetail(w, http.StatusNotFound, "artifact does not exist")
		return
	}
	if !a.staging {
		writeDetail(w, http.StatusForbidden, "artifact must be in staging mode before removing files")
		return
	}
	path := normalizeWire(payload.FilePath)
	if _, ok := a.staged[path]; !ok {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("file %q does not exist", path))
		return
	}
	delete(a.staged, path)
	writeJSON(w, true)
}

func (m *Mock) handleEdit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ArtifactID string         `json:"artifact_id"`
		Manifest   map[string]any `json:"manifest"`
		Stage      bool           `json:"stage"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.artifacts[payload.ArtifactID]
	if !ok {
		writeDetail(w, http.StatusNotFound, "artifact does not exist")
		return
	}
	if payload.Stage && !a.staging {
		a.staging = true
		a.staged = make(map[string][]byte)
		for k, v := range a.latest() {
			a.staged[k] = v
		}
	}
	writeJSON(w, true)
}

func (m *Mock) handleCommit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ArtifactID string `json:"artifact_id"`
		Version    string `json:"version"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.artifacts[payload.ArtifactID]
	if !ok {
		writeDetail(w, http.StatusNotFound, "artifact does not exist")
		return
	}
	if !a.staging {
		writeDetail(w, http.StatusBadRequest, "no staged changes to commit")
		return
	}
	name := payload.Version
	if name == "" {
		name = "v" + strconv.Itoa(len(a.versions))
	}
	a.versions = append(a.versions, version{name: name, files: a.staged})
	a.staged = nil
	a.staging = false
	writeJSON(w, true)
}

func (m *Mock) handleDiscard(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ArtifactID string `json:"artifact_id"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.artifacts[payload.ArtifactID]
	if !ok {
		writeDetail(w, http.StatusNotFound, "artifact does not exist")
		return
	}
	if !a.staging {
		writeDetail(w, http.StatusBadRequest, "no staged changes to discard")
		return
	}
	a.staged = nil
	a.staging = false
	writeJSON(w, true)
}

func (m *Mock) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Alias     string `json:"alias"`
		Workspace string `json:"workspace"`
		Stage     bool   `json:"stage"`
		Overwrite bool   `json:"overwrite"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Alias == "" || payload.Workspace == "" {
		writeDetail(w, http.StatusBadRequest, "alias and workspace are required")
		return
	}
	id := payload.Workspace + "/" + payload.Alias

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.artifacts[id]; exists && !payload.Overwrite {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("artifact %q already exists", id))
		return
	}
	a := m.createLocked(id)
	if payload.Stage {
		a.staging = true
		a.staged = make(map[string][]byte)
	}
	writeJSON(w, map[string]string{"id": id})
}

func (m *Mock) handleDelete(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ArtifactID string `json:"artifact_id"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.artifacts[payload.ArtifactID]; !ok {
		writeDetail(w, http.StatusNotFound, "artifact does not exist")
		return
	}
	delete(m.artifacts, payload.ArtifactID)
	writeJSON(w, true)
}

func (m *Mock) handleStartMultipart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ArtifactID string `json:"artifact_id"`
		FilePath   string `json:"file_path"`
		PartCount  int    `json:"part_count"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.PartCount <= 0 {
		writeDetail(w, http.StatusBadRequest, "part_count must be positive")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.artifacts[payload.ArtifactID]
	if !ok {
		writeDetail(w, http.StatusNotFound, "artifact does not exist")
		return
	}
	if !a.staging {
		writeDetail(w, http.StatusForbidden, "artifact must be in staging mode before adding files")
		return
	}

	uploadID := newToken()
	m.multiparts[uploadID] = &multipartSession{
		artifactID: payload.ArtifactID,
		path:       normalizeWire(payload.FilePath),
		count:      payload.PartCount,
		parts:      make(map[int][]byte),
	}

	type partURL struct {
		PartNumber int    `json:"part_number"`
		URL        string `json:"url"`
	}
	parts := make([]partURL, payload.PartCount)
	for i := range parts {
		n := i + 1
		parts[i] = partURL{
			PartNumber: n,
			URL:        presignedURL(r, fmt.Sprintf("/s3/mp/%s/%d", uploadID, n)),
		}
	}
	writeJSON(w, map[string]any{"upload_id": uploadID, "parts": parts})
}

func (m *Mock) handleCompleteMultipart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ArtifactID string `json:"artifact_id"`
		UploadID   string `json:"upload_id"`
		Parts      []struct {
			PartNumber int    `json:"part_number"`
			ETag       string `json:"etag"`
		} `json:"parts"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.multiparts[payload.UploadID]
	if !ok {
		writeDetail(w, http.StatusNotFound, "upload does not exist or has expired")
		return
	}
	a, ok := m.artifacts[session.artifactID]
	if !ok || !a.staging {
		writeDetail(w, http.StatusForbidden, "artifact must be in staging mode")
		return
	}
	if len(payload.Parts) != session.count {
		writeDetail(w, http.StatusBadRequest,
			fmt.Sprintf("expected %d parts, got %d", session.count, len(payload.Parts)))
		return
	}

	assembled := make([]byte, 0)
	for n := 1; n <= session.count; n++ {
		data, ok := session.parts[n]
		if !ok {
			writeDetail(w, http.StatusBadRequest, fmt.Sprintf("part %d was never uploaded", n))
			return
		}
		assembled = append(assembled, data...)
	}
	for _, p := range payload.Parts {
		data, ok := session.parts[p.PartNumber]
		if !ok || etag(data) != p.ETag {
			writeDetail(w, http.StatusBadRequest, fmt.Sprintf("etag mismatch for part %d", p.PartNumber))
			return
		}
	}

	a.staged[session.path] = assembled
	delete(m.multiparts, payload.UploadID)
	writeJSON(w, true)
}

func (m *Mock) handleDownload(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/s3/dl/")

	m.mu.RLock()
	data, ok := m.downloads[token]
	m.mu.RUnlock()
	if !ok {
		http.Error(w, "expired download link", http.StatusNotFound)
		return
	}

	if start, end, ok := parseRange(r.Header.Get("Range"), int64(len(data))); ok {
		w.Header().Set("Content-Range",
			fmt.Sprintf("bytes %d-%d/%d", start, end, len(data)))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(data[start : end+1])
		return
	}
	w.Write(data)
}

func (m *Mock) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token := strings.TrimPrefix(r.URL.Path, "/s3/ul/")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	grant, ok := m.uploads[token]
	if !ok {
		http.Error(w, "expired upload link", http.StatusNotFound)
		return
	}
	a, ok := m.artifacts[grant.artifactID]
	if !ok || !a.staging {
		http.Error(w, "upload target is gone", http.StatusConflict)
		return
	}
	a.staged[grant.path] = body
	delete(m.uploads, token)
	w.Header().Set("ETag", `"`+etag(body)+`"`)
	w.WriteHeader(http.StatusOK)
}

func (m *Mock) handleUploadPart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/s3/mp/")
	segs := strings.SplitN(rest, "/", 2)
	if len(segs) != 2 {
		http.Error(w, "malformed part URL", http.StatusBadRequest)
		return
	}
	partNo, err := strconv.Atoi(segs[1])
	if err != nil || partNo < 1 {
		http.Error(w, "malformed part number", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.multiparts[segs[0]]
	if !ok {
		http.Error(w, "expired upload link", http.StatusNotFound)
		return
	}
	if partNo > session.count {
		http.Error(w, "part number out of range", http.StatusBadRequest)
		return
	}
	session.parts[partNo] = body
	w.Header().Set("ETag", `"`+etag(body)+`"`)
	w.WriteHeader(http.StatusOK)
}

// presignedURL builds an absolute URL pointing back at this server, the way
// a storage backend would hand out a signed link.
func presignedURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}

// parseRange handles the "bytes=0-N" form the client emits. Anything else is
// served whole.
func parseRange(header string, size int64) (start, end int64, ok bool) {
	if !strings.HasPrefix(header, "bytes=") {
		return 0, 0, false
	}
	spec := strings.TrimPrefix(header, "bytes=")
	bounds := strings.SplitN(spec, "-", 2)
	if len(bounds) != 2 {
		return 0, 0, false
	}
	start, err := strconv.ParseInt(bounds[0], 10, 64)
	if err != nil || start < 0 || start >= size {
		return 0, 0, false
	}
	end, err = strconv.ParseInt(bounds[1], 10, 64)
	if err != nil || end < start {
		return 0, 0, false
	}
	if end >= size {
		end = size - 1
	}
	return start, end, true
}

func normalizeWire(p string) string {
	return strings.Trim(p, "/")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func etag(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func newToken() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf[:])
}
