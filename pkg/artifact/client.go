package artifact

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aicell-lab/hypha-artifact-go/internal/config"
	"github.com/aicell-lab/hypha-artifact-go/internal/httpx"
)

// servicePath is where the Hypha server mounts the artifact manager.
const servicePath = "/public/services/artifact-manager"

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token used for artifact-manager calls.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithWorkspace sets the workspace when the artifact id does not include it.
func WithWorkspace(workspace string) Option {
	return func(c *Client) { c.workspace = strings.TrimSpace(workspace) }
}

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMultipart sets the client-level multipart configuration used by Upload
// when TransferOptions does not override it.
func WithMultipart(cfg MultipartConfig) Option {
	return func(c *Client) { c.multipart = cfg.withDefaults() }
}

// WithClientID sets the User-Agent identifier sent with every request.
func WithClientID(id string) Option {
	return func(c *Client) {
		if id != "" {
			c.clientID = id
		}
	}
}

// Client provides a file-system-like interface to one remote Hypha artifact.
// All durability, consistency and versioning semantics live server-side; the
// client maps local intents onto the artifact-manager HTTP API.
type Client struct {
	http *httpx.Client
	log  zerolog.Logger

	artifactID string
	workspace  string
	alias      string

	multipart MultipartConfig

	// construction-time settings
	token      string
	timeout    time.Duration
	httpClient *http.Client
	clientID   string
}

// New creates a client for the artifact identified by artifactID
// ("workspace/alias", or a bare alias combined with WithWorkspace) on the
// given Hypha server.
func New(serverURL, artifactID string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(serverURL) == "" {
		return nil, fmt.Errorf("%w: server URL is required", ErrValidation)
	}
	if strings.TrimSpace(artifactID) == "" {
		return nil, fmt.Errorf("%w: artifact id is required", ErrValidation)
	}

	c := &Client{
		log:       zerolog.Nop(),
		multipart: MultipartConfig{}.withDefaults(),
		timeout:   httpx.DefaultTimeout,
		clientID:  "hypha-artifact-go",
	}
	for _, opt := range opts {
		opt(c)
	}

	if strings.Contains(artifactID, "/") {
		parts := strings.SplitN(artifactID, "/", 2)
		if parts[0] == "" || parts[1] == "" || strings.Contains(parts[1], "/") {
			return nil, fmt.Errorf("%w: malformed artifact id %q", ErrValidation, artifactID)
		}
		if c.workspace != "" && c.workspace != parts[0] {
			return nil, fmt.Errorf("%w: workspace mismatch: %s != %s", ErrValidation, c.workspace, parts[0])
		}
		c.workspace, c.alias = parts[0], parts[1]
	} else {
		if c.workspace == "" {
			return nil, fmt.Errorf("%w: workspace must be provided when the artifact id does not include it", ErrValidation)
		}
		c.alias = artifactID
	}
	c.artifactID = c.workspace + "/" + c.alias

	baseURL := strings.TrimRight(serverURL, "/") + servicePath
	httpOpts := []httpx.Option{
		httpx.WithToken(c.token),
		httpx.WithTimeout(c.timeout),
		httpx.WithUserAgent(c.clientID),
	}
	if c.httpClient != nil {
		httpOpts = append(httpOpts, httpx.WithHTTPClient(c.httpClient))
	}
	hc, err := httpx.NewClient(baseURL, httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	c.http = hc

	return c, nil
}

// NewFromEnv builds a client from HYPHA_* environment variables. It is the
// only constructor that touches the environment.
func NewFromEnv(artifactID string, opts ...Option) (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	base := []Option{
		WithToken(cfg.Token),
		WithWorkspace(cfg.Workspace),
		WithTimeout(cfg.HTTPTimeout),
		WithClientID(cfg.ClientID),
		WithMultipart(MultipartConfig{
			Threshold:   cfg.MultipartThreshold,
			ChunkSize:   cfg.ChunkSize,
			MaxParallel: cfg.MaxParallelUploads,
		}),
	}
	return New(cfg.ServerURL, artifactID, append(base, opts...)...)
}

// ArtifactID returns the fully qualified "workspace/alias" identifier.
func (c *Client) ArtifactID() string { return c.artifactID }

// Workspace returns the workspace component of the artifact id.
func (c *Client) Workspace() string { return c.workspace }

// Alias returns the alias component of the artifact id.
func (c *Client) Alias() string { return c.alias }
