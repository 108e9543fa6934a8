package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HYPHA_SERVER_URL", "https://hypha.example.com/")
	t.Setenv("HYPHA_TOKEN", " token ")
	t.Setenv("HYPHA_WORKSPACE", "ws")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://hypha.example.com", cfg.ServerURL)
	assert.Equal(t, "token", cfg.Token)
	assert.Equal(t, "ws", cfg.Workspace)
	assert.Equal(t, "hypha-artifact-cli", cfg.ClientID)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(100*1024*1024), cfg.MultipartThreshold)
	assert.Equal(t, int64(10*1024*1024), cfg.ChunkSize)
	assert.Equal(t, 4, cfg.MaxParallelUploads)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HYPHA_SERVER_URL", "https://hypha.example.com")
	t.Setenv("HYPHA_TOKEN", "token")
	t.Setenv("HYPHA_WORKSPACE", "ws")
	t.Setenv("HYPHA_CLIENT_ID", "my-tool")
	t.Setenv("HYPHA_MULTIPART_THRESHOLD", "1048576")
	t.Setenv("HYPHA_CHUNK_SIZE", "5242880")
	t.Setenv("HYPHA_MAX_PARALLEL_UPLOADS", "8")
	t.Setenv("HYPHA_HTTP_TIMEOUT", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "my-tool", cfg.ClientID)
	assert.Equal(t, int64(1048576), cfg.MultipartThreshold)
	assert.Equal(t, int64(5242880), cfg.ChunkSize)
	assert.Equal(t, 8, cfg.MaxParallelUploads)
	assert.Equal(t, 2*time.Minute, cfg.HTTPTimeout)
}

func TestValidateMissingFields(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no server", Config{Token: "t", Workspace: "w"}, "HYPHA_SERVER_URL"},
		{"no token", Config{ServerURL: "u", Workspace: "w"}, "HYPHA_TOKEN"},
		{"no workspace", Config{ServerURL: "u", Token: "t"}, "HYPHA_WORKSPACE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
