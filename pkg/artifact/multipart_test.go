package artifact

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipartDecision(t *testing.T) {
	mp := MultipartConfig{}.withDefaults()

	assert.False(t, mp.shouldUse(DefaultMultipartThreshold-1))
	assert.True(t, mp.shouldUse(DefaultMultipartThreshold))
	assert.False(t, mp.shouldUse(0))

	forced := MultipartConfig{Enabled: true}.withDefaults()
	assert.True(t, forced.shouldUse(1))
}

func TestMultipartRejectsSmallChunks(t *testing.T) {
	client, _ := newTestClient(t, nil)
	ctx := context.Background()
	require.NoError(t, client.Stage(ctx))

	local := filepath.Join(t.TempDir(), "big.bin")
	require.NoError(t, os.WriteFile(local, bytes.Repeat([]byte{0xAB}, 1024), 0o644))

	err := client.uploadMultipart(ctx, local, "/big.bin", 1024, MultipartConfig{
		ChunkSize:   1024,
		MaxParallel: 2,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMultipartUploadReassembles(t *testing.T) {
	client, m := newTestClient(t, nil)
	ctx := context.Background()
	require.NoError(t, client.Stage(ctx))

	// 2.5 chunks: two full parts plus a short final part.
	payload := make([]byte, MinChunkSize*2+MinChunkSize/2)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	local := filepath.Join(t.TempDir(), "big.bin")
	require.NoError(t, os.WriteFile(local, payload, 0o644))

	err := client.uploadFile(ctx, local, "/big.bin", MultipartConfig{
		Enabled:     true,
		ChunkSize:   MinChunkSize,
		MaxParallel: 3,
	})
	require.NoError(t, err)

	staged := m.Files(testArtifactID, "stage")
	assert.True(t, bytes.Equal(payload, staged["big.bin"]), "reassembled content differs")
}

func TestMultipartPartCount(t *testing.T) {
	cases := []struct {
		size  int64
		chunk int64
		want  int
	}{
		{size: 100, chunk: 10, want: 10},
		{size: 101, chunk: 10, want: 11},
		{size: 9, chunk: 10, want: 1},
		{size: 10, chunk: 10, want: 1},
		{size: 250 * 1024 * 1024, chunk: 10 * 1024 * 1024, want: 25},
	}
	for _, tc := range cases {
		got := int((tc.size + tc.chunk - 1) / tc.chunk)
		assert.Equal(t, tc.want, got, "size=%d chunk=%d", tc.size, tc.chunk)
	}
}

func TestSmallFileSkipsMultipart(t *testing.T) {
	client, m := newTestClient(t, nil)
	ctx := context.Background()
	require.NoError(t, client.Stage(ctx))

	local := filepath.Join(t.TempDir(), "small.txt")
	require.NoError(t, os.WriteFile(local, []byte("tiny"), 0o644))

	// Threshold far above the file size: single-shot path.
	err := client.uploadFile(ctx, local, "/small.txt", MultipartConfig{}.withDefaults())
	require.NoError(t, err)

	staged := m.Files(testArtifactID, "stage")
	assert.Equal(t, []byte("tiny"), staged["small.txt"])
}

func TestMultipartEmptyFile(t *testing.T) {
	client, m := newTestClient(t, nil)
	ctx := context.Background()
	require.NoError(t, client.Stage(ctx))

	local := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(local, nil, 0o644))

	err := client.uploadFile(ctx, local, "/empty.bin", MultipartConfig{Enabled: true}.withDefaults())
	require.NoError(t, err)

	staged := m.Files(testArtifactID, "stage")
	_, ok := staged["empty.bin"]
	assert.True(t, ok)
}
