package devseed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadArtifactSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	payload := `[
		{
			"artifact_id": "ws/demo",
			"files": [
				{"path": "hello.txt", "base64": "aGVsbG8="}
			]
		}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	seeds, err := LoadArtifactSeed(path)
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, "ws/demo", seeds[0].ArtifactID)
	require.Len(t, seeds[0].Files, 1)
	assert.Equal(t, "hello.txt", seeds[0].Files[0].Path)
}

func TestLoadArtifactSeedMissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"files": []}]`), 0o644))

	_, err := LoadArtifactSeed(path)
	assert.Error(t, err)
}

func TestLoadArtifactSeedMissingFile(t *testing.T) {
	_, err := LoadArtifactSeed(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
