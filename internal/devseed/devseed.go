// Package devseed loads JSON seed files for the sandbox and mock artifact
// manager.
package devseed

import (
	"encoding/json"
	"fmt"
	"os"
)

// ArtifactSeedEntry describes one file to preload into a mock artifact.
// Content is base64 so binary payloads survive the JSON round trip.
type ArtifactSeedEntry struct {
	Path   string `json:"path"`
	Base64 string `json:"base64"`
}

// ArtifactSeed preloads one artifact with files committed as its first
// version.
type ArtifactSeed struct {
	ArtifactID string              `json:"artifact_id"`
	Files      []ArtifactSeedEntry `json:"files"`
}

// LoadArtifactSeed reads a seed file containing a list of artifacts.
func LoadArtifactSeed(path string) ([]ArtifactSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seeds []ArtifactSeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, s := range seeds {
		if s.ArtifactID == "" {
			return nil, fmt.Errorf("seed entry %d: missing artifact_id", i)
		}
	}
	return seeds, nil
}
