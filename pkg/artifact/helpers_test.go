package artifact

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aicell-lab/hypha-artifact-go/pkg/artifact/mock"
)

const testArtifactID = "ws/demo"

// newTestClient spins up an in-memory artifact manager and a client bound to
// one artifact, optionally preloaded with committed files.
func newTestClient(t *testing.T, files map[string][]byte) (*Client, *mock.Mock) {
	t.Helper()

	m := mock.New()
	m.CreateArtifact(testArtifactID)
	if files != nil {
		m.SetFiles(testArtifactID, files)
	}

	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, testArtifactID, WithToken("test-token"))
	require.NoError(t, err)
	return client, m
}

func sampleTree() map[string][]byte {
	return map[string][]byte{
		"readme.md":              []byte("# demo artifact\n"),
		"data/train.csv":         []byte("a,b,c\n1,2,3\n"),
		"data/test.csv":          []byte("a,b,c\n4,5,6\n"),
		"data/raw/source.bin":    {0x00, 0x01, 0x02, 0x03},
		"models/weights/best.pt": []byte("weights"),
	}
}
