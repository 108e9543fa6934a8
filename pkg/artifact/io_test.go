package artifact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aicell-lab/hypha-artifact-go/pkg/artifact/mock"
)

func TestCat(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())

	data, err := client.Cat(context.Background(), "/data/train.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("a,b,c\n1,2,3\n"), data)
}

func TestCatMissing(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())

	_, err := client.Cat(context.Background(), "/ghost.txt", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatMany(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())

	got, err := client.CatMany(context.Background(),
		[]string{"/readme.md", "/data/test.csv"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []byte("# demo artifact\n"), got["/readme.md"])
	assert.Equal(t, []byte("a,b,c\n4,5,6\n"), got["/data/test.csv"])
}

func TestCatManyRecursive(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())

	got, err := client.CatMany(context.Background(),
		[]string{"/data"}, &CatOptions{Recursive: true})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Contains(t, got, "/data/raw/source.bin")
}

func TestCatManyIgnoresMissing(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	_, err := client.CatMany(ctx, []string{"/readme.md", "/ghost.txt"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := client.CatMany(ctx, []string{"/readme.md", "/ghost.txt"},
		&CatOptions{OnError: OnErrorIgnore})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got, "/readme.md")
}

func TestHead(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	head, err := client.Head(ctx, "/readme.md", 6, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("# demo"), head)

	// Files shorter than the requested size come back whole.
	whole, err := client.Head(ctx, "/readme.md", 4096, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("# demo artifact\n"), whole)
}

func TestHeadMatchesCatPrefix(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	head, err := client.Head(ctx, "/data/train.csv", 5, nil)
	require.NoError(t, err)
	full, err := client.Cat(ctx, "/data/train.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, full[:5], head)
}

func TestCopyFile(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, client.Stage(ctx))
	require.NoError(t, client.Copy(ctx, "/readme.md", "/docs/readme.md", nil))

	data, err := client.Cat(ctx, "/docs/readme.md", &CatOptions{Stage: true})
	require.NoError(t, err)
	assert.Equal(t, []byte("# demo artifact\n"), data)
}

func TestCopyDirectoryNeedsRecursive(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, client.Stage(ctx))
	assert.ErrorIs(t, client.Copy(ctx, "/data", "/backup", nil), ErrIsADirectory)
}

func TestCopyDirectoryRecursive(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, client.Stage(ctx))
	require.NoError(t, client.Copy(ctx, "/data", "/backup", &CopyOptions{Recursive: true}))

	paths, err := client.FindPaths(ctx, "/backup", &FindOptions{Stage: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/backup/raw/source.bin",
		"/backup/test.csv",
		"/backup/train.csv",
	}, paths)
}

func TestFileReadWrite(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, client.Stage(ctx))

	// Write a file through the handle API.
	f, err := client.Open(ctx, "/notes.txt", ModeWrite, nil)
	require.NoError(t, err)
	_, err = f.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = f.Write([]byte("world"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Read it back.
	r, err := client.Open(ctx, "/notes.txt", ModeRead, &CatOptions{Stage: true})
	require.NoError(t, err)
	buf := make([]byte, 64)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(buf[:n]))
	require.NoError(t, r.Close())
}

func TestFileAppend(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, client.Stage(ctx))

	f, err := client.Open(ctx, "/readme.md", ModeAppend, nil)
	require.NoError(t, err)
	_, err = f.Write([]byte("appended\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := client.Cat(ctx, "/readme.md", &CatOptions{Stage: true})
	require.NoError(t, err)
	assert.Equal(t, []byte("# demo artifact\nappended\n"), data)
}

func TestFileAppendMissingFileStartsEmpty(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, client.Stage(ctx))

	f, err := client.Open(ctx, "/log.txt", ModeAppend, nil)
	require.NoError(t, err)
	_, err = f.Write([]byte("first\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := client.Cat(ctx, "/log.txt", &CatOptions{Stage: true})
	require.NoError(t, err)
	assert.Equal(t, []byte("first\n"), data)
}

func TestFileAppendPropagatesReadErrors(t *testing.T) {
	m := mock.New()
	m.CreateArtifact(testArtifactID)
	m.SetFiles(testArtifactID, map[string][]byte{"log.txt": []byte("precious\n")})

	// Serve everything normally except get_file, which always fails.
	inner := m.Handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/get_file") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		inner.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, testArtifactID, WithToken("test-token"))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, client.Stage(ctx))

	// A transient read failure must surface, not masquerade as an empty
	// file that Close would then write back over the staged content.
	_, err = client.Open(ctx, "/log.txt", ModeAppend, nil)
	assert.ErrorIs(t, err, ErrNetwork)

	staged := m.Files(testArtifactID, "stage")
	assert.Equal(t, []byte("precious\n"), staged["log.txt"])
}

func TestFileModeEnforcement(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	r, err := client.Open(ctx, "/readme.md", ModeRead, nil)
	require.NoError(t, err)
	_, err = r.Write([]byte("nope"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = client.Open(ctx, "/readme.md", FileMode("x"), nil)
	assert.ErrorIs(t, err, ErrValidation)
}
