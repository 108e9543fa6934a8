package artifact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLs(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	entries, err := client.Ls(ctx, "/", nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byName := map[string]Entry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.Equal(t, TypeDirectory, byName["data"].Type)
	assert.Equal(t, TypeDirectory, byName["models"].Type)
	assert.Equal(t, TypeFile, byName["readme.md"].Type)
	assert.Equal(t, "/readme.md", byName["readme.md"].Path)
	assert.Equal(t, int64(len("# demo artifact\n")), byName["readme.md"].Size)
}

func TestLsMissingDirectory(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())

	_, err := client.Ls(context.Background(), "/nope", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLsNames(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())

	names, err := client.LsNames(context.Background(), "/data", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/data/raw", "/data/test.csv", "/data/train.csv"}, names)
}

func TestInfo(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	root, err := client.Info(ctx, "/", nil)
	require.NoError(t, err)
	assert.True(t, root.IsDir())

	file, err := client.Info(ctx, "/data/train.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, TypeFile, file.Type)
	assert.Equal(t, "/data/train.csv", file.Path)

	dir, err := client.Info(ctx, "/data/raw", nil)
	require.NoError(t, err)
	assert.True(t, dir.IsDir())

	_, err = client.Info(ctx, "/data/absent.csv", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInfoManyAbortsOnMissing(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())

	infos, err := client.InfoMany(context.Background(),
		[]string{"/readme.md", "/data/absent.csv", "/data/train.csv"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, infos)
}

func TestExists(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	got, err := client.ExistsMany(ctx, []string{"/readme.md", "/data", "/ghost.txt"}, nil)
	require.NoError(t, err)
	assert.True(t, got["/readme.md"])
	assert.True(t, got["/data"])
	assert.False(t, got["/ghost.txt"])
}

func TestIsDirIsFile(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	isDir, err := client.IsDir(ctx, "/data", nil)
	require.NoError(t, err)
	assert.True(t, isDir)

	isFile, err := client.IsFile(ctx, "/data", nil)
	require.NoError(t, err)
	assert.False(t, isFile)

	isFile, err = client.IsFile(ctx, "/readme.md", nil)
	require.NoError(t, err)
	assert.True(t, isFile)

	isDir, err = client.IsDir(ctx, "/ghost", nil)
	require.NoError(t, err)
	assert.False(t, isDir)
}

func TestSize(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	n, err := client.Size(ctx, "/data/train.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len("a,b,c\n1,2,3\n")), n)

	// Directories report zero.
	n, err = client.Size(ctx, "/data", nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = client.Size(ctx, "/ghost.txt", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFind(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	paths, err := client.FindPaths(ctx, "/", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/data/raw/source.bin",
		"/data/test.csv",
		"/data/train.csv",
		"/models/weights/best.pt",
		"/readme.md",
	}, paths)
}

func TestFindMaxDepth(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())

	paths, err := client.FindPaths(context.Background(), "/", &FindOptions{MaxDepth: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"/readme.md"}, paths)
}

func TestFindWithDirs(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())

	entries, err := client.Find(context.Background(), "/data", &FindOptions{WithDirs: true})
	require.NoError(t, err)

	var dirs, files int
	for _, e := range entries {
		if e.IsDir() {
			dirs++
		} else {
			files++
		}
	}
	assert.Equal(t, 1, dirs)
	assert.Equal(t, 3, files)
}

func TestMkdirAndRmdir(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, client.Stage(ctx))
	require.NoError(t, client.Mkdir(ctx, "/new/deep/dir", true))

	isDir, err := client.IsDir(ctx, "/new/deep/dir", &LsOptions{Stage: true})
	require.NoError(t, err)
	assert.True(t, isDir)

	require.NoError(t, client.Rmdir(ctx, "/new/deep/dir"))
	exists, err := client.Exists(ctx, "/new/deep/dir", &LsOptions{Stage: true})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMkdirWithoutParents(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, client.Stage(ctx))
	err := client.Mkdir(ctx, "/missing/child", false)
	assert.ErrorIs(t, err, ErrNotFound)

	// Parent exists, so this succeeds.
	require.NoError(t, client.Mkdir(ctx, "/data/child", false))
}

func TestMakedirsExistOK(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, client.Stage(ctx))
	require.NoError(t, client.Makedirs(ctx, "/data", true))
	assert.ErrorIs(t, client.Makedirs(ctx, "/data", false), ErrExists)
}

func TestRmdirRejectsNonEmpty(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, client.Stage(ctx))
	assert.ErrorIs(t, client.Rmdir(ctx, "/data"), ErrDirectoryNotEmpty)
	assert.ErrorIs(t, client.Rmdir(ctx, "/readme.md"), ErrNotADirectory)
}

func TestTouch(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, client.Stage(ctx))
	require.NoError(t, client.Touch(ctx, "/marker.txt"))

	data, err := client.Cat(ctx, "/marker.txt", &CatOptions{Stage: true})
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestRemoveFile(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, client.Stage(ctx))
	require.NoError(t, client.Remove(ctx, "/readme.md", nil))

	exists, err := client.Exists(ctx, "/readme.md", &LsOptions{Stage: true})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRemoveDirectoryNeedsRecursive(t *testing.T) {
	client, _ := newTestClient(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, client.Stage(ctx))
	assert.ErrorIs(t, client.Remove(ctx, "/data", nil), ErrIsADirectory)

	require.NoError(t, client.Remove(ctx, "/data", &RemoveOptions{Recursive: true}))
	exists, err := client.Exists(ctx, "/data", &LsOptions{Stage: true})
	require.NoError(t, err)
	assert.False(t, exists)
}
