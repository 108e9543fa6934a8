package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"data", "/data"},
		{"/data", "/data"},
		{"data/", "/data"},
		{"/data/", "/data"},
		{"//data//sub//", "/data/sub"},
		{"data/./sub", "/data/sub"},
		{"data/../other", "/other"},
		{"  data  ", "/data"},
		{".", "/"},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"/", "data", "//a//b/", "a/./b/../c"} {
		once, err := Normalize(in)
		require.NoError(t, err)
		twice, err := Normalize(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	for _, in := range []string{"", "   "} {
		_, err := Normalize(in)
		assert.ErrorIs(t, err, ErrValidation, "input %q", in)
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "/data/file.txt", Join("/data", "file.txt"))
	assert.Equal(t, "/file.txt", Join("/", "file.txt"))
	assert.Equal(t, "/data/sub/file.txt", Join("/data/sub", "file.txt"))
}

func TestRelativeTo(t *testing.T) {
	assert.Equal(t, "sub/file.txt", relativeTo("/data/sub/file.txt", "/data"))
	assert.Equal(t, "data/file.txt", relativeTo("/data/file.txt", "/"))
	assert.Equal(t, "file.txt", relativeTo("/data/file.txt", "/data"))
}

func TestWirePath(t *testing.T) {
	assert.Equal(t, "", wirePath("/"))
	assert.Equal(t, "data/file.txt", wirePath("/data/file.txt"))
}
