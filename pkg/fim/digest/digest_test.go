package digest

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sumHello = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	sumEmpty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

func TestFile(t *testing.T) {
	t.Parallel()

	t.Run("hashes file content", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "a.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

		got, ok := File(path)
		require.True(t, ok)
		assert.Equal(t, sumHello, got)
	})

	t.Run("hashes empty file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "empty")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		got, ok := File(path)
		require.True(t, ok)
		assert.Equal(t, sumEmpty, got)
	})

	t.Run("missing file is unreadable", func(t *testing.T) {
		t.Parallel()
		got, ok := File(filepath.Join(t.TempDir(), "nope"))
		assert.False(t, ok)
		assert.Empty(t, got)
	})

	t.Run("directory is unreadable", func(t *testing.T) {
		t.Parallel()
		_, ok := File(t.TempDir())
		assert.False(t, ok)
	})

	t.Run("permission denied is unreadable", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced for this user")
		}
		path := filepath.Join(t.TempDir(), "secret")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o000))

		_, ok := File(path)
		assert.False(t, ok)
	})
}

func TestReader_MatchesFileAcrossChunks(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("0123456789abcdef"), ChunkSize/4+3)
	path := filepath.Join(t.TempDir(), "big.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	fromFile, ok := File(path)
	require.True(t, ok)

	fromReader, err := Reader(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, fromReader, fromFile)
	assert.Len(t, fromFile, 64)
}

func TestPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{sumHello, "2cf24dba5fb0a30e"},
		{"abc", "abc"},
		{"", ""},
		{strings.Repeat("f", PrefixLen), strings.Repeat("f", PrefixLen)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Prefix(tt.in))
	}
}
