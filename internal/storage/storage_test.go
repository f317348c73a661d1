package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/danferreira/torrentinfo/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestOpen(t *testing.T) {
	tmp := t.TempDir()
	filePath := filepath.Join(tmp, "file_1.txt")
	writeFile(t, filePath, "abcde")

	file := metadata.FileInfo{
		Path:   filePath,
		Length: 5,
	}

	storage, err := Open([]metadata.FileInfo{file})
	require.NoError(t, err)

	defer storage.Close()

	assert.Equal(t, file.Path, storage.Files[0].Path)
	assert.Equal(t, file.Length, storage.Files[0].Length)
	assert.Equal(t, int64(5), storage.Size())
}

func TestOpenMissingFile(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "present.txt"), "abc")

	_, err := Open([]metadata.FileInfo{
		{Path: filepath.Join(tmp, "present.txt"), Length: 3},
		{Path: filepath.Join(tmp, "missing.txt"), Length: 3},
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadAt(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "read_1.txt"), "abcde")
	writeFile(t, filepath.Join(tmp, "read_2.txt"), "fghij")

	files := []metadata.FileInfo{{
		Path:   filepath.Join(tmp, "read_1.txt"),
		Length: 5,
	}, {
		Path:   filepath.Join(tmp, "read_2.txt"),
		Length: 5,
	}}

	tests := map[string]struct {
		start    int64
		len      int
		expected string
	}{
		"read from first file":           {0, 5, "abcde"},
		"read from second file":          {5, 5, "fghij"},
		"partially read from both files": {3, 5, "defgh"},
		"read everything":                {0, 10, "abcdefghij"},
	}
	storage, err := Open(files)
	require.NoError(t, err)

	defer storage.Close()

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			buf := make([]byte, tt.len)
			v, err := storage.ReadAt(buf, tt.start)
			assert.NoError(t, err)
			assert.Equal(t, tt.len, v)
			assert.Equal(t, []byte(tt.expected), buf)
		})
	}
}

func TestReadAtPastEnd(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "data.txt"), "abcde")

	storage, err := Open([]metadata.FileInfo{{Path: filepath.Join(tmp, "data.txt"), Length: 5}})
	require.NoError(t, err)

	defer storage.Close()

	buf := make([]byte, 4)
	n, err := storage.ReadAt(buf, 3)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, n)
}

func TestReadAtShortFile(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "short.txt"), "abc")

	storage, err := Open([]metadata.FileInfo{{Path: filepath.Join(tmp, "short.txt"), Length: 5}})
	require.NoError(t, err)

	defer storage.Close()

	buf := make([]byte, 5)
	n, err := storage.ReadAt(buf, 0)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, 3, n)
}
