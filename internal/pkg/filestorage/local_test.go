package filestorage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), 0)
	require.NoError(t, err)

	rel, size, err := ls.Save(strings.NewReader("%PDF-1.4 marksheet"), StudentDir(5), ".PDF")
	require.NoError(t, err)
	assert.Equal(t, int64(18), size)
	assert.True(t, strings.HasPrefix(rel, "documents/5/"))
	assert.True(t, strings.HasSuffix(rel, ".pdf"))

	f, err := ls.Open(rel)
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 marksheet", string(body))

	require.NoError(t, ls.Delete(rel))
	_, err = ls.Open(rel)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ls.Delete(rel), "deleting twice is not an error")
}

func TestLocalStorage_MaxBytes(t *testing.T) {
	root := t.TempDir()
	ls, err := NewLocalStorage(root, 4)
	require.NoError(t, err)

	_, _, err = ls.Save(strings.NewReader("12345"), "documents/1", "png")
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "documents", "1"))
	require.NoError(t, err)
	assert.Empty(t, entries, "partial file must be removed")
}

func TestLocalStorage_RejectsEscapes(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), 0)
	require.NoError(t, err)

	for _, p := range []string{"", "../outside.pdf", "documents/../../x", "/etc/passwd", "."} {
		_, err := ls.Open(p)
		assert.ErrorIs(t, err, ErrInvalidPath, p)
		assert.ErrorIs(t, ls.Delete(p), ErrInvalidPath, p)
	}
}

func TestLocalStorage_DeleteDir(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), 0)
	require.NoError(t, err)

	rel, _, err := ls.Save(strings.NewReader("x"), StudentDir(9), "jpg")
	require.NoError(t, err)

	require.NoError(t, ls.DeleteDir(StudentDir(9)))
	_, err = ls.Open(rel)
	assert.True(t, os.IsNotExist(err))
}
