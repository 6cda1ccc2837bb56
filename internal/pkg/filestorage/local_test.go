package filestorage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads/", 1024)
	require.NoError(t, err)

	info, err := ls.SaveFile(context.Background(), "Fees.PDF", strings.NewReader("%PDF-1.4 test"), "applications/7")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(info.Path, "applications/7/"))
	assert.True(t, strings.HasSuffix(info.Path, ".pdf"))
	assert.Equal(t, "http://localhost:8080/uploads/"+info.Path, info.URL)
	assert.Equal(t, "Fees.PDF", info.Filename)
	assert.Equal(t, int64(len("%PDF-1.4 test")), info.FileSize)
	assert.Equal(t, "application/pdf", info.MimeType)

	onDisk := filepath.Join(dir, filepath.FromSlash(info.Path))
	_, err = os.Stat(onDisk)
	require.NoError(t, err)

	require.NoError(t, ls.DeleteFile(info.Path))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ls.DeleteFile(info.Path), "deleting twice is not an error")
}

func TestLocalStorage_RejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "", 4)
	require.NoError(t, err)

	_, err = ls.SaveFile(context.Background(), "big.txt", strings.NewReader("too large"), "")
	assert.ErrorIs(t, err, ErrFileTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStorage_DeleteStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(filepath.Dir(root), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	t.Cleanup(func() { _ = os.Remove(outside) })

	ls, err := NewLocalStorage(root, "", 0)
	require.NoError(t, err)

	require.NoError(t, ls.DeleteFile("../keep.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}
