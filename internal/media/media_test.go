package media

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_Save(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFSStore(dir, "/uploads/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), strings.NewReader("image-bytes"), "photo.png")
	require.NoError(t, err)

	// URL вида /uploads/{timestamp}-photo.png
	assert.Regexp(t, regexp.MustCompile(`^/uploads/\d+-photo\.png$`), url)

	// Файл реально лежит в каталоге и содержит ровно то, что прислали.
	name := strings.TrimPrefix(url, "/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestFSStore_SaveStripsPath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFSStore(dir, "/uploads")
	require.NoError(t, err)

	// Путь в имени файла срезается до базового имени: наружу каталога
	// загрузок выйти нельзя.
	url, err := store.Save(context.Background(), strings.NewReader("x"), "../../etc/passwd.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, "-passwd.png"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "..")
}

func TestFSStore_RejectsBadFilenames(t *testing.T) {
	store, err := NewFSStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, name := range []string{"", "   ", `evil\name.png`} {
		_, err := store.Save(context.Background(), strings.NewReader("x"), name)
		assert.ErrorIs(t, err, ErrBadFilename, "filename %q", name)
	}
}

func TestFSStore_SaveHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFSStore(dir, "/uploads")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Save(ctx, strings.NewReader("x"), "photo.png")
	assert.ErrorIs(t, err, context.Canceled)

	// Отмененный запрос не оставляет файлов.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewFSStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewFSStore(dir, "/uploads")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
