package attachments

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalUploadOverwriteRemove(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	key := "companies/documents/abc/1-rut.pdf"
	require.NoError(t, l.Upload(ctx, key, strings.NewReader("v1"), Options{}))
	b, err := os.ReadFile(filepath.Join(dir, "companies", "documents", "abc", "1-rut.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(b))

	err = l.Upload(ctx, key, strings.NewReader("v2"), Options{})
	assert.True(t, errors.Is(err, ErrExists), "got %v", err)

	require.NoError(t, l.Upload(ctx, key, strings.NewReader("v2"), Options{Overwrite: true}))
	b, _ = os.ReadFile(filepath.Join(dir, "companies", "documents", "abc", "1-rut.pdf"))
	assert.Equal(t, "v2", string(b))

	assert.Equal(t, "/uploads/companies/documents/abc/1-rut.pdf", l.PublicURL(key))

	require.NoError(t, l.Remove(ctx, key, "companies/missing.txt"))
	_, err = os.Stat(filepath.Join(dir, "companies", "documents", "abc", "1-rut.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(filepath.Join(dir, "up"), "")
	require.NoError(t, err)
	require.NoError(t, l.Upload(context.Background(), "../../escape.txt", strings.NewReader("x"), Options{}))
	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, os.IsNotExist(err), "file must stay inside the upload dir")
	_, err = os.Stat(filepath.Join(dir, "up", "escape.txt"))
	assert.NoError(t, err)
}

func TestPathHelpers(t *testing.T) {
	now := time.UnixMilli(1736899200000)
	assert.Equal(t, "assets/documents/a1/1736899200000-ficha_tecnica.pdf", DocumentPath(BucketAssets, "a1", "ficha tecnica.pdf", now))
	assert.Equal(t, "asset-kits/images/k1/1736899200000-foto.png", ImagePath(BucketKits, "k1", "../foto.png", now))
	assert.Equal(t, "file", SanitizeName(".."))
}
