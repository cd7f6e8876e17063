package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/HSouheill/shop_backoffice/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	disk := NewLocalDisk(t.TempDir(), "/uploads/")

	require.NoError(t, disk.Put(ctx, "categories/a.png", []byte("png"), "image/png"))
	assert.True(t, disk.Exists(ctx, "categories/a.png"))

	data, err := disk.Get(ctx, "categories/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	assert.Equal(t, "/uploads/categories/a.png", disk.URL("categories/a.png"))

	require.NoError(t, disk.Delete(ctx, "categories/a.png"))
	assert.False(t, disk.Exists(ctx, "categories/a.png"))
	// Deleting a missing file is not an error.
	require.NoError(t, disk.Delete(ctx, "categories/a.png"))
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	disk := NewLocalDisk(filepath.Join(root, "uploads"), "/uploads")

	require.NoError(t, disk.Put(ctx, "../../escape.txt", []byte("x"), ""))
	_, err := os.Stat(filepath.Join(root, "uploads", "escape.txt"))
	assert.NoError(t, err)
}

func TestNewSelectsDriver(t *testing.T) {
	disk, err := New(config.Settings{StorageDisk: "local", UploadDir: t.TempDir(), PublicURL: "https://cdn.example"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/uploads/x.png", disk.URL("x.png"))

	_, err = New(config.Settings{StorageDisk: "s3"})
	assert.Error(t, err)

	_, err = New(config.Settings{StorageDisk: "ftp"})
	assert.Error(t, err)
}
