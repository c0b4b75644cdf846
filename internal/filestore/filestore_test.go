package filestore

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/dermaai/internal/config"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

func TestLocalStoreSaveOpen(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)
	require.Equal(t, "local", store.Type())

	ctx := context.Background()
	body := []byte("png bytes")
	require.NoError(t, store.Save(ctx, "7_abc.png", bytes.NewReader(body), int64(len(body)), "image/png"))
	require.Equal(t, "/api/files/7_abc.png", store.URL("7_abc.png"))

	rc, err := store.Open(ctx, "7_abc.png")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, body, got)

	_, err = store.Open(ctx, "missing.png")
	require.ErrorIs(t, err, appErr.ErrNotFound)
	_, err = store.Open(ctx, "../etc/passwd")
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestLocalStoreShortWrite(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)
	err = store.Save(context.Background(), "a.png", strings.NewReader("abc"), 10, "image/png")
	require.Error(t, err)
	_, err = store.Open(context.Background(), "a.png")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp"})
	require.ErrorContains(t, err, "unsupported")
}

func TestBuildKey(t *testing.T) {
	key := BuildKey("12", "photo.JPG")
	require.True(t, strings.HasPrefix(key, "12_"))
	require.True(t, strings.HasSuffix(key, ".jpg"))
	require.NotEqual(t, key, BuildKey("12", "photo.JPG"))

	require.True(t, strings.HasPrefix(BuildKey("", "x.png"), "guest_"))
	require.False(t, strings.Contains(BuildKey("1", "x.verylongextension"), "verylong"))
}

func TestS3PublicURL(t *testing.T) {
	store, err := createS3Store(map[string]interface{}{
		"endpoint": "minio:9000", "bucket": "images", "secret_id": "id", "secret_key": "key", "prefix": "derma",
	})
	require.NoError(t, err)
	require.Equal(t, "http://minio:9000/images/derma/k.png", store.URL("k.png"))

	store, err = createS3Store(map[string]interface{}{
		"bucket": "images", "secret_id": "id", "secret_key": "key", "region": "eu-west-1",
	})
	require.NoError(t, err)
	require.Equal(t, "https://images.s3.eu-west-1.amazonaws.com/k.png", store.URL("k.png"))
}
