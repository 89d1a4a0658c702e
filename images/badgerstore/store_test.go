package badgerstore_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/wedding-site/images"
	"github.com/jrsteele09/wedding-site/images/badgerstore"
	"github.com/jrsteele09/wedding-site/internal/errors"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *badgerstore.Store {
	t.Helper()
	s, err := badgerstore.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	img := &images.Image{
		Key:          "gallery/abc.png",
		ContentType:  "image/png",
		CacheControl: images.CacheControl,
		Data:         []byte("\x89PNG fake bytes"),
	}
	require.NoError(t, s.Put(ctx, img))
	require.Equal(t, badgerstore.ETag(img.Data), img.ETag)
	require.EqualValues(t, len(img.Data), img.Size)

	got, err := s.Get(ctx, "gallery/abc.png")
	require.NoError(t, err)
	require.Equal(t, img.Data, got.Data)
	require.Equal(t, "image/png", got.ContentType)
	require.Equal(t, images.CacheControl, got.CacheControl)
	require.Equal(t, img.ETag, got.ETag)
	require.Equal(t, img.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())

	require.NoError(t, s.Delete(ctx, "gallery/abc.png"))
	_, err = s.Get(ctx, "gallery/abc.png")
	require.ErrorIs(t, err, errors.ErrNotFound)

	// Deleting again is fine.
	require.NoError(t, s.Delete(ctx, "gallery/abc.png"))
}

func TestStore_PersistsOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := badgerstore.Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, &images.Image{Key: "events/e.gif", ContentType: "image/gif", Data: []byte("GIF89a")}))
	require.NoError(t, s.Close())

	s, err = badgerstore.Open(dir)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "events/e.gif")
	require.NoError(t, err)
	require.Equal(t, []byte("GIF89a"), got.Data)
}

func TestStore_RejectsUnknownFolder(t *testing.T) {
	s := openStore(t)
	err := s.Put(context.Background(), &images.Image{Key: "private/x.png", Data: []byte("x")})
	require.ErrorIs(t, err, errors.ErrInvalidRequest)
}

func TestStore_Missing(t *testing.T) {
	_, err := openStore(t).Get(context.Background(), "gallery/none.jpg")
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestETag(t *testing.T) {
	a := badgerstore.ETag([]byte("a"))
	require.Equal(t, a, badgerstore.ETag([]byte("a")))
	require.NotEqual(t, a, badgerstore.ETag([]byte("b")))
	require.Len(t, a, 34)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := badgerstore.Open(" ")
	require.Error(t, err)
}
