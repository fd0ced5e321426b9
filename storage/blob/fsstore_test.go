package blob

import (
	"context"
	"testing"

	"github.com/poiesic/docent/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndFetch(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("uploaded document bytes")

	ref, err := store.Put(ctx, data)
	require.NoError(t, err)
	assert.NotEmpty(t, ref)

	fetched, err := store.Fetch(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, data, fetched)
}

func TestPutGeneratesDistinctRefs(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	first, err := store.Put(ctx, []byte("same content"))
	require.NoError(t, err)
	second, err := store.Put(ctx, []byte("same content"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestFetchUnknownRef(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), "11111111-2222-3333-4444-555555555555")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFetchRejectsPathTraversal(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	for _, ref := range []string{"", "../etc/passwd", "a/b", `a\b`} {
		_, err := store.Fetch(context.Background(), ref)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery, "ref %q", ref)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	ref, err := store.Put(ctx, []byte("short lived"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, ref))

	_, err = store.Fetch(ctx, ref)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Second delete is not an error
	assert.NoError(t, store.Delete(ctx, ref))
}
