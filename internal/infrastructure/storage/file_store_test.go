package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and load roundtrip", func(t *testing.T) {
		store, err := NewFileStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Save(ctx, "transfers", []byte(`{"items":[]}`)))
		data, err := store.Load(ctx, "transfers")
		require.NoError(t, err)
		assert.Equal(t, `{"items":[]}`, string(data))
	})

	t.Run("missing key returns ErrBlobNotFound", func(t *testing.T) {
		store, err := NewFileStore(t.TempDir())
		require.NoError(t, err)

		_, err = store.Load(ctx, "never_saved")
		assert.ErrorIs(t, err, ErrBlobNotFound)
	})

	t.Run("save overwrites previous content", func(t *testing.T) {
		store, err := NewFileStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Save(ctx, "doc", []byte(`1`)))
		require.NoError(t, store.Save(ctx, "doc", []byte(`2`)))
		data, err := store.Load(ctx, "doc")
		require.NoError(t, err)
		assert.Equal(t, `2`, string(data))
	})

	t.Run("rejects path-like keys", func(t *testing.T) {
		store, err := NewFileStore(t.TempDir())
		require.NoError(t, err)

		_, err = store.Load(ctx, "../escape")
		assert.Error(t, err)
		assert.Error(t, store.Save(ctx, "a/b", nil))
		assert.Error(t, store.Save(ctx, "", nil))
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrBlobNotFound)

	require.NoError(t, store.Save(ctx, "doc", []byte(`{"a":1}`)))
	data, err := store.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	// mutating the returned slice must not affect the stored blob
	data[0] = 'X'
	again, err := store.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(again))
}
