package badgerstore

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"inkwell/app/docstore"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend(t *testing.T) {
	ctx := context.Background()
	b, err := Open(filepath.Join(t.TempDir(), "badger"))
	require.NoError(t, err)
	t.Cleanup(func() {
		b.Close()
	})

	t.Run("put and get", func(t *testing.T) {
		require.NoError(t, b.Put(ctx, "posts", "a", []byte("alpha")))

		data, err := b.Get(ctx, "posts", "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("alpha"), data)

		// Verify key layout directly
		err = b.db.View(func(txn *badger.Txn) error {
			_, err := txn.Get([]byte("doc:posts:a"))
			return err
		})
		assert.NoError(t, err)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := b.Get(ctx, "posts", "missing")
		assert.True(t, errors.Is(err, docstore.ErrNotFound))
	})

	t.Run("modify existing", func(t *testing.T) {
		require.NoError(t, b.Put(ctx, "posts", "m", []byte("one")))
		err := b.Modify(ctx, "posts", "m", func(cur []byte) ([]byte, error) {
			return append(cur, []byte("+two")...), nil
		})
		require.NoError(t, err)

		data, err := b.Get(ctx, "posts", "m")
		require.NoError(t, err)
		assert.Equal(t, "one+two", string(data))
	})

	t.Run("modify missing", func(t *testing.T) {
		called := false
		err := b.Modify(ctx, "posts", "ghost", func(cur []byte) ([]byte, error) {
			called = true
			return cur, nil
		})
		assert.True(t, errors.Is(err, docstore.ErrNotFound))
		assert.False(t, called)
	})

	t.Run("delete twice", func(t *testing.T) {
		require.NoError(t, b.Put(ctx, "posts", "d", []byte("x")))
		assert.NoError(t, b.Delete(ctx, "posts", "d"))
		assert.NoError(t, b.Delete(ctx, "posts", "d"))
	})

	t.Run("scan stays inside the collection", func(t *testing.T) {
		require.NoError(t, b.Put(ctx, "comments", "c1", []byte("1")))
		require.NoError(t, b.Put(ctx, "comments", "c2", []byte("2")))
		require.NoError(t, b.Put(ctx, "commentsArchive", "z", []byte("z")))

		var ids []string
		err := b.Scan(ctx, "comments", func(id string, _ []byte) error {
			ids = append(ids, id)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"c1", "c2"}, ids)
	})
}

func TestBackupRestore(t *testing.T) {
	ctx := context.Background()
	src, err := Open(filepath.Join(t.TempDir(), "src"))
	require.NoError(t, err)
	defer src.Close()

	db := docstore.New(src)
	id, err := db.Add(ctx, "posts", docstore.Document{"title": "Saved"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.Backup(&buf))
	assert.NotZero(t, buf.Len())

	dst, err := OpenInMemory()
	require.NoError(t, err)
	defer dst.Close()
	require.NoError(t, dst.Restore(&buf))

	snap, err := docstore.New(dst).Get(ctx, "posts", id)
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.Equal(t, "Saved", snap.Data["title"])
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
