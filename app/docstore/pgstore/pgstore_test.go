package pgstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"inkwell/app/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBackend(t *testing.T) *Backend {
	t.Helper()
	dsn := os.Getenv("INKWELL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("INKWELL_TEST_POSTGRES_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := Open(ctx, dsn, Options{MaxConns: 4})
	require.NoError(t, err)
	require.NoError(t, b.Truncate(ctx))
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBackend(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t)

	db := docstore.New(b)
	id, err := db.Add(ctx, "posts", docstore.Document{"title": "Hello", "author": "Ann"})
	require.NoError(t, err)

	require.NoError(t, db.Update(ctx, "posts", id, docstore.Document{"title": "Updated"}))

	snap, err := db.Get(ctx, "posts", id)
	require.NoError(t, err)
	assert.Equal(t, "Updated", snap.Data["title"])
	assert.Equal(t, "Ann", snap.Data["author"])

	require.NoError(t, db.Delete(ctx, "posts", id))
	require.NoError(t, db.Delete(ctx, "posts", id))

	_, err = b.Get(ctx, "posts", id)
	assert.True(t, errors.Is(err, docstore.ErrNotFound))
}

func TestModifyMissing(t *testing.T) {
	b := openTestBackend(t)
	err := b.Modify(context.Background(), "posts", "ghost", func(cur []byte) ([]byte, error) { return cur, nil })
	assert.True(t, errors.Is(err, docstore.ErrNotFound))
}

func TestOpenRejectsBadDSN(t *testing.T) {
	_, err := Open(context.Background(), "://not a dsn", Options{})
	assert.Error(t, err)
}
