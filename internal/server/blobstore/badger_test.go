package blobstore

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemStore(t *testing.T) *BadgerStore {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	s, err := NewBadgerStore(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStore_PutGet(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	h, err := s.Put(ctx, []byte("ciphertext"))
	require.NoError(t, err)

	want, err := ContentID([]byte("ciphertext"))
	require.NoError(t, err)
	assert.Equal(t, want, h)

	got, err := s.Get(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, []byte("ciphertext"), got)
}

func TestBadgerStore_PutIsIdempotent(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	h1, err := s.Put(ctx, []byte("x"))
	require.NoError(t, err)
	h2, err := s.Put(ctx, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestBadgerStore_GetMissing(t *testing.T) {
	s := newMemStore(t)

	h, err := ContentID([]byte("never stored"))
	require.NoError(t, err)

	_, err = s.Get(context.Background(), h)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Get(context.Background(), "not-a-cid")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestBadgerStore_GetDetectsCorruption(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	h, err := s.Put(ctx, []byte("original"))
	require.NoError(t, err)

	require.NoError(t, s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(objectKey(h)), []byte("tampered"))
	}))

	_, err = s.Get(ctx, h)
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestBadgerStore_Has(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	h, err := s.Put(ctx, []byte("sealed"))
	require.NoError(t, err)

	ok, err := s.Has(ctx, h)
	require.NoError(t, err)
	assert.True(t, ok)

	other, err := ContentID([]byte("other"))
	require.NoError(t, err)
	ok, err = s.Has(ctx, other)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Has(ctx, "not-a-cid")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
