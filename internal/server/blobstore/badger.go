package blobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/imagevault/internal/common"
)

// BadgerStore keeps blobs in a local badger database. It suits single-node
// deployments and tests.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a badger database at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	return NewBadgerStore(opts)
}

func NewBadgerStore(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("error opening blob store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Put(ctx context.Context, data []byte) (string, error) {
	hash, err := ContentID(data)
	if err != nil {
		return "", err
	}
	key := []byte(objectKey(hash))

	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return "", fmt.Errorf("blob put: %w", err)
	}

	return hash, nil
}

func (s *BadgerStore) Get(ctx context.Context, hash string) ([]byte, error) {
	c, err := parseHash(hash)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(objectKey(c.String())))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("blob get: %w", err)
	}

	if err := verify(c, data); err != nil {
		return nil, err
	}

	return data, nil
}

func (s *BadgerStore) Has(ctx context.Context, hash string) (bool, error) {
	c, err := parseHash(hash)
	if err != nil {
		return false, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(objectKey(c.String())))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("blob has: %w", err)
	}
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
