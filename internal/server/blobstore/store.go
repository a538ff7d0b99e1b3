// Package blobstore keeps encrypted image payloads addressed by the CID of
// their bytes. Two backends exist: S3-compatible object storage and a local
// badger database.
package blobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ErrIntegrity is returned by Get when the stored bytes no longer hash to
// the requested content id.
var ErrIntegrity = errors.New("blob does not match its content hash")

// Store is a content-addressed blob store. Put of bytes already present is a
// no-op that returns the same hash.
type Store interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, hash string) ([]byte, error)
	Has(ctx context.Context, hash string) (bool, error)
	Close() error
}

var prefix = cid.Prefix{
	Version:  1,
	Codec:    cid.Raw,
	MhType:   multihash.SHA2_256,
	MhLength: -1,
}

// ContentID returns the CIDv1 (raw codec, sha2-256) of data in its default
// base32 string form.
func ContentID(data []byte) (string, error) {
	c, err := prefix.Sum(data)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// parseHash validates a caller-supplied hash. Malformed ids are reported as
// not found so they never reach the backend as a key.
func parseHash(hash string) (cid.Cid, error) {
	c, err := cid.Decode(hash)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: bad content id %q", common.ErrorNotFound, hash)
	}
	return c, nil
}

// ParseContentID checks that hash is a well-formed content id and returns
// its canonical string form.
func ParseContentID(hash string) (string, error) {
	c, err := cid.Decode(hash)
	if err != nil {
		return "", fmt.Errorf("%w: bad content id %q", common.ErrorValidation, hash)
	}
	return c.String(), nil
}

// verify re-hashes data with the prefix of want and compares.
func verify(want cid.Cid, data []byte) error {
	got, err := want.Prefix().Sum(data)
	if err != nil {
		return err
	}
	if !got.Equals(want) {
		return ErrIntegrity
	}
	return nil
}

func objectKey(hash string) string {
	return "blobs/" + hash
}
