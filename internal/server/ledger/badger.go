package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ethereum/go-ethereum/crypto"
)

const sequenceBandwidth = 100

// Op names a ledger operation.
type Op string

const (
	OpRegisterVault Op = "createVault"
	OpGrantAccess   Op = "grantAccess"
	OpRevokeAccess  Op = "revokeAccess"
)

// Entry is one appended transaction of the local ledger.
type Entry struct {
	Block     uint64 `json:"block"`
	Op        Op     `json:"op"`
	VaultID   string `json:"vault_id"`
	Account   string `json:"account"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// BadgerLedger is an append-only local ledger for development and tests. It
// applies the same checks as the access contract: a vault can be created
// once, grants need an existing vault and the owner cannot be a grantee.
type BadgerLedger struct {
	db  *badger.DB
	seq *badger.Sequence
	now func() time.Time
}

// OpenBadgerLedger opens (or creates) a ledger database at path.
func OpenBadgerLedger(path string) (*BadgerLedger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	return NewBadgerLedger(opts)
}

func NewBadgerLedger(opts badger.Options) (*BadgerLedger, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("error opening ledger: %w", err)
	}

	seq, err := db.GetSequence([]byte("seq/block"), sequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error opening ledger sequence: %w", err)
	}

	return &BadgerLedger{db: db, seq: seq, now: time.Now}, nil
}

func vaultKey(vaultID string) []byte { return []byte("vault/" + vaultID) }

func grantKey(vaultID, grantee string) []byte {
	return []byte("grant/" + vaultID + "/" + strings.ToLower(grantee))
}

func txKey(block uint64) []byte { return []byte(fmt.Sprintf("tx/%020d", block)) }

func reverted(reason string) error {
	return fmt.Errorf("%w: %s", ErrLedgerReverted, reason)
}

func (l *BadgerLedger) RegisterVault(ctx context.Context, vaultID, owner string) (*Receipt, error) {
	return l.append(ctx, Entry{Op: OpRegisterVault, VaultID: vaultID, Account: strings.ToLower(owner)},
		func(txn *badger.Txn) error {
			if _, err := txn.Get(vaultKey(vaultID)); err == nil {
				return reverted("vault already exists")
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			return txn.Set(vaultKey(vaultID), []byte(strings.ToLower(owner)))
		})
}

func (l *BadgerLedger) GrantAccess(ctx context.Context, vaultID, grantee string, expiresAt *time.Time) (*Receipt, error) {
	ms := expiryMillis(expiresAt)
	return l.append(ctx, Entry{Op: OpGrantAccess, VaultID: vaultID, Account: strings.ToLower(grantee), ExpiresAt: ms},
		func(txn *badger.Txn) error {
			owner, err := l.ownerOf(txn, vaultID)
			if err != nil {
				return err
			}
			if owner == strings.ToLower(grantee) {
				return reverted("owner cannot be a grantee")
			}
			return txn.Set(grantKey(vaultID, grantee), []byte(fmt.Sprint(ms)))
		})
}

func (l *BadgerLedger) RevokeAccess(ctx context.Context, vaultID, grantee string) (*Receipt, error) {
	return l.append(ctx, Entry{Op: OpRevokeAccess, VaultID: vaultID, Account: strings.ToLower(grantee)},
		func(txn *badger.Txn) error {
			if _, err := l.ownerOf(txn, vaultID); err != nil {
				return err
			}
			return txn.Delete(grantKey(vaultID, grantee))
		})
}

// Entries returns the whole transaction log in block order.
func (l *BadgerLedger) Entries() ([]Entry, error) {
	var out []Entry
	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("tx/")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var e Entry
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &e)
			})
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return nil
	})
	return out, err
}

func (l *BadgerLedger) Close() error {
	if err := l.seq.Release(); err != nil {
		_ = l.db.Close()
		return err
	}
	return l.db.Close()
}

func (l *BadgerLedger) ownerOf(txn *badger.Txn, vaultID string) (string, error) {
	item, err := txn.Get(vaultKey(vaultID))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", reverted("unknown vault")
		}
		return "", err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// append applies the state change and the log entry in one badger
// transaction, so a reverted call leaves no trace.
func (l *BadgerLedger) append(ctx context.Context, e Entry, apply func(txn *badger.Txn) error) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	block, err := l.seq.Next()
	if err != nil {
		return nil, err
	}
	e.Block = block + 1
	e.Timestamp = l.now().UnixMilli()

	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		if err := apply(txn); err != nil {
			return err
		}
		return txn.Set(txKey(e.Block), payload)
	})
	if err != nil {
		return nil, err
	}

	return &Receipt{TxHash: crypto.Keccak256Hash(payload).Hex(), Block: e.Block}, nil
}
