// Package ledger records vault registrations and access grants on the
// authoritative chain. Off-chain state is only mutated after a receipt from
// here has been obtained.
package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrLedgerReverted means the ledger rejected the transaction.
var ErrLedgerReverted = errors.New("ledger transaction reverted")

// Receipt identifies a confirmed ledger transaction.
type Receipt struct {
	TxHash string
	Block  uint64
}

type Ledger interface {
	RegisterVault(ctx context.Context, vaultID, owner string) (*Receipt, error)
	GrantAccess(ctx context.Context, vaultID, grantee string, expiresAt *time.Time) (*Receipt, error)
	RevokeAccess(ctx context.Context, vaultID, grantee string) (*Receipt, error)
	Close() error
}

// expiryMillis encodes an optional expiry as unix milliseconds, 0 meaning
// no expiry.
func expiryMillis(expiresAt *time.Time) int64 {
	if expiresAt == nil {
		return 0
	}
	return expiresAt.UnixMilli()
}
