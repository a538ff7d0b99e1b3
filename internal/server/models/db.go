// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is identified by its canonical (lowercase) address. EncryptedKey is
// nil until the account stores its wrapped content key.
type Account struct {
	ID           string
	Address      string
	EncryptedKey *string
	CreatedAt    time.Time
}

// Vault is owned by exactly one account. ImageCount is derived at query time.
type Vault struct {
	ID           string
	VaultID      string
	Name         string
	Description  string
	OwnerID      string
	OwnerAddress string
	ImageCount   int64
	CreatedAt    time.Time
}

// AccessGrant authorizes one account on one vault, optionally until ExpiresAt.
// Expired grants are kept and filtered at read time.
type AccessGrant struct {
	ID             int64
	VaultPK        string // vaults.id, not the external vault id
	AccountID      string
	GranteeAddress string
	ExpiresAt      *time.Time
	GrantedAt      time.Time
}

// ActiveAt reports whether the grant is in force at t.
func (g *AccessGrant) ActiveAt(t time.Time) bool {
	return g.ExpiresAt == nil || g.ExpiresAt.After(t)
}

// Image is immutable metadata for one encrypted blob stored in a vault.
type Image struct {
	ID         string
	VaultPK    string // vaults.id
	IPFSHash   string
	Filename   string
	Size       int64
	MimeType   string
	UploadedAt time.Time
}
