package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/ethx"
	"github.com/dmitrijs2005/imagevault/internal/logging"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/repomanager"
)

// KeyID names one wrapped content key. VaultID is empty for account-wide
// keys.
type KeyID struct {
	Owner   string
	VaultID string
}

// KeyScope decides which key protects a vault's content.
type KeyScope interface {
	KeyFor(owner, vaultID string) KeyID
}

// OwnerScope uses a single key per account for all of its vaults.
type OwnerScope struct{}

func (OwnerScope) KeyFor(owner, _ string) KeyID {
	return KeyID{Owner: owner}
}

// KeyStore loads and saves wrapped keys by id.
type KeyStore interface {
	Load(ctx context.Context, id KeyID) (string, error)
	Save(ctx context.Context, id KeyID, wrapped string) error
}

// accountKeyStore keeps the wrapped key on the account row. It only knows
// account-wide keys.
type accountKeyStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func (s *accountKeyStore) Load(ctx context.Context, id KeyID) (string, error) {
	if id.VaultID != "" {
		return "", fmt.Errorf("%w: vault-scoped keys are not supported", common.ErrorValidation)
	}
	account, err := s.repomanager.Accounts(s.db).GetByAddress(ctx, id.Owner)
	if err != nil {
		return "", err
	}
	if account.EncryptedKey == nil {
		return "", fmt.Errorf("no key stored for %s: %w", id.Owner, common.ErrorNotFound)
	}
	return *account.EncryptedKey, nil
}

func (s *accountKeyStore) Save(ctx context.Context, id KeyID, wrapped string) error {
	if id.VaultID != "" {
		return fmt.Errorf("%w: vault-scoped keys are not supported", common.ErrorValidation)
	}
	return s.repomanager.Accounts(s.db).SetEncryptedKey(ctx, id.Owner, wrapped)
}

// CustodyService stores wrapped content keys and hands them out only to the
// vault owner or to holders of an active grant.
type CustodyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	scope       KeyScope
	keys        KeyStore
	log         logging.Logger
}

func NewCustodyService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *CustodyService {
	return &CustodyService{
		db:          db,
		repomanager: m,
		scope:       OwnerScope{},
		keys:        &accountKeyStore{db: db, repomanager: m},
		log:         log.With("module", "custody"),
	}
}

// StoreKey sets the wrapped key of an existing account. Last write wins.
func (s *CustodyService) StoreKey(ctx context.Context, account, wrappedKey string) error {
	canonical, err := ethx.CanonicalAddress(account)
	if err != nil {
		return err
	}
	if wrappedKey == "" {
		return fmt.Errorf("%w: empty key", common.ErrorValidation)
	}
	if err := s.keys.Save(ctx, s.scope.KeyFor(canonical, ""), wrappedKey); err != nil {
		return fmt.Errorf("error storing key: %w", err)
	}
	return nil
}

// FetchOwnKey returns the caller's own wrapped key.
func (s *CustodyService) FetchOwnKey(ctx context.Context, caller string) (string, error) {
	canonical, err := ethx.CanonicalAddress(caller)
	if err != nil {
		return "", err
	}
	return s.keys.Load(ctx, s.scope.KeyFor(canonical, ""))
}

// FetchKey returns target's wrapped key for decrypting content of vaultID.
//
// Checks run in a fixed order and stop at the first failure:
//  1. the caller must have an account (common.ErrorNotFound);
//  2. the vault must exist (common.ErrorNotFound);
//  3. the vault owner is served the owner's key directly, whatever target is;
//  4. anyone else needs an unexpired grant on the vault
//     (common.ErrorForbidden);
//  5. target must be a valid address (common.ErrorValidation) with a stored
//     key (common.ErrorNotFound).
//
// Grant expiry is judged against the database clock, so a grant that lapsed a
// moment ago is already refused.
//
// Parameters:
//   - caller: the authenticated account, taken from the access token.
//   - target: the account whose key is requested, normally the vault owner.
//   - vaultID: the public vault identifier.
//
// Returns:
//   - the wrapped key exactly as the owner stored it. The server never sees
//     the unwrapped key.
//   - err: one of the sentinels above, or a storage error.
//
// Example:
//
//	key, err := custody.FetchKey(ctx, grantee, vault.OwnerAddress, vault.VaultID)
//	if errors.Is(err, common.ErrorForbidden) {
//	    // no active grant
//	}
func (s *CustodyService) FetchKey(ctx context.Context, caller, target, vaultID string) (string, error) {
	caller, err := ethx.CanonicalAddress(caller)
	if err != nil {
		return "", err
	}
	callerAccount, err := s.repomanager.Accounts(s.db).GetByAddress(ctx, caller)
	if err != nil {
		return "", fmt.Errorf("caller: %w", err)
	}

	vault, err := s.repomanager.Vaults(s.db).GetByVaultID(ctx, vaultID)
	if err != nil {
		return "", fmt.Errorf("vault %s: %w", vaultID, err)
	}

	if callerAccount.ID == vault.OwnerID {
		return s.keys.Load(ctx, s.scope.KeyFor(vault.OwnerAddress, vault.VaultID))
	}

	if _, err := s.repomanager.Grants(s.db).FindActive(ctx, vault.ID, callerAccount.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("%s on vault %s: %w", caller, vaultID, common.ErrorForbidden)
		}
		return "", err
	}

	target, err = ethx.CanonicalAddress(target)
	if err != nil {
		return "", err
	}
	if target != vault.OwnerAddress {
		s.log.Warn(ctx, "key requested for non-owner target", "caller", caller, "target", target, "vault_id", vaultID)
	}

	key, err := s.keys.Load(ctx, s.scope.KeyFor(target, vault.VaultID))
	if err != nil {
		return "", fmt.Errorf("target: %w", err)
	}

	return key, nil
}
