package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/dbx"
	"github.com/dmitrijs2005/imagevault/internal/ethx"
	"github.com/dmitrijs2005/imagevault/internal/logging"
	"github.com/dmitrijs2005/imagevault/internal/server/ledger"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/repomanager"
)

// AccessService mirrors on-chain grants into Postgres for expiry-aware
// queries. Writers on one vault are serialized, first by an in-process lock
// and then by a row lock on the vault inside a short transaction. The ledger
// call happens between the two, so no database lock is held while waiting
// for a receipt.
type AccessService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ledger      ledger.Ledger
	locks       *vaultLocks
	log         logging.Logger
}

func NewAccessService(db *sql.DB, m repomanager.RepositoryManager, l ledger.Ledger, log logging.Logger) *AccessService {
	return &AccessService{
		db:          db,
		repomanager: m,
		ledger:      l,
		locks:       newVaultLocks(),
		log:         log.With("module", "access"),
	}
}

// ownerAction resolves the vault and grantee of a grant or revoke and checks
// that caller owns the vault. Unless requireGrantee is set, a missing grantee
// account is returned as nil so revoke can treat it as a no-op.
func (s *AccessService) ownerAction(ctx context.Context, caller, vaultID, grantee string, requireGrantee bool) (*models.Vault, *models.Account, error) {
	caller, err := ethx.CanonicalAddress(caller)
	if err != nil {
		return nil, nil, err
	}
	grantee, err = ethx.CanonicalAddress(grantee)
	if err != nil {
		return nil, nil, err
	}

	vault, err := s.repomanager.Vaults(s.db).GetByVaultID(ctx, vaultID)
	if err != nil {
		return nil, nil, fmt.Errorf("vault %s: %w", vaultID, err)
	}

	account, err := s.repomanager.Accounts(s.db).GetByAddress(ctx, grantee)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, nil, err
		}
		if requireGrantee {
			return nil, nil, fmt.Errorf("grantee %s: %w", grantee, err)
		}
		account = nil
	}

	if caller != vault.OwnerAddress {
		return nil, nil, fmt.Errorf("%s does not own vault %s: %w", caller, vaultID, common.ErrorForbidden)
	}

	return vault, account, nil
}

// GrantAccess records a grant on the ledger and, once confirmed, in the
// database. A second grant while one is still active is a conflict.
func (s *AccessService) GrantAccess(ctx context.Context, caller, vaultID, grantee string, expiresAt *time.Time) (*models.AccessGrant, error) {
	vault, account, err := s.ownerAction(ctx, caller, vaultID, grantee, true)
	if err != nil {
		return nil, err
	}
	if account.ID == vault.OwnerID {
		return nil, fmt.Errorf("owner already has access: %w", common.ErrorConflict)
	}

	unlock, err := s.locks.Lock(ctx, vault.VaultID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := s.repomanager.Grants(s.db).FindActive(ctx, vault.ID, account.ID); err == nil {
		return nil, fmt.Errorf("%s already has access to %s: %w", account.Address, vaultID, common.ErrorConflict)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	if expiresAt != nil && !expiresAt.After(now()) {
		return nil, fmt.Errorf("%w: expiry must be in the future", common.ErrorValidation)
	}

	receipt, err := s.ledger.GrantAccess(ctx, vault.VaultID, account.Address, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorLedger, err)
	}
	s.log.Info(ctx, "grant confirmed", "vault_id", vault.VaultID, "grantee", account.Address, "tx", receipt.TxHash, "block", receipt.Block)

	grant, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.AccessGrant, error) {
		if _, err := s.repomanager.Vaults(tx).LockByVaultID(ctx, vault.VaultID); err != nil {
			return nil, err
		}

		grants := s.repomanager.Grants(tx)
		if _, err := grants.FindActive(ctx, vault.ID, account.ID); err == nil {
			return nil, fmt.Errorf("%s already has access to %s: %w", account.Address, vaultID, common.ErrorConflict)
		} else if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}

		return grants.Insert(ctx, &models.AccessGrant{VaultPK: vault.ID, AccountID: account.ID, ExpiresAt: expiresAt})
	})
	if err != nil {
		s.log.Error(ctx, "grant confirmed on ledger but not recorded", "vault_id", vault.VaultID, "grantee", account.Address, "tx", receipt.TxHash, "error", err)
		return nil, err
	}

	grant.GranteeAddress = account.Address
	return grant, nil
}

// RevokeAccess removes every grant of grantee on the vault, expired or not.
// Revoking access that was never granted succeeds without touching the
// ledger.
func (s *AccessService) RevokeAccess(ctx context.Context, caller, vaultID, grantee string) error {
	vault, account, err := s.ownerAction(ctx, caller, vaultID, grantee, false)
	if err != nil {
		return err
	}
	if account == nil {
		return nil
	}

	unlock, err := s.locks.Lock(ctx, vault.VaultID)
	if err != nil {
		return err
	}
	defer unlock()

	n, err := s.repomanager.Grants(s.db).CountAll(ctx, vault.ID, account.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	receipt, err := s.ledger.RevokeAccess(ctx, vault.VaultID, account.Address)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorLedger, err)
	}
	s.log.Info(ctx, "revoke confirmed", "vault_id", vault.VaultID, "grantee", account.Address, "tx", receipt.TxHash, "block", receipt.Block)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Vaults(tx).LockByVaultID(ctx, vault.VaultID); err != nil {
			return err
		}
		_, err := s.repomanager.Grants(tx).DeleteAll(ctx, vault.ID, account.ID)
		return err
	})
}

// ListActiveGrantees returns unexpired grants of the vault in insertion
// order. Only the owner and current grantees may list them.
func (s *AccessService) ListActiveGrantees(ctx context.Context, caller, vaultID string) ([]*models.AccessGrant, error) {
	vault, err := s.Authorize(ctx, caller, vaultID)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Grants(s.db).ListActive(ctx, vault.ID)
}

// IsOwner reports whether account owns vaultID.
func (s *AccessService) IsOwner(ctx context.Context, account, vaultID string) (bool, error) {
	account, err := ethx.CanonicalAddress(account)
	if err != nil {
		return false, err
	}
	vault, err := s.repomanager.Vaults(s.db).GetByVaultID(ctx, vaultID)
	if err != nil {
		return false, err
	}
	return vault.OwnerAddress == account, nil
}

// IsActiveGrantee reports whether account holds an unexpired grant on
// vaultID. Unknown accounts hold none.
func (s *AccessService) IsActiveGrantee(ctx context.Context, account, vaultID string) (bool, error) {
	account, err := ethx.CanonicalAddress(account)
	if err != nil {
		return false, err
	}
	vault, err := s.repomanager.Vaults(s.db).GetByVaultID(ctx, vaultID)
	if err != nil {
		return false, err
	}
	return s.isActiveGrantee(ctx, account, vault)
}

func (s *AccessService) isActiveGrantee(ctx context.Context, account string, vault *models.Vault) (bool, error) {
	acc, err := s.repomanager.Accounts(s.db).GetByAddress(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	if _, err := s.repomanager.Grants(s.db).FindActive(ctx, vault.ID, acc.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Authorize loads vaultID and checks that caller is its owner or an active
// grantee.
func (s *AccessService) Authorize(ctx context.Context, caller, vaultID string) (*models.Vault, error) {
	caller, err := ethx.CanonicalAddress(caller)
	if err != nil {
		return nil, err
	}
	vault, err := s.repomanager.Vaults(s.db).GetByVaultID(ctx, vaultID)
	if err != nil {
		return nil, fmt.Errorf("vault %s: %w", vaultID, err)
	}
	if vault.OwnerAddress == caller {
		return vault, nil
	}
	ok, err := s.isActiveGrantee(ctx, caller, vault)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s on vault %s: %w", caller, vaultID, common.ErrorForbidden)
	}
	return vault, nil
}

// AuthorizeOwner loads vaultID and checks that caller owns it.
func (s *AccessService) AuthorizeOwner(ctx context.Context, caller, vaultID string) (*models.Vault, error) {
	caller, err := ethx.CanonicalAddress(caller)
	if err != nil {
		return nil, err
	}
	vault, err := s.repomanager.Vaults(s.db).GetByVaultID(ctx, vaultID)
	if err != nil {
		return nil, fmt.Errorf("vault %s: %w", vaultID, err)
	}
	if vault.OwnerAddress != caller {
		return nil, fmt.Errorf("%s does not own vault %s: %w", caller, vaultID, common.ErrorForbidden)
	}
	return vault, nil
}
