package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/ethx"
	"github.com/dmitrijs2005/imagevault/internal/server/ledger"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/repomanager"
)

type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ledger      ledger.Ledger
	access      *AccessService
}

func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, l ledger.Ledger, access *AccessService) *VaultService {
	return &VaultService{db: db, repomanager: m, ledger: l, access: access}
}

// CreateVault registers the vault on the ledger and then stores it. vaultID
// is assigned by the caller and must be globally unique.
func (s *VaultService) CreateVault(ctx context.Context, caller, vaultID, name, description string) (*models.Vault, error) {
	caller, err := ethx.CanonicalAddress(caller)
	if err != nil {
		return nil, err
	}

	vaultID = strings.TrimSpace(vaultID)
	name = strings.TrimSpace(name)
	if vaultID == "" {
		return nil, fmt.Errorf("%w: vault id is required", common.ErrorValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: vault name is required", common.ErrorValidation)
	}
	if strings.TrimSpace(description) == "" {
		description = common.DefaultVaultDescription
	}

	owner, err := s.repomanager.Accounts(s.db).GetByAddress(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}

	vaults := s.repomanager.Vaults(s.db)
	if _, err := vaults.GetByVaultID(ctx, vaultID); err == nil {
		return nil, fmt.Errorf("vault %s: %w", vaultID, common.ErrorConflict)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	if _, err := s.ledger.RegisterVault(ctx, vaultID, owner.Address); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorLedger, err)
	}

	v, err := vaults.Create(ctx, &models.Vault{
		VaultID:     vaultID,
		Name:        name,
		Description: description,
		OwnerID:     owner.ID,
	})
	if err != nil {
		return nil, err
	}
	v.OwnerAddress = owner.Address

	return v, nil
}

// GetVault returns the vault to its owner or an active grantee.
func (s *VaultService) GetVault(ctx context.Context, caller, vaultID string) (*models.Vault, error) {
	return s.access.Authorize(ctx, caller, vaultID)
}

// ListVaults returns the vaults caller owns and those shared with it through
// an active grant.
func (s *VaultService) ListVaults(ctx context.Context, caller string) ([]*models.Vault, []*models.Vault, error) {
	caller, err := ethx.CanonicalAddress(caller)
	if err != nil {
		return nil, nil, err
	}

	account, err := s.repomanager.Accounts(s.db).GetByAddress(ctx, caller)
	if err != nil {
		return nil, nil, err
	}

	vaults := s.repomanager.Vaults(s.db)

	owned, err := vaults.ListOwned(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	shared, err := vaults.ListShared(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	return owned, shared, nil
}
