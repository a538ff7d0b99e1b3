// Package vaults persists vault records. Image counts are derived, not stored.
package vaults

import (
	"context"

	"github.com/dmitrijs2005/imagevault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, v *models.Vault) (*models.Vault, error)
	GetByVaultID(ctx context.Context, vaultID string) (*models.Vault, error)
	// LockByVaultID row-locks the vault; only meaningful inside a transaction.
	LockByVaultID(ctx context.Context, vaultID string) (*models.Vault, error)
	ListOwned(ctx context.Context, ownerID string) ([]*models.Vault, error)
	// ListShared returns vaults the account holds an active grant on.
	ListShared(ctx context.Context, accountID string) ([]*models.Vault, error)
}
