// Package images persists image metadata. Ciphertext lives in the blob store.
package images

import (
	"context"

	"github.com/dmitrijs2005/imagevault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, img *models.Image) (*models.Image, error)
	GetByHash(ctx context.Context, vaultPK, ipfsHash string) (*models.Image, error)
	ListByVault(ctx context.Context, vaultPK string) ([]*models.Image, error)
}
