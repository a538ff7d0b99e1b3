// Package grants persists access grants. Expired rows are never purged; every
// "active" query filters on expires_at against the database clock.
package grants

import (
	"context"

	"github.com/dmitrijs2005/imagevault/internal/server/models"
)

type Repository interface {
	FindActive(ctx context.Context, vaultPK, accountID string) (*models.AccessGrant, error)
	Insert(ctx context.Context, g *models.AccessGrant) (*models.AccessGrant, error)
	DeleteAll(ctx context.Context, vaultPK, accountID string) (int64, error)
	ListActive(ctx context.Context, vaultPK string) ([]*models.AccessGrant, error)
	CountAll(ctx context.Context, vaultPK, accountID string) (int64, error)
}
