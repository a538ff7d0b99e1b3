// Package accounts persists wallet accounts and their wrapped content keys.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/imagevault/internal/server/models"
)

type Repository interface {
	GetOrCreate(ctx context.Context, address string) (*models.Account, error)
	GetByAddress(ctx context.Context, address string) (*models.Account, error)
	SetEncryptedKey(ctx context.Context, address string, encryptedKey string) error
}
