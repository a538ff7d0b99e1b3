package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/dbx"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts img. A second image with the same hash in the same vault is
// a conflict.
func (r *PostgresRepository) Create(ctx context.Context, img *models.Image) (*models.Image, error) {
	query :=
		`INSERT INTO images (id, vault_id, ipfs_hash, filename, size, mime_type)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING uploaded_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		img.ID, img.VaultPK, img.IPFSHash, img.Filename, img.Size, img.MimeType).Scan(&img.UploadedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return img, nil
}

func (r *PostgresRepository) GetByHash(ctx context.Context, vaultPK, ipfsHash string) (*models.Image, error) {
	query :=
		`SELECT id, vault_id, ipfs_hash, filename, size, mime_type, uploaded_at FROM images
		 WHERE vault_id = $1 AND ipfs_hash = $2
		 `

	img := &models.Image{}
	err := r.db.QueryRowContext(ctx, query, vaultPK, ipfsHash).
		Scan(&img.ID, &img.VaultPK, &img.IPFSHash, &img.Filename, &img.Size, &img.MimeType, &img.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return img, nil
}

func (r *PostgresRepository) ListByVault(ctx context.Context, vaultPK string) ([]*models.Image, error) {
	query :=
		`SELECT id, vault_id, ipfs_hash, filename, size, mime_type, uploaded_at FROM images
		 WHERE vault_id = $1
		 ORDER BY uploaded_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query, vaultPK)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []*models.Image
	for rows.Next() {
		img := &models.Image{}
		if err := rows.Scan(&img.ID, &img.VaultPK, &img.IPFSHash, &img.Filename, &img.Size, &img.MimeType, &img.UploadedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}
