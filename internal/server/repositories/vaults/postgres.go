package vaults

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/dbx"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
)

const selectVault = `SELECT v.id, v.vault_id, v.name, v.description, v.owner_id, a.address, v.created_at,
		 (SELECT COUNT(*) FROM images i WHERE i.vault_id = v.id) AS image_count
		 FROM vaults v
		 JOIN accounts a ON a.id = v.owner_id
		 `

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.Vault) (*models.Vault, error) {
	query :=
		`INSERT INTO vaults (vault_id, name, description, owner_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, v.VaultID, v.Name, v.Description, v.OwnerID).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return v, nil
}

func scanVault(s interface{ Scan(...any) error }) (*models.Vault, error) {
	v := &models.Vault{}
	err := s.Scan(&v.ID, &v.VaultID, &v.Name, &v.Description, &v.OwnerID, &v.OwnerAddress, &v.CreatedAt, &v.ImageCount)
	return v, err
}

func (r *PostgresRepository) GetByVaultID(ctx context.Context, vaultID string) (*models.Vault, error) {
	query := selectVault + `WHERE v.vault_id = $1`

	v, err := scanVault(r.db.QueryRowContext(ctx, query, vaultID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return v, nil
}

func (r *PostgresRepository) LockByVaultID(ctx context.Context, vaultID string) (*models.Vault, error) {
	query :=
		`SELECT id, vault_id, owner_id FROM vaults
		 WHERE vault_id = $1
		 FOR UPDATE
		 `

	v := &models.Vault{}
	err := r.db.QueryRowContext(ctx, query, vaultID).Scan(&v.ID, &v.VaultID, &v.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return v, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Vault, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []*models.Vault
	for rows.Next() {
		v, err := scanVault(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) ListOwned(ctx context.Context, ownerID string) ([]*models.Vault, error) {
	return r.list(ctx, selectVault+`WHERE v.owner_id = $1 ORDER BY v.created_at, v.id`, ownerID)
}

func (r *PostgresRepository) ListShared(ctx context.Context, accountID string) ([]*models.Vault, error) {
	query := selectVault + `WHERE EXISTS (
		   SELECT 1 FROM access_grants g
		   WHERE g.vault_id = v.id AND g.account_id = $1
		     AND (g.expires_at IS NULL OR g.expires_at > now()))
		 ORDER BY v.created_at, v.id`

	return r.list(ctx, query, accountID)
}
