package grants

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

func (r *PostgresRepository) FindActive(ctx context.Context, vaultPK, accountID string) (*models.AccessGrant, error) {
	query :=
		`SELECT g.id, g.vault_id, g.account_id, a.address, g.expires_at, g.granted_at
		 FROM access_grants g
		 JOIN accounts a ON a.id = g.account_id
		 WHERE g.vault_id = $1 AND g.account_id = $2
		   AND (g.expires_at IS NULL OR g.expires_at > now())
		 ORDER BY g.id
		 LIMIT 1
		 `

	g, err := scanGrant(r.db.QueryRowContext(ctx, query, vaultPK, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return g, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, g *models.AccessGrant) (*models.AccessGrant, error) {
	query :=
		`INSERT INTO access_grants (vault_id, account_id, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, granted_at
		 `

	var expires sql.NullTime
	if g.ExpiresAt != nil {
		expires = sql.NullTime{Time: *g.ExpiresAt, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, g.VaultPK, g.AccountID, expires).Scan(&g.ID, &g.GrantedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return g, nil
}

// DeleteAll removes every grant row for the pair, expired or not, and returns
// how many were removed.
func (r *PostgresRepository) DeleteAll(ctx context.Context, vaultPK, accountID string) (int64, error) {
	query :=
		`DELETE FROM access_grants
		 WHERE vault_id = $1 AND account_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, vaultPK, accountID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context, vaultPK string) ([]*models.AccessGrant, error) {
	query :=
		`SELECT g.id, g.vault_id, g.account_id, a.address, g.expires_at, g.granted_at
		 FROM access_grants g
		 JOIN accounts a ON a.id = g.account_id
		 WHERE g.vault_id = $1
		   AND (g.expires_at IS NULL OR g.expires_at > now())
		 ORDER BY g.id
		 `

	rows, err := r.db.QueryContext(ctx, query, vaultPK)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []*models.AccessGrant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) CountAll(ctx context.Context, vaultPK, accountID string) (int64, error) {
	query :=
		`SELECT COUNT(*) FROM access_grants
		 WHERE vault_id = $1 AND account_id = $2
		 `

	var n int64
	if err := r.db.QueryRowContext(ctx, query, vaultPK, accountID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func scanGrant(s interface{ Scan(...any) error }) (*models.AccessGrant, error) {
	g := &models.AccessGrant{}
	var expires sql.NullTime
	if err := s.Scan(&g.ID, &g.VaultPK, &g.AccountID, &g.GranteeAddress, &expires, &g.GrantedAt); err != nil {
		return nil, err
	}
	if expires.Valid {
		t := expires.Time
		g.ExpiresAt = &t
	}
	return g, nil
}
