package accounts

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

// GetOrCreate returns the account for address, inserting it on first sight.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, address string) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (address)
		 VALUES ($1)
		 ON CONFLICT (address) DO UPDATE SET address = EXCLUDED.address
		 RETURNING id, address, encrypted_key, created_at
		 `

	a := &models.Account{}
	var key sql.NullString
	err := r.db.QueryRowContext(ctx, query, address).Scan(&a.ID, &a.Address, &key, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if key.Valid {
		a.EncryptedKey = &key.String
	}

	return a, nil
}

func (r *PostgresRepository) GetByAddress(ctx context.Context, address string) (*models.Account, error) {
	query :=
		`SELECT id, address, encrypted_key, created_at FROM accounts
		 WHERE address = $1
		 `

	a := &models.Account{}
	var key sql.NullString
	err := r.db.QueryRowContext(ctx, query, address).Scan(&a.ID, &a.Address, &key, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if key.Valid {
		a.EncryptedKey = &key.String
	}

	return a, nil
}

// SetEncryptedKey overwrites the wrapped key of an existing account.
func (r *PostgresRepository) SetEncryptedKey(ctx context.Context, address string, encryptedKey string) error {
	query :=
		`UPDATE accounts SET encrypted_key = $2
		 WHERE address = $1
		 `

	res, err := r.db.ExecContext(ctx, query, address, encryptedKey)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
