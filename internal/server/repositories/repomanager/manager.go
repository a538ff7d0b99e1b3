package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/imagevault/internal/dbx"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/grants"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/images"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/vaults"
)

// RepositoryManager hands out repositories bound to either the pool or a
// transaction, so services can pick per call.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Vaults(db dbx.DBTX) vaults.Repository
	Grants(db dbx.DBTX) grants.Repository
	Images(db dbx.DBTX) images.Repository
}
