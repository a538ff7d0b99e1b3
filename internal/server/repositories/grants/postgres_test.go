package grants

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var grantCols = []string{"id", "vault_id", "account_id", "address", "expires_at", "granted_at"}

const (
	qFindActive = `(?s)^SELECT\s+g\.id,.*FROM\s+access_grants\s+g.*WHERE\s+g\.vault_id\s*=\s*\$1\s+AND\s+g\.account_id\s*=\s*\$2\s+AND\s+\(g\.expires_at\s+IS\s+NULL\s+OR\s+g\.expires_at\s*>\s*now\(\)\).*LIMIT\s+1\s*$`
	qInsert     = `(?s)^INSERT\s+INTO\s+access_grants\s*\(vault_id,\s*account_id,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*granted_at\s*$`
	qDelete     = `(?s)^DELETE\s+FROM\s+access_grants\s+WHERE\s+vault_id\s*=\s*\$1\s+AND\s+account_id\s*=\s*\$2\s*$`
	qListActive = `(?s)^SELECT\s+g\.id,.*WHERE\s+g\.vault_id\s*=\s*\$1\s+AND\s+\(g\.expires_at\s+IS\s+NULL\s+OR\s+g\.expires_at\s*>\s*now\(\)\)\s+ORDER\s+BY\s+g\.id\s*$`
	qCount      = `(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+access_grants\s+WHERE\s+vault_id\s*=\s*\$1\s+AND\s+account_id\s*=\s*\$2\s*$`
)

func TestFindActive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(time.Hour)
	mock.ExpectQuery(qFindActive).
		WithArgs("pk-1", "a-2").
		WillReturnRows(sqlmock.NewRows(grantCols).AddRow(int64(7), "pk-1", "a-2", "0xb", exp, time.Now()))

	g, err := repo.FindActive(context.Background(), "pk-1", "a-2")
	require.NoError(t, err)
	assert.Equal(t, int64(7), g.ID)
	assert.Equal(t, "0xb", g.GranteeAddress)
	require.NotNil(t, g.ExpiresAt)
	assert.True(t, g.ExpiresAt.Equal(exp))

	mock.ExpectQuery(qFindActive).WithArgs("pk-1", "a-3").WillReturnError(sql.ErrNoRows)
	_, err = repo.FindActive(context.Background(), "pk-1", "a-3")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(qInsert).
		WithArgs("pk-1", "a-2", sql.NullTime{}).
		WillReturnRows(sqlmock.NewRows([]string{"id", "granted_at"}).AddRow(int64(1), now))

	g, err := repo.Insert(context.Background(), &models.AccessGrant{VaultPK: "pk-1", AccountID: "a-2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.ID)
	assert.Nil(t, g.ExpiresAt)

	exp := now.Add(time.Hour)
	mock.ExpectQuery(qInsert).
		WithArgs("pk-1", "a-3", sql.NullTime{Time: exp, Valid: true}).
		WillReturnError(errors.New("db down"))

	_, err = repo.Insert(context.Background(), &models.AccessGrant{VaultPK: "pk-1", AccountID: "a-3", ExpiresAt: &exp})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestDeleteAll(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qDelete).WithArgs("pk-1", "a-2").WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := repo.DeleteAll(context.Background(), "pk-1", "a-2")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	mock.ExpectExec(qDelete).WithArgs("pk-1", "a-9").WillReturnResult(sqlmock.NewResult(0, 0))
	n, err = repo.DeleteAll(context.Background(), "pk-1", "a-9")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListActive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(qListActive).
		WithArgs("pk-1").
		WillReturnRows(sqlmock.NewRows(grantCols).
			AddRow(int64(1), "pk-1", "a-2", "0xb", nil, now).
			AddRow(int64(4), "pk-1", "a-3", "0xc", now.Add(time.Hour), now))

	items, err := repo.ListActive(context.Background(), "pk-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Nil(t, items[0].ExpiresAt)
	assert.Equal(t, "0xc", items[1].GranteeAddress)
	assert.NotNil(t, items[1].ExpiresAt)

	mock.ExpectQuery(qListActive).WithArgs("pk-2").WillReturnError(errors.New("db err"))
	_, err = repo.ListActive(context.Background(), "pk-2")
	assert.Error(t, err)
}

func TestCountAll(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qCount).WithArgs("pk-1", "a-2").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	n, err := repo.CountAll(context.Background(), "pk-1", "a-2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
