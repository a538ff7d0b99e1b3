package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/dbx"
	"github.com/dmitrijs2005/imagevault/internal/logging"
	"github.com/dmitrijs2005/imagevault/internal/server/blobstore"
	"github.com/dmitrijs2005/imagevault/internal/server/ledger"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/grants"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/images"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/vaults"
)

const (
	addrA = "0x00000000000000000000000000000000000000aa"
	addrB = "0x00000000000000000000000000000000000000bb"
	addrC = "0x00000000000000000000000000000000000000cc"
)

// --- logger ---

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// --- in-memory store behind the fake repositories ---

type memState struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	vaults   map[string]*models.Vault
	grants   []*models.AccessGrant
	images   []*models.Image
	seq      int64
	dbNow    func() time.Time
}

func newMemState() *memState {
	return &memState{
		accounts: map[string]*models.Account{},
		vaults:   map[string]*models.Vault{},
		dbNow:    time.Now,
	}
}

func (s *memState) addAccount(address string, key *string) *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	a := &models.Account{ID: fmt.Sprintf("acc-%d", s.seq), Address: address, EncryptedKey: key}
	s.accounts[address] = a
	return a
}

func (s *memState) addVault(vaultID, owner string) *models.Vault {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	o := s.accounts[owner]
	v := &models.Vault{ID: fmt.Sprintf("pk-%d", s.seq), VaultID: vaultID, Name: vaultID, OwnerID: o.ID, OwnerAddress: o.Address}
	s.vaults[vaultID] = v
	return v
}

func (s *memState) addGrant(vaultID, grantee string, expiresAt *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.grants = append(s.grants, &models.AccessGrant{
		ID: s.seq, VaultPK: s.vaults[vaultID].ID, AccountID: s.accounts[grantee].ID,
		GranteeAddress: grantee, ExpiresAt: expiresAt,
	})
}

func (s *memState) grantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.grants)
}

func strPtr(s string) *string { return &s }

type fakeAccounts struct{ st *memState }

func (f *fakeAccounts) GetOrCreate(ctx context.Context, address string) (*models.Account, error) {
	f.st.mu.Lock()
	a, ok := f.st.accounts[address]
	f.st.mu.Unlock()
	if ok {
		return a, nil
	}
	return f.st.addAccount(address, nil), nil
}

func (f *fakeAccounts) GetByAddress(ctx context.Context, address string) (*models.Account, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	a, ok := f.st.accounts[address]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) SetEncryptedKey(ctx context.Context, address, key string) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	a, ok := f.st.accounts[address]
	if !ok {
		return common.ErrorNotFound
	}
	a.EncryptedKey = &key
	return nil
}

type fakeVaults struct{ st *memState }

func (f *fakeVaults) Create(ctx context.Context, v *models.Vault) (*models.Vault, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if _, ok := f.st.vaults[v.VaultID]; ok {
		return nil, common.ErrorConflict
	}
	f.st.seq++
	v.ID = fmt.Sprintf("pk-%d", f.st.seq)
	for _, a := range f.st.accounts {
		if a.ID == v.OwnerID {
			v.OwnerAddress = a.Address
		}
	}
	cp := *v
	f.st.vaults[v.VaultID] = &cp
	return v, nil
}

func (f *fakeVaults) GetByVaultID(ctx context.Context, vaultID string) (*models.Vault, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	v, ok := f.st.vaults[vaultID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVaults) LockByVaultID(ctx context.Context, vaultID string) (*models.Vault, error) {
	return f.GetByVaultID(ctx, vaultID)
}

func (f *fakeVaults) ListOwned(ctx context.Context, ownerID string) ([]*models.Vault, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var out []*models.Vault
	for _, v := range f.st.vaults {
		if v.OwnerID == ownerID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVaults) ListShared(ctx context.Context, accountID string) ([]*models.Vault, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	now := f.st.dbNow()
	seen := map[string]bool{}
	var out []*models.Vault
	for _, g := range f.st.grants {
		if g.AccountID != accountID || !g.ActiveAt(now) || seen[g.VaultPK] {
			continue
		}
		for _, v := range f.st.vaults {
			if v.ID == g.VaultPK {
				out = append(out, v)
				seen[v.ID] = true
			}
		}
	}
	return out, nil
}

type fakeGrants struct{ st *memState }

func (f *fakeGrants) FindActive(ctx context.Context, vaultPK, accountID string) (*models.AccessGrant, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	now := f.st.dbNow()
	for _, g := range f.st.grants {
		if g.VaultPK == vaultPK && g.AccountID == accountID && g.ActiveAt(now) {
			return g, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeGrants) Insert(ctx context.Context, g *models.AccessGrant) (*models.AccessGrant, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	f.st.seq++
	g.ID = f.st.seq
	g.GrantedAt = f.st.dbNow()
	f.st.grants = append(f.st.grants, g)
	return g, nil
}

func (f *fakeGrants) DeleteAll(ctx context.Context, vaultPK, accountID string) (int64, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var kept []*models.AccessGrant
	var n int64
	for _, g := range f.st.grants {
		if g.VaultPK == vaultPK && g.AccountID == accountID {
			n++
			continue
		}
		kept = append(kept, g)
	}
	f.st.grants = kept
	return n, nil
}

func (f *fakeGrants) ListActive(ctx context.Context, vaultPK string) ([]*models.AccessGrant, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	now := f.st.dbNow()
	var out []*models.AccessGrant
	for _, g := range f.st.grants {
		if g.VaultPK == vaultPK && g.ActiveAt(now) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGrants) CountAll(ctx context.Context, vaultPK, accountID string) (int64, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var n int64
	for _, g := range f.st.grants {
		if g.VaultPK == vaultPK && g.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

type fakeImages struct{ st *memState }

func (f *fakeImages) Create(ctx context.Context, img *models.Image) (*models.Image, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, i := range f.st.images {
		if i.VaultPK == img.VaultPK && i.IPFSHash == img.IPFSHash {
			return nil, common.ErrorConflict
		}
	}
	img.UploadedAt = f.st.dbNow()
	f.st.images = append(f.st.images, img)
	return img, nil
}

func (f *fakeImages) GetByHash(ctx context.Context, vaultPK, hash string) (*models.Image, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, i := range f.st.images {
		if i.VaultPK == vaultPK && i.IPFSHash == hash {
			return i, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeImages) ListByVault(ctx context.Context, vaultPK string) ([]*models.Image, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var out []*models.Image
	for _, i := range f.st.images {
		if i.VaultPK == vaultPK {
			out = append(out, i)
		}
	}
	return out, nil
}

type fakeRepoManager struct{ st *memState }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository       { return &fakeAccounts{m.st} }
func (m *fakeRepoManager) Vaults(dbx.DBTX) vaults.Repository           { return &fakeVaults{m.st} }
func (m *fakeRepoManager) Grants(dbx.DBTX) grants.Repository           { return &fakeGrants{m.st} }
func (m *fakeRepoManager) Images(dbx.DBTX) images.Repository           { return &fakeImages{m.st} }

// --- ledger ---

type fakeLedger struct {
	mu      sync.Mutex
	grants  int
	revokes int
	vaults  int
	err     error
}

func (l *fakeLedger) receipt() *ledger.Receipt {
	return &ledger.Receipt{TxHash: "0xtx", Block: uint64(l.grants + l.revokes + l.vaults)}
}

func (l *fakeLedger) RegisterVault(ctx context.Context, vaultID, owner string) (*ledger.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.vaults++
	return l.receipt(), nil
}

func (l *fakeLedger) GrantAccess(ctx context.Context, vaultID, grantee string, expiresAt *time.Time) (*ledger.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.grants++
	return l.receipt(), nil
}

func (l *fakeLedger) RevokeAccess(ctx context.Context, vaultID, grantee string) (*ledger.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.revokes++
	return l.receipt(), nil
}

func (l *fakeLedger) Close() error { return nil }

// --- blobs ---

type fakeBlobs struct {
	data map[string][]byte
}

func (b *fakeBlobs) Put(ctx context.Context, data []byte) (string, error) {
	h, err := blobstore.ContentID(data)
	if err != nil {
		return "", err
	}
	b.data[h] = append([]byte(nil), data...)
	return h, nil
}

func (b *fakeBlobs) Get(ctx context.Context, hash string) ([]byte, error) {
	d, ok := b.data[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return d, nil
}

func (b *fakeBlobs) Has(ctx context.Context, hash string) (bool, error) {
	_, ok := b.data[hash]
	return ok, nil
}

func (b *fakeBlobs) Close() error { return nil }

// --- fixture ---

type fixture struct {
	st      *memState
	db      *sql.DB
	mock    sqlmock.Sqlmock
	ledger  *fakeLedger
	blobs   *fakeBlobs
	access  *AccessService
	custody *CustodyService
	vaults  *VaultService
	images  *ImageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	st := newMemState()
	rm := &fakeRepoManager{st: st}
	l := &fakeLedger{}
	blobs := &fakeBlobs{data: map[string][]byte{}}
	access := NewAccessService(db, rm, l, nopLogger{})

	return &fixture{
		st:      st,
		db:      db,
		mock:    mock,
		ledger:  l,
		blobs:   blobs,
		access:  access,
		custody: NewCustodyService(db, rm, nopLogger{}),
		vaults:  NewVaultService(db, rm, l, access),
		images:  NewImageService(db, rm, blobs, access),
	}
}

// expectTx registers n committed transactions on the sqlmock DB.
func (f *fixture) expectTx(n int) {
	for i := 0; i < n; i++ {
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()
	}
}

func stubNow(t *testing.T, fn func() time.Time) {
	t.Helper()
	orig := now
	now = fn
	t.Cleanup(func() { now = orig })
}
