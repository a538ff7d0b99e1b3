package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/api"
	"github.com/dmitrijs2005/imagevault/internal/client/client"
	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/ethx"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const (
	hardhatKey  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	hardhatAddr = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
	otherAddr   = "0x00000000000000000000000000000000000000bb"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)
	return db
}

// fakeClient is an in-memory backend. caller is the identity the server
// would have taken from the token.
type fakeClient struct {
	mu sync.Mutex

	challenge string
	caller    string
	token     string

	keys   map[string]string
	vaults map[string]*api.Vault
	blobs  map[string][]byte
	images map[string][]*api.Image

	pingErr   error
	putErr    error
	createErr error
	dataDelay time.Duration

	storeCalls  int
	closed      bool
	inflight    int32
	maxInflight int32
}

var _ client.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		challenge: common.DefaultSignInMessage,
		keys:      map[string]string{},
		vaults:    map[string]*api.Vault{},
		blobs:     map[string][]byte{},
		images:    map[string][]*api.Image{},
	}
}

func (f *fakeClient) Close() error { f.closed = true; return nil }

func (f *fakeClient) SetAccessToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeClient) Challenge(ctx context.Context) (string, error) { return f.challenge, nil }

func (f *fakeClient) Authenticate(ctx context.Context, address, signature string) (*api.AuthenticateResponse, error) {
	if err := ethx.VerifySignature(address, f.challenge, signature); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.caller = address
	f.token = "tok-" + address
	res := &api.AuthenticateResponse{AccessToken: f.token, Address: address}
	if k, ok := f.keys[address]; ok {
		res.EncryptedKey = &k
	}
	return res, nil
}

func (f *fakeClient) StoreKey(ctx context.Context, wrappedKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.storeCalls++
	f.keys[f.caller] = wrappedKey
	return nil
}

func (f *fakeClient) FetchOwnKey(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, ok := f.keys[f.caller]
	if !ok {
		return "", common.ErrorNotFound
	}
	return k, nil
}

func (f *fakeClient) FetchKey(ctx context.Context, target, vaultID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, ok := f.keys[target]
	if !ok {
		return "", common.ErrorNotFound
	}
	return k, nil
}

func (f *fakeClient) CreateVault(ctx context.Context, vaultID, name, description string) (*api.Vault, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vaults[vaultID]; ok {
		return nil, common.ErrorConflict
	}
	v := &api.Vault{VaultID: vaultID, Name: name, Description: description, Owner: f.caller}
	f.vaults[vaultID] = v
	return v, nil
}

func (f *fakeClient) GetVault(ctx context.Context, vaultID string) (*api.Vault, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vaults[vaultID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return v, nil
}

func (f *fakeClient) ListVaults(ctx context.Context) ([]*api.Vault, []*api.Vault, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var owned, shared []*api.Vault
	for _, v := range f.vaults {
		if v.Owner == f.caller {
			owned = append(owned, v)
		} else {
			shared = append(shared, v)
		}
	}
	return owned, shared, nil
}

func (f *fakeClient) GrantAccess(ctx context.Context, vaultID, grantee string, expiresAt *time.Time) (*api.Grant, error) {
	return &api.Grant{VaultID: vaultID, Address: grantee, ExpiresAt: expiresAt}, nil
}

func (f *fakeClient) RevokeAccess(ctx context.Context, vaultID, grantee string) error { return nil }

func (f *fakeClient) ListGrantees(ctx context.Context, vaultID string) ([]*api.Grant, error) {
	return nil, nil
}

func (f *fakeClient) PutBlob(ctx context.Context, vaultID string, data []byte) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	hash := fmt.Sprintf("blob-%d", len(f.blobs))
	f.blobs[hash] = append([]byte(nil), data...)
	return hash, nil
}

func (f *fakeClient) CreateImage(ctx context.Context, in *api.CreateImageRequest) (*api.Image, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	img := &api.Image{
		ID: fmt.Sprintf("img-%d", len(f.images[in.VaultID])), VaultID: in.VaultID, IPFSHash: in.IPFSHash,
		Filename: in.Filename, Size: in.Size, MimeType: in.MimeType,
	}
	f.images[in.VaultID] = append(f.images[in.VaultID], img)
	return img, nil
}

func (f *fakeClient) ListImages(ctx context.Context, vaultID string) ([]*api.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*api.Image(nil), f.images[vaultID]...), nil
}

func (f *fakeClient) GetImage(ctx context.Context, vaultID, ipfsHash string) (*api.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, img := range f.images[vaultID] {
		if img.IPFSHash == ipfsHash {
			return img, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeClient) GetImageData(ctx context.Context, vaultID, ipfsHash string) ([]byte, error) {
	n := atomic.AddInt32(&f.inflight, 1)
	defer atomic.AddInt32(&f.inflight, -1)
	for {
		m := atomic.LoadInt32(&f.maxInflight)
		if n <= m || atomic.CompareAndSwapInt32(&f.maxInflight, m, n) {
			break
		}
	}
	if f.dataDelay > 0 {
		time.Sleep(f.dataDelay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blobs[ipfsHash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return append([]byte(nil), b...), nil
}

// as switches the identity the fake server sees.
func (f *fakeClient) as(address string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.caller = address
}
