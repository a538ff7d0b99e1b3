package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/logging"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/dmitrijs2005/imagevault/internal/server/services"
)

type nopLogger struct{}

func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakeAccounts struct {
	message string
	res     *services.AuthResult
	err     error
}

func (f *fakeAccounts) Challenge() string { return f.message }
func (f *fakeAccounts) Authenticate(ctx context.Context, address, signature string) (*services.AuthResult, error) {
	return f.res, f.err
}

type fakeCustody struct {
	stored     map[string]string
	key        string
	err        error
	lastTarget string
}

func (f *fakeCustody) StoreKey(ctx context.Context, account, wrappedKey string) error {
	if f.err != nil {
		return f.err
	}
	if f.stored == nil {
		f.stored = map[string]string{}
	}
	f.stored[account] = wrappedKey
	return nil
}
func (f *fakeCustody) FetchOwnKey(ctx context.Context, caller string) (string, error) {
	return f.key, f.err
}
func (f *fakeCustody) FetchKey(ctx context.Context, caller, target, vaultID string) (string, error) {
	f.lastTarget = target
	return f.key, f.err
}

type fakeAccess struct {
	grant  *models.AccessGrant
	grants []*models.AccessGrant
	err    error
	caller string
}

func (f *fakeAccess) GrantAccess(ctx context.Context, caller, vaultID, grantee string, expiresAt *time.Time) (*models.AccessGrant, error) {
	f.caller = caller
	return f.grant, f.err
}
func (f *fakeAccess) RevokeAccess(ctx context.Context, caller, vaultID, grantee string) error {
	f.caller = caller
	return f.err
}
func (f *fakeAccess) ListActiveGrantees(ctx context.Context, caller, vaultID string) ([]*models.AccessGrant, error) {
	return f.grants, f.err
}

type fakeVaults struct {
	vault         *models.Vault
	owned, shared []*models.Vault
	err           error
	caller        string
}

func (f *fakeVaults) CreateVault(ctx context.Context, caller, vaultID, name, description string) (*models.Vault, error) {
	f.caller = caller
	return f.vault, f.err
}
func (f *fakeVaults) GetVault(ctx context.Context, caller, vaultID string) (*models.Vault, error) {
	f.caller = caller
	return f.vault, f.err
}
func (f *fakeVaults) ListVaults(ctx context.Context, caller string) ([]*models.Vault, []*models.Vault, error) {
	f.caller = caller
	return f.owned, f.shared, f.err
}

type fakeImages struct {
	hash   string
	image  *models.Image
	images []*models.Image
	data   []byte
	err    error
	in     services.NewImage
}

func (f *fakeImages) PutBlob(ctx context.Context, caller, vaultID string, data []byte) (string, error) {
	return f.hash, f.err
}
func (f *fakeImages) CreateImage(ctx context.Context, caller string, in services.NewImage) (*models.Image, error) {
	f.in = in
	return f.image, f.err
}
func (f *fakeImages) ListImages(ctx context.Context, caller, vaultID string) ([]*models.Image, error) {
	return f.images, f.err
}
func (f *fakeImages) GetImage(ctx context.Context, caller, vaultID, ipfsHash string) (*models.Image, error) {
	return f.image, f.err
}
func (f *fakeImages) GetImageData(ctx context.Context, caller, vaultID, ipfsHash string) ([]byte, error) {
	return f.data, f.err
}

type fakeSet struct {
	accounts *fakeAccounts
	custody  *fakeCustody
	access   *fakeAccess
	vaults   *fakeVaults
	images   *fakeImages
}

func newTestServer(secret string) (*GRPCServer, *fakeSet) {
	f := &fakeSet{
		accounts: &fakeAccounts{},
		custody:  &fakeCustody{},
		access:   &fakeAccess{},
		vaults:   &fakeVaults{},
		images:   &fakeImages{},
	}
	s, _ := NewGRPCServer("127.0.0.1:0", nopLogger{}, Services{
		Accounts: f.accounts,
		Custody:  f.custody,
		Access:   f.access,
		Vaults:   f.vaults,
		Images:   f.images,
	}, secret)
	return s, f
}

func withCaller(address string) context.Context {
	return context.WithValue(context.Background(), addressKey, address)
}
