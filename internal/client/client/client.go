package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/api"
)

// Client is the CLI's view of the imagevault backend.
type Client interface {
	Close() error
	SetAccessToken(token string)
	Ping(ctx context.Context) error
	Challenge(ctx context.Context) (string, error)
	Authenticate(ctx context.Context, address, signature string) (*api.AuthenticateResponse, error)
	StoreKey(ctx context.Context, wrappedKey string) error
	FetchOwnKey(ctx context.Context) (string, error)
	FetchKey(ctx context.Context, target, vaultID string) (string, error)
	CreateVault(ctx context.Context, vaultID, name, description string) (*api.Vault, error)
	GetVault(ctx context.Context, vaultID string) (*api.Vault, error)
	ListVaults(ctx context.Context) (owned, shared []*api.Vault, err error)
	GrantAccess(ctx context.Context, vaultID, grantee string, expiresAt *time.Time) (*api.Grant, error)
	RevokeAccess(ctx context.Context, vaultID, grantee string) error
	ListGrantees(ctx context.Context, vaultID string) ([]*api.Grant, error)
	PutBlob(ctx context.Context, vaultID string, data []byte) (string, error)
	CreateImage(ctx context.Context, in *api.CreateImageRequest) (*api.Image, error)
	ListImages(ctx context.Context, vaultID string) ([]*api.Image, error)
	GetImage(ctx context.Context, vaultID, ipfsHash string) (*api.Image, error)
	GetImageData(ctx context.Context, vaultID, ipfsHash string) ([]byte, error)
}
