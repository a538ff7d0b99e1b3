package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/api"
	"github.com/dmitrijs2005/imagevault/internal/client/client"
	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/google/uuid"
)

// VaultService administers vaults and their grants on behalf of the session
// holder. Authorization is enforced by the server.
type VaultService interface {
	CreateVault(ctx context.Context, vaultID, name, description string) (*api.Vault, error)
	GetVault(ctx context.Context, vaultID string) (*api.Vault, error)
	ListVaults(ctx context.Context) (owned, shared []*api.Vault, err error)
	GrantAccess(ctx context.Context, vaultID, grantee string, expiresAt *time.Time) (*api.Grant, error)
	RevokeAccess(ctx context.Context, vaultID, grantee string) error
	ListGrantees(ctx context.Context, vaultID string) ([]*api.Grant, error)
	ListImages(ctx context.Context, vaultID string) ([]*api.Image, error)
}

type vaultService struct {
	client client.Client
}

func NewVaultService(client client.Client) VaultService {
	return &vaultService{client: client}
}

// CreateVault registers a vault. An empty vaultID gets a fresh UUID.
func (s *vaultService) CreateVault(ctx context.Context, vaultID, name, description string) (*api.Vault, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: vault name is empty", common.ErrorValidation)
	}
	if vaultID == "" {
		vaultID = uuid.NewString()
	}
	return s.client.CreateVault(ctx, vaultID, name, description)
}

func (s *vaultService) GetVault(ctx context.Context, vaultID string) (*api.Vault, error) {
	return s.client.GetVault(ctx, vaultID)
}

func (s *vaultService) ListVaults(ctx context.Context) ([]*api.Vault, []*api.Vault, error) {
	return s.client.ListVaults(ctx)
}

func (s *vaultService) GrantAccess(ctx context.Context, vaultID, grantee string, expiresAt *time.Time) (*api.Grant, error) {
	return s.client.GrantAccess(ctx, vaultID, grantee, expiresAt)
}

func (s *vaultService) RevokeAccess(ctx context.Context, vaultID, grantee string) error {
	return s.client.RevokeAccess(ctx, vaultID, grantee)
}

func (s *vaultService) ListGrantees(ctx context.Context, vaultID string) ([]*api.Grant, error) {
	return s.client.ListGrantees(ctx, vaultID)
}

func (s *vaultService) ListImages(ctx context.Context, vaultID string) ([]*api.Image, error) {
	return s.client.ListImages(ctx, vaultID)
}
