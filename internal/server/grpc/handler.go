package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/imagevault/internal/api"
	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/server/blobstore"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/dmitrijs2005/imagevault/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC status codes. Unknown failures are
// logged and reported as Internal without the cause.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, common.ErrorConflict):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorUnwrap),
		errors.Is(err, common.ErrorDecrypt),
		errors.Is(err, blobstore.ErrIntegrity):
		return status.Error(codes.DataLoss, "data integrity check failed")
	case errors.Is(err, common.ErrorLedger):
		s.logger.Warn(ctx, "ledger call failed", "method", method, "error", err.Error())
		return status.Error(codes.Unavailable, "ledger unavailable")
	default:
		s.logger.Error(ctx, "request failed", "method", method, "error", err.Error())
		return status.Error(codes.Internal, "internal error")
	}
}

func toVault(v *models.Vault) *api.Vault {
	return &api.Vault{
		VaultID:     v.VaultID,
		Name:        v.Name,
		Description: v.Description,
		Owner:       v.OwnerAddress,
		ImageCount:  v.ImageCount,
		CreatedAt:   v.CreatedAt,
	}
}

func toVaults(vs []*models.Vault) []*api.Vault {
	out := make([]*api.Vault, 0, len(vs))
	for _, v := range vs {
		out = append(out, toVault(v))
	}
	return out
}

func toGrant(vaultID string, g *models.AccessGrant) *api.Grant {
	return &api.Grant{
		VaultID:   vaultID,
		Address:   g.GranteeAddress,
		ExpiresAt: g.ExpiresAt,
		GrantedAt: g.GrantedAt,
	}
}

func toImage(vaultID string, i *models.Image) *api.Image {
	return &api.Image{
		ID:         i.ID,
		VaultID:    vaultID,
		IPFSHash:   i.IPFSHash,
		Filename:   i.Filename,
		Size:       i.Size,
		MimeType:   i.MimeType,
		UploadedAt: i.UploadedAt,
	}
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) Challenge(ctx context.Context, req *api.ChallengeRequest) (*api.ChallengeResponse, error) {

	return &api.ChallengeResponse{Message: s.accounts.Challenge()}, nil

}

func (s *GRPCServer) Authenticate(ctx context.Context, req *api.AuthenticateRequest) (*api.AuthenticateResponse, error) {

	res, err := s.accounts.Authenticate(ctx, req.Address, req.Signature)
	if err != nil {
		return nil, s.toStatus(ctx, "Authenticate", err)
	}

	s.logger.Info(ctx, "Signed in", "address", res.Address)
	return &api.AuthenticateResponse{
		AccessToken:  res.AccessToken,
		Address:      res.Address,
		EncryptedKey: res.EncryptedKey,
	}, nil

}

func (s *GRPCServer) StoreKey(ctx context.Context, req *api.StoreKeyRequest) (*api.StoreKeyResponse, error) {

	caller, err := addressFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.custody.StoreKey(ctx, caller, req.EncryptedKey); err != nil {
		return nil, s.toStatus(ctx, "StoreKey", err)
	}

	return &api.StoreKeyResponse{}, nil

}

func (s *GRPCServer) FetchOwnKey(ctx context.Context, req *api.FetchOwnKeyRequest) (*api.FetchKeyResponse, error) {

	caller, err := addressFromContext(ctx)
	if err != nil {
		return nil, err
	}

	key, err := s.custody.FetchOwnKey(ctx, caller)
	if err != nil {
		return nil, s.toStatus(ctx, "FetchOwnKey", err)
	}

	return &api.FetchKeyResponse{EncryptedKey: key}, nil

}

func (s *GRPCServer) FetchKey(ctx context.Context, req *api.FetchKeyRequest) (*api.FetchKeyResponse, error) {

	caller, err := addressFromContext(ctx)
	if err != nil {
		return nil, err
	}

	key, err := s.custody.FetchKey(ctx, caller, req.Target, req.VaultID)
	if err != nil {
		return nil, s.toStatus(ctx, "FetchKey", err)
	}

	return &api.FetchKeyResponse{EncryptedKey: key}, nil

}

func (s *GRPCServer) CreateVault(ctx context.Context, req *api.CreateVaultRequest) (*api.VaultResponse, error) {

	caller, err := addressFromContext(ctx)
	if err != nil {
		return nil, err
	}

	v, err := s.vaults.CreateVault(ctx, caller, req.VaultID, req.Name, req.Description)
	if err != nil {
		return nil, s.toStatus(ctx, "CreateVault", err)
	}

	s.logger.Info(ctx, "Vault created", "vault_id", v.VaultID, "owner", caller)
	return &api.VaultResponse{Vault: toVault(v)}, nil

}

func (s *GRPCServer) GetVault(ctx context.Context, req *api.GetVaultRequest) (*api.VaultResponse, error) {

	caller, err := addressFromContext(ctx)
	if err != nil {
		return nil, err
	}

	v, err := s.vaults.GetVault(ctx, caller, req.VaultID)
	if err != nil {
		return nil, s.toStatus(ctx, "GetVault", err)
	}

	return &api.VaultResponse{Vault: toVault(v)}, nil

}

func (s *GRPCServer) ListVaults(ctx context.Context, req *api.ListVaultsRequest) (*api.ListVaultsResponse, error) {

	caller, err := addressFromContext(ctx)
	if err != nil {
		return nil, err
	}

	owned, shared, err := s.vaults.ListVaults(ctx, caller)
	if err != nil {
		return nil, s.toStatus(ctx, "ListVaults", err)
	}

	return &api.ListVaultsResponse{Owned: toVaults(owned), Shared: toVaults(shared)}, nil

}

func (s *GRPCServer) GrantAccess(ctx context.Context, req *api.GrantAccessRequest) (*api.GrantAccessResponse, error) {

	caller, err := addressFromContext(ctx)
	if err != nil {
		return nil, err
	}

	g, err := s.access.GrantAccess(ctx, caller, req.VaultID, req.Grantee, req.ExpiresAt)
	if err != nil {
		return nil, s.toStatus(ctx, "GrantAccess", err)
	}

	s.logger.Info(ctx, "Access granted", "vault_id", req.VaultID, "grantee", g.GranteeAddress)
	return &api.GrantAccessResponse{Grant: toGrant(req.VaultID, g)}, nil

}

func (s *GRPCServer) RevokeAccess(ctx context.Context, req *api.RevokeAccessRequest) (*api.RevokeAccessResponse, error) {

	caller, err := addressFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.access.RevokeAccess(ctx, caller, req.VaultID, req.Grantee); err != nil {
		return nil, s.toStatus(ctx, "RevokeAccess", err)
	}

	s.logger.Info(ctx, "Access revoked", "vault_id", req.VaultID, "grantee", req.Grantee)
	return &api.RevokeAccessResponse{}, nil

}

func (s *GRPCServer) ListGrantees(ctx context.Context, req *api.ListGranteesRequest) (*api.ListGranteesResponse, error) {

	caller, err := addressFromContext(ctx)
	if err != nil {
		return nil, err
	}

	grants, err := s.access.ListActiveGrantees(ctx, caller, req.VaultID)
	if err != nil {
		return nil, s.toStatus(ctx, "ListGrantees", err)
	}

	out := make([]*api.Grant, 0, len(grants))
	for _, g := range grants {
		out = append(out, toGrant(req.VaultID, g))
	}

	return &api.ListGranteesResponse{Grantees: out}, nil

}

func (s *GRPCServer) PutBlob(ctx context.Context, req *api.PutBlobRequest) (*api.PutBlobResponse, error) {

	caller, err := addressFromContext(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := s.images.PutBlob(ctx, caller, req.VaultID, req.Data)
	if err != nil {
		return nil, s.toStatus(ctx, "PutBlob", err)
	}

	return &api.PutBlobResponse{Hash: hash}, nil

}

func (s *GRPCServer) CreateImage(ctx context.Context, req *api.CreateImageRequest) (*api.ImageResponse, error) {

	caller, err := addressFromContext(ctx)
	if err != nil {
		return nil, err
	}

	img, err := s.images.CreateImage(ctx, caller, services.NewImage{
		VaultID:  req.VaultID,
		IPFSHash: req.IPFSHash,
		Filename: req.Filename,
		Size:     req.Size,
		MimeType: req.MimeType,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "CreateImage", err)
	}

	s.logger.Info(ctx, "Image recorded", "vault_id", req.VaultID, "ipfs_hash", img.IPFSHash)
	return &api.ImageResponse{Image: toImage(req.VaultID, img)}, nil

}

func (s *GRPCServer) ListImages(ctx context.Context, req *api.ListImagesRequest) (*api.ListImagesResponse, error) {

	caller, err := addressFromContext(ctx)
	if err != nil {
		return nil, err
	}

	imgs, err := s.images.ListImages(ctx, caller, req.VaultID)
	if err != nil {
		return nil, s.toStatus(ctx, "ListImages", err)
	}

	out := make([]*api.Image, 0, len(imgs))
	for _, i := range imgs {
		out = append(out, toImage(req.VaultID, i))
	}

	return &api.ListImagesResponse{Images: out}, nil

}

func (s *GRPCServer) GetImage(ctx context.Context, req *api.GetImageRequest) (*api.ImageResponse, error) {

	caller, err := addressFromContext(ctx)
	if err != nil {
		return nil, err
	}

	img, err := s.images.GetImage(ctx, caller, req.VaultID, req.IPFSHash)
	if err != nil {
		return nil, s.toStatus(ctx, "GetImage", err)
	}

	return &api.ImageResponse{Image: toImage(req.VaultID, img)}, nil

}

func (s *GRPCServer) GetImageData(ctx context.Context, req *api.GetImageRequest) (*api.GetImageDataResponse, error) {

	caller, err := addressFromContext(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.images.GetImageData(ctx, caller, req.VaultID, req.IPFSHash)
	if err != nil {
		return nil, s.toStatus(ctx, "GetImageData", err)
	}

	return &api.GetImageDataResponse{Data: data}, nil

}
