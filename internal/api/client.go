package api

import (
	"context"

	"google.golang.org/grpc"
)

// VaultServiceClient is the client API for VaultService.
type VaultServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	Challenge(ctx context.Context, in *ChallengeRequest, opts ...grpc.CallOption) (*ChallengeResponse, error)
	Authenticate(ctx context.Context, in *AuthenticateRequest, opts ...grpc.CallOption) (*AuthenticateResponse, error)
	StoreKey(ctx context.Context, in *StoreKeyRequest, opts ...grpc.CallOption) (*StoreKeyResponse, error)
	FetchOwnKey(ctx context.Context, in *FetchOwnKeyRequest, opts ...grpc.CallOption) (*FetchKeyResponse, error)
	FetchKey(ctx context.Context, in *FetchKeyRequest, opts ...grpc.CallOption) (*FetchKeyResponse, error)
	CreateVault(ctx context.Context, in *CreateVaultRequest, opts ...grpc.CallOption) (*VaultResponse, error)
	GetVault(ctx context.Context, in *GetVaultRequest, opts ...grpc.CallOption) (*VaultResponse, error)
	ListVaults(ctx context.Context, in *ListVaultsRequest, opts ...grpc.CallOption) (*ListVaultsResponse, error)
	GrantAccess(ctx context.Context, in *GrantAccessRequest, opts ...grpc.CallOption) (*GrantAccessResponse, error)
	RevokeAccess(ctx context.Context, in *RevokeAccessRequest, opts ...grpc.CallOption) (*RevokeAccessResponse, error)
	ListGrantees(ctx context.Context, in *ListGranteesRequest, opts ...grpc.CallOption) (*ListGranteesResponse, error)
	PutBlob(ctx context.Context, in *PutBlobRequest, opts ...grpc.CallOption) (*PutBlobResponse, error)
	CreateImage(ctx context.Context, in *CreateImageRequest, opts ...grpc.CallOption) (*ImageResponse, error)
	ListImages(ctx context.Context, in *ListImagesRequest, opts ...grpc.CallOption) (*ListImagesResponse, error)
	GetImage(ctx context.Context, in *GetImageRequest, opts ...grpc.CallOption) (*ImageResponse, error)
	GetImageData(ctx context.Context, in *GetImageRequest, opts ...grpc.CallOption) (*GetImageDataResponse, error)
}

type vaultServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewVaultServiceClient(cc grpc.ClientConnInterface) VaultServiceClient {
	return &vaultServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *vaultServiceClient) Challenge(ctx context.Context, in *ChallengeRequest, opts ...grpc.CallOption) (*ChallengeResponse, error) {
	return invoke[ChallengeResponse](ctx, c.cc, MethodChallenge, in, opts)
}

func (c *vaultServiceClient) Authenticate(ctx context.Context, in *AuthenticateRequest, opts ...grpc.CallOption) (*AuthenticateResponse, error) {
	return invoke[AuthenticateResponse](ctx, c.cc, MethodAuthenticate, in, opts)
}

func (c *vaultServiceClient) StoreKey(ctx context.Context, in *StoreKeyRequest, opts ...grpc.CallOption) (*StoreKeyResponse, error) {
	return invoke[StoreKeyResponse](ctx, c.cc, MethodStoreKey, in, opts)
}

func (c *vaultServiceClient) FetchOwnKey(ctx context.Context, in *FetchOwnKeyRequest, opts ...grpc.CallOption) (*FetchKeyResponse, error) {
	return invoke[FetchKeyResponse](ctx, c.cc, MethodFetchOwnKey, in, opts)
}

func (c *vaultServiceClient) FetchKey(ctx context.Context, in *FetchKeyRequest, opts ...grpc.CallOption) (*FetchKeyResponse, error) {
	return invoke[FetchKeyResponse](ctx, c.cc, MethodFetchKey, in, opts)
}

func (c *vaultServiceClient) CreateVault(ctx context.Context, in *CreateVaultRequest, opts ...grpc.CallOption) (*VaultResponse, error) {
	return invoke[VaultResponse](ctx, c.cc, MethodCreateVault, in, opts)
}

func (c *vaultServiceClient) GetVault(ctx context.Context, in *GetVaultRequest, opts ...grpc.CallOption) (*VaultResponse, error) {
	return invoke[VaultResponse](ctx, c.cc, MethodGetVault, in, opts)
}

func (c *vaultServiceClient) ListVaults(ctx context.Context, in *ListVaultsRequest, opts ...grpc.CallOption) (*ListVaultsResponse, error) {
	return invoke[ListVaultsResponse](ctx, c.cc, MethodListVaults, in, opts)
}

func (c *vaultServiceClient) GrantAccess(ctx context.Context, in *GrantAccessRequest, opts ...grpc.CallOption) (*GrantAccessResponse, error) {
	return invoke[GrantAccessResponse](ctx, c.cc, MethodGrantAccess, in, opts)
}

func (c *vaultServiceClient) RevokeAccess(ctx context.Context, in *RevokeAccessRequest, opts ...grpc.CallOption) (*RevokeAccessResponse, error) {
	return invoke[RevokeAccessResponse](ctx, c.cc, MethodRevokeAccess, in, opts)
}

func (c *vaultServiceClient) ListGrantees(ctx context.Context, in *ListGranteesRequest, opts ...grpc.CallOption) (*ListGranteesResponse, error) {
	return invoke[ListGranteesResponse](ctx, c.cc, MethodListGrantees, in, opts)
}

func (c *vaultServiceClient) PutBlob(ctx context.Context, in *PutBlobRequest, opts ...grpc.CallOption) (*PutBlobResponse, error) {
	return invoke[PutBlobResponse](ctx, c.cc, MethodPutBlob, in, opts)
}

func (c *vaultServiceClient) CreateImage(ctx context.Context, in *CreateImageRequest, opts ...grpc.CallOption) (*ImageResponse, error) {
	return invoke[ImageResponse](ctx, c.cc, MethodCreateImage, in, opts)
}

func (c *vaultServiceClient) ListImages(ctx context.Context, in *ListImagesRequest, opts ...grpc.CallOption) (*ListImagesResponse, error) {
	return invoke[ListImagesResponse](ctx, c.cc, MethodListImages, in, opts)
}

func (c *vaultServiceClient) GetImage(ctx context.Context, in *GetImageRequest, opts ...grpc.CallOption) (*ImageResponse, error) {
	return invoke[ImageResponse](ctx, c.cc, MethodGetImage, in, opts)
}

func (c *vaultServiceClient) GetImageData(ctx context.Context, in *GetImageRequest, opts ...grpc.CallOption) (*GetImageDataResponse, error) {
	return invoke[GetImageDataResponse](ctx, c.cc, MethodGetImageData, in, opts)
}
