package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "imagevault.v1.VaultService"

const (
	MethodPing         = "/" + ServiceName + "/Ping"
	MethodChallenge    = "/" + ServiceName + "/Challenge"
	MethodAuthenticate = "/" + ServiceName + "/Authenticate"
	MethodStoreKey     = "/" + ServiceName + "/StoreKey"
	MethodFetchOwnKey  = "/" + ServiceName + "/FetchOwnKey"
	MethodFetchKey     = "/" + ServiceName + "/FetchKey"
	MethodCreateVault  = "/" + ServiceName + "/CreateVault"
	MethodGetVault     = "/" + ServiceName + "/GetVault"
	MethodListVaults   = "/" + ServiceName + "/ListVaults"
	MethodGrantAccess  = "/" + ServiceName + "/GrantAccess"
	MethodRevokeAccess = "/" + ServiceName + "/RevokeAccess"
	MethodListGrantees = "/" + ServiceName + "/ListGrantees"
	MethodPutBlob      = "/" + ServiceName + "/PutBlob"
	MethodCreateImage  = "/" + ServiceName + "/CreateImage"
	MethodListImages   = "/" + ServiceName + "/ListImages"
	MethodGetImage     = "/" + ServiceName + "/GetImage"
	MethodGetImageData = "/" + ServiceName + "/GetImageData"
)

// PublicMethods can be called without an access token.
var PublicMethods = map[string]bool{
	MethodPing:         true,
	MethodChallenge:    true,
	MethodAuthenticate: true,
}

// VaultServiceServer is implemented by the server transport.
type VaultServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Challenge(context.Context, *ChallengeRequest) (*ChallengeResponse, error)
	Authenticate(context.Context, *AuthenticateRequest) (*AuthenticateResponse, error)
	StoreKey(context.Context, *StoreKeyRequest) (*StoreKeyResponse, error)
	FetchOwnKey(context.Context, *FetchOwnKeyRequest) (*FetchKeyResponse, error)
	FetchKey(context.Context, *FetchKeyRequest) (*FetchKeyResponse, error)
	CreateVault(context.Context, *CreateVaultRequest) (*VaultResponse, error)
	GetVault(context.Context, *GetVaultRequest) (*VaultResponse, error)
	ListVaults(context.Context, *ListVaultsRequest) (*ListVaultsResponse, error)
	GrantAccess(context.Context, *GrantAccessRequest) (*GrantAccessResponse, error)
	RevokeAccess(context.Context, *RevokeAccessRequest) (*RevokeAccessResponse, error)
	ListGrantees(context.Context, *ListGranteesRequest) (*ListGranteesResponse, error)
	PutBlob(context.Context, *PutBlobRequest) (*PutBlobResponse, error)
	CreateImage(context.Context, *CreateImageRequest) (*ImageResponse, error)
	ListImages(context.Context, *ListImagesRequest) (*ListImagesResponse, error)
	GetImage(context.Context, *GetImageRequest) (*ImageResponse, error)
	GetImageData(context.Context, *GetImageRequest) (*GetImageDataResponse, error)
}

// UnimplementedVaultServiceServer can be embedded to satisfy
// VaultServiceServer; every method answers codes.Unimplemented.
type UnimplementedVaultServiceServer struct{}

func unimplemented(method string) error {
	return status.Error(codes.Unimplemented, "method "+method+" not implemented")
}

func (UnimplementedVaultServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented("Ping")
}
func (UnimplementedVaultServiceServer) Challenge(context.Context, *ChallengeRequest) (*ChallengeResponse, error) {
	return nil, unimplemented("Challenge")
}
func (UnimplementedVaultServiceServer) Authenticate(context.Context, *AuthenticateRequest) (*AuthenticateResponse, error) {
	return nil, unimplemented("Authenticate")
}
func (UnimplementedVaultServiceServer) StoreKey(context.Context, *StoreKeyRequest) (*StoreKeyResponse, error) {
	return nil, unimplemented("StoreKey")
}
func (UnimplementedVaultServiceServer) FetchOwnKey(context.Context, *FetchOwnKeyRequest) (*FetchKeyResponse, error) {
	return nil, unimplemented("FetchOwnKey")
}
func (UnimplementedVaultServiceServer) FetchKey(context.Context, *FetchKeyRequest) (*FetchKeyResponse, error) {
	return nil, unimplemented("FetchKey")
}
func (UnimplementedVaultServiceServer) CreateVault(context.Context, *CreateVaultRequest) (*VaultResponse, error) {
	return nil, unimplemented("CreateVault")
}
func (UnimplementedVaultServiceServer) GetVault(context.Context, *GetVaultRequest) (*VaultResponse, error) {
	return nil, unimplemented("GetVault")
}
func (UnimplementedVaultServiceServer) ListVaults(context.Context, *ListVaultsRequest) (*ListVaultsResponse, error) {
	return nil, unimplemented("ListVaults")
}
func (UnimplementedVaultServiceServer) GrantAccess(context.Context, *GrantAccessRequest) (*GrantAccessResponse, error) {
	return nil, unimplemented("GrantAccess")
}
func (UnimplementedVaultServiceServer) RevokeAccess(context.Context, *RevokeAccessRequest) (*RevokeAccessResponse, error) {
	return nil, unimplemented("RevokeAccess")
}
func (UnimplementedVaultServiceServer) ListGrantees(context.Context, *ListGranteesRequest) (*ListGranteesResponse, error) {
	return nil, unimplemented("ListGrantees")
}
func (UnimplementedVaultServiceServer) PutBlob(context.Context, *PutBlobRequest) (*PutBlobResponse, error) {
	return nil, unimplemented("PutBlob")
}
func (UnimplementedVaultServiceServer) CreateImage(context.Context, *CreateImageRequest) (*ImageResponse, error) {
	return nil, unimplemented("CreateImage")
}
func (UnimplementedVaultServiceServer) ListImages(context.Context, *ListImagesRequest) (*ListImagesResponse, error) {
	return nil, unimplemented("ListImages")
}
func (UnimplementedVaultServiceServer) GetImage(context.Context, *GetImageRequest) (*ImageResponse, error) {
	return nil, unimplemented("GetImage")
}
func (UnimplementedVaultServiceServer) GetImageData(context.Context, *GetImageRequest) (*GetImageDataResponse, error) {
	return nil, unimplemented("GetImageData")
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req, Resp any](fullMethod string, call func(VaultServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(VaultServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(VaultServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// VaultServiceDesc describes VaultService for grpc.Server.RegisterService.
var VaultServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unaryHandler(MethodPing, VaultServiceServer.Ping)},
		{MethodName: "Challenge", Handler: unaryHandler(MethodChallenge, VaultServiceServer.Challenge)},
		{MethodName: "Authenticate", Handler: unaryHandler(MethodAuthenticate, VaultServiceServer.Authenticate)},
		{MethodName: "StoreKey", Handler: unaryHandler(MethodStoreKey, VaultServiceServer.StoreKey)},
		{MethodName: "FetchOwnKey", Handler: unaryHandler(MethodFetchOwnKey, VaultServiceServer.FetchOwnKey)},
		{MethodName: "FetchKey", Handler: unaryHandler(MethodFetchKey, VaultServiceServer.FetchKey)},
		{MethodName: "CreateVault", Handler: unaryHandler(MethodCreateVault, VaultServiceServer.CreateVault)},
		{MethodName: "GetVault", Handler: unaryHandler(MethodGetVault, VaultServiceServer.GetVault)},
		{MethodName: "ListVaults", Handler: unaryHandler(MethodListVaults, VaultServiceServer.ListVaults)},
		{MethodName: "GrantAccess", Handler: unaryHandler(MethodGrantAccess, VaultServiceServer.GrantAccess)},
		{MethodName: "RevokeAccess", Handler: unaryHandler(MethodRevokeAccess, VaultServiceServer.RevokeAccess)},
		{MethodName: "ListGrantees", Handler: unaryHandler(MethodListGrantees, VaultServiceServer.ListGrantees)},
		{MethodName: "PutBlob", Handler: unaryHandler(MethodPutBlob, VaultServiceServer.PutBlob)},
		{MethodName: "CreateImage", Handler: unaryHandler(MethodCreateImage, VaultServiceServer.CreateImage)},
		{MethodName: "ListImages", Handler: unaryHandler(MethodListImages, VaultServiceServer.ListImages)},
		{MethodName: "GetImage", Handler: unaryHandler(MethodGetImage, VaultServiceServer.GetImage)},
		{MethodName: "GetImageData", Handler: unaryHandler(MethodGetImageData, VaultServiceServer.GetImageData)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "imagevault/v1/vault.json",
}

// RegisterVaultServiceServer registers srv on s.
func RegisterVaultServiceServer(s grpc.ServiceRegistrar, srv VaultServiceServer) {
	s.RegisterService(&VaultServiceDesc, srv)
}
