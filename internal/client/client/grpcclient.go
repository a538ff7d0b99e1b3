package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/api"
	"github.com/dmitrijs2005/imagevault/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.VaultServiceClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// SetAccessToken replaces the token sent with every call. An empty token
// sends none.
func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if tok := s.token(); tok != "" {
		ctx = withAccessToken(ctx, tok)
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewVaultClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(api.MaxMessageSize),
			grpc.MaxCallSendMsgSize(api.MaxMessageSize),
		),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewVaultServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) Challenge(ctx context.Context) (string, error) {
	resp, err := s.client.Challenge(ctx, &api.ChallengeRequest{})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Message, nil
}

// Authenticate signs in and keeps the issued token for later calls.
func (s *GRPCClient) Authenticate(ctx context.Context, address, signature string) (*api.AuthenticateResponse, error) {

	resp, err := s.client.Authenticate(ctx, &api.AuthenticateRequest{Address: address, Signature: signature})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.SetAccessToken(resp.AccessToken)

	return resp, nil

}

func (s *GRPCClient) StoreKey(ctx context.Context, wrappedKey string) error {
	_, err := s.client.StoreKey(ctx, &api.StoreKeyRequest{EncryptedKey: wrappedKey})
	return s.mapError(err)
}

func (s *GRPCClient) FetchOwnKey(ctx context.Context) (string, error) {
	resp, err := s.client.FetchOwnKey(ctx, &api.FetchOwnKeyRequest{})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.EncryptedKey, nil
}

func (s *GRPCClient) FetchKey(ctx context.Context, target, vaultID string) (string, error) {
	resp, err := s.client.FetchKey(ctx, &api.FetchKeyRequest{Target: target, VaultID: vaultID})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.EncryptedKey, nil
}

func (s *GRPCClient) CreateVault(ctx context.Context, vaultID, name, description string) (*api.Vault, error) {
	resp, err := s.client.CreateVault(ctx, &api.CreateVaultRequest{VaultID: vaultID, Name: name, Description: description})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Vault, nil
}

func (s *GRPCClient) GetVault(ctx context.Context, vaultID string) (*api.Vault, error) {
	resp, err := s.client.GetVault(ctx, &api.GetVaultRequest{VaultID: vaultID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Vault, nil
}

func (s *GRPCClient) ListVaults(ctx context.Context) ([]*api.Vault, []*api.Vault, error) {
	resp, err := s.client.ListVaults(ctx, &api.ListVaultsRequest{})
	if err != nil {
		return nil, nil, s.mapError(err)
	}
	return resp.Owned, resp.Shared, nil
}

func (s *GRPCClient) GrantAccess(ctx context.Context, vaultID, grantee string, expiresAt *time.Time) (*api.Grant, error) {
	resp, err := s.client.GrantAccess(ctx, &api.GrantAccessRequest{VaultID: vaultID, Grantee: grantee, ExpiresAt: expiresAt})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Grant, nil
}

func (s *GRPCClient) RevokeAccess(ctx context.Context, vaultID, grantee string) error {
	_, err := s.client.RevokeAccess(ctx, &api.RevokeAccessRequest{VaultID: vaultID, Grantee: grantee})
	return s.mapError(err)
}

func (s *GRPCClient) ListGrantees(ctx context.Context, vaultID string) ([]*api.Grant, error) {
	resp, err := s.client.ListGrantees(ctx, &api.ListGranteesRequest{VaultID: vaultID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Grantees, nil
}

func (s *GRPCClient) PutBlob(ctx context.Context, vaultID string, data []byte) (string, error) {
	resp, err := s.client.PutBlob(ctx, &api.PutBlobRequest{VaultID: vaultID, Data: data})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Hash, nil
}

func (s *GRPCClient) CreateImage(ctx context.Context, in *api.CreateImageRequest) (*api.Image, error) {
	resp, err := s.client.CreateImage(ctx, in)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Image, nil
}

func (s *GRPCClient) ListImages(ctx context.Context, vaultID string) ([]*api.Image, error) {
	resp, err := s.client.ListImages(ctx, &api.ListImagesRequest{VaultID: vaultID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Images, nil
}

func (s *GRPCClient) GetImage(ctx context.Context, vaultID, ipfsHash string) (*api.Image, error) {
	resp, err := s.client.GetImage(ctx, &api.GetImageRequest{VaultID: vaultID, IPFSHash: ipfsHash})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Image, nil
}

func (s *GRPCClient) GetImageData(ctx context.Context, vaultID, ipfsHash string) ([]byte, error) {
	resp, err := s.client.GetImageData(ctx, &api.GetImageRequest{VaultID: vaultID, IPFSHash: ipfsHash})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Data, nil
}

// mapError turns a gRPC status back into the sentinel the server started
// from, keeping the server's message for display.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}

	var kind error
	switch st.Code() {
	case codes.NotFound:
		kind = common.ErrorNotFound
	case codes.PermissionDenied:
		kind = common.ErrorForbidden
	case codes.AlreadyExists:
		kind = common.ErrorConflict
	case codes.InvalidArgument:
		kind = common.ErrorValidation
	case codes.Unauthenticated:
		kind = common.ErrorUnauthorized
	case codes.DataLoss:
		kind = ErrDataLoss
	case codes.Unavailable, codes.DeadlineExceeded:
		kind = ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}

	if st.Message() == "" || st.Message() == kind.Error() {
		return kind
	}
	return fmt.Errorf("%w: %s", kind, st.Message())
}

// IsUnavailable reports whether err means the server could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
