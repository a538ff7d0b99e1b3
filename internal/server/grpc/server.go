package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/api"
	"github.com/dmitrijs2005/imagevault/internal/logging"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/dmitrijs2005/imagevault/internal/server/services"
	"google.golang.org/grpc"
)

type accountService interface {
	Challenge() string
	Authenticate(ctx context.Context, address, signature string) (*services.AuthResult, error)
}

type custodyService interface {
	StoreKey(ctx context.Context, account, wrappedKey string) error
	FetchOwnKey(ctx context.Context, caller string) (string, error)
	FetchKey(ctx context.Context, caller, target, vaultID string) (string, error)
}

type accessService interface {
	GrantAccess(ctx context.Context, caller, vaultID, grantee string, expiresAt *time.Time) (*models.AccessGrant, error)
	RevokeAccess(ctx context.Context, caller, vaultID, grantee string) error
	ListActiveGrantees(ctx context.Context, caller, vaultID string) ([]*models.AccessGrant, error)
}

type vaultService interface {
	CreateVault(ctx context.Context, caller, vaultID, name, description string) (*models.Vault, error)
	GetVault(ctx context.Context, caller, vaultID string) (*models.Vault, error)
	ListVaults(ctx context.Context, caller string) ([]*models.Vault, []*models.Vault, error)
}

type imageService interface {
	PutBlob(ctx context.Context, caller, vaultID string, data []byte) (string, error)
	CreateImage(ctx context.Context, caller string, in services.NewImage) (*models.Image, error)
	ListImages(ctx context.Context, caller, vaultID string) ([]*models.Image, error)
	GetImage(ctx context.Context, caller, vaultID, ipfsHash string) (*models.Image, error)
	GetImageData(ctx context.Context, caller, vaultID, ipfsHash string) ([]byte, error)
}

// Services groups the domain services the transport dispatches to.
type Services struct {
	Accounts accountService
	Custody  custodyService
	Access   accessService
	Vaults   vaultService
	Images   imageService
}

type GRPCServer struct {
	api.UnimplementedVaultServiceServer
	address   string
	accounts  accountService
	custody   custodyService
	access    accessService
	vaults    vaultService
	images    imageService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, svc Services, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		accounts:  svc.Accounts,
		custody:   svc.Custody,
		access:    svc.Access,
		vaults:    svc.Vaults,
		images:    svc.Images,
		jwtSecret: []byte(secretKey),
	}, nil
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.MaxRecvMsgSize(api.MaxMessageSize),
		grpc.MaxSendMsgSize(api.MaxMessageSize),
	)
	api.RegisterVaultServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
