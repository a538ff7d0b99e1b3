package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/ethx"
	"github.com/dmitrijs2005/imagevault/internal/server/auth"
	"github.com/dmitrijs2005/imagevault/internal/server/config"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/repomanager"
)

// AuthResult is what a successful sign-in hands back to the client.
type AuthResult struct {
	AccessToken  string
	Address      string
	EncryptedKey *string
}

// AccountService runs the sign-in challenge: the client signs a fixed message
// with its wallet key, the server recovers the signer and issues a JWT.
type AccountService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	signInMessage               string
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AccountService {
	msg := cfg.SignInMessage
	if msg == "" {
		msg = common.DefaultSignInMessage
	}
	return &AccountService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		signInMessage:               msg,
	}
}

// Challenge returns the message clients must sign.
func (s *AccountService) Challenge() string {
	return s.signInMessage
}

// Authenticate verifies that signature over the challenge was produced by
// address. The account is created on first successful sign-in.
func (s *AccountService) Authenticate(ctx context.Context, address, signature string) (*AuthResult, error) {
	canonical, err := ethx.CanonicalAddress(address)
	if err != nil {
		return nil, err
	}

	if err := ethx.VerifySignature(canonical, s.signInMessage, signature); err != nil {
		return nil, err
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetOrCreate(ctx, canonical)
	if err != nil {
		return nil, fmt.Errorf("error loading account: %w", err)
	}

	token, err := auth.GenerateToken(account.Address, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &AuthResult{AccessToken: token, Address: account.Address, EncryptedKey: account.EncryptedKey}, nil
}
