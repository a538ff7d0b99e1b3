// Package services contains the application services of the imagevault CLI:
// sign-in and session housekeeping, vault administration, and the
// upload/download orchestrator with its gallery fan-out.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/imagevault/internal/client/client"
	"github.com/dmitrijs2005/imagevault/internal/client/session"
	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/cryptox"
	"github.com/dmitrijs2005/imagevault/internal/dbx"
	"github.com/dmitrijs2005/imagevault/internal/ethx"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: sign the server's challenge with a wallet key, bootstrap the
//     account's content key on first sign-in, and persist the session.
//   - RestoreSession: resume the last persisted session.
//   - Logout: close the session and forget it locally.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Login(ctx context.Context, privateKeyHex string) (*session.Session, error)
	RestoreSession(ctx context.Context) (*session.Session, error)
	Logout(ctx context.Context, sess *session.Session) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) Login(ctx context.Context, privateKeyHex string) (*session.Session, error) {
	signer, err := ethx.NewSigner(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	message, err := a.client.Challenge(ctx)
	if err != nil {
		return nil, fmt.Errorf("challenge error: %w", err)
	}

	signature, err := signer.SignMessage(message)
	if err != nil {
		return nil, fmt.Errorf("sign error: %w", err)
	}

	res, err := a.client.Authenticate(ctx, signer.Address(), signature)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	if res.EncryptedKey == nil {
		if err := a.bootstrapKey(ctx, res.Address); err != nil {
			return nil, fmt.Errorf("key bootstrap error: %w", err)
		}
	}

	sess, err := session.New(res.Address, res.AccessToken)
	if err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return session.Save(ctx, tx, sess)
	})
	if err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}

	return sess, nil
}

// bootstrapKey creates the account's content key, wraps it under the
// account's canonical address and hands the wrapped form to the server.
func (a *authService) bootstrapKey(ctx context.Context, address string) error {
	key := cryptox.GenerateContentKey()
	defer common.WipeByteArray(key)

	wrapped, err := cryptox.WrapKey(key, address)
	if err != nil {
		return err
	}

	return a.client.StoreKey(ctx, wrapped)
}

// RestoreSession reinstates the token of the last saved session. It returns
// client.ErrLocalDataNotAvailable when nothing was saved.
func (a *authService) RestoreSession(ctx context.Context) (*session.Session, error) {
	sess, err := session.Load(ctx, a.db)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, client.ErrLocalDataNotAvailable
	}

	a.client.SetAccessToken(sess.Token())
	return sess, nil
}

func (a *authService) Logout(ctx context.Context, sess *session.Session) error {
	if sess != nil {
		sess.Close()
	}
	a.client.SetAccessToken("")
	return session.Forget(ctx, a.db)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
