// Package session holds the signed-in identity of the CLI. A Session is
// created after a successful sign-in, handed explicitly to the services that
// need it, and closed on logout.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/imagevault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/imagevault/internal/dbx"
	"github.com/dmitrijs2005/imagevault/internal/ethx"
)

// ErrClosed is returned by accessors once the session has been closed.
var ErrClosed = errors.New("session closed")

const (
	keyAddress     = "session.address"
	keyAccessToken = "session.access_token"
)

type Session struct {
	mu      sync.RWMutex
	address string
	token   string
	closed  bool
}

// New builds a session for address, which is canonicalized.
func New(address, token string) (*Session, error) {
	canonical, err := ethx.CanonicalAddress(address)
	if err != nil {
		return nil, err
	}
	return &Session{address: canonical, token: token}, nil
}

func (s *Session) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Password is the secret the account's content key is wrapped under: its
// canonical address.
func (s *Session) Password() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", ErrClosed
	}
	return s.address, nil
}

func (s *Session) Active() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

// Close forgets the token. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.token = ""
}

// Save persists the session so the next CLI run can resume it.
func Save(ctx context.Context, db dbx.DBTX, s *Session) error {
	repo := metadata.NewSQLiteRepository(db)
	if err := repo.Set(ctx, keyAddress, []byte(s.Address())); err != nil {
		return err
	}
	return repo.Set(ctx, keyAccessToken, []byte(s.Token()))
}

// Load restores the last saved session. It returns (nil, nil) when none was
// saved.
func Load(ctx context.Context, db dbx.DBTX) (*Session, error) {
	repo := metadata.NewSQLiteRepository(db)

	address, err := repo.Get(ctx, keyAddress)
	if err != nil {
		return nil, err
	}
	token, err := repo.Get(ctx, keyAccessToken)
	if err != nil {
		return nil, err
	}
	if address == nil || token == nil {
		return nil, nil
	}

	return New(string(address), string(token))
}

// Forget removes the saved session.
func Forget(ctx context.Context, db dbx.DBTX) error {
	repo := metadata.NewSQLiteRepository(db)
	if err := repo.Delete(ctx, keyAddress); err != nil {
		return err
	}
	return repo.Delete(ctx, keyAccessToken)
}
