package cli

import (
	"context"
	"errors"
	"log"

	"github.com/dmitrijs2005/imagevault/internal/client/client"
	"github.com/dmitrijs2005/imagevault/internal/common"
)

var errUsage = errors.New("usage")

// getSecret is an indirection used to facilitate testing.
var getSecret = GetSecret

// Login asks for a hex private key, signs the server's challenge with it and
// keeps the resulting session. The key bytes are wiped before returning.
//
// When the server cannot be reached the CLI switches to offline mode; a
// previously resumed session, if any, stays in place.
func (a *App) Login(ctx context.Context) error {
	key, err := getSecret(a.out, "Enter private key (hex)")
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeByteArray(key)

	sess, err := a.authService.Login(ctx, string(key))
	if err != nil {
		if client.IsUnavailable(err) {
			log.Printf("Server unavailable, try again when online")
			a.setMode(ModeOffline)
		} else {
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}

	if a.session != nil {
		a.session.Close()
	}
	a.session = sess
	a.setMode(ModeOnline)
	log.Printf("Logged in as %s", sess.Address())
	return nil
}

// Logout closes the session and removes it from the local store.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx, a.session); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	a.session = nil
	log.Printf("Logged out")
	return nil
}

// report logs a command failure in user terms and returns err unchanged.
func (a *App) report(err error) error {
	switch {
	case errors.Is(err, errUsage):
	case client.IsUnavailable(err):
		a.setMode(ModeOffline)
		log.Printf("Server unavailable")
	case errors.Is(err, common.ErrorUnauthorized):
		log.Printf("Session is no longer valid, please login again")
	case errors.Is(err, common.ErrorForbidden):
		log.Printf("Access denied")
	case errors.Is(err, common.ErrorNotFound):
		log.Printf("Not found")
	case errors.Is(err, common.ErrorUnwrap), errors.Is(err, common.ErrorDecrypt), errors.Is(err, client.ErrDataLoss):
		log.Printf("Integrity check failed: %s", err.Error())
	default:
		log.Printf("error: %v", err)
	}
	return err
}
