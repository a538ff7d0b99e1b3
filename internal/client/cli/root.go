package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/imagevault/internal/client/client"
)

func (a *App) getStatus() string {
	s := ""
	if a.isLoggedIn() {
		s = shortAddress(a.session.Address()) + " "
	}
	if m := a.mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root resumes the saved session if there is one, starts the connectivity
// watcher and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to imagevault CLI (type 'help' for commands)")

	a.resume(ctx)
	a.checkOnline(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) resume(ctx context.Context) {
	sess, err := a.authService.RestoreSession(ctx)
	if err != nil {
		if !errors.Is(err, client.ErrLocalDataNotAvailable) {
			log.Printf("Could not restore session: %s", err.Error())
		}
		return
	}
	a.session = sess
	log.Printf("Resumed session for %s", sess.Address())
}
