package cli

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/api"
	"github.com/dmitrijs2005/imagevault/internal/client/client"
	"github.com/dmitrijs2005/imagevault/internal/client/config"
	"github.com/dmitrijs2005/imagevault/internal/client/services"
	"github.com/dmitrijs2005/imagevault/internal/client/session"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// orchestrator is the part of services.Orchestrator the commands use.
type orchestrator interface {
	Upload(ctx context.Context, sess *session.Session, vaultID, filename, mimeType string, data []byte) (*api.Image, *services.Pipeline, error)
	Download(ctx context.Context, sess *session.Session, vaultID, ipfsHash string) (*services.Decrypted, *services.Pipeline, error)
	DecryptGallery(ctx context.Context, sess *session.Session, vaultID string) ([]services.GalleryItem, error)
}

type App struct {
	config       *config.Config
	authService  services.AuthService
	vaultService services.VaultService
	orchestrator orchestrator
	db           *sql.DB
	session      *session.Session
	out          io.Writer

	modeMu sync.RWMutex
	Mode   Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	db, err := client.InitDatabase(ctx, c.SessionDBPath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient, err := client.NewVaultClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:       c,
		authService:  services.NewAuthService(apiClient, db),
		vaultService: services.NewVaultService(apiClient),
		orchestrator: services.NewOrchestrator(apiClient, c.GalleryConcurrency, nil),
		db:           db,
		out:          os.Stdout,
	}, nil
}

func (a *App) mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.Mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		_ = a.authService.Close(ctx)
		if a.db != nil {
			_ = a.db.Close()
		}
	}()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.Active()
}

// StartOnlineStatusWatcher pings the server every interval and flips Mode
// accordingly. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
