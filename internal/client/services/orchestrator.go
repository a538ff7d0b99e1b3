package services

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/creachadair/taskgroup"
	"github.com/dmitrijs2005/imagevault/internal/api"
	"github.com/dmitrijs2005/imagevault/internal/client/client"
	"github.com/dmitrijs2005/imagevault/internal/client/session"
	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/cryptox"
	"github.com/dmitrijs2005/imagevault/internal/ethx"
)

// Decrypted is a downloaded image in plaintext.
type Decrypted struct {
	Image *api.Image
	Data  []byte
}

// GalleryItem is the outcome of one image's download pipeline.
type GalleryItem struct {
	Image    *api.Image
	Data     []byte
	Err      error
	Pipeline *Pipeline
}

// Orchestrator sequences key retrieval, the file cipher and the blob store.
// Wrapped keys are fetched per operation and unwrapped keys are wiped as
// soon as the operation ends.
type Orchestrator struct {
	client      client.Client
	concurrency int
	observer    Observer
}

func NewOrchestrator(c client.Client, concurrency int, obs Observer) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{client: c, concurrency: concurrency, observer: obs}
}

func sessionPassword(sess *session.Session) (string, error) {
	if !sess.Active() {
		return "", fmt.Errorf("%w: not logged in", common.ErrorUnauthorized)
	}
	return sess.Password()
}

// Upload encrypts data under the session holder's content key and records
// it in vaultID. A failure after the blob was stored leaves the blob
// orphaned; nothing is rolled back.
func (o *Orchestrator) Upload(ctx context.Context, sess *session.Session, vaultID, filename, mimeType string, data []byte) (*api.Image, *Pipeline, error) {
	p := newPipeline(o.observer)

	password, err := sessionPassword(sess)
	if err != nil {
		return nil, p, p.fail(err)
	}

	if err := p.enter(ctx, FetchingKey); err != nil {
		return nil, p, err
	}
	wrapped, err := o.client.FetchOwnKey(ctx)
	if err != nil {
		return nil, p, p.fail(fmt.Errorf("fetch key: %w", err))
	}

	if err := p.enter(ctx, UnwrappingKey); err != nil {
		return nil, p, err
	}
	key, err := cryptox.UnwrapKey(wrapped, password)
	if err != nil {
		return nil, p, p.fail(err)
	}
	defer common.WipeByteArray(key)

	if err := p.enter(ctx, Encrypting); err != nil {
		return nil, p, err
	}
	sealed, err := cryptox.EncryptFile(data, key)
	if err != nil {
		return nil, p, p.fail(err)
	}

	if err := p.enter(ctx, Uploading); err != nil {
		return nil, p, err
	}
	hash, err := o.client.PutBlob(ctx, vaultID, sealed)
	if err != nil {
		return nil, p, p.fail(fmt.Errorf("upload: %w", err))
	}

	if err := p.enter(ctx, PersistingMetadata); err != nil {
		return nil, p, err
	}
	if mimeType == "" {
		mimeType = DetectMimeType(filename, data)
	}
	img, err := o.client.CreateImage(ctx, &api.CreateImageRequest{
		VaultID:  vaultID,
		IPFSHash: hash,
		Filename: filepath.Base(filename),
		Size:     int64(len(data)),
		MimeType: mimeType,
	})
	if err != nil {
		return nil, p, p.fail(fmt.Errorf("persist metadata: %w", err))
	}

	p.complete()
	return img, p, nil
}

// Download fetches and decrypts one image. The content key is the vault
// owner's, so it is unwrapped with the owner's address, not the caller's.
func (o *Orchestrator) Download(ctx context.Context, sess *session.Session, vaultID, ipfsHash string) (*Decrypted, *Pipeline, error) {
	p := newPipeline(o.observer)

	if _, err := sessionPassword(sess); err != nil {
		return nil, p, p.fail(err)
	}

	if err := p.enter(ctx, ResolvingOwner); err != nil {
		return nil, p, err
	}
	vault, err := o.client.GetVault(ctx, vaultID)
	if err != nil {
		return nil, p, p.fail(fmt.Errorf("resolve vault: %w", err))
	}
	owner, err := ethx.CanonicalAddress(vault.Owner)
	if err != nil {
		return nil, p, p.fail(err)
	}

	if err := p.enter(ctx, FetchingKey); err != nil {
		return nil, p, err
	}
	wrapped, err := o.client.FetchKey(ctx, owner, vaultID)
	if err != nil {
		return nil, p, p.fail(fmt.Errorf("fetch key: %w", err))
	}

	if err := p.enter(ctx, UnwrappingKey); err != nil {
		return nil, p, err
	}
	key, err := cryptox.UnwrapKey(wrapped, owner)
	if err != nil {
		return nil, p, p.fail(err)
	}
	defer common.WipeByteArray(key)

	if err := p.enter(ctx, Downloading); err != nil {
		return nil, p, err
	}
	img, err := o.client.GetImage(ctx, vaultID, ipfsHash)
	if err != nil {
		return nil, p, p.fail(fmt.Errorf("image metadata: %w", err))
	}
	sealed, err := o.client.GetImageData(ctx, vaultID, ipfsHash)
	if err != nil {
		return nil, p, p.fail(fmt.Errorf("download: %w", err))
	}

	if err := p.enter(ctx, Decrypting); err != nil {
		return nil, p, err
	}
	plain, err := cryptox.DecryptFile(sealed, key)
	if err != nil {
		return nil, p, p.fail(err)
	}

	p.complete()
	return &Decrypted{Image: img, Data: plain}, p, nil
}

// DecryptGallery downloads every image of vaultID, running up to the
// configured number of pipelines at once. A failing image is reported in
// its item and does not stop the others. Items keep the listing order.
func (o *Orchestrator) DecryptGallery(ctx context.Context, sess *session.Session, vaultID string) ([]GalleryItem, error) {
	images, err := o.client.ListImages(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	items := make([]GalleryItem, len(images))

	g, run := taskgroup.New(nil).Limit(o.concurrency)
	for i, img := range images {
		run(func() error {
			d, p, err := o.Download(ctx, sess, vaultID, img.IPFSHash)
			items[i] = GalleryItem{Image: img, Err: err, Pipeline: p}
			if d != nil {
				items[i].Data = d.Data
			}
			return nil
		})
	}
	_ = g.Wait()

	return items, nil
}

// DetectMimeType guesses a MIME type from the file extension, falling back
// to sniffing the content.
func DetectMimeType(filename string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(filename)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
