package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dmitrijs2005/imagevault/internal/client/services"
	"github.com/dmitrijs2005/imagevault/internal/filex"
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// Upload encrypts a local file under the session holder's key and stores it
// in a vault the holder owns.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage(a.out, "upload <vault-id> <file>")
	}

	data, err := readFile(args[1])
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	img, p, err := a.orchestrator.Upload(ctx, a.session, args[0], args[1], "", data)
	if err != nil {
		log.Printf("Upload failed while %s", lastStep(p.History()))
		return a.report(err)
	}
	log.Printf("Uploaded %s (%s) as %s", img.Filename, formatSize(img.Size), img.IPFSHash)
	return nil
}

func (a *App) Images(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage(a.out, "images <vault-id>")
	}
	imgs, err := a.vaultService.ListImages(ctx, args[0])
	if err != nil {
		return a.report(err)
	}
	if len(imgs) == 0 {
		fmt.Fprintln(a.out, "No images")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HASH\tNAME\tSIZE\tTYPE")
	for _, i := range imgs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", i.IPFSHash, i.Filename, formatSize(i.Size), i.MimeType)
	}
	return tw.Flush()
}

// Download decrypts one image into the configured download directory.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage(a.out, "download <vault-id> <hash>")
	}

	d, p, err := a.orchestrator.Download(ctx, a.session, args[0], args[1])
	if err != nil {
		log.Printf("Download failed while %s", lastStep(p.History()))
		return a.report(err)
	}

	dir, err := filex.EnsureDir(a.config.DownloadDir)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	path, err := filex.WriteFile(dir, d.Image.Filename, d.Data)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	log.Printf("Saved %s", path)
	return nil
}

// Gallery decrypts every image of a vault into <download dir>/<vault-id>.
// Images that fail are reported and skipped.
func (a *App) Gallery(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage(a.out, "gallery <vault-id>")
	}

	items, err := a.orchestrator.DecryptGallery(ctx, a.session, args[0])
	if err != nil {
		return a.report(err)
	}

	dir, err := filex.EnsureDir(filepath.Join(a.config.DownloadDir, filepath.Base(args[0])))
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	saved, failed := 0, 0
	for _, it := range items {
		if it.Err != nil {
			failed++
			log.Printf("%s: failed while %s: %v", it.Image.Filename, lastStep(it.Pipeline.History()), it.Err)
			continue
		}
		if _, err := filex.WriteFile(dir, it.Image.Filename, it.Data); err != nil {
			failed++
			log.Printf("%s: %v", it.Image.Filename, err)
			continue
		}
		saved++
	}

	log.Printf("Gallery %s: %d decrypted, %d failed, saved to %s", args[0], saved, failed, dir)
	return nil
}

// lastStep names the step a failed pipeline was in.
func lastStep(history []services.State) string {
	for i := len(history) - 1; i >= 0; i-- {
		if s := history[i]; s != services.Failed && s != services.Complete {
			return s.String()
		}
	}
	return services.Idle.String()
}
