package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/server/blobstore"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const defaultMimeType = "application/octet-stream"

// NewImage is the metadata a client submits after uploading a blob.
type NewImage struct {
	VaultID  string
	IPFSHash string
	Filename string
	Size     int64
	MimeType string
}

// ImageService stores encrypted blobs and their metadata. Only the owner
// writes, since content is sealed under the owner's key. Owner and grantees
// read.
type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	access      *AccessService
}

func NewImageService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, access *AccessService) *ImageService {
	return &ImageService{db: db, repomanager: m, blobs: blobs, access: access}
}

// PutBlob stores sealed bytes and returns their content hash.
func (s *ImageService) PutBlob(ctx context.Context, caller, vaultID string, data []byte) (string, error) {
	if _, err := s.access.AuthorizeOwner(ctx, caller, vaultID); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty blob", common.ErrorValidation)
	}
	return s.blobs.Put(ctx, data)
}

// CreateImage records metadata for a blob already in the store. The hash
// must be a well-formed content id of a stored blob.
func (s *ImageService) CreateImage(ctx context.Context, caller string, in NewImage) (*models.Image, error) {
	vault, err := s.access.AuthorizeOwner(ctx, caller, in.VaultID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.IPFSHash) == "" {
		return nil, fmt.Errorf("%w: content hash is required", common.ErrorValidation)
	}
	hash, err := blobstore.ParseContentID(in.IPFSHash)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Filename) == "" {
		return nil, fmt.Errorf("%w: filename is required", common.ErrorValidation)
	}
	if in.Size < 0 {
		return nil, fmt.Errorf("%w: negative size", common.ErrorValidation)
	}

	found, err := s.blobs.Has(ctx, hash)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("blob %s: %w", hash, common.ErrorNotFound)
	}

	mime := in.MimeType
	if mime == "" {
		mime = defaultMimeType
	}

	return s.repomanager.Images(s.db).Create(ctx, &models.Image{
		ID:       uuid.NewString(),
		VaultPK:  vault.ID,
		IPFSHash: hash,
		Filename: in.Filename,
		Size:     in.Size,
		MimeType: mime,
	})
}

func (s *ImageService) ListImages(ctx context.Context, caller, vaultID string) ([]*models.Image, error) {
	vault, err := s.access.Authorize(ctx, caller, vaultID)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Images(s.db).ListByVault(ctx, vault.ID)
}

func (s *ImageService) GetImage(ctx context.Context, caller, vaultID, ipfsHash string) (*models.Image, error) {
	vault, err := s.access.Authorize(ctx, caller, vaultID)
	if err != nil {
		return nil, err
	}
	img, err := s.repomanager.Images(s.db).GetByHash(ctx, vault.ID, ipfsHash)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", ipfsHash, err)
	}
	return img, nil
}

// GetImageData returns the sealed bytes of an image that belongs to vaultID.
func (s *ImageService) GetImageData(ctx context.Context, caller, vaultID, ipfsHash string) ([]byte, error) {
	img, err := s.GetImage(ctx, caller, vaultID, ipfsHash)
	if err != nil {
		return nil, err
	}
	return s.blobs.Get(ctx, img.IPFSHash)
}
