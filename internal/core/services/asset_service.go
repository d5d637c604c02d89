package services

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ErrAssetStorageDisabled is returned when no Cloudinary URL is configured
var ErrAssetStorageDisabled = errors.New("asset storage is not configured")

// UploadedAsset is the stored location of an uploaded image
type UploadedAsset struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// AssetService stores product and category images on Cloudinary
type AssetService struct {
	cld *cloudinary.Cloudinary
}

// NewAssetService creates a new asset service. A missing Cloudinary URL
// leaves the service disabled rather than failing startup, so image-less
// deployments still run.
func NewAssetService(cloudinaryURL string) (*AssetService, error) {
	if cloudinaryURL == "" {
		log.Println("⚠️ Cloudinary not configured, image uploads disabled")
		return &AssetService{}, nil
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}

	return &AssetService{cld: cld}, nil
}

// Enabled reports whether uploads are available
func (s *AssetService) Enabled() bool {
	return s.cld != nil
}

// Upload stores an image and returns its URL and public ID
func (s *AssetService) Upload(ctx context.Context, file io.Reader, folder string) (*UploadedAsset, error) {
	if s.cld == nil {
		return nil, ErrAssetStorageDisabled
	}

	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: folder,
	})
	if err != nil {
		return nil, err
	}

	return &UploadedAsset{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
	}, nil
}

// Destroy removes an uploaded image by its public ID.
// A cleanup failure is logged, not propagated: a dangling image must
// not block deleting the record that referenced it.
func (s *AssetService) Destroy(ctx context.Context, publicID string) {
	if s.cld == nil || publicID == "" {
		return
	}

	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		log.Printf("⚠️ Failed to destroy asset %s: %v", publicID, err)
	}
}
