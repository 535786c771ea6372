package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Config holds asset-host credentials.
type Config struct {
	CloudName string `env:"DEVSPHERE_CLOUDINARY_CLOUD_NAME"`
	APIKey    string `env:"DEVSPHERE_CLOUDINARY_API_KEY"`
	APISecret string `env:"DEVSPHERE_CLOUDINARY_API_SECRET"`
}

// CloudinaryUploader implements Uploader against the Cloudinary API.
type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
}

// NewCloudinaryUploader builds an uploader from credentials.
func NewCloudinaryUploader(cfg Config) (*CloudinaryUploader, error) {
	if strings.TrimSpace(cfg.CloudName) == "" {
		return nil, fmt.Errorf("cloudinary cloud name is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APISecret) == "" {
		return nil, fmt.Errorf("cloudinary credentials are required")
	}

	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary client: %w", err)
	}
	return &CloudinaryUploader{client: client}, nil
}

// Upload stores an image in the event folder and returns its delivery URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, image io.Reader) (string, error) {
	if u == nil || u.client == nil {
		return "", fmt.Errorf("uploader is not configured")
	}
	if image == nil {
		return "", fmt.Errorf("image is required")
	}

	result, err := u.client.Upload.Upload(ctx, image, uploader.UploadParams{
		Folder:       Folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload image: empty delivery url")
	}
	return result.SecureURL, nil
}

// Destroy removes the asset behind a delivery URL.
func (u *CloudinaryUploader) Destroy(ctx context.Context, url string) error {
	if u == nil || u.client == nil {
		return fmt.Errorf("uploader is not configured")
	}
	publicID := PublicIDFromURL(url)
	if publicID == "" {
		return fmt.Errorf("cannot derive public id from %q", url)
	}

	if _, err := u.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("destroy asset %s: %w", publicID, err)
	}
	return nil
}
