package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"citydesk/libs/gateway"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageUploader stores a banner image and returns the URL to save with it.
type ImageUploader interface {
	Name() string
	Upload(ctx context.Context, upload *gateway.Upload) (string, error)
}

// BackendImageUploader posts to the backend's upload endpoint. The URL it
// returns may be server-relative.
type BackendImageUploader struct {
	Client *gateway.Client
}

func (u *BackendImageUploader) Name() string { return uploadProviderBackend }

func (u *BackendImageUploader) Upload(ctx context.Context, upload *gateway.Upload) (string, error) {
	return u.Client.UploadEventBannerImage(ctx, upload)
}

// CloudinaryImageUploader uploads straight to Cloudinary.
type CloudinaryImageUploader struct {
	Cloud  *cloudinary.Cloudinary
	Folder string
}

func (u *CloudinaryImageUploader) Name() string { return uploadProviderCloudinary }

func (u *CloudinaryImageUploader) Upload(ctx context.Context, upload *gateway.Upload) (string, error) {
	if err := gateway.ValidateImageUpload(upload); err != nil {
		return "", err
	}
	result, err := u.Cloud.Upload.Upload(ctx, bytes.NewReader(upload.Data), uploader.UploadParams{
		Folder: u.Folder,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload: %s", firstNonEmpty(result.Error.Message, "no url returned"))
	}
	return result.SecureURL, nil
}

// FallbackImageUploader tries Primary first and Secondary when it fails.
// Validation failures are returned as is; the second provider would reject
// the same file.
type FallbackImageUploader struct {
	Primary   ImageUploader
	Secondary ImageUploader
	Log       *slog.Logger
}

func (u *FallbackImageUploader) Name() string {
	return u.Primary.Name() + "+" + u.Secondary.Name()
}

func (u *FallbackImageUploader) Upload(ctx context.Context, upload *gateway.Upload) (string, error) {
	if err := gateway.ValidateImageUpload(upload); err != nil {
		return "", err
	}
	imageURL, err := u.Primary.Upload(ctx, upload)
	if err == nil && imageURL != "" {
		return imageURL, nil
	}
	var validationErr *gateway.ValidationError
	if errors.As(err, &validationErr) {
		return "", err
	}
	if u.Log != nil {
		u.Log.Warn("primary image upload failed, trying fallback", "primary", u.Primary.Name(), "secondary", u.Secondary.Name(), "error", err)
	}
	return u.Secondary.Upload(ctx, upload)
}
