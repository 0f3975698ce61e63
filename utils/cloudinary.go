package utils

import (
	"context"
	"errors"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrUploadDisabled = errors.New("avatar upload is not configured")

type AvatarUploader interface {
	UploadAvatar(ctx context.Context, file io.Reader, publicID string) (string, error)
}

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	preset string
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, uploadPreset string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryUploader{cld: cld, preset: uploadPreset}, nil
}

// UploadAvatar stores a square thumbnail and returns its secure URL.
func (u *CloudinaryUploader) UploadAvatar(ctx context.Context, file io.Reader, publicID string) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         "avatars",
		UploadPreset:   u.preset,
		Transformation: "c_thumb,w_200,h_200",
	})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", errors.New(resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// DisabledUploader is used when no Cloudinary account is configured.
type DisabledUploader struct{}

func (DisabledUploader) UploadAvatar(context.Context, io.Reader, string) (string, error) {
	return "", ErrUploadDisabled
}
