package storage

import "context"

// ImageUploader is the upload surface handlers depend on, kept small so
// tests can substitute a mock.
type ImageUploader interface {
	UploadCaseImage(ctx context.Context, imageData []byte, userID, originalFilename string) (*UploadResult, error)
	UploadAvatar(ctx context.Context, imageData []byte, userID, originalFilename string) (*UploadResult, error)
	DeleteFile(ctx context.Context, key string) error
}

var _ ImageUploader = (*S3Uploader)(nil)
