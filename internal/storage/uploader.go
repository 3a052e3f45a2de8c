package storage

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
)

// Uploader stores an image and returns a durable public URL. Handlers
// depend on the interface so tests don't need a bucket.
type Uploader interface {
	UploadImage(data io.Reader, contentType string) (string, error)
}

// SupabaseUploader pushes files into a public Supabase Storage bucket.
type SupabaseUploader struct {
	client *storage_go.Client
	bucket string
}

func NewSupabaseUploader(url, serviceKey, bucket string) *SupabaseUploader {
	return &SupabaseUploader{
		client: storage_go.NewClient(url, serviceKey, nil),
		bucket: bucket,
	}
}

// UploadImage stores the file under a random object name so uploads never
// collide or overwrite each other.
func (u *SupabaseUploader) UploadImage(data io.Reader, contentType string) (string, error) {
	objectName := uuid.NewString()

	_, err := u.client.UploadFile(u.bucket, objectName, data, storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload to bucket %s: %w", u.bucket, err)
	}

	resp := u.client.GetPublicUrl(u.bucket, objectName)
	if resp.SignedURL == "" {
		return "", fmt.Errorf("no public url for uploaded object %s", objectName)
	}
	return resp.SignedURL, nil
}
