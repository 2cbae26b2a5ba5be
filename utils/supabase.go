package utils

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	storage "github.com/supabase-community/storage-go"
)

// Storage archives original uploads in a Supabase storage bucket.
type Storage struct {
	client  *storage.Client
	baseURL string
	bucket  string
}

func NewStorage(supabaseURL, key, bucket string) *Storage {
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &Storage{
		client:  storage.NewClient(baseURL+"/storage/v1", key, nil),
		baseURL: baseURL,
		bucket:  bucket,
	}
}

// DocumentObjectPath names an upload under documents/: <id>-<slug>.<ext>.
func DocumentObjectPath(docID uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := slug.Make(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if name == "" {
		return fmt.Sprintf("documents/%s%s", docID, ext)
	}
	return fmt.Sprintf("documents/%s-%s%s", docID, name, ext)
}

// PublicURL is the public object URL of objectPath in the bucket.
func (s *Storage) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath)
}

// Upload stores data at objectPath and returns its public URL.
func (s *Storage) Upload(objectPath string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upsert := false
	_, err := s.client.UploadFile(s.bucket, objectPath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	return s.PublicURL(objectPath), nil
}

// Remove deletes objectPath from the bucket.
func (s *Storage) Remove(objectPath string) error {
	if _, err := s.client.RemoveFile(s.bucket, []string{objectPath}); err != nil {
		return fmt.Errorf("remove %s: %w", objectPath, err)
	}
	return nil
}
